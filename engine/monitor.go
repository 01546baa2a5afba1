package engine

import "github.com/poiesic/infobot/core"

// QueryMonitor provides hooks to observe a query as it runs.
type QueryMonitor interface {
	Start(question string, mode core.Mode)
	AfterRetrieval(mode core.Mode, chunkIDs []core.ID)
	AfterContext(runes int)
	Finish(result *Result)
}

// noopMonitor is a no-op implementation of QueryMonitor
type noopMonitor struct{}

var _ QueryMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ core.Mode)             {}
func (n *noopMonitor) AfterRetrieval(_ core.Mode, _ []core.ID) {}
func (n *noopMonitor) AfterContext(_ int)                      {}
func (n *noopMonitor) Finish(_ *Result)                        {}
