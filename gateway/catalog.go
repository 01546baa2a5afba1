package gateway

import "github.com/poiesic/infobot/core"

// ModeInfo describes a query mode for clients.
type ModeInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var catalog = []ModeInfo{
	{ID: string(core.ModeNaive), Name: "Naive", Description: "Simple direct question answering"},
	{ID: string(core.ModeLocal), Name: "Local", Description: "Uses local context analysis"},
	{ID: string(core.ModeGlobal), Name: "Global", Description: "Uses global document context"},
	{ID: string(core.ModeHybrid), Name: "Hybrid", Description: "Combines local and global analysis"},
}

// ModeCatalog returns the supported modes in presentation order.
func ModeCatalog() []ModeInfo {
	out := make([]ModeInfo, len(catalog))
	copy(out, catalog)
	return out
}
