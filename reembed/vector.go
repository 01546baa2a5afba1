package reembed

import "github.com/poiesic/infobot/core"

// NormalizeVector normalizes a vector to unit length.
// Returns a new slice. A zero vector is returned as zeros.
func NormalizeVector(v []float32) []float32 {
	return core.NormalizeVector(v)
}
