package reembed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeVector(t *testing.T) {
	input := []float32{3.0, 4.0}
	result := NormalizeVector(input)

	assert.InDeltaSlice(t, []float32{0.6, 0.8}, result, 1e-6)
	assert.Equal(t, []float32{3.0, 4.0}, input, "input must not be modified")

	assert.Equal(t, []float32{0, 0}, NormalizeVector([]float32{0, 0}))
	assert.Empty(t, NormalizeVector(nil))
}
