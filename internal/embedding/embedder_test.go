package embedding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	v := Normalize([]float64{3, 4})
	assert.InDelta(t, 0.6, v[0], 1e-9)
	assert.InDelta(t, 0.8, v[1], 1e-9)

	z := Normalize([]float64{0, 0})
	assert.Equal(t, []float64{0, 0}, z)
	assert.False(t, math.IsNaN(z[0]))
}

func TestIsZero(t *testing.T) {
	assert.True(t, IsZero(nil))
	assert.True(t, IsZero([]float64{0, 0}))
	assert.False(t, IsZero([]float64{0, 1e-9}))
}
