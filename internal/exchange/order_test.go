package exchange

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp01(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"inside range", 0.51, 0.51},
		{"zero", 0, 0},
		{"one", 1, 1},
		{"below zero", -0.3, 0},
		{"above one", 1.7, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Clamp01(tc.in))
		})
	}
}

func TestClamp01_NonFinite(t *testing.T) {
	assert.True(t, math.IsNaN(Clamp01(math.NaN())))
	assert.True(t, math.IsNaN(Clamp01(math.Inf(1))))
	assert.True(t, math.IsNaN(Clamp01(math.Inf(-1))))
}

func TestClamp01_Idempotent(t *testing.T) {
	for _, x := range []float64{-2, 0, 0.25, 0.99, 1, 42} {
		once := Clamp01(x)
		assert.Equal(t, once, Clamp01(once))
	}
}
