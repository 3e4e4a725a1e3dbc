package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec2_Basics(t *testing.T) {
	v := V(3, 4)
	assert.Equal(t, 5.0, v.Length())
	assert.Equal(t, 5.0, V(0, 0).Distance(v))
	assert.Equal(t, V(4, 6), v.Add(V(1, 2)))
	assert.Equal(t, V(2, 2), v.Sub(V(1, 2)))
	assert.Equal(t, V(6, 8), v.Scale(2))
}

func TestVec2_DotCross(t *testing.T) {
	a := V(1, 0)
	b := V(0, 1)
	assert.Equal(t, 0.0, a.Dot(b))
	assert.Equal(t, 1.0, a.Cross(b))
	assert.Equal(t, -1.0, b.Cross(a))
}

func TestVec2_ChebyshevDistance(t *testing.T) {
	assert.Equal(t, 5.0, V(0, 0).ChebyshevDistance(V(3, 5)))
	assert.Equal(t, 3.0, V(0, 0).ChebyshevDistance(V(-3, 2)))
}

func TestLineEquation_SignedDistance(t *testing.T) {
	// Horizontal line y = 0: points above have positive or negative sign,
	// but magnitude must be the perpendicular distance.
	d, ok := SignedDistanceToLine(V(50, 7), V(0, 0), V(100, 0))
	assert.True(t, ok)
	assert.InDelta(t, 7, math.Abs(d), 1e-12)

	// 45 degree line through origin.
	d, ok = SignedDistanceToLine(V(1, 0), V(0, 0), V(10, 10))
	assert.True(t, ok)
	assert.InDelta(t, math.Sqrt2/2, math.Abs(d), 1e-12)
}

func TestLineEquation_Degenerate(t *testing.T) {
	_, _, _, ok := LineEquation(V(1, 1), V(1, 1))
	assert.False(t, ok, "zero-length segment has no line equation")

	_, ok = SignedDistanceToLine(V(0, 0), V(2, 3), V(2, 3))
	assert.False(t, ok)
}

func TestAngleConversions(t *testing.T) {
	assert.InDelta(t, 180.0, Degrees(math.Pi), 1e-12)
	assert.InDelta(t, math.Pi/2, Radians(90), 1e-12)
	assert.InDelta(t, 90.0, Degrees(V(0, 3).Angle()), 1e-12)
}
