package gesture

import (
	"testing"

	"github.com/embackup/embackup/pkg/pointer"
	"github.com/stretchr/testify/assert"
)

var fullHD = pointer.ScreenBounds{Width: 1920, Height: 1080}

func pos(x, y int32) pointer.Position {
	return pointer.Position{X: x, Y: y}
}

func TestTouchesCorner(t *testing.T) {
	tests := []struct {
		name      string
		p         pointer.Position
		corner    Corner
		tolerance uint32
		want      bool
	}{
		{"origin exact", pos(0, 0), TopLeft, 5, true},
		{"origin ignores tolerance", pos(1, 0), TopLeft, 5, false},
		{"lower left inside", pos(3, 1079), LowerLeft, 5, true},
		{"lower left edge x", pos(5, 1080), LowerLeft, 5, true},
		{"lower left outside x", pos(6, 1080), LowerLeft, 5, false},
		{"lower left outside y", pos(0, 1074), LowerLeft, 5, false},
		{"lower right min boundary", pos(1915, 1075), LowerRight, 5, true},
		{"lower right max boundary", pos(1920, 1080), LowerRight, 5, true},
		{"lower right just outside x", pos(1914, 1080), LowerRight, 5, false},
		{"lower right just outside y", pos(1920, 1074), LowerRight, 5, false},
		{"lower right beyond screen", pos(1921, 1080), LowerRight, 5, false},
		{"upper right inside", pos(1918, 2), UpperRight, 5, true},
		{"upper right outside y", pos(1918, 6), UpperRight, 5, false},
		{"zero tolerance exact", pos(1920, 0), UpperRight, 0, true},
		{"zero tolerance off by one", pos(1919, 0), UpperRight, 0, false},
		{"invalid sample", pointer.Invalid, LowerLeft, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TouchesCorner(tt.p, tt.corner, fullHD, tt.tolerance))
		})
	}
}

func TestTouchesCornerLargeTolerance(t *testing.T) {
	small := pointer.ScreenBounds{Width: 10, Height: 10}
	assert.True(t, TouchesCorner(pos(0, 10), LowerRight, small, 50))
	assert.True(t, TouchesCorner(pos(10, 0), LowerLeft, small, 50))
}

func TestTouchesCommandCorners(t *testing.T) {
	history := []pointer.Position{pos(0, 0), pos(1917, 1078), pos(3, 1079), pos(1918, 2)}
	assert.True(t, touchesCommandCorners(history, fullHD, 5))

	// order does not matter
	reordered := []pointer.Position{pos(0, 0), pos(1918, 2), pos(1917, 1078), pos(3, 1079)}
	assert.True(t, touchesCommandCorners(reordered, fullHD, 5))

	missing := []pointer.Position{pos(0, 0), pos(1917, 1078), pos(3, 1079), pos(900, 2)}
	assert.False(t, touchesCommandCorners(missing, fullHD, 5))
}

func TestCornerString(t *testing.T) {
	assert.Equal(t, "top-left", TopLeft.String())
	assert.Equal(t, "lower-right", LowerRight.String())
	assert.Equal(t, "unknown", Corner(42).String())
}
