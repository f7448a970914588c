package gesture

import "github.com/embackup/embackup/pkg/pointer"

// Corner names one of the four screen corners
type Corner int

const (
	TopLeft Corner = iota
	LowerLeft
	LowerRight
	UpperRight
)

func (c Corner) String() string {
	switch c {
	case TopLeft:
		return "top-left"
	case LowerLeft:
		return "lower-left"
	case LowerRight:
		return "lower-right"
	case UpperRight:
		return "upper-right"
	default:
		return "unknown"
	}
}

// TouchesCorner reports whether p lies within tolerance pixels of corner,
// boundaries inclusive on both ends. The top-left corner only matches the
// exact origin.
func TouchesCorner(p pointer.Position, corner Corner, bounds pointer.ScreenBounds, tolerance uint32) bool {
	x, y := int64(p.X), int64(p.Y)
	w, h, t := int64(bounds.Width), int64(bounds.Height), int64(tolerance)

	nearLeft := x >= 0 && x <= t
	nearRight := x >= w-t && x <= w
	nearTop := y >= 0 && y <= t
	nearBottom := y >= h-t && y <= h

	switch corner {
	case TopLeft:
		return p == pointer.Origin
	case LowerLeft:
		return nearLeft && nearBottom
	case LowerRight:
		return nearRight && nearBottom
	case UpperRight:
		return nearRight && nearTop
	default:
		return false
	}
}

// HistoryTouchesCorner reports whether any position in history touches corner
func HistoryTouchesCorner(history []pointer.Position, corner Corner, bounds pointer.ScreenBounds, tolerance uint32) bool {
	for _, p := range history {
		if TouchesCorner(p, corner, bounds, tolerance) {
			return true
		}
	}
	return false
}

// commandCorners are the corners that must all appear in the history once the
// origin has been touched
var commandCorners = []Corner{LowerLeft, LowerRight, UpperRight}

func touchesCommandCorners(history []pointer.Position, bounds pointer.ScreenBounds, tolerance uint32) bool {
	for _, c := range commandCorners {
		if !HistoryTouchesCorner(history, c, bounds, tolerance) {
			return false
		}
	}
	return true
}
