package pointer

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrScreenSize is returned when the primary display cannot be found or reports a zero size
var ErrScreenSize = errors.New("primary display could not be found")

// Position is a single absolute pointer sample
type Position struct {
	X int32
	Y int32
}

// Invalid is the sample used when the pointer could not be read. It never matches a corner.
var Invalid = Position{X: -1, Y: -1}

// Origin is the top-left corner of the primary screen
var Origin = Position{X: 0, Y: 0}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// ScreenBounds is the size of the primary display in pixels
type ScreenBounds struct {
	Width  uint32
	Height uint32
}

// Validate checks that both dimensions are positive
func (b ScreenBounds) Validate() error {
	if b.Width == 0 || b.Height == 0 {
		return errors.Wrapf(ErrScreenSize, "invalid bounds %dx%d", b.Width, b.Height)
	}
	return nil
}

func (b ScreenBounds) String() string {
	return fmt.Sprintf("%dx%d", b.Width, b.Height)
}

// Sampler reads the current absolute pointer coordinates
type Sampler interface {
	// CurrentPosition returns the pointer position on the root window
	CurrentPosition() (Position, error)
}

// Display answers questions about the attached screens
type Display interface {
	// PrimaryScreenBounds returns the size of the primary screen
	PrimaryScreenBounds() (ScreenBounds, error)
}

// Backend is implemented by every display-server integration
type Backend interface {
	Sampler
	Display

	// IsAvailable checks if this backend can run on the current system
	IsAvailable() bool

	// GetDisplayServer returns the display server type ("x11" or "wayland")
	GetDisplayServer() string

	// Close cleans up any resources used by the backend
	Close() error
}
