package x11

import (
	"os"
	"sync"

	"github.com/embackup/embackup/pkg/pointer"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"
)

// Backend implements pointer.Backend on top of an X11 connection
type Backend struct {
	mu       sync.Mutex
	conn     *xgb.Conn
	root     xproto.Window
	width    uint16
	height   uint16
	hasRandr bool
}

// NewBackend connects to the X server named by $DISPLAY
func NewBackend() (*Backend, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to X server")
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	b := &Backend{
		conn:   conn,
		root:   screen.Root,
		width:  screen.WidthInPixels,
		height: screen.HeightInPixels,
	}

	// RandR is optional; without it the whole root window is the primary screen
	if err := randr.Init(conn); err == nil {
		b.hasRandr = true
	}

	return b, nil
}

// IsAvailable checks if an X display is configured and connected
func (b *Backend) IsAvailable() bool {
	return os.Getenv("DISPLAY") != "" && b.conn != nil
}

// GetDisplayServer returns "x11"
func (b *Backend) GetDisplayServer() string {
	return "x11"
}

// CurrentPosition queries the pointer position relative to the root window
func (b *Backend) CurrentPosition() (pointer.Position, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return pointer.Invalid, errors.New("X connection is closed")
	}

	reply, err := xproto.QueryPointer(b.conn, b.root).Reply()
	if err != nil {
		return pointer.Invalid, errors.Wrap(err, "failed to query pointer")
	}
	if !reply.SameScreen {
		return pointer.Invalid, errors.New("pointer is not on the default screen")
	}

	return pointer.Position{X: int32(reply.RootX), Y: int32(reply.RootY)}, nil
}

// PrimaryScreenBounds returns the size of the RandR primary output, falling
// back to the default screen size when RandR has no primary output
func (b *Backend) PrimaryScreenBounds() (pointer.ScreenBounds, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.hasRandr {
		if bounds, ok := b.primaryOutputBounds(); ok {
			return bounds, nil
		}
	}

	bounds := pointer.ScreenBounds{Width: uint32(b.width), Height: uint32(b.height)}
	if err := bounds.Validate(); err != nil {
		return pointer.ScreenBounds{}, err
	}
	return bounds, nil
}

func (b *Backend) primaryOutputBounds() (pointer.ScreenBounds, bool) {
	primary, err := randr.GetOutputPrimary(b.conn, b.root).Reply()
	if err != nil || primary.Output == 0 {
		return pointer.ScreenBounds{}, false
	}

	output, err := randr.GetOutputInfo(b.conn, primary.Output, xproto.TimeCurrentTime).Reply()
	if err != nil || output.Crtc == 0 {
		return pointer.ScreenBounds{}, false
	}

	crtc, err := randr.GetCrtcInfo(b.conn, output.Crtc, xproto.TimeCurrentTime).Reply()
	if err != nil || crtc.Width == 0 || crtc.Height == 0 {
		return pointer.ScreenBounds{}, false
	}

	return pointer.ScreenBounds{Width: uint32(crtc.Width), Height: uint32(crtc.Height)}, true
}

// Close releases the X connection
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
	return nil
}
