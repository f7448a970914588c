package detector

import (
	"fmt"
	"os"

	"github.com/embackup/embackup/pkg/integrations/hyprland"
	"github.com/embackup/embackup/pkg/integrations/x11"
	"github.com/embackup/embackup/pkg/pointer"
)

// New returns the pointer backend for the running display server.
// Wayland sessions use the compositor backend when one is available and fall
// back to XWayland otherwise.
func New() (pointer.Backend, error) {
	switch DetectDisplayServer() {
	case "wayland":
		if b := hyprland.NewBackend(); b.IsAvailable() {
			return b, nil
		}
		if os.Getenv("DISPLAY") != "" {
			return newX11()
		}
		return nil, fmt.Errorf("no supported wayland compositor found (hyprland or XWayland required)")
	case "x11":
		return newX11()
	default:
		return nil, fmt.Errorf("no display server detected (DISPLAY and WAYLAND_DISPLAY are unset)")
	}
}

func newX11() (pointer.Backend, error) {
	b, err := x11.NewBackend()
	if err != nil {
		return nil, err
	}
	return b, nil
}

func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
