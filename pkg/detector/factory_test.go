package detector

import (
	"testing"
)

func TestNew(t *testing.T) {
	backend, err := New()
	if err != nil {
		t.Logf("New() returned error (may be expected): %v", err)
		return
	}

	if backend == nil {
		t.Fatal("New() returned nil backend without error")
	}

	displayServer := backend.GetDisplayServer()
	t.Logf("Detected display server: %s", displayServer)

	if displayServer != "x11" && displayServer != "wayland" {
		t.Errorf("GetDisplayServer() = %s, want x11 or wayland", displayServer)
	}

	bounds, err := backend.PrimaryScreenBounds()
	if err != nil {
		t.Logf("PrimaryScreenBounds() error: %v", err)
	} else {
		t.Logf("Primary screen: %s", bounds)
	}

	if err := backend.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestNewWithoutDisplay(t *testing.T) {
	t.Setenv("XDG_SESSION_TYPE", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	t.Setenv("DISPLAY", "")

	backend, err := New()
	if err == nil {
		t.Errorf("New() = %v, want error without any display", backend)
	}
}

func TestDetectDisplayServer(t *testing.T) {
	tests := []struct {
		name             string
		sessionType      string
		waylandDisplay   string
		x11Display       string
		expectedContains string
	}{
		{
			name:             "Wayland session",
			sessionType:      "wayland",
			waylandDisplay:   "wayland-0",
			x11Display:       "",
			expectedContains: "wayland",
		},
		{
			name:             "X11 session",
			sessionType:      "x11",
			waylandDisplay:   "",
			x11Display:       ":0",
			expectedContains: "x11",
		},
		{
			name:             "Unknown session",
			sessionType:      "",
			waylandDisplay:   "",
			x11Display:       "",
			expectedContains: "unknown",
		},
		{
			name:             "Wayland display set",
			sessionType:      "",
			waylandDisplay:   "wayland-1",
			x11Display:       "",
			expectedContains: "wayland",
		},
		{
			name:             "X11 display set",
			sessionType:      "",
			waylandDisplay:   "",
			x11Display:       ":1",
			expectedContains: "x11",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_SESSION_TYPE", tt.sessionType)
			t.Setenv("WAYLAND_DISPLAY", tt.waylandDisplay)
			t.Setenv("DISPLAY", tt.x11Display)

			result := DetectDisplayServer()
			if result != tt.expectedContains {
				t.Errorf("DetectDisplayServer() = %s, want %s", result, tt.expectedContains)
			}
		})
	}
}
