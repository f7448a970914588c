package hyprland

import (
	"encoding/json"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/embackup/embackup/pkg/pointer"
	"github.com/pkg/errors"
)

// Backend implements pointer.Backend for the Hyprland compositor through hyprctl
type Backend struct {
	hasHyprctl bool
	run        func(args ...string) ([]byte, error)
}

// NewBackend creates a new Hyprland backend
func NewBackend() *Backend {
	b := &Backend{run: runHyprctl}
	b.hasHyprctl = commandExists("hyprctl")
	return b
}

func runHyprctl(args ...string) ([]byte, error) {
	return exec.Command("hyprctl", args...).Output()
}

// commandExists checks if a command is available in PATH
func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// IsAvailable checks if a Hyprland instance is reachable
func (b *Backend) IsAvailable() bool {
	return b.hasHyprctl && os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != ""
}

// GetDisplayServer returns "wayland"
func (b *Backend) GetDisplayServer() string {
	return "wayland"
}

// CurrentPosition runs `hyprctl cursorpos`, which prints "X, Y"
func (b *Backend) CurrentPosition() (pointer.Position, error) {
	out, err := b.run("cursorpos")
	if err != nil {
		return pointer.Invalid, errors.Wrap(err, "failed to execute hyprctl cursorpos")
	}
	return parseCursorPos(string(out))
}

func parseCursorPos(output string) (pointer.Position, error) {
	parts := strings.Split(strings.TrimSpace(output), ",")
	if len(parts) != 2 {
		return pointer.Invalid, errors.Errorf("unexpected cursorpos output %q", output)
	}

	x, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 32)
	if err != nil {
		return pointer.Invalid, errors.Wrap(err, "invalid x coordinate")
	}
	y, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 32)
	if err != nil {
		return pointer.Invalid, errors.Wrap(err, "invalid y coordinate")
	}

	return pointer.Position{X: int32(x), Y: int32(y)}, nil
}

type monitor struct {
	Name    string  `json:"name"`
	Width   uint32  `json:"width"`
	Height  uint32  `json:"height"`
	X       int32   `json:"x"`
	Y       int32   `json:"y"`
	Scale   float64 `json:"scale"`
	Focused bool    `json:"focused"`
}

// PrimaryScreenBounds returns the logical size of the monitor placed at the
// layout origin, or of the first monitor when none sits there
func (b *Backend) PrimaryScreenBounds() (pointer.ScreenBounds, error) {
	out, err := b.run("monitors", "-j")
	if err != nil {
		return pointer.ScreenBounds{}, errors.Wrap(err, "failed to execute hyprctl monitors")
	}
	return parseMonitors(out)
}

func parseMonitors(data []byte) (pointer.ScreenBounds, error) {
	var monitors []monitor
	if err := json.Unmarshal(data, &monitors); err != nil {
		return pointer.ScreenBounds{}, errors.Wrap(err, "failed to parse hyprctl monitors output")
	}
	if len(monitors) == 0 {
		return pointer.ScreenBounds{}, pointer.ErrScreenSize
	}

	primary := monitors[0]
	for _, m := range monitors {
		if m.X == 0 && m.Y == 0 {
			primary = m
			break
		}
	}

	scale := primary.Scale
	if scale <= 0 {
		scale = 1
	}

	bounds := pointer.ScreenBounds{
		Width:  uint32(math.Round(float64(primary.Width) / scale)),
		Height: uint32(math.Round(float64(primary.Height) / scale)),
	}
	if err := bounds.Validate(); err != nil {
		return pointer.ScreenBounds{}, err
	}
	return bounds, nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}
