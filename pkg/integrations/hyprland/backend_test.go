package hyprland

import (
	"testing"

	"github.com/embackup/embackup/pkg/pointer"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendImplementsInterface(t *testing.T) {
	var _ pointer.Backend = (*Backend)(nil)
}

func TestGetDisplayServer(t *testing.T) {
	assert.Equal(t, "wayland", NewBackend().GetDisplayServer())
}

func TestParseCursorPos(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    pointer.Position
		wantErr bool
	}{
		{name: "origin", output: "0, 0\n", want: pointer.Position{X: 0, Y: 0}},
		{name: "lower right", output: "1919, 1079", want: pointer.Position{X: 1919, Y: 1079}},
		{name: "no space", output: "12,34", want: pointer.Position{X: 12, Y: 34}},
		{name: "garbage", output: "no cursor", wantErr: true},
		{name: "bad number", output: "a, 3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCursorPos(tt.output)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, pointer.Invalid, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMonitors(t *testing.T) {
	data := []byte(`[
		{"name": "DP-2", "width": 2560, "height": 1440, "x": 1920, "y": 0, "scale": 1.0, "focused": true},
		{"name": "eDP-1", "width": 3840, "height": 2160, "x": 0, "y": 0, "scale": 2.0, "focused": false}
	]`)

	bounds, err := parseMonitors(data)
	require.NoError(t, err)
	assert.Equal(t, pointer.ScreenBounds{Width: 1920, Height: 1080}, bounds)
}

func TestParseMonitorsEmpty(t *testing.T) {
	_, err := parseMonitors([]byte(`[]`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, pointer.ErrScreenSize))
}

func TestBackendUsesRunner(t *testing.T) {
	backend := &Backend{
		hasHyprctl: true,
		run: func(args ...string) ([]byte, error) {
			if args[0] == "cursorpos" {
				return []byte("5, 7"), nil
			}
			return []byte(`[{"name": "HDMI-A-1", "width": 1280, "height": 720, "x": 0, "y": 0, "scale": 1}]`), nil
		},
	}

	pos, err := backend.CurrentPosition()
	require.NoError(t, err)
	assert.Equal(t, pointer.Position{X: 5, Y: 7}, pos)

	bounds, err := backend.PrimaryScreenBounds()
	require.NoError(t, err)
	assert.Equal(t, pointer.ScreenBounds{Width: 1280, Height: 720}, bounds)
}

func TestBackendRunnerFailure(t *testing.T) {
	backend := &Backend{
		run: func(args ...string) ([]byte, error) {
			return nil, errors.New("hyprctl: not running")
		},
	}

	pos, err := backend.CurrentPosition()
	assert.Error(t, err)
	assert.Equal(t, pointer.Invalid, pos)
}
