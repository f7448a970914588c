package pointer

import (
	"testing"

	"github.com/pkg/errors"
)

type MockBackend struct {
	position      Position
	positionErr   error
	bounds        ScreenBounds
	boundsErr     error
	isAvailable   bool
	displayServer string
	closeError    error
}

func (m *MockBackend) CurrentPosition() (Position, error) {
	return m.position, m.positionErr
}

func (m *MockBackend) PrimaryScreenBounds() (ScreenBounds, error) {
	return m.bounds, m.boundsErr
}

func (m *MockBackend) IsAvailable() bool {
	return m.isAvailable
}

func (m *MockBackend) GetDisplayServer() string {
	return m.displayServer
}

func (m *MockBackend) Close() error {
	return m.closeError
}

func TestMockBackend(t *testing.T) {
	var _ Backend = (*MockBackend)(nil)

	mock := &MockBackend{
		position:      Position{X: 10, Y: 20},
		bounds:        ScreenBounds{Width: 1920, Height: 1080},
		isAvailable:   true,
		displayServer: "x11",
	}

	pos, err := mock.CurrentPosition()
	if err != nil {
		t.Errorf("CurrentPosition() error: %v", err)
	}
	if pos != (Position{X: 10, Y: 20}) {
		t.Errorf("CurrentPosition() = %v, want (10,20)", pos)
	}

	bounds, err := mock.PrimaryScreenBounds()
	if err != nil {
		t.Errorf("PrimaryScreenBounds() error: %v", err)
	}
	if err := bounds.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}

	if mock.GetDisplayServer() != "x11" {
		t.Errorf("GetDisplayServer() = %s, want x11", mock.GetDisplayServer())
	}
}

func TestScreenBoundsValidate(t *testing.T) {
	tests := []struct {
		name    string
		bounds  ScreenBounds
		wantErr bool
	}{
		{name: "Full HD", bounds: ScreenBounds{Width: 1920, Height: 1080}, wantErr: false},
		{name: "Single pixel", bounds: ScreenBounds{Width: 1, Height: 1}, wantErr: false},
		{name: "Zero width", bounds: ScreenBounds{Width: 0, Height: 1080}, wantErr: true},
		{name: "Zero height", bounds: ScreenBounds{Width: 1920, Height: 0}, wantErr: true},
		{name: "Zero both", bounds: ScreenBounds{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bounds.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrScreenSize) {
				t.Errorf("Validate() error = %v, want ErrScreenSize", err)
			}
		})
	}
}

func TestPositionEquality(t *testing.T) {
	if Invalid == Origin {
		t.Error("Invalid must differ from Origin")
	}
	if (Position{}) != Origin {
		t.Error("zero Position should equal Origin")
	}
	if got := (Position{X: 3, Y: 1079}).String(); got != "(3,1079)" {
		t.Errorf("String() = %s, want (3,1079)", got)
	}
}
