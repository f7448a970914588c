package cpu

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	percent float64
	err     error
	times   time.Duration
}

func (f *fakeSource) Percent() (float64, error) {
	return f.percent, f.err
}

func (f *fakeSource) Times() (time.Duration, error) {
	return f.times, f.err
}

func TestLoadNormalization(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		cores   int
		want    float64
	}{
		{"idle", 0, 4, 0},
		{"one core of four", 100, 4, 0.25},
		{"half of two", 100, 2, 0.5},
		{"above total clamps", 900, 4, 1},
		{"negative clamps", -5, 4, 0},
		{"zero cores treated as one", 50, 0, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSampler(&fakeSource{percent: tt.percent}, logrus.New())
			s.cores = tt.cores
			got, err := s.Load()
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestLogOnce(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.TraceLevel)

	s := NewSampler(&fakeSource{percent: 50}, logger)
	s.cores = 2
	s.LogOnce()

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.TraceLevel, hook.LastEntry().Level)
	assert.Equal(t, "CPU Usage: 0.250000", hook.LastEntry().Message)
}

func TestLogOnceThroughEntry(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.TraceLevel)

	s := NewSampler(&fakeSource{percent: 100}, logger.WithField("channel", "cpu"))
	s.cores = 4
	s.LogOnce()

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.TraceLevel, hook.LastEntry().Level)
	assert.Equal(t, "CPU Usage: 0.250000", hook.LastEntry().Message)
	assert.Equal(t, "cpu", hook.LastEntry().Data["channel"])
}

func TestLogOnceError(t *testing.T) {
	logger, hook := test.NewNullLogger()

	s := NewSampler(&fakeSource{err: errors.New("no proc")}, logger)
	s.LogOnce()

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestProcessSource(t *testing.T) {
	source, err := NewProcessSource()
	require.NoError(t, err)

	d, err := Clock(source)()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, d, time.Duration(0))

	_, err = source.Percent()
	assert.NoError(t, err)
}
