package cpu

import (
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/sirupsen/logrus"
)

// Source reports the CPU usage of one process
type Source interface {
	// Percent returns the usage since the previous call, where 100 is one full core
	Percent() (float64, error)
	// Times returns the cumulative user plus system CPU time
	Times() (time.Duration, error)
}

type processSource struct {
	proc *process.Process
}

// NewProcessSource returns a Source for the running process
func NewProcessSource() (Source, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open current process")
	}
	return &processSource{proc: proc}, nil
}

func (s *processSource) Percent() (float64, error) {
	return s.proc.Percent(0)
}

func (s *processSource) Times() (time.Duration, error) {
	times, err := s.proc.Times()
	if err != nil {
		return 0, err
	}
	return time.Duration((times.User + times.System) * float64(time.Second)), nil
}

// Sampler writes the CPU load of the process to the cpu consumption log
type Sampler struct {
	mu     sync.Mutex
	source Source
	cores  int
	log    logrus.Ext1FieldLogger
}

func NewSampler(source Source, log logrus.Ext1FieldLogger) *Sampler {
	return &Sampler{source: source, cores: runtime.NumCPU(), log: log}
}

// Load returns the usage since the previous call normalized over all cores,
// in the range [0, 1]
func (s *Sampler) Load() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	percent, err := s.source.Percent()
	if err != nil {
		return 0, err
	}
	cores := s.cores
	if cores < 1 {
		cores = 1
	}
	load := percent / 100 / float64(cores)
	if load < 0 {
		return 0, nil
	}
	if load > 1 {
		return 1, nil
	}
	return load, nil
}

// LogOnce records a single sample. Failures are logged and otherwise ignored.
func (s *Sampler) LogOnce() {
	load, err := s.Load()
	if err != nil {
		s.log.WithError(err).Warn("Failed to sample CPU usage")
		return
	}
	s.log.Tracef("CPU Usage: %f", load)
}

// Clock adapts a Source to a cumulative CPU time function
func Clock(source Source) func() (time.Duration, error) {
	return source.Times
}

// ProcessCPUTime returns the cumulative CPU time of the running process
func ProcessCPUTime() (time.Duration, error) {
	source, err := NewProcessSource()
	if err != nil {
		return 0, err
	}
	return source.Times()
}
