package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	GeneralFile = "emergency_backup.log"
	CPUFile     = "cpu_consumption.log"

	maxSizeMB  = 1
	maxBackups = 2
)

// Options configures the log channels
type Options struct {
	// Dir holds the rolling log files. Empty disables file output.
	Dir string
	// Debug lowers the general channel to debug level
	Debug bool
	// Console mirrors the general channel to this writer, usually stderr
	Console io.Writer
}

// Loggers holds the two log channels of the program
type Loggers struct {
	General *logrus.Logger
	CPU     *logrus.Logger

	closers []io.Closer
}

// New builds the general and cpu_consumption loggers
func New(opts Options) (*Loggers, error) {
	l := &Loggers{
		General: logrus.New(),
		CPU:     logrus.New(),
	}

	formatter := &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"}
	l.General.SetFormatter(formatter)
	l.CPU.SetFormatter(formatter)

	l.General.SetLevel(logrus.InfoLevel)
	if opts.Debug {
		l.General.SetLevel(logrus.DebugLevel)
	}
	l.CPU.SetLevel(logrus.TraceLevel)

	var general []io.Writer
	if opts.Console != nil {
		general = append(general, opts.Console)
	}
	l.CPU.SetOutput(io.Discard)

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "failed to create log directory %s", opts.Dir)
		}
		generalFile := rolling(filepath.Join(opts.Dir, GeneralFile))
		cpuFile := rolling(filepath.Join(opts.Dir, CPUFile))
		l.closers = append(l.closers, generalFile, cpuFile)

		general = append(general, generalFile)
		l.CPU.SetOutput(cpuFile)
	}

	switch len(general) {
	case 0:
		l.General.SetOutput(io.Discard)
	case 1:
		l.General.SetOutput(general[0])
	default:
		l.General.SetOutput(io.MultiWriter(general...))
	}

	return l, nil
}

func rolling(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}
}

// Close flushes and closes the log files
func (l *Loggers) Close() error {
	var first error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
