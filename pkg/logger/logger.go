package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// FilenameFormat is the daily log file pattern, formatted with the date.
const FilenameFormat = "washgate-%s.log"

// Logging bundles the application logger with the sinks it writes to so that
// other writers (gin) can share them.
type Logging struct {
	Logger zerolog.Logger
	Writer io.Writer

	rotating *DailyRotatingWriter
}

// SetupLogging configures console plus daily rotating file logging under logDir.
// With quiet set nothing is written to stdout, which belongs to the operator
// console.
func SetupLogging(logDir, level string, quiet bool) (*Logging, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	fileWriter, err := NewDailyRotatingWriter(logDir, FilenameFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to create log writer: %w", err)
	}

	var (
		multi  io.Writer = fileWriter
		shared io.Writer = fileWriter
	)
	if !quiet {
		console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		multi = zerolog.MultiLevelWriter(console, fileWriter)
		shared = io.MultiWriter(os.Stdout, fileWriter)
	}

	l := zerolog.New(multi).With().Timestamp().Logger().Level(ParseLevel(level))
	l.Info().
		Str("file", filepath.Join(logDir, fmt.Sprintf(FilenameFormat, fileWriter.CurrentDate))).
		Msg("logging initialized")

	return &Logging{
		Logger:   l,
		Writer:   shared,
		rotating: fileWriter,
	}, nil
}

// SetupFallbackLogger creates a console-only logger when file logging fails.
func SetupFallbackLogger() *Logging {
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	l.Warn().Msg("failed to set up file logging, using console logging only")
	return &Logging{Logger: l, Writer: os.Stdout}
}

// ParseLevel maps a textual level to zerolog, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Close flushes and closes the rotating log file, if any.
func (l *Logging) Close() error {
	if l.rotating != nil {
		return l.rotating.Close()
	}
	return nil
}
