package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultDir        = "logs"
	defaultBufferSize = 32 * 1024
)

type Options struct {
	// Name is the log file stem, e.g. "api" writes logs/api.log.
	Name string
	Dir  string
	// Level overrides LOG_LEVEL when set.
	Level   string
	Console io.Writer
}

// NewLogger builds the JSON logger used across the service. The returned
// writer must be closed on shutdown so queued lines reach the file.
func NewLogger(opts Options) (*logrus.Logger, *AsyncFileWriter, error) {
	logger := logrus.New()

	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})
	logger.SetLevel(ParseLevel(firstNonEmpty(opts.Level, os.Getenv("LOG_LEVEL"))))

	dir := firstNonEmpty(opts.Dir, DefaultDir)
	name := firstNonEmpty(opts.Name, "api")
	if strings.ContainsAny(name, `/\`) {
		return nil, nil, fmt.Errorf("invalid log name %q", name)
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	asyncWriter, err := NewAsyncFileWriter(filepath.Join(dir, name+".log"), defaultBufferSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize async log writer: %w", err)
	}

	logger.SetOutput(asyncWriter)
	logger.AddHook(NewConsoleHook(opts.Console))

	return logger, asyncWriter, nil
}

// ParseLevel falls back to info for empty or unknown values.
func ParseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
