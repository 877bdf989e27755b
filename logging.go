package fq4

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a logger configured with the log level and file from
// config. The caller is responsible for closing the log file, if any, which
// is returned as the io.Closer.
func NewLogger(config *Config) (*logrus.Logger, io.Closer, error) {
	var w io.Writer = os.Stderr
	var c io.Closer = nopCloser{}

	if config.LogFilePath != "" {
		f, err := os.OpenFile(config.LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", config.LogFilePath, err)
		}
		w, c = f, f
	}

	logLvl, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		c.Close()
		return nil, nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	return newLogger(w, logLvl), c, nil
}

func newLogger(w io.Writer, level logrus.Level) *logrus.Logger {
	return &logrus.Logger{
		Out: w,
		Formatter: &logrus.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
			DisableSorting:  true,
		},
		Hooks: make(logrus.LevelHooks),
		Level: level,
	}
}

type nopCloser struct{}

func (nopCloser) Close() error {
	return nil
}
