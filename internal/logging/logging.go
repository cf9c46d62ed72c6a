// Package logging builds the zap loggers used across the client.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Options selects where log lines go. Console is the interactive stream
// (stderr for commands, nil for the respondent UI which owns the screen).
type Options struct {
	Level   string
	File    string
	Console *os.File
}

// New returns a logger and a close function for the log file. When the
// console is a terminal it gets the human-readable console encoder,
// otherwise JSON lines.
func New(opts Options) (*zap.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var cores []zapcore.Core
	closeFn := func() error { return nil }

	if opts.Console != nil {
		encoder := zapcore.NewJSONEncoder(encoderCfg)
		if term.IsTerminal(int(opts.Console.Fd())) {
			encoder = zapcore.NewConsoleEncoder(encoderCfg)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(opts.Console), level))
	}

	if opts.File != "" {
		logFile, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(logFile), level))
		closeFn = logFile.Close
	}

	if len(cores) == 0 {
		return zap.NewNop(), closeFn, nil
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), closeFn, nil
}

// NewWriter returns a JSON logger writing to w. Used by tests.
func NewWriter(w io.Writer, level zapcore.Level) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zap.New(zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(w), level))
}
