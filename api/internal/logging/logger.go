// Package logging builds the process-wide zap logger.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production sugared logger at the given level. Unknown levels
// fall back to info.
func New(level string) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Must is New that panics, for process bootstrap.
func Must(level string) *zap.SugaredLogger {
	l, err := New(level)
	if err != nil {
		panic(err)
	}
	return l
}

// ExitCode logs the run error, if any, and flushes the logger. It returns
// the exit code for os.Exit, which skips deferred Syncs.
func ExitCode(log *zap.SugaredLogger, msg string, err error) int {
	code := 0
	if err != nil {
		log.Errorw(msg, "error", err)
		code = 1
	}
	_ = log.Sync()
	return code
}
