// Package logger builds the zap logger shared across the pipeline.
package logger

import "go.uber.org/zap"

// New returns a production logger, or a human-readable development logger
// when debug mode is on. Falls back to a no-op logger if zap cannot build
// one, so callers never receive nil.
func New(debug bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
