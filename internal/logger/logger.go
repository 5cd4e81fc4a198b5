// Package logger builds the application's zap logger.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a development logger when debug is set. Otherwise it returns a
// console logger that only reports warnings and errors. Entries go to outputs
// (zap sink paths), or to stderr when none are given.
func New(debug bool, outputs ...string) (*zap.Logger, error) {
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.DisableStacktrace = true
	}
	cfg.OutputPaths = outputs
	cfg.ErrorOutputPaths = outputs
	return cfg.Build()
}
