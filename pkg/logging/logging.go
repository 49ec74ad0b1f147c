// Package logging defines the level-filtered logger interface consumed by
// the PCTX core and a zap-backed default implementation.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the sink the core writes structured log lines to. Production
// deployments are expected to supply their own implementation (wrapping
// whatever logging stack the surrounding service uses); PCTX never assumes
// a global logger.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
}

type zapLogger struct {
	l *zap.Logger
}

// New builds the default Logger, development-formatted when dev is true
// (console encoder, debug level) and production-formatted otherwise (JSON,
// info level).
func New(dev bool) Logger {
	var cfg zap.Config
	if dev {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		// Logging must never be the reason the gateway fails to start.
		l = zap.NewNop()
		os.Stderr.WriteString("logging: falling back to no-op logger: " + err.Error() + "\n")
	}
	return &zapLogger{l: l}
}

// Nop returns a logger that discards everything, useful in tests.
func Nop() Logger { return &zapLogger{l: zap.NewNop()} }

func (z *zapLogger) Debug(msg string, fields ...zap.Field) { z.l.Debug(msg, fields...) }
func (z *zapLogger) Info(msg string, fields ...zap.Field)  { z.l.Info(msg, fields...) }
func (z *zapLogger) Warn(msg string, fields ...zap.Field)  { z.l.Warn(msg, fields...) }
func (z *zapLogger) Error(msg string, fields ...zap.Field) { z.l.Error(msg, fields...) }

func (z *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{l: z.l.With(fields...)}
}
