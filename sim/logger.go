package sim

import (
	"modellbahn-go/x/logx"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a zap SugaredLogger to logx.Logger. The key/value
// convention is the same, so the pairs pass straight through.
type ZapLogger struct {
	S *zap.SugaredLogger
}

var _ logx.Logger = ZapLogger{}

func (l ZapLogger) Info(msg string, kv ...any)  { l.S.Infow(msg, kv...) }
func (l ZapLogger) Warn(msg string, kv ...any)  { l.S.Warnw(msg, kv...) }
func (l ZapLogger) Error(msg string, kv ...any) { l.S.Errorw(msg, kv...) }

// NewLogger builds a development zap logger at the given level.
func NewLogger(level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}
