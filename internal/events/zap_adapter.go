package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"go.uber.org/zap"
)

// zapAdapter 将 watermill 日志接到 zap
type zapAdapter struct {
	logger *zap.SugaredLogger
}

func NewZapAdapter(logger *zap.SugaredLogger) watermill.LoggerAdapter {
	return &zapAdapter{logger: logger.Named("watermill")}
}

func toKeysAndValues(fields watermill.LogFields) []interface{} {
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return kv
}

func (a *zapAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.logger.Errorw(msg, append(toKeysAndValues(fields), "error", err)...)
}

func (a *zapAdapter) Info(msg string, fields watermill.LogFields) {
	a.logger.Infow(msg, toKeysAndValues(fields)...)
}

func (a *zapAdapter) Debug(msg string, fields watermill.LogFields) {
	a.logger.Debugw(msg, toKeysAndValues(fields)...)
}

// Trace zap 没有 trace 级别，按 debug 输出
func (a *zapAdapter) Trace(msg string, fields watermill.LogFields) {
	a.logger.Debugw(msg, toKeysAndValues(fields)...)
}

func (a *zapAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &zapAdapter{logger: a.logger.With(toKeysAndValues(fields)...)}
}
