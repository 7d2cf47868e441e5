package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rhyrak/term-scheduler/pkg/config"
)

func New(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Env == config.EnvProduction {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Log.Format {
	case "console":
		zapCfg.Encoding = "console"
	default:
		zapCfg.Encoding = "json"
	}

	if cfg.Log.Level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build()
}

// Stage logs the start and end of a named pipeline stage and returns a func to defer.
func Stage(l *zap.Logger, stage string, fields ...zap.Field) func(err *error) {
	start := time.Now()
	l.Info("stage_started", append([]zap.Field{zap.String("stage", stage)}, fields...)...)
	return func(err *error) {
		done := []zap.Field{zap.String("stage", stage), zap.Duration("elapsed", time.Since(start))}
		if err != nil && *err != nil {
			l.Error("stage_failed", append(done, zap.Error(*err))...)
			return
		}
		l.Info("stage_finished", done...)
	}
}

func GinMiddleware(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if runID := c.GetString("run_id"); runID != "" {
			fields = append(fields, zap.String("run_id", runID))
		}

		l.Info("http_request", fields...)
	}
}
