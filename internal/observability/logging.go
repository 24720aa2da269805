package observability

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/case-workflow/internal/config"
)

// NewLogger builds the service logger. Every entry carries the service
// name, version and environment so workflow decisions can be correlated
// across instances.
func NewLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
	zapCfg, err := loggerConfig(cfg)
	if err != nil {
		return nil, err
	}
	return zapCfg.Build()
}

func loggerConfig(cfg config.LoggerConfig) (zap.Config, error) {
	level := zapcore.InfoLevel
	if err := level.Set(strings.ToLower(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	encoding := strings.ToLower(cfg.Encoding)
	switch encoding {
	case "":
		encoding = "json"
	case "json", "console":
	default:
		return zap.Config{}, fmt.Errorf("unsupported log encoding %q", cfg.Encoding)
	}

	encoder := zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		TimeKey:        "ts",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
	if encoding == "console" {
		encoder.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	fields := map[string]any{}
	if cfg.Service != "" {
		fields["service"] = cfg.Service
	}
	if cfg.Version != "" {
		fields["version"] = cfg.Version
	}
	if cfg.Env != "" {
		fields["env"] = cfg.Env
	}

	zapCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       level == zapcore.DebugLevel,
		Encoding:          encoding,
		EncoderConfig:     encoder,
		DisableStacktrace: level != zapcore.DebugLevel,
		InitialFields:     fields,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}
	// Dispatcher retries can log in bursts; sample outside debug.
	if level != zapcore.DebugLevel {
		zapCfg.Sampling = &zap.SamplingConfig{Initial: 100, Thereafter: 100}
	}
	return zapCfg, nil
}
