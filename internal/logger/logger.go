package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a new structured logger writing to stdout
func New(env string) (*zap.Logger, error) {
	return stdoutConfig(env).Build(options()...)
}

// NewFileLogger creates a logger that also appends JSON lines to path. Each
// batch job gets one as its own sink. An empty path means stdout only.
func NewFileLogger(env, path string) (*zap.Logger, error) {
	if path == "" {
		return New(env)
	}

	console, err := New(env)
	if err != nil {
		return nil, err
	}

	sink, _, err := zap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	// Files always get JSON without colour codes, whatever the console looks like
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		sink,
		levelFor(env),
	)

	return zap.New(zapcore.NewTee(console.Core(), fileCore), options()...), nil
}

func stdoutConfig(env string) zap.Config {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		config.Encoding = "json"
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	// stdout for container compatibility
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}
	return config
}

func levelFor(env string) zapcore.Level {
	if env == "production" {
		return zapcore.InfoLevel
	}
	return zapcore.DebugLevel
}

func options() []zap.Option {
	return []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	}
}
