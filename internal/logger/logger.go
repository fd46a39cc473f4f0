package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a logger for the given environment. Production builds emit
// JSON; anything else gets a colored console encoder. Output goes to stderr
// so report artifacts on stdout stay clean.
func New(environment string) (*zap.Logger, error) {
	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.OutputPaths = []string{"stderr"}
	config.EncoderConfig.CallerKey = "caller"
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	log, err := config.Build(zap.AddCaller())
	if err != nil {
		return nil, err
	}
	return log.Named("analyzer"), nil
}
