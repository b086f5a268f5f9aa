package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the process-wide zap logger. Production config (JSON,
// info level) everywhere except local, which gets the console encoder
// at debug level so merge drop-reasons are visible during development.
func New(env string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if env == "local" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
