package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Init installs the global zap logger. Production gets JSON output at info
// level, everything else the colored development encoder.
func Init(env string) error {
	var (
		l   *zap.Logger
		err error
	)

	switch env {
	case "production":
		l, err = zap.NewProduction()
	case "test":
		l = zap.NewNop()
	default:
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return fmt.Errorf("failed to build %s logger -> %w", env, err)
	}

	zap.ReplaceGlobals(l)

	return nil
}
