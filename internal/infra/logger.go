package infra

import (
	"go.uber.org/zap"

	"stepwise/internal/config"
)

// NewLogger builds the process logger and installs it as zap's global.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if cfg.IsProduction() {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(log.With(zap.String("service", "stepwise")))
	return zap.L(), nil
}
