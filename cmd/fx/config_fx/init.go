package config_fx

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"stepwise/internal/config"
	"stepwise/internal/infra"
	"stepwise/pkg/utils"
)

var Module = fx.Provide(
	config.Load,
	infra.NewLogger,
	provideRegistry,
	provideTokenIssuer,
)

func provideRegistry() (*prometheus.Registry, prometheus.Registerer) {
	reg := infra.NewRegistry()
	return reg, reg
}

func provideTokenIssuer(cfg *config.Config) (*utils.TokenIssuer, error) {
	return utils.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL, cfg.PortalTTL)
}
