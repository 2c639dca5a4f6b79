package db_fx

import (
	"go.uber.org/fx"

	"stepwise/internal/infra"
)

var Module = fx.Options(
	fx.Provide(infra.InitPostgresql),
	fx.Invoke(infra.RegisterPostgresLifecycle),
)
