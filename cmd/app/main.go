package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"stepwise/cmd/fx/account_fx"
	"stepwise/cmd/fx/billing_fx"
	"stepwise/cmd/fx/config_fx"
	"stepwise/cmd/fx/controllers_fx"
	"stepwise/cmd/fx/db_fx"
	"stepwise/cmd/fx/feedback_fx"
	"stepwise/cmd/fx/portal_fx"
	"stepwise/cmd/fx/storage_fx"
	"stepwise/cmd/fx/walkthrough_fx"
	"stepwise/cmd/fx/workspace_fx"
	"stepwise/internal/config"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		config_fx.Module,
		db_fx.Module,
		account_fx.Module,
		workspace_fx.Module,
		walkthrough_fx.Module,
		billing_fx.Module,
		feedback_fx.Module,
		portal_fx.Module,
		storage_fx.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("starting HTTP server", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}
