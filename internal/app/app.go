package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/veo3store/internal/config"
	"github.com/polkiloo/veo3store/internal/server/http/handlers"
	"github.com/polkiloo/veo3store/internal/storage/postgres"
	"github.com/polkiloo/veo3store/internal/storage/redis"
	"github.com/polkiloo/veo3store/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewStoreFacade,
		func(f *StoreFacade) handlers.StoreFacade { return f },
		func(f *StoreFacade) worker.ExpiryFacade { return f },
		func(f *StoreFacade) AdminBootstrapper { return f },
		fx.Annotate(databaseCheck, fx.ResultTags(`group:"health"`)),
		fx.Annotate(sessionStoreCheck, fx.ResultTags(`group:"health"`)),
		newHTTPServer,
		newExpirySweeper,
	),
	fx.Invoke(registerLifecycle),
)

// AdminBootstrapper creates the configured administrator account.
type AdminBootstrapper interface {
	EnsureAdmin(ctx context.Context, email, password string) error
}

func databaseCheck(s *postgres.Storage) NamedCheck {
	return NamedCheck{Name: "postgres", Checker: s}
}

func sessionStoreCheck(s *redis.SessionStore) NamedCheck {
	return NamedCheck{Name: "redis", Checker: s}
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Facade worker.ExpiryFacade
	Config *config.Config
	Logger *slog.Logger
}

func newExpirySweeper(p workerParams) *worker.ExpirySweeper {
	return worker.NewExpirySweeper(
		p.Facade,
		p.Config.ExpirySweepInterval,
		p.Config.ExpiryBatchSize,
		p.Config.WorkerPoolSize,
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Sweeper    *worker.ExpirySweeper
	Admin      AdminBootstrapper
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if p.Config.AdminEmail != "" && p.Config.AdminPassword != "" {
				if err := p.Admin.EnsureAdmin(ctx, p.Config.AdminEmail, p.Config.AdminPassword); err != nil {
					return fmt.Errorf("bootstrap admin: %w", err)
				}
			}

			p.Logger.Info("starting veo3store", slog.String("addr", p.Server.Addr))
			// The sweeper outlives the start context.
			p.Sweeper.Start(context.WithoutCancel(ctx))
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Sweeper.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("veo3store stopped")
			return nil
		},
	})
}

var _ handlers.StoreFacade = (*StoreFacade)(nil)
