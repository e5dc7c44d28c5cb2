package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/veo3store/internal/adapter/license"
	"github.com/polkiloo/veo3store/internal/adapter/notify"
	"github.com/polkiloo/veo3store/internal/app"
	"github.com/polkiloo/veo3store/internal/config"
	"github.com/polkiloo/veo3store/internal/logger"
	"github.com/polkiloo/veo3store/internal/metrics"
	"github.com/polkiloo/veo3store/internal/pkg/auth"
	"github.com/polkiloo/veo3store/internal/server/http/router"
	"github.com/polkiloo/veo3store/internal/storage/postgres"
	"github.com/polkiloo/veo3store/internal/storage/redis"
	"github.com/polkiloo/veo3store/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		auth.Module,
		postgres.Module,
		redis.Module,
		license.Module,
		notify.Module,
		fx.Provide(
			func(issuer license.Issuer) usecase.LicenseIssuer { return issuer },
			func(publisher notify.Publisher) usecase.EventPublisher { return publisher },
			func(m *metrics.Metrics) usecase.LifecycleMetrics { return m },
			func(m *metrics.Metrics) usecase.SessionMetrics { return m },
		),
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
