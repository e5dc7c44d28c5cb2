package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/veo3store/internal/config"
	"github.com/polkiloo/veo3store/internal/domain/repository"
)

// Module wires the redis backed session registry.
var Module = fx.Options(
	fx.Provide(
		newClient,
		func(c *goredis.Client) *SessionStore { return NewSessionStore(c) },
		func(s *SessionStore) repository.SessionRepository { return s },
	),
	fx.Invoke(registerLifecycle),
)

func newClient(cfg *config.Config) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         cfg.RedisAddress,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

type closer interface {
	Close() error
}

func registerLifecycle(lc fx.Lifecycle, client *goredis.Client) {
	appendCloseHook(lc, client)
}

func appendCloseHook(lc fx.Lifecycle, c closer) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return c.Close()
		},
	})
}
