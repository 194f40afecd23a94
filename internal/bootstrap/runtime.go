// Package bootstrap wires the slot backend, store, session, and event
// publisher selected by configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"communityhub/internal/cache"
	"communityhub/internal/config"
	"communityhub/internal/database"
	"communityhub/internal/events"
	"communityhub/internal/featureflags"
	"communityhub/internal/middleware"
	"communityhub/internal/session"
	"communityhub/internal/storage"

	"github.com/redis/go-redis/v9"
)

// Runtime holds the per-profile dependencies shared by the commands and the server.
type Runtime struct {
	Config    *config.Config
	Store     *storage.Store
	Session   *session.Session
	Redis     *redis.Client
	Publisher events.Publisher
	Flags     *featureflags.Manager
}

// Options control runtime initialization behavior.
type Options struct {
	// SkipEvents forces the no-op publisher, for one-off tooling.
	SkipEvents bool
}

// InitRuntime opens the configured slot backend and builds the store over it.
// Redis is optional unless it backs the store or the event bus; an unreachable
// server then leaves rate limiting without a store.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	rt := &Runtime{
		Config: cfg,
		Flags:  featureflags.NewManager(cfg.FeatureFlags),
	}

	needRedis := cfg.StoreBackend == config.BackendRedis ||
		(!opts.SkipEvents && cfg.EventsBackend == config.EventsRedis)
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		switch {
		case err == nil:
			rt.Redis = client
		case needRedis:
			return nil, fmt.Errorf("redis connection failed: %w", err)
		default:
			middleware.Logger.Warn("redis unavailable, continuing without it",
				slog.String("error", err.Error()))
		}
	} else if needRedis {
		return nil, errors.New("REDIS_URL is required for the configured backends")
	}

	backend, err := openBackend(cfg, rt.Redis)
	if err != nil {
		rt.closeRedis()
		return nil, err
	}

	rt.Store = storage.New(backend, storage.Options{
		Prefix:    cfg.StorePrefix,
		FlushMode: storage.FlushMode(cfg.StoreFlushMode),
	})
	rt.Session = session.ForStore(rt.Store)

	if err := rt.Store.EnsureSeeded(ctx); err != nil {
		_ = rt.Store.Close()
		rt.closeRedis()
		return nil, fmt.Errorf("seed store: %w", err)
	}

	rt.Publisher = events.Nop{}
	if !opts.SkipEvents {
		switch cfg.EventsBackend {
		case config.EventsRedis:
			rt.Publisher = events.NewRedisPublisher(rt.Redis)
		case config.EventsNATS:
			pub, err := events.NewNATSPublisher(events.NATSConfig{
				URL:        cfg.NATSURL,
				ClientName: "communityhub",
			})
			if err != nil {
				_ = rt.Store.Close()
				rt.closeRedis()
				return nil, fmt.Errorf("nats connection failed: %w", err)
			}
			rt.Publisher = pub
		}
	}

	middleware.Logger.Info("runtime ready",
		slog.String("store_backend", backend.Name()),
		slog.String("flush_mode", cfg.StoreFlushMode),
		slog.String("events_backend", cfg.EventsBackend),
	)
	return rt, nil
}

func openBackend(cfg *config.Config, rdb *redis.Client) (storage.Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return storage.NewMemoryBackend(), nil
	case config.BackendRedis:
		// The runtime closes the shared client itself.
		return cache.NewSlotBackend(rdb, false), nil
	case config.BackendPostgres, config.BackendSQLite:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		return database.NewSlotBackend(db), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// Close flushes the store and releases every connection.
func (rt *Runtime) Close() error {
	var errs []error
	if rt.Publisher != nil {
		if err := rt.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if rt.Store != nil {
		if err := rt.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if err := rt.closeRedis(); err != nil {
		errs = append(errs, fmt.Errorf("close redis: %w", err))
	}
	return errors.Join(errs...)
}

func (rt *Runtime) closeRedis() error {
	if rt.Redis == nil {
		return nil
	}
	err := rt.Redis.Close()
	rt.Redis = nil
	return err
}
