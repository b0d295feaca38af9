package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/unveil"
	"github.com/aretw0/unveil/pkg/adapters/memory"
	"github.com/aretw0/unveil/pkg/adapters/redis"
	"github.com/aretw0/unveil/pkg/config"
	"github.com/aretw0/unveil/pkg/domain"
	"github.com/aretw0/unveil/pkg/observability"
	"github.com/aretw0/unveil/pkg/ports"
	"github.com/aretw0/unveil/pkg/session"
	backend "github.com/redis/go-redis/v9"
)

// GlobalOptions are the flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	LogLevel   string
	Debug      bool
}

// loadConfig reads the configuration file, or the defaults when path is empty.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("error loading config: %w", err)
	}
	return cfg, nil
}

// createEngine initializes an engine with standard CLI conventions.
// In debug mode every reveal is logged.
func createEngine(cfg config.Config, logger *slog.Logger, debug bool, hooks ...domain.LifecycleHooks) (*unveil.Engine, error) {
	if debug {
		hooks = append(hooks, observability.LogHooks(logger))
	}
	engine, err := unveil.New(
		unveil.WithConfig(cfg),
		unveil.WithLogger(logger),
		unveil.WithLifecycleHooks(observability.MergeHooks(hooks...)),
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

// StoreOptions select the view store backing a host.
type StoreOptions struct {
	RedisURL    string
	RedisPrefix string
}

// openSessions builds the session manager. Without a Redis URL views are kept in memory.
// The returned close function releases the backend.
func openSessions(ctx context.Context, opts StoreOptions, cfg config.Config, logger *slog.Logger) (*session.Manager, func() error, error) {
	if opts.RedisURL == "" {
		store := memory.NewStore(memory.WithTTL(cfg.ViewTTL))
		return session.NewManager(store, session.WithLogger(logger)), func() error { return nil }, nil
	}

	store, err := openRedis(ctx, opts, cfg)
	if err != nil {
		return nil, nil, err
	}
	prefix := opts.RedisPrefix
	if prefix == "" {
		prefix = redis.DefaultPrefix
	}
	mgr := session.NewManager(store,
		session.WithLocker(redis.NewLocker(store.Client(), prefix)),
		session.WithLogger(logger),
	)
	return mgr, store.Close, nil
}

func openRedis(ctx context.Context, opts StoreOptions, cfg config.Config) (*redis.Store, error) {
	redisOpts, err := backend.ParseURL(opts.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := backend.NewClient(redisOpts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}

	storeOpts := []redis.Option{redis.WithTTL(cfg.ViewTTL)}
	if opts.RedisPrefix != "" {
		storeOpts = append(storeOpts, redis.WithPrefix(opts.RedisPrefix))
	}
	return redis.NewFromClient(client, storeOpts...), nil
}

// viewStore opens the store used by the view management commands.
func viewStore(ctx context.Context, opts StoreOptions, cfg config.Config) (ports.ViewStore, func() error, error) {
	if opts.RedisURL == "" {
		return nil, nil, fmt.Errorf("views live in the serving process; pass --redis-url to manage a shared store")
	}
	store, err := openRedis(ctx, opts, cfg)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}
