package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/swatchbook/internal/batch"
	"github.com/jmylchreest/swatchbook/internal/config"
	"github.com/jmylchreest/swatchbook/internal/logging"
	"github.com/jmylchreest/swatchbook/internal/recipecache"
	"github.com/jmylchreest/swatchbook/internal/recipecache/store"
	"github.com/jmylchreest/swatchbook/internal/remote"
)

// app holds the components shared by every command for one invocation.
type app struct {
	cfg         config.Config
	logger      hclog.Logger
	registry    *prometheus.Registry
	store       store.Store
	cache       *recipecache.Cache
	coordinator *batch.Coordinator
}

// loadConfig resolves configuration from the --config file, the environment
// and the persistent flags, in that order.
func loadConfig(flags *pflag.FlagSet) (config.Config, error) {
	b := config.NewBuilder().WithEnvConfig()
	if path, _ := flags.GetString("config"); path != "" {
		b = b.WithFile(path)
	} else if path := config.DefaultConfigPath(); path != "" {
		b = b.WithOptionalFile(path)
	}
	cfg, err := b.Build()
	if err != nil {
		return config.Config{}, err
	}

	if flags.Changed("cache-backend") {
		cfg.Cache.Backend, _ = flags.GetString("cache-backend")
	}
	if flags.Changed("cache-dir") {
		cfg.Cache.Dir, _ = flags.GetString("cache-dir")
	}
	if noPersist, _ := flags.GetBool("no-persist"); noPersist {
		cfg.Cache.Backend = config.BackendMemory
	}
	if offline, _ := flags.GetBool("offline"); offline {
		cfg.Remote.APIKey = ""
		cfg.Remote.Backend = config.RemoteBackendGemini
	}

	verbose, _ := flags.GetBool("verbose")
	quiet, _ := flags.GetBool("quiet")
	switch {
	case verbose:
		cfg.Log.Level = "debug"
	case quiet:
		cfg.Log.Level = "error"
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newApp opens the store, hydrates the cache and connects the remote source.
// A missing credential is not an error; the app runs heuristic-only.
func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Output: cmd.ErrOrStderr(),
		JSON:   cfg.Log.JSON,
	})

	s, err := store.Open(cfg.Cache, logger.Named("store"))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s cache store: %w", cfg.Cache.Backend, err)
	}

	cache := recipecache.New(s,
		recipecache.WithMaxEntries(cfg.Cache.MaxEntries),
		recipecache.WithKey(cfg.Cache.SnapshotKey),
		recipecache.WithLogger(logger.Named("cache")),
	)
	cache.Load(ctx)

	var source remote.Source
	genAI, err := remote.NewGenAI(ctx, cfg.Remote, remote.WithLogger(logger.Named("remote")))
	switch {
	case errors.Is(err, remote.ErrNoCredential):
		logger.Debug("no remote credential configured, using heuristic recipes only")
	case err != nil:
		logger.Warn("remote source unavailable, using heuristic recipes only", "error", err)
	default:
		source = genAI
	}

	registry := prometheus.NewRegistry()
	coordinator := batch.New(cache, source,
		batch.WithLogger(logger.Named("batch")),
		batch.WithMetrics(batch.NewMetrics(registry)),
	)

	return &app{
		cfg:         cfg,
		logger:      logger,
		registry:    registry,
		store:       s,
		cache:       cache,
		coordinator: coordinator,
	}, nil
}

// Close flushes the cache and releases the store.
func (a *app) Close(ctx context.Context) {
	a.cache.Flush(ctx)
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close cache store", "error", err)
	}
}
