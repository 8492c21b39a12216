package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treeline/internal/api"
	"github.com/matzehuels/treeline/pkg/cache"
	"github.com/matzehuels/treeline/pkg/config"
	"github.com/matzehuels/treeline/pkg/pipeline"
	"github.com/matzehuels/treeline/pkg/store"
)

// storeCleanupInterval is how often expired documents are purged.
const storeCleanupInterval = time.Hour

// shutdownTimeout bounds graceful shutdown after SIGINT or SIGTERM.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the treeline HTTP API",
		Long: `Run the treeline HTTP API.

Configuration is read from --config, falling back to
$XDG_CONFIG_HOME/treeline/config.toml and built-in defaults. The
--addr flag overrides the configured listen address.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				if _, err := os.Stat(configPath); os.IsNotExist(err) {
					printWarning("No config file at %s, using defaults", configPath)
				}
			}
			cfg, err := config.LoadOrDefault(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default: $XDG_CONFIG_HOME/treeline/config.toml)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		c.SetLogLevel(level)
	}

	cch, err := serveCache(cfg)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	st, err := serveStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	runner := pipeline.NewRunner(cch, nil, c.Logger)
	defer runner.Close()

	srv := api.New(runner, st, api.Config{
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		DocumentTTL:  cfg.Store.TTL.Std(),
	}, c.Logger)

	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	go c.cleanupLoop(ctx, st)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()

	c.Logger.Info("server listening",
		"addr", cfg.Server.Addr,
		"cache", cfg.Cache.Backend,
		"store", cfg.Store.Backend)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// serveCache builds the pipeline cache named by the config.
func serveCache(cfg config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		return cache.NewRedisCache(cfg.Cache.RedisURL)
	case config.CacheBackendNone:
		return cache.NewNullCache(), nil
	default:
		dir, err := cfg.Cache.ResolveDir()
		if err != nil {
			return nil, err
		}
		return cache.NewFileCache(dir)
	}
}

// serveStore builds the document store named by the config. Mongo
// connections are retried with backoff so the server survives a slow
// database start.
func serveStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.Store.Backend == config.StoreBackendMongo {
		var ms store.Store
		err := cache.RetryWithBackoff(ctx, func() error {
			m, err := store.NewMongoStore(ctx, cfg.Store.MongoURI, cfg.Store.Database)
			if err != nil {
				return cache.Retryable(err)
			}
			ms = m
			return nil
		})
		if err != nil {
			return nil, err
		}
		return store.Instrument(config.StoreBackendMongo, ms), nil
	}
	return store.Instrument(config.StoreBackendMemory, store.NewMemoryStore()), nil
}

// cleanupLoop purges expired documents until ctx is cancelled.
func (c *CLI) cleanupLoop(ctx context.Context, st store.Store) {
	ticker := time.NewTicker(storeCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := st.Cleanup(ctx); err != nil {
				c.Logger.Warn("store cleanup failed", "error", err)
			}
		}
	}
}
