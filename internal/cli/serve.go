package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/viralify/edgecraft/internal/api"
	"github.com/viralify/edgecraft/pkg/cache"
	"github.com/viralify/edgecraft/pkg/pipeline"
)

// Environment variables read by the serve command.
const (
	envAddr           = "EDGECRAFT_ADDR"
	envRedisAddr      = "EDGECRAFT_REDIS_ADDR"
	envRedisPassword  = "EDGECRAFT_REDIS_PASSWORD"
	envRedisDB        = "EDGECRAFT_REDIS_DB"
	envCacheNamespace = "EDGECRAFT_CACHE_NAMESPACE"
)

const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		envFile string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the edge pipeline over HTTP",
		Long: `Serve the edge pipeline over HTTP.

The serve command exposes the pipeline as a JSON API. Clients POST a diagram
plus options to /v1/pipeline and receive the combined stage results.

Configuration is read from the environment (optionally via a .env file):
EDGECRAFT_ADDR sets the listen address; EDGECRAFT_REDIS_ADDR switches the
stage cache from local files to Redis; EDGECRAFT_CACHE_NAMESPACE prefixes
cache keys so multiple deployments can share one backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, envFile, noCache)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default: "+envAddr+" or :8080)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "load environment from this file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe builds the cache backend from the environment and runs the HTTP
// server until the context is cancelled.
func (c *CLI) runServe(ctx context.Context, addr, envFile string, noCache bool) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	if addr == "" {
		addr = os.Getenv(envAddr)
	}
	if addr == "" {
		addr = ":8080"
	}

	store, err := c.serveCache(ctx, noCache)
	if err != nil {
		return err
	}
	var keyer cache.Keyer
	if ns := os.Getenv(envCacheNamespace); ns != "" {
		keyer = cache.NewScopedKeyer(nil, ns+":")
		c.Logger.Info("scoping cache keys", "namespace", ns)
	}
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	defer runner.Close()

	server := &http.Server{
		Addr:              addr,
		Handler:           api.New(runner, c.Logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

// serveCache picks the cache backend: Redis when configured, local files
// otherwise.
func (c *CLI) serveCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisAddr := os.Getenv(envRedisAddr); redisAddr != "" {
		db := 0
		if v := os.Getenv(envRedisDB); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", envRedisDB, err)
			}
			db = parsed
		}
		c.Logger.Info("using redis cache", "addr", redisAddr, "db", db)
		return cache.NewRedisCache(ctx, redisAddr, os.Getenv(envRedisPassword), db)
	}
	return newCache(false)
}
