package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/herblab/specnet/internal/server"
	"github.com/herblab/specnet/pkg/cache"
	"github.com/herblab/specnet/pkg/pipeline"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string // listen address
	backend   string // cache backend: "file", "redis" or "none"
	redisAddr string // redis address when backend is "redis"
	scope     string // cache key prefix for namespace isolation
	format    string // records format
	separator string // collectors column separator (CSV)
	header    bool   // skip the first CSV line
	namesMap  string // names map TOML path
}

// newServeCmd creates the serve command, which builds a network from a
// records file and serves queries and projections over HTTP.
func newServeCmd() *cobra.Command {
	opts := serveOpts{
		addr:      ":8080",
		backend:   "file",
		redisAddr: "localhost:6379",
	}

	cmd := &cobra.Command{
		Use:   "serve [records-file]",
		Short: "Serve a network over HTTP",
		Long: `Serve builds a species-collectors network from a records file and
exposes it over HTTP: node listings, species bags, interest vectors, and
projections. Projection results are cached; with the redis backend several
instances can share one cache.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			c, err := openServeCache(cmd.Context(), &opts)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}

			var keyer cache.Keyer
			if opts.scope != "" {
				keyer = cache.NewScopedKeyer(nil, opts.scope)
			}
			runner := pipeline.NewRunner(c, keyer, logger)
			defer runner.Close()

			network, networkKey, cached, err := runner.Build(cmd.Context(), pipeline.Options{
				RecordsPath:  args[0],
				Format:       recordsFormat(opts.format, args[0]),
				Separator:    opts.separator,
				Header:       opts.header,
				NamesMapPath: opts.namesMap,
				Logger:       logger,
			})
			if err != nil {
				return err
			}
			logger.Info("network ready",
				"nodes", network.NodeCount(),
				"edges", network.EdgeCount(),
				"cached", cached)

			srv := server.New(network, networkKey, runner, logger)
			httpServer := &http.Server{
				Addr:              opts.addr,
				Handler:           srv.Router(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", opts.addr)
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-cmd.Context().Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVarP(&opts.addr, "addr", "a", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.backend, "cache", opts.backend, "cache backend: file (default), redis, none")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", opts.redisAddr, "redis address for the redis backend")
	cmd.Flags().StringVar(&opts.scope, "cache-scope", "", "cache key prefix for namespace isolation")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "records format: csv (default), toml")
	cmd.Flags().StringVar(&opts.separator, "separator", "", "collectors column separator (default \";\")")
	cmd.Flags().BoolVar(&opts.header, "header", false, "skip the first CSV line")
	cmd.Flags().StringVar(&opts.namesMap, "names-map", "", "names map TOML file for collector normalization")

	return cmd
}

// openServeCache opens the cache backend selected by --cache.
func openServeCache(ctx context.Context, opts *serveOpts) (cache.Cache, error) {
	switch opts.backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, opts.redisAddr)
	case "file":
		return openCache(false)
	default:
		return nil, fmt.Errorf("cache backend must be file, redis or none, got %q", opts.backend)
	}
}
