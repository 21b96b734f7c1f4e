package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tensorplex-labs/reviewsim/internal/api"
	"github.com/tensorplex-labs/reviewsim/internal/cache"
	"github.com/tensorplex-labs/reviewsim/internal/config"
	"github.com/tensorplex-labs/reviewsim/pkg/simapi"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulator over HTTP",
		Long: `Starts the HTTP service. Configuration comes from the environment
(SERVER_*, SIM_*, CACHE_* and REDIS_*), optionally loaded from .env.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port, _ = cmd.Flags().GetInt("port")
			}

			var opts []api.ServerOption
			store, err := cache.NewStore(cfg.CacheEnvConfig, &cfg.RedisEnvConfig)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
				results, err := cache.NewResultCache[simapi.SimulateResponse](store, cfg.CacheTTL, cfg.CachePrefix)
				if err != nil {
					return err
				}
				opts = append(opts, api.WithResultCache(results))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := api.NewServer(cfg.ServerEnvConfig, cfg.SimEnvConfig, opts...)
			log.Info().Str("address", cfg.ListenAddress()).Str("cache", cfg.Backend()).Msg("Starting server")
			return server.Start(ctx)
		},
	}
	cmd.Flags().Int("port", 0, "Port to listen on (overrides SERVER_PORT)")
	return cmd
}
