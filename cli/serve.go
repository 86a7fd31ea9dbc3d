package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/compozy/autoflow/engine/apps"
	"github.com/compozy/autoflow/engine/deploy"
	"github.com/compozy/autoflow/engine/infra/cache"
	"github.com/compozy/autoflow/engine/infra/monitoring"
	"github.com/compozy/autoflow/engine/infra/server"
	"github.com/compozy/autoflow/engine/infra/server/middleware/ratelimit"
	"github.com/compozy/autoflow/engine/runtime"
	"github.com/compozy/autoflow/engine/template"
	"github.com/compozy/autoflow/engine/template/builtin"
	"github.com/compozy/autoflow/pkg/config"
	"github.com/compozy/autoflow/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if cmd.Flags().Changed("port") {
				port, err := cmd.Flags().GetInt("port")
				if err != nil {
					return err
				}
				config.FromContext(ctx).Server.Port = port
			}
			return runServer(ctx)
		},
	}
	cmd.Flags().Int("port", 0, "Override server.port")
	return cmd
}

func runServer(ctx context.Context) error {
	cfg := config.FromContext(ctx)
	monitor := monitoring.NewMonitoringServiceWithFallback(ctx, monitoring.FromAppConfig(cfg.Monitoring))
	if monitor.IsInitialized() {
		monitor.SetAsGlobal()
	}
	var redisConn *cache.Redis
	if cfg.Redis.URL != "" {
		var err error
		redisConn, err = cache.NewRedis(ctx, cache.FromAppConfig(cfg.Redis))
		if err != nil {
			return err
		}
		defer redisConn.Close()
	}
	deps, err := buildDependencies(ctx, cfg, monitor, redisConn)
	if err != nil {
		return err
	}
	return server.NewServer(&cfg.Server, deps, monitor).Run(ctx)
}

func buildDependencies(
	ctx context.Context,
	cfg *config.Config,
	monitor *monitoring.Service,
	redisConn *cache.Redis,
) (server.Dependencies, error) {
	log := logger.FromContext(ctx)
	reg, err := builtin.NewRegistry()
	if err != nil {
		return server.Dependencies{}, err
	}
	deps := server.Dependencies{Templates: template.NewService(reg)}
	if cfg.RateLimit.Enabled {
		var client redis.UniversalClient
		if redisConn != nil {
			client = redisConn.Client()
		}
		deps.RateLimiter, err = ratelimit.NewManager(ratelimit.FromAppConfig(cfg), client, monitor.Meter())
		if err != nil {
			return server.Dependencies{}, err
		}
	}
	client, err := newRuntimeClient(cfg)
	if err != nil {
		log.Warn("Runtime provider not configured; deployment and execution routes disabled", "error", err)
		return deps, nil
	}
	connections, err := newConnectionLister(cfg)
	if err != nil {
		return server.Dependencies{}, err
	}
	var store deploy.Store = deploy.NewMemoryStore()
	if redisConn != nil {
		store = cache.NewDeploymentStore(redisConn)
	}
	checker := apps.NewChecker(apps.NewRegistry(cfg.Apps.Supported...), connections)
	deps.Deployer, err = deploy.NewService(checker, client, deploy.WithStore(store))
	if err != nil {
		return server.Dependencies{}, err
	}
	deps.Dispatcher, err = runtime.NewDispatcher(client, runtime.WithMeter(monitor.Meter()))
	if err != nil {
		return server.Dependencies{}, err
	}
	return deps, nil
}

func newConnectionLister(cfg *config.Config) (apps.ConnectionLister, error) {
	if cfg.Apps.ConnectionsURL == "" {
		return apps.StaticConnections{}, nil
	}
	lister, err := apps.NewHTTPConnectionLister(cfg.Apps.ConnectionsURL, cfg.Apps.ConnectionsKey.Value(), cfg.Provider.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection client: %w", err)
	}
	if cfg.Apps.CacheSize <= 0 || cfg.Apps.CacheTTL <= 0 {
		return lister, nil
	}
	return apps.NewCachedConnectionLister(lister, cfg.Apps.CacheSize, cfg.Apps.CacheTTL), nil
}
