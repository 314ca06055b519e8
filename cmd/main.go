package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"

	"github.com/remotelist/jobs-aggregator/internal/aggregator"
	"github.com/remotelist/jobs-aggregator/internal/config"
	"github.com/remotelist/jobs-aggregator/internal/fetch"
	"github.com/remotelist/jobs-aggregator/internal/logger"
	"github.com/remotelist/jobs-aggregator/internal/metrics"
	"github.com/remotelist/jobs-aggregator/internal/repositories"
	"github.com/remotelist/jobs-aggregator/internal/retry"
	"github.com/remotelist/jobs-aggregator/internal/server"
	"github.com/remotelist/jobs-aggregator/internal/services"
	"github.com/remotelist/jobs-aggregator/internal/sources"
)

func buildAggregator(cfg *config.Config) *aggregator.Aggregator {

	client := fetch.NewClient(retry.NewExecutor())
	if cfg.Sources.MaxRequestsPerSecond > 0 {
		client.SetRateLimit(cfg.Sources.MaxRequestsPerSecond)
	}

	return aggregator.New(
		sources.NewRemoteOK(client),
		sources.NewHimalayas(client),
		sources.NewWeWorkRemotely(client),
		sources.NewNoDesk(client),
	)
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer(cfg.Server.MetricsPort)

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	err = dbContext.Migrate()
	if err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	cache := repositories.NewCacheRepository(dbContext.DB)
	cache.SetChunkSize(cfg.Sources.ChunkSize)

	agg := buildAggregator(cfg)
	bus := EventBus.New()

	if _, err = services.NewRefreshMonitor(bus); err != nil {
		log.Fatalf("can't create refresh monitor: %v", err)
	}

	refresher, err := services.NewRefreshService(bus, agg, cache,
		cfg.Sources.RefreshInterval, cfg.Sources.RefreshBudget)
	if err != nil {
		log.Fatalf("can't create refresh service: %v", err)
	}
	refresher.Start()
	defer refresher.Stop()

	reader := services.NewReaderService(agg, cache, cfg.Sources.StaleCacheThreshold)

	httpServer := server.New(cfg.Server, reader)
	go func() {
		if err := httpServer.Run(); err != nil {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down services...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("http server shutdown failed: %v", err)
	}
	log.Info("Services stopped.")
}
