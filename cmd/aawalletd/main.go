package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/aawalletd/internal/config"
	"github.com/tdex-network/aawalletd/internal/core/application"
	"github.com/tdex-network/aawalletd/pkg/stats"
)

const statsFile = "prometheus.txt"

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appConfig, _, cleanup, err := config.GetApplicationConfig(ctx)
	if err != nil {
		log.WithError(err).Fatal("error while setting up the application")
	}
	defer cleanup()

	if config.GetBool(config.EnableStatsKey) {
		stats.EnableMemoryStatistics(
			ctx, config.GetSeconds(config.StatsIntervalKey),
			filepath.Join(config.GetDatadir(), config.StatsLocation, statsFile),
		)
	}

	var metricsServer *http.Server
	if port := config.GetInt(config.MetricsPortKey); port > 0 {
		metricsServer = serveMetrics(fmt.Sprintf(":%d", port))
	}

	go runEvery(
		ctx, "sync", config.GetSeconds(config.SyncIntervalKey),
		syncJob(appConfig),
	)
	if config.GetString(config.ProvidersFileKey) != "" {
		go runEvery(
			ctx, "providers refresh",
			config.GetSeconds(config.ProvidersRefreshIntervalKey),
			appConfig.RegistryService().Refresh,
		)
	}

	log.WithFields(log.Fields{
		"chain_id": appConfig.ChainID,
		"db":       appConfig.DBType,
		"datadir":  config.GetDatadir(),
	}).Info("aawalletd started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down daemon")
	cancel()

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(
			context.Background(), 5*time.Second,
		)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("error while stopping metrics server")
		}
	}

	log.Debug("exiting")
}

// syncJob settles pending operations and expires stale recovery requests.
func syncJob(appConfig *application.Config) func(context.Context) error {
	return func(ctx context.Context) error {
		settled, err := appConfig.RelayService().SyncPending(ctx)
		if err != nil {
			return err
		}
		expired, err := appConfig.RecoveryService().ExpireStale(ctx)
		if err != nil {
			return err
		}
		if settled > 0 || expired > 0 {
			log.WithFields(log.Fields{
				"settled_operations": settled,
				"expired_recoveries": expired,
			}).Debug("sync completed")
		}
		return nil
	}
}

func runEvery(
	ctx context.Context, name string, interval time.Duration,
	job func(context.Context) error,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := job(ctx); err != nil && ctx.Err() == nil {
				log.WithError(err).Warnf("%s job failed", name)
			}
		}
	}
}

func serveMetrics(address string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("error while serving metrics")
		}
	}()
	log.Debugf("metrics served at %s/metrics", address)
	return server
}
