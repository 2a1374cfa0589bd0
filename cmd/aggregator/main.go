// Command aggregator recomputes hourly plaza traffic for the trailing
// AGGREGATION_LOOKBACK window and exits. It is meant to run from cron.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/smarttoll/backend/internal/config"
	"github.com/smarttoll/backend/internal/database"
	"github.com/smarttoll/backend/internal/models"
	"github.com/smarttoll/backend/internal/services"
)

func main() {
	config.Load(".env")
	config.ConfigureLogging()

	if err := run(); err != nil {
		log.WithError(err).Error("Traffic aggregation failed")
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.OpenPostgres(ctx, database.LoadPostgresConfig())
	if err != nil {
		return err
	}
	defer db.Close()

	tollCfg := config.LoadTollConfig()

	var sink services.TrafficSink
	switch tollCfg.TrafficSink {
	case "mongo":
		client, err := database.ConnectMongo(ctx)
		if err != nil {
			return fmt.Errorf("connect to MongoDB: %w", err)
		}
		defer client.Disconnect(context.Background())
		sink = services.NewMongoTrafficSink(database.TrafficCollection(client))
	case "postgres", "":
		sink = services.NewSQLTrafficSink(db)
	default:
		return fmt.Errorf("unknown TRAFFIC_SINK %q, expected postgres or mongo", tollCfg.TrafficSink)
	}

	aggregator := services.NewTrafficAggregator(db, sink, services.AggregatorOptions{
		Policy: services.TrafficPolicy{
			High:   tollCfg.TrafficHighThreshold,
			Normal: tollCfg.TrafficNormalThreshold,
		},
		Location:    tollCfg.Location(),
		Concurrency: tollCfg.AggregationConcurrency,
	})

	window := models.LastHours(time.Now(), tollCfg.AggregationLookback)
	logger := log.WithFields(log.Fields{
		"from": window.From.Format(time.RFC3339),
		"to":   window.To.Format(time.RFC3339),
		"sink": tollCfg.TrafficSink,
	})

	started := time.Now()
	report, err := aggregator.AggregateAll(ctx, window)
	if err != nil {
		return err
	}
	logger.WithFields(log.Fields{
		"plazas":   report.Plazas,
		"buckets":  report.Buckets,
		"duration": time.Since(started).String(),
	}).Info("Traffic aggregation complete")
	return nil
}
