// Entry point for the employee cache sync worker
package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"attendance.service/internal/adapters/employeeapi"
	"attendance.service/internal/bootstrap"
	"attendance.service/internal/config"
	"attendance.service/internal/ports/messaging"
	"attendance.service/internal/worker"
	"attendance.service/internal/worker/employeesync"
	"attendance.service/pkg/aws"
	"attendance.service/pkg/logger"
	"attendance.service/pkg/telemetry"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}

	logger.Setup(cfg.IsLocalDev)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = log.Logger.With().Str("service", "employee-sync-worker").Logger().WithContext(ctx)

	shutdownTracer, err := telemetry.InitTracer("employee-sync-worker", cfg.OTelExporter, cfg.OTelEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	var pool *pgxpool.Pool
	if bootstrap.NeedsDatabase(cfg) {
		pool, err = bootstrap.OpenDatabase(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Error opening database")
		}
		defer pool.Close()
		log.Info().Msg("Successfully connected to the database.")
	}

	store, err := bootstrap.OpenEmployeeStore(cfg, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening employee cache")
	}

	// AWS SDK Config
	awsCfg, err := aws.NewAWSConfig(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load SDK config")
	}
	sqsClient := sqs.NewFromConfig(awsCfg)
	producer := messaging.NewSQSProducer(sqsClient, cfg.AttendanceEventsQueueURL, cfg.DeadLetterQueueURL)

	if cfg.CacheWarmupEnabled {
		remote := employeeapi.NewClient(cfg.EmployeeServiceURL, cfg.EmployeeServiceTimeout)
		res, err := employeesync.NewWarmup(store, remote, cfg.CacheWarmupPageSize).Run(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Cache warm-up failed, continuing with event consumption")
		} else {
			log.Info().Interface("result", res).Msg("Cache warm-up finished")
		}
	}

	// One consumer per lifecycle topic.
	handlers := employeesync.NewHandlers(store, bootstrap.DeadLetterSink(ctx, cfg, producer))
	var wg sync.WaitGroup
	for _, topic := range messaging.EmployeeTopics() {
		w := worker.NewWorker(sqsClient, topic, cfg.EmployeeQueueURL(topic), employeesync.NewProcessor(topic, handlers))
		w.Concurrency = cfg.EmployeeEventsConcurrency
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Start(ctx)
		}()
	}
	log.Info().Strs("topics", messaging.EmployeeTopics()).Msg("Employee sync worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info().Msg("Shutting down worker...")

	// Cancel the context to signal the workers to stop polling.
	cancel()
	wg.Wait()

	log.Info().Msg("Worker exited gracefully")
}
