package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"vmreport/internal/amqp"
	"vmreport/internal/cli"
	"vmreport/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting vmreport-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ingestWorker := worker.NewIngestWorker(sqliteRepo)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return amqpClient.ConsumeInstanceEvents(groupCtx, func(msg *amqp.InstanceEventMessage) error {
			handleCtx, cancel := context.WithTimeout(groupCtx, 10*time.Second)
			defer cancel()
			return ingestWorker.HandleEventMessage(handleCtx, msg)
		})
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete")
}
