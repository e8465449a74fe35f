// Command auditor drains the audit queue into the MongoDB audit log.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/shopfront/pkg/broker"
	"github.com/example/shopfront/pkg/config"
	"github.com/example/shopfront/pkg/events"
	"github.com/example/shopfront/pkg/logger"
	"github.com/example/shopfront/pkg/repository"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer log.Sync()

	audit, err := repository.NewMongoRepository(&cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = audit.Close(ctx)
	}()

	mq, err := broker.Dial(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer mq.Close()

	if err := mq.SetupAuditQueue(); err != nil {
		log.Fatal("Failed to declare audit queue", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := events.NewAuditSink(cfg.Server.Name, audit)
	log.Info("Auditor consuming", zap.String("queue", cfg.RabbitMQ.AuditQueue))

	if err := mq.Consume(ctx, "auditor", sink.Handle); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Consumer stopped", zap.Error(err))
		return
	}
	log.Info("Auditor stopped")
}
