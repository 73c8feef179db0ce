package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mailrelay-systems/mailrelay-stack/common/logging"
	sqsqueue "github.com/mailrelay-systems/mailrelay-stack/common/messaging/sqs"
	"github.com/mailrelay-systems/mailrelay-stack/consumer/internal/config"
	"github.com/mailrelay-systems/mailrelay-stack/consumer/internal/loop"
	"github.com/mailrelay-systems/mailrelay-stack/consumer/internal/service"
	"github.com/mailrelay-systems/mailrelay-stack/consumer/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("consumer"))
	logging.SetDefault(logger)

	slog.Info("Starting consumer service",
		slog.String("queue_url", cfg.Queue.URL),
		slog.String("bucket", cfg.Storage.Bucket),
		slog.String("poll_interval", cfg.Loop.PollInterval.String()),
	)

	loadCtx, loadCancel := context.WithTimeout(context.Background(), 30*time.Second)
	awsCfg, err := awsconfig.LoadDefaultConfig(loadCtx, awsconfig.WithRegion(cfg.AWS.Region))
	loadCancel()
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}

	sqsClient := awssqs.NewFromConfig(awsCfg, func(o *awssqs.Options) {
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
		}
	})
	s3Client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
			o.UsePathStyle = true
		}
	})

	queue := sqsqueue.New(sqsClient, cfg.Queue.URL)
	store := storage.NewClient(s3Client, cfg.Storage.Bucket)
	processor := service.NewProcessor(queue, store, logger)

	consumerLoop := loop.New(queue, processor, loop.Options{
		PollInterval: cfg.Loop.PollInterval,
		MaxMessages:  cfg.Loop.MaxMessages,
		WaitTime:     cfg.Loop.WaitTime,
	}, logger)

	// Health and metrics endpoints
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(processor.Health())
	})
	mux.Handle("/metrics", promhttp.Handler())

	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: mux,
	}
	go func() {
		log.Printf("Metrics listening on %s", metricsSrv.Addr)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Metrics server error: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit
		log.Printf("Received signal %v, shutting down...", s)
		cancel()
	}()

	if err := consumerLoop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Consumer loop error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Metrics server shutdown: %v", err)
	}

	log.Println("Consumer stopped")
}
