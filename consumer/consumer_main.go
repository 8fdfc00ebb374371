package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tnqbao/gau-drive-service/config"
	"github.com/tnqbao/gau-drive-service/consumer/worker"
	infraPkg "github.com/tnqbao/gau-drive-service/infra"
)

func main() {
	err := godotenv.Load("../staging.env")
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	if cfg.EnvConfig.Storage.ReleaseMode != config.BlobReleaseQueue {
		log.Fatalf("BLOB_RELEASE_MODE must be %q to run the consumer", config.BlobReleaseQueue)
	}
	infra := infraPkg.InitInfra(cfg)

	// Initialize context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	blobConsumer := worker.NewBlobConsumer(infra.RabbitMQ.Channel, infra)
	if err := blobConsumer.Start(ctx); err != nil {
		infra.Logger.ErrorWithContextf(ctx, err, "Failed to start Blob consumer: %v", err)
		log.Fatalf("Failed to start Blob consumer: %v", err)
	}

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	infra.Logger.InfoWithContextf(ctx, "Shutting down consumer...")
	cancel()
	infra.Logger.InfoWithContextf(ctx, "Consumer exited properly")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := infra.Close(shutdownCtx); err != nil {
		log.Printf("Failed to release infrastructure: %v", err)
	}
}
