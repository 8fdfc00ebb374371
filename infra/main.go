package infra

import (
	"context"
	"errors"
	"fmt"

	"github.com/tnqbao/gau-drive-service/config"
	"github.com/tnqbao/gau-drive-service/infra/produce"
)

type Infra struct {
	Redis                *RedisClient
	Postgres             *PostgresClient
	Logger               *LoggerClient
	Telemetry            *Telemetry
	RabbitMQ             *RabbitMQClient
	AuthorizationService *AuthorizationService
	Produce              *produce.Produce
	Minio                *MinioClient
	S3                   *S3Client
	Blob                 BlobStore
}

var infraInstance *Infra

func InitInfra(cfg *config.Config) *Infra {
	if infraInstance != nil {
		return infraInstance
	}

	telemetry := InitTelemetry(cfg.EnvConfig)
	if telemetry == nil {
		panic("Failed to initialize Telemetry")
	}

	logger := InitLoggerClient(cfg.EnvConfig)
	if logger == nil {
		panic("Failed to initialize Logger service")
	}

	redis := InitRedisClient(cfg.EnvConfig)
	if redis == nil {
		panic("Failed to initialize Redis service")
	}

	postgres := InitPostgresClient(cfg.EnvConfig)
	if postgres == nil {
		panic("Failed to initialize Postgres service")
	}

	authorizationService := InitAuthorizationService(cfg.EnvConfig)
	if authorizationService == nil {
		panic("Failed to initialize Authorization service")
	}

	infraInstance = &Infra{
		Redis:                redis,
		Postgres:             postgres,
		Logger:               logger,
		Telemetry:            telemetry,
		AuthorizationService: authorizationService,
	}

	switch cfg.EnvConfig.Storage.Backend {
	case config.StorageBackendMinio:
		infraInstance.Minio = InitMinioClient(cfg.EnvConfig)
		infraInstance.Blob = infraInstance.Minio
	case config.StorageBackendS3:
		infraInstance.S3 = InitS3Client(cfg.EnvConfig)
		infraInstance.Blob = infraInstance.S3
	default:
		panic(fmt.Sprintf("Unsupported storage backend: %s", cfg.EnvConfig.Storage.Backend))
	}

	// RabbitMQ is only needed when blob release goes through the queue
	if cfg.EnvConfig.Storage.ReleaseMode == config.BlobReleaseQueue {
		rabbitMQ := InitRabbitMQClient(cfg.EnvConfig)
		if rabbitMQ == nil {
			panic("Failed to initialize RabbitMQ service")
		}
		infraInstance.RabbitMQ = rabbitMQ
		infraInstance.Produce = produce.InitProduce(rabbitMQ.Channel)
	}

	return infraInstance
}

// Close flushes telemetry and releases every open connection.
func (i *Infra) Close(ctx context.Context) error {
	var errs []error
	if i.RabbitMQ != nil {
		errs = append(errs, i.RabbitMQ.Close())
	}
	if i.Redis != nil {
		errs = append(errs, i.Redis.Client.Close())
	}
	if i.Postgres != nil {
		if sqlDB, err := i.Postgres.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	if i.Logger != nil {
		errs = append(errs, i.Logger.Shutdown(ctx))
	}
	if i.Telemetry != nil {
		errs = append(errs, i.Telemetry.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
