package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageBackendMinio = "minio"
	StorageBackendS3    = "s3"

	BlobReleaseDirect = "direct"
	BlobReleaseQueue  = "queue"

	DatabaseDriverPostgres = "postgres"
	DatabaseDriverSQLite   = "sqlite"

	// DefaultMaxUploadSize is the per-file cap (100 MiB)
	DefaultMaxUploadSize int64 = 100 * 1024 * 1024
	DefaultMaxTreeDepth        = 64
)

type EnvConfig struct {
	Database struct {
		Driver     string
		SQLitePath string
	}
	Postgres struct {
		HOST     string
		Database string
		Username string
		Password string
		Port     string
	}
	JWT struct {
		SecretKey string
	}
	CORS struct {
		AllowDomains string
	}
	Redis struct {
		Password  string
		Database  int
		RedisHost string
		RedisPort string
	}
	RabbitMQ struct {
		Host     string
		Port     string
		Username string
		Password string
	}
	Minio struct {
		Endpoint     string
		RootUser     string
		RootPassword string
		UseSSL       bool
		Bucket       string
	}
	S3 struct {
		Endpoint  string
		Region    string
		AccessKey string
		SecretKey string
		Bucket    string
	}
	Storage struct {
		Backend       string
		Root          string
		MaxUploadSize int64
		MaxTreeDepth  int
		ReleaseMode   string
	}
	ExternalService struct {
		AuthorizationServiceURL string
	}
	AuthCache struct {
		TTL time.Duration
	}
	Grafana struct {
		OTLPEndpoint string
		ServiceName  string
	}
	PrivateKey string

	Environment struct {
		Mode  string
		Group string
	}
	HTTPPort string
}

func LoadEnvConfig() *EnvConfig {
	var config EnvConfig

	config.Database.Driver = strings.ToLower(os.Getenv("DATABASE_DRIVER"))
	if config.Database.Driver == "" {
		config.Database.Driver = DatabaseDriverPostgres
	}
	config.Database.SQLitePath = os.Getenv("SQLITE_PATH")
	if config.Database.SQLitePath == "" {
		config.Database.SQLitePath = "drive.db"
	}

	// Postgres
	config.Postgres.HOST = os.Getenv("PGPOOL_HOST")
	config.Postgres.Database = os.Getenv("PGPOOL_DB")
	config.Postgres.Username = os.Getenv("PGPOOL_USER")
	config.Postgres.Password = os.Getenv("PGPOOL_PASSWORD")
	config.Postgres.Port = os.Getenv("PGPOOL_PORT")
	if config.Postgres.Port == "" {
		config.Postgres.Port = "5432"
	}

	// JWT
	config.JWT.SecretKey = os.Getenv("JWT_SECRET_KEY")

	config.CORS.AllowDomains = os.Getenv("ALLOWED_DOMAINS")

	config.Redis.Password = os.Getenv("REDIS_PASSWORD")
	config.Redis.Database, _ = strconv.Atoi(os.Getenv("REDIS_DB"))
	config.Redis.RedisHost = os.Getenv("REDIS_HOST")
	if config.Redis.RedisHost == "" {
		config.Redis.RedisHost = "localhost"
	}
	config.Redis.RedisPort = os.Getenv("REDIS_PORT")
	if config.Redis.RedisPort == "" {
		config.Redis.RedisPort = "6379"
	}

	// RabbitMQ
	config.RabbitMQ.Host = os.Getenv("RABBITMQ_HOST")
	if config.RabbitMQ.Host == "" {
		config.RabbitMQ.Host = "localhost"
	}
	config.RabbitMQ.Port = os.Getenv("RABBITMQ_PORT")
	if config.RabbitMQ.Port == "" {
		config.RabbitMQ.Port = "5672"
	}
	config.RabbitMQ.Username = os.Getenv("RABBITMQ_USER")
	if config.RabbitMQ.Username == "" {
		config.RabbitMQ.Username = "guest"
	}
	config.RabbitMQ.Password = os.Getenv("RABBITMQ_PASSWORD")
	if config.RabbitMQ.Password == "" {
		config.RabbitMQ.Password = "guest"
	}

	config.Minio.Endpoint = os.Getenv("MINIO_ENDPOINT")
	config.Minio.RootUser = os.Getenv("MINIO_ROOT_USER")
	config.Minio.RootPassword = os.Getenv("MINIO_ROOT_PASSWORD")
	config.Minio.UseSSL, _ = strconv.ParseBool(os.Getenv("MINIO_USE_SSL"))
	config.Minio.Bucket = os.Getenv("MINIO_BUCKET")
	if config.Minio.Bucket == "" {
		config.Minio.Bucket = "drive"
	}

	config.S3.Endpoint = os.Getenv("S3_ENDPOINT")
	config.S3.Region = os.Getenv("S3_REGION")
	if config.S3.Region == "" {
		config.S3.Region = "us-east-1"
	}
	config.S3.AccessKey = os.Getenv("S3_ACCESS_KEY")
	config.S3.SecretKey = os.Getenv("S3_SECRET_KEY")
	config.S3.Bucket = os.Getenv("S3_BUCKET")
	if config.S3.Bucket == "" {
		config.S3.Bucket = "drive"
	}

	// Storage
	config.Storage.Backend = strings.ToLower(os.Getenv("STORAGE_BACKEND"))
	if config.Storage.Backend == "" {
		config.Storage.Backend = StorageBackendMinio
	}
	config.Storage.Root = strings.Trim(os.Getenv("STORAGE_ROOT"), "/")
	if config.Storage.Root == "" {
		config.Storage.Root = "media"
	}
	config.Storage.MaxUploadSize = DefaultMaxUploadSize
	if sizeStr := os.Getenv("MAX_UPLOAD_SIZE"); sizeStr != "" {
		if size, err := strconv.ParseInt(sizeStr, 10, 64); err == nil && size > 0 {
			config.Storage.MaxUploadSize = size
		}
	}
	config.Storage.MaxTreeDepth = DefaultMaxTreeDepth
	if depthStr := os.Getenv("MAX_TREE_DEPTH"); depthStr != "" {
		if depth, err := strconv.Atoi(depthStr); err == nil && depth > 0 {
			config.Storage.MaxTreeDepth = depth
		}
	}
	config.Storage.ReleaseMode = strings.ToLower(os.Getenv("BLOB_RELEASE_MODE"))
	if config.Storage.ReleaseMode == "" {
		config.Storage.ReleaseMode = BlobReleaseDirect
	}

	config.PrivateKey = os.Getenv("PRIVATE_KEY")

	config.ExternalService.AuthorizationServiceURL = os.Getenv("AUTHORIZATION_SERVICE_URL")
	if config.ExternalService.AuthorizationServiceURL == "" {
		config.ExternalService.AuthorizationServiceURL = "http://localhost:8080"
	}

	config.AuthCache.TTL = time.Minute
	if ttlStr := os.Getenv("AUTH_CACHE_TTL"); ttlStr != "" {
		if ttl, err := time.ParseDuration(ttlStr); err == nil {
			config.AuthCache.TTL = ttl
		}
	}

	// Grafana/OpenTelemetry
	grafanaEndpoint := os.Getenv("GRAFANA_OTLP_ENDPOINT")
	// Remove protocol for OpenTelemetry client to avoid duplicate protocols
	if strings.HasPrefix(grafanaEndpoint, "https://") {
		config.Grafana.OTLPEndpoint = strings.TrimPrefix(grafanaEndpoint, "https://")
	} else if strings.HasPrefix(grafanaEndpoint, "http://") {
		config.Grafana.OTLPEndpoint = strings.TrimPrefix(grafanaEndpoint, "http://")
	} else {
		config.Grafana.OTLPEndpoint = grafanaEndpoint
	}
	config.Grafana.ServiceName = os.Getenv("SERVICE_NAME")
	if config.Grafana.ServiceName == "" {
		config.Grafana.ServiceName = "gau-drive-service"
	}

	config.Environment.Mode = os.Getenv("DEPLOY_ENV")
	if config.Environment.Mode == "" {
		config.Environment.Mode = "development"
	}

	config.Environment.Group = os.Getenv("GROUP_NAME")
	if config.Environment.Group == "" {
		config.Environment.Group = "local"
	}

	config.HTTPPort = os.Getenv("HTTP_PORT")
	if config.HTTPPort == "" {
		config.HTTPPort = "8080"
	}

	return &config
}
