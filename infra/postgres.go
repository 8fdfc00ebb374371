package infra

import (
	"fmt"
	"log"

	"github.com/tnqbao/gau-drive-service/config"
	"github.com/tnqbao/gau-drive-service/entity"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type PostgresClient struct {
	DB *gorm.DB
}

func InitPostgresClient(cfg *config.EnvConfig) *PostgresClient {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case config.DatabaseDriverSQLite:
		dialector = sqlite.Open(cfg.Database.SQLitePath)
	case config.DatabaseDriverPostgres:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.Postgres.HOST, cfg.Postgres.Username, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.Port)
		dialector = postgres.Open(dsn)
	default:
		panic(fmt.Sprintf("Unsupported database driver: %s", cfg.Database.Driver))
	}

	logLevel := logger.Warn
	if cfg.Environment.Mode == "development" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logLevel)})
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	if err := db.AutoMigrate(&entity.Entry{}); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	log.Printf("Connected to %s database", cfg.Database.Driver)

	return &PostgresClient{DB: db}
}
