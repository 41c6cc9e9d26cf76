// Package db provides database connection management.
package db

import (
	"fmt"
	"log"
	"os"
	"time"

	gpostgres "gorm.io/driver/postgres"
	gsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authentity "sign_backend/internal/feature/auth/domain/entity"
	jobsadapters "sign_backend/internal/feature/jobs/adapters"
)

// Config holds database connection settings.
type Config struct {
	Driver     string // "sqlite" (default) or "postgres"
	SQLitePath string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
}

// LoadConfig loads database configuration from environment variables.
func LoadConfig() Config {
	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "sqlite"
	}
	path := os.Getenv("SQLITE_PATH")
	if path == "" {
		path = "./signs.db"
	}
	return Config{
		Driver:     driver,
		SQLitePath: path,
		Host:       os.Getenv("DB_HOST"),
		Port:       os.Getenv("DB_PORT"),
		User:       os.Getenv("DB_USER"),
		Password:   os.Getenv("DB_PASSWORD"),
		Name:       os.Getenv("DB_NAME"),
	}
}

// BuildDSN builds a PostgreSQL DSN string from the configuration.
func BuildDSN(cfg Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
}

// OpenDB opens the configured database, retrying for up to 60 seconds.
// TranslateError is enabled so adapters can detect duplicate keys
// portably across SQLite and PostgreSQL.
func OpenDB() *gorm.DB {
	cfg := LoadConfig()

	gormCfg := &gorm.Config{TranslateError: true}

	var (
		conn gorm.Dialector
		db   *gorm.DB
		err  error
	)
	switch cfg.Driver {
	case "postgres":
		conn = gpostgres.Open(BuildDSN(cfg))
	default:
		conn = gsqlite.Open(cfg.SQLitePath)
	}

	deadline := time.Now().Add(60 * time.Second)
	for {
		db, err = gorm.Open(conn, gormCfg)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			log.Fatalf("DB connect failed after 60s: %v", err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := db.AutoMigrate(
			&authentity.User{},
			&jobsadapters.JobModel{},
		); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}
