package config

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ErrNoDatabaseURL is returned when no connection string is given
var ErrNoDatabaseURL = errors.New("database url is empty")

var DB *gorm.DB

// ConnectDatabase opens a pgx pool for databaseURL and hands it to gorm
func ConnectDatabase(databaseURL string) error {
	if databaseURL == "" {
		return ErrNoDatabaseURL
	}

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	// gorm pings through database/sql on open
	sqlDB := stdlib.OpenDBFromPool(pool)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		pool.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	DB = db
	log.Println("Database connection established successfully")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (primarily for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
