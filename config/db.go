package config

import (
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB() error {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		Getenv("DB_HOST", "localhost"),
		Getenv("DB_USER", "talesoul"),
		Getenv("DB_PASSWORD", "talesoul"),
		Getenv("DB_NAME", "talesoul"),
		Getenv("DB_PORT", "5432"),
		Getenv("DB_SSLMODE", "disable"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}

	DB = db
	return nil
}

// Getenv returns the value of key or fallback when unset.
func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
