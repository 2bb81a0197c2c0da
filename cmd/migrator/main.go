// Command migrator applies the submission history schema with goose.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, or status")
		dir     = flag.String("dir", "db/migrations", "Directory containing migration files")
	)
	flag.Parse()

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load("configs/.env")
	}

	pgHost := getEnv("PG_HOST", "localhost")
	pgPort := getEnv("PG_PORT", "5432")
	pgUser := os.Getenv("PG_USER")
	pgPassword := os.Getenv("PG_PASSWORD")
	pgDatabase := os.Getenv("PG_DATABASE")
	pgSSLMode := getEnv("PG_SSL_MODE", "disable")

	if pgUser == "" || pgPassword == "" || pgDatabase == "" {
		log.Fatal().Msg("PG_USER, PG_PASSWORD and PG_DATABASE are required")
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		pgHost, pgPort, pgUser, pgPassword, pgDatabase, pgSSLMode)

	migrationDir, err := filepath.Abs(*dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", *dir).Msg("failed to resolve migration directory")
	}
	if _, err := os.Stat(migrationDir); os.IsNotExist(err) {
		log.Fatal().Str("dir", migrationDir).Msg("migration directory does not exist")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database connection")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}

	log.Info().
		Str("database", pgDatabase).
		Str("migration_dir", migrationDir).
		Msg("connected to database")

	goose.SetBaseFS(nil)
	goose.SetTableName("goose_db_version")

	switch *command {
	case "up":
		if err := goose.Up(db, migrationDir); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations up")
		}
		log.Info().Msg("migrations applied successfully")
	case "down":
		if err := goose.Down(db, migrationDir); err != nil {
			log.Fatal().Err(err).Msg("failed to roll migrations back")
		}
		log.Info().Msg("migrations rolled back successfully")
	case "status":
		if err := goose.Status(db, migrationDir); err != nil {
			log.Fatal().Err(err).Msg("failed to get migration status")
		}
	default:
		log.Fatal().Str("command", *command).Msg("unknown command. Use: up, down, or status")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
