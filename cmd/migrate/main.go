package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"bolao-api/internal/domain"
	"bolao-api/internal/repository"
	"bolao-api/internal/service"
	"bolao-api/internal/service/code"
	"bolao-api/migrations"
	"bolao-api/pkg/database"
	"bolao-api/pkg/logger"
)

const usage = `Usage: migrate <command> [args]

Commands:
  up           Apply all pending migrations
  down [N]     Rollback N migrations (default: 1)
  version      Print current migration version
  force <V>    Force set migration version (bypass dirty state)
  seed         Create a demo user and an owned demo pool

Environment:
  DATABASE_URL   Required. Postgres connection string.`

func main() {
	// Load environment variables
	_ = godotenv.Load()

	log, err := logger.New(logger.Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
		Name:   "migrate",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	command := os.Args[1]
	if command == "seed" {
		if err := seed(context.Background(), dbURL, log); err != nil {
			log.WithError(err).Fatal("Failed to seed data")
		}
		return
	}

	m, err := newMigrate(dbURL)
	if err != nil {
		log.WithError(err).Fatal("Migration init failed")
	}
	defer m.Close()
	m.Log = &migrateLogger{log: log}

	switch command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.WithError(err).Fatal("Migration up failed")
		}
		log.Info("Migrations applied")

	case "down":
		steps := 1
		if len(os.Args) > 2 {
			n, err := strconv.Atoi(os.Args[2])
			if err != nil || n < 1 {
				log.WithField("steps", os.Args[2]).Fatal("Invalid steps argument")
			}
			steps = n
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.WithError(err).Fatal("Migration down failed")
		}
		log.WithField("steps", steps).Info("Migrations rolled back")

	case "version":
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			log.WithError(err).Fatal("Failed to read migration version")
		}
		fmt.Printf("version: %d  dirty: %v\n", v, dirty)

	case "force":
		if len(os.Args) < 3 {
			log.Fatal("force: version argument required")
		}
		v, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.WithField("version", os.Args[2]).Fatal("Invalid version argument")
		}
		if err := m.Force(v); err != nil {
			log.WithError(err).Fatal("Migration force failed")
		}
		log.WithField("version", v).Info("Migration version forced")

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n%s\n", command, usage)
		os.Exit(1)
	}
}

// newMigrate builds a migrator over the embedded SQL files
func newMigrate(dbURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return migrate.NewWithSourceInstance("iofs", source, pgx5URL(dbURL))
}

// pgx5URL rewrites a postgres:// URL to the scheme the pgx/v5 driver registers
func pgx5URL(dbURL string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dbURL, scheme) {
			return "pgx5://" + strings.TrimPrefix(dbURL, scheme)
		}
	}
	return dbURL
}

// seed creates a demo pool owned by a demo user through the regular service path
func seed(ctx context.Context, dbURL string, log *logger.Logger) error {
	db, err := database.NewPostgresDB(ctx, dbURL, dbURL)
	if err != nil {
		return err
	}
	defer db.Close()

	pools := service.NewPoolService(repository.NewPoolRepository(db), code.NewGenerator(6), nil, 5, log)

	demo := &domain.UserProfile{Sub: "demo-user", Name: "Demo User"}
	poolCode, err := pools.Create(ctx, "Bolão de Teste", domain.Authenticated(demo))
	if err != nil {
		return err
	}

	log.WithFields(map[string]interface{}{
		"code":  poolCode,
		"owner": demo.Sub,
	}).Info("Seed data created")
	return nil
}

type migrateLogger struct {
	log *logger.Logger
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *migrateLogger) Verbose() bool {
	return l.log.Core().Enabled(zap.DebugLevel)
}
