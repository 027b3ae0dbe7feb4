package main

import (
	"database/sql"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"mmfc-attendance/internal/database/migrations"
)

func main() {
	var (
		dir     = flag.String("dir", "./migrations", "migrations directory")
		down    = flag.Bool("down", false, "roll back all migrations")
		version = flag.Uint("to", 0, "migrate to a specific version (0 = latest)")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using environment variables")
	}

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN not set")
	}

	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL: %v", err)
	}
	defer sqldb.Close()

	if err := sqldb.Ping(); err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}

	bunDB := bun.NewDB(sqldb, pgdialect.New())
	runner := migrations.NewRunner(bunDB, migrations.Options{MigrationsDir: *dir})
	defer runner.Close()

	switch {
	case *down:
		if err := runner.MigrateDown(); err != nil {
			log.Fatalf("Migration down failed: %v", err)
		}
		log.Println("Rolled back all migrations")
	case *version > 0:
		if err := runner.MigrateTo(*version); err != nil {
			log.Fatalf("Migration to version %d failed: %v", *version, err)
		}
		log.Printf("Migrated to version %d", *version)
	default:
		if err := runner.MigrateUp(); err != nil {
			log.Fatalf("Migration up failed: %v", err)
		}
		log.Println("Migrations applied")
	}
}
