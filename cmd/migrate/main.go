package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"

	_ "github.com/lib/pq"

	"github.com/freshkitchen/mealdesk/backend/config"
	"github.com/freshkitchen/mealdesk/backend/internal/database"
)

func main() {
	dir := flag.String("dir", "migrations", "directory holding the *.up.sql and *.down.sql files")
	steps := flag.Int("steps", 1, "number of migrations to roll back with down")
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("DATABASE_URL is not set and configuration failed: %v", err)
		}
		dsn = cfg.DatabaseURL()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	migrations, err := database.LoadMigrations(os.DirFS(*dir))
	if err != nil {
		log.Fatalf("failed to load migrations: %v", err)
	}

	ctx := context.Background()
	var done []string
	switch command {
	case "up":
		done, err = database.MigrateUp(ctx, db, migrations)
	case "down":
		done, err = database.MigrateDown(ctx, db, migrations, *steps)
	default:
		log.Fatalf("unknown command %q, want up or down", command)
	}
	for _, v := range done {
		log.Printf("%s: %s", command, v)
	}
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if len(done) == 0 {
		log.Println("nothing to do")
	}
}
