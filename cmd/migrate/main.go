package main

import (
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/daffodils/florist-api/internal/config"
)

// Schema migration runner. Usage:
//
//	migrate up
//	migrate down
//	migrate step <n>
//	migrate version
func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	path := flag.String("path", "migrations", "path to migrations directory")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		log.Error("missing command", "usage", "migrate [-path dir] up|down|step <n>|version")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open("pgx", cfg.DB.URL)
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		log.Error("init migration driver", "error", err)
		os.Exit(1)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+*path, "pgx5", driver)
	if err != nil {
		log.Error("init migrator", "error", err)
		os.Exit(1)
	}

	switch args[0] {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "step":
		if len(args) < 2 {
			log.Error("step requires a count")
			os.Exit(1)
		}
		var n int
		n, err = strconv.Atoi(args[1])
		if err == nil {
			err = m.Steps(n)
		}
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
			log.Error("read version", "error", verr)
			os.Exit(1)
		}
		log.Info("migration version", "version", version, "dirty", dirty)
		return
	default:
		log.Error("unknown command", "command", args[0])
		os.Exit(1)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Error("migration failed", "command", args[0], "error", err)
		os.Exit(1)
	}
	log.Info("migration complete", "command", args[0])
}
