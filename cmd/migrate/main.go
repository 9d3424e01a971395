package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"lostfound-api/internal/core/config"
	"lostfound-api/internal/core/database"
	"lostfound-api/internal/core/logger"
)

func main() {
	var (
		dbURL = flag.String("database", os.Getenv("DATABASE_URL"), "migrate database URL; derived from db.* config when empty")
		dir   = flag.String("path", "", "migrations directory (default ./migrations/<driver>)")
	)
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg, err := config.Read(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, cleanup := logger.New(cfg.Log)
	defer cleanup()
	log = log.Named("migrate")

	url := *dbURL
	if url == "" {
		url, err = database.MigrateURL(database.Opts{
			Driver: cfg.DB.Driver, DSN: cfg.DB.DSN,
			Username: cfg.DB.Username, Password: cfg.DB.Password,
		})
		if err != nil {
			log.Fatal("derive database url", zap.Error(err))
		}
	}
	path := *dir
	if path == "" {
		path = "./migrations/" + cfg.DB.Driver
	}

	m, err := migrate.New("file://"+path, url)
	if err != nil {
		log.Fatal("migration init failed", zap.Error(err), zap.String("path", path))
	}
	defer m.Close()
	m.Log = migrateLogger{log.Sugar()}

	if err := run(m, args); err != nil {
		log.Error("migration failed", zap.String("cmd", args[0]), zap.Error(err))
		cleanup()
		os.Exit(1)
	}
}

func run(m *migrate.Migrate, args []string) error {
	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		m.Log.Printf("up completed")
	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return fmt.Errorf("down: invalid steps argument %q", args[1])
			}
			steps = n
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		m.Log.Printf("down completed, steps=%d", steps)
	case "version":
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return err
		}
		fmt.Printf("version: %d  dirty: %v\n", v, dirty)
	case "force":
		if len(args) < 2 {
			return errors.New("force: version argument required")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("force: invalid version %q", args[1])
		}
		return m.Force(v)
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

type migrateLogger struct{ s *zap.SugaredLogger }

func (l migrateLogger) Printf(format string, v ...any) { l.s.Infof(format, v...) }
func (l migrateLogger) Verbose() bool                  { return false }

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [-database URL] [-path DIR] <command> [args]

Commands:
  up           Apply all pending migrations
  down [N]     Roll back N migrations (default: 1)
  version      Print current migration version
  force <V>    Force set migration version (clears dirty state)

Without -database, the URL is derived from the db.* section of the config
(CONFIG_PATH, APP_DB_* env). Only postgres and mysql are supported; sqlite
relies on db.auto_migrate.`)
}
