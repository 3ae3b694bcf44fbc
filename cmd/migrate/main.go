// Command migrate applies and scaffolds the SQL migrations under migrations/.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/pentol/backend/internal/infrastructure/config"
	"github.com/pentol/backend/internal/infrastructure/logger"
	"github.com/pentol/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
)

const usage = `PENTOL database migrations

Usage:
  migrate [flags] <command> [argument]

Commands:
  up                    apply every pending migration
  down                  revert every migration
  step <n>              apply n migrations, or revert when n is negative
  goto <version>        migrate to version
  version               print the current version
  force <version>       record version without running it (clears dirty)
  drop -confirm         drop every database object
  create <name> [desc]  scaffold the next numbered up/down pair
  list                  list migration files

Flags:
  -path string          migrations directory (default ./migrations)
  -log-level string     debug, info, warn or error (default info)

The database is read from config.toml and PENTOL_DATABASE_* variables.
`

// schemaCommand runs against a connected Migrator
type schemaCommand func(m *migration.Migrator, log *zap.Logger, arg string) error

var schemaCommands = map[string]schemaCommand{
	"up":   func(m *migration.Migrator, _ *zap.Logger, _ string) error { return m.Up() },
	"down": func(m *migration.Migrator, _ *zap.Logger, _ string) error { return m.Down() },
	"step": func(m *migration.Migrator, _ *zap.Logger, arg string) error {
		n, err := parseInt(arg, "step count")
		if err != nil {
			return err
		}
		return m.Steps(n)
	},
	"goto": func(m *migration.Migrator, _ *zap.Logger, arg string) error {
		v, err := parseInt(arg, "version")
		if err != nil {
			return err
		}
		if v < 0 {
			return errors.New("version must not be negative")
		}
		return m.GoTo(uint(v))
	},
	"version": func(m *migration.Migrator, log *zap.Logger, _ string) error {
		st, err := m.Status()
		if err != nil {
			return err
		}
		log.Info("Current migration version", zap.Uint("version", st.Version), zap.Bool("dirty", st.Dirty))
		return nil
	},
	"force": func(m *migration.Migrator, _ *zap.Logger, arg string) error {
		v, err := parseInt(arg, "version")
		if err != nil {
			return err
		}
		return m.Force(v)
	},
	"drop": func(m *migration.Migrator, _ *zap.Logger, arg string) error {
		if arg != "-confirm" && arg != "--confirm" {
			return errors.New("refusing to drop without -confirm")
		}
		return m.Drop()
	},
}

func main() {
	dir := flag.String("path", "", "migrations directory")
	level := flag.String("log-level", "info", "log level")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	command, args := flag.Arg(0), flag.Args()[1:]

	log, err := logger.New(&logger.Config{Level: *level, Format: "console", Output: "stdout", TimeFormat: "15:04:05"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	path, err := migrationsDir(*dir)
	if err != nil {
		log.Fatal("Failed to resolve migrations directory", zap.Error(err))
	}
	log = log.With(zap.String("command", command), zap.String("path", path))

	if err := run(log, path, command, args); err != nil {
		log.Fatal("Migration command failed", zap.Error(err))
	}
}

// migrationsDir prefers the flag, then ./migrations, then the directory two
// levels above the binary.
func migrationsDir(explicit string) (string, error) {
	if explicit != "" {
		return filepath.Abs(explicit)
	}
	if _, err := os.Stat("migrations"); err == nil {
		return filepath.Abs("migrations")
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "..", "..", "migrations")
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Abs(candidate)
		}
	}
	return filepath.Abs("migrations")
}

func run(log *zap.Logger, path, command string, args []string) error {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}

	switch command {
	case "create":
		if arg == "" {
			return errors.New("usage: migrate create <name> [description]")
		}
		description := ""
		if len(args) > 1 {
			description = args[1]
		}
		mf, err := migration.CreateMigration(path, arg, description)
		if err != nil {
			return err
		}
		log.Info("Migration created", zap.String("up", mf.UpPath), zap.String("down", mf.DownPath))
		return nil
	case "list":
		names, err := migration.ListMigrations(path)
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	}

	cmd, ok := schemaCommands[command]
	if !ok {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, path, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return cmd(m, log, arg)
}

func parseInt(arg, what string) (int, error) {
	if arg == "" {
		return 0, fmt.Errorf("%s required", what)
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, arg)
	}
	return n, nil
}
