package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"barberq.backend/internal/config"
	"barberq.backend/internal/infrastructure/datasources/postgres"
	"barberq.backend/internal/infrastructure/repositories"
	"github.com/joho/godotenv"
)

type turnResetter interface {
	ResetAllTurns(ctx context.Context) (int64, error)
}

type resetDeps struct {
	loadEnv func() error
	loadCfg func() (*config.Config, error)
	prepare func(cfg *config.Config) (turnResetter, io.Closer, error)
	out     io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultResetDeps() resetDeps {
	return resetDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (turnResetter, io.Closer, error) {
			sqlDB, err := postgres.NewConnection(cfg.Database)
			if err != nil {
				return nil, nil, err
			}
			db, err := postgres.NewGorm(sqlDB)
			if err != nil {
				_ = sqlDB.Close()
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}
			return repositories.NewMerchantRepository(db), sqlDB, nil
		},
		out: os.Stdout,
	}
}

func runResetTurns(args []string, deps resetDeps) error {
	def := defaultResetDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.out == nil {
		deps.out = def.out
	}

	fs := flag.NewFlagSet("resetturns", flag.ContinueOnError)
	timeout := fs.Duration("timeout", 30*time.Second, "maximum time for the reset")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *timeout <= 0 {
		return fmt.Errorf("--timeout must be positive")
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg, err := deps.loadCfg()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	resetter, closer, err := deps.prepare(cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	count, err := resetter.ResetAllTurns(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset turns: %w", err)
	}
	_, _ = fmt.Fprintf(deps.out, "Reset current turn for %d barbershops\n", count)
	return nil
}

func main() {
	if err := runResetTurns(os.Args[1:], defaultResetDeps()); err != nil {
		log.Fatal(err)
	}
}
