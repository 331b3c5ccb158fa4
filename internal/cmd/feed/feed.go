// Package feed parses feed command flags and serves calendar subscriptions.
package feed

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/sandeepkv93/studyd/internal/httpapi"
	entrypoint "github.com/sandeepkv93/studyd/internal/platform/cmd"
	"github.com/sandeepkv93/studyd/internal/platform/config"
	"github.com/sandeepkv93/studyd/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// Config holds feed command configuration.
type Config struct {
	Addr         string `env:"STUDYD_FEED_ADDR" envDefault:":8080"`
	DBPath       string `env:"STUDYD_DB_PATH" envDefault:"data/studyd.db"`
	Timezone     string `env:"STUDYD_TIMEZONE"`
	CalendarName string `env:"STUDYD_FEED_NAME" envDefault:"My Study Schedule"`
	HorizonDays  int    `env:"STUDYD_RECURRENCE_HORIZON" envDefault:"364"`
	RequestLogs  bool   `env:"STUDYD_FEED_REQUEST_LOGS" envDefault:"true"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.Timezone, "tz", cfg.Timezone, "IANA zone class times are entered in")
	fs.StringVar(&cfg.CalendarName, "name", cfg.CalendarName, "Calendar name advertised to subscribers")
	fs.IntVar(&cfg.HorizonDays, "horizon", cfg.HorizonDays, "Days recurring series run past today")
	fs.BoolVar(&cfg.RequestLogs, "request-logs", cfg.RequestLogs, "Log every HTTP request")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.HorizonDays <= 0 {
		return Config{}, fmt.Errorf("horizon must be positive, got %d", cfg.HorizonDays)
	}
	return cfg, nil
}

// NewServer builds the HTTP server over an open repository.
func NewServer(repo httpapi.SourceLoader, cfg Config) (*httpapi.Server, error) {
	loc, err := config.Location(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	return httpapi.NewServer(httpapi.Options{
		Sources:        repo,
		Location:       loc,
		HorizonDays:    cfg.HorizonDays,
		CalendarName:   cfg.CalendarName,
		DisableReqLogs: !cfg.RequestLogs,
	}), nil
}

// Run serves until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceFeed, func(ctx context.Context) error {
		repo, err := storage.OpenSQLite(cfg.DBPath)
		if err != nil {
			return err
		}
		defer repo.Close()

		srv, err := NewServer(repo, cfg)
		if err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			log.Printf("feed listening on %s", cfg.Addr)
			errCh <- srv.Start(cfg.Addr)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("shutdown: %w", err)
		}
		return <-errCh
	})
}
