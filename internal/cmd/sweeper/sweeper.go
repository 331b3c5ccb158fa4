// Package sweeper parses sweeper command flags and runs the reminder worker.
package sweeper

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	entrypoint "github.com/sandeepkv93/studyd/internal/platform/cmd"
	"github.com/sandeepkv93/studyd/internal/platform/config"
	"github.com/sandeepkv93/studyd/internal/reminder"
	"github.com/sandeepkv93/studyd/internal/storage"
	"github.com/sandeepkv93/studyd/internal/worker"
)

// HealthService is the service name reported alongside the overall status.
const HealthService = "studyd.sweeper"

// Config holds sweeper command configuration.
type Config struct {
	DBPath        string        `env:"STUDYD_DB_PATH" envDefault:"data/studyd.db"`
	Timezone      string        `env:"STUDYD_TIMEZONE"`
	SweepInterval time.Duration `env:"STUDYD_SWEEP_INTERVAL" envDefault:"15m"`
	UnitTimeout   time.Duration `env:"STUDYD_SWEEP_UNIT_TIMEOUT" envDefault:"10s"`
	DigestEnabled bool          `env:"STUDYD_DIGEST_ENABLED" envDefault:"true"`
	DigestHour    int           `env:"STUDYD_DIGEST_HOUR" envDefault:"7"`
	HealthPort    int           `env:"STUDYD_HEALTH_PORT" envDefault:"8090"`
	Once          bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.Timezone, "tz", cfg.Timezone, "IANA zone that decides what \"today\" is")
	fs.DurationVar(&cfg.SweepInterval, "interval", cfg.SweepInterval, "Time between reminder sweeps")
	fs.DurationVar(&cfg.UnitTimeout, "unit-timeout", cfg.UnitTimeout, "Store timeout per user")
	fs.BoolVar(&cfg.DigestEnabled, "digest", cfg.DigestEnabled, "Send the daily digest")
	fs.IntVar(&cfg.DigestHour, "digest-hour", cfg.DigestHour, "Local hour (0-23) the digest is sent")
	fs.IntVar(&cfg.HealthPort, "health-port", cfg.HealthPort, "gRPC health port; 0 disables it")
	fs.BoolVar(&cfg.Once, "once", false, "Run one sweep (and digest) and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run sweeps on schedule until ctx is cancelled, or once when cfg.Once is set.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSweeper, func(ctx context.Context) error {
		repo, err := storage.OpenSQLite(cfg.DBPath)
		if err != nil {
			return err
		}
		defer repo.Close()

		w, err := NewWorker(repo, cfg)
		if err != nil {
			return err
		}
		if cfg.Once {
			return w.RunOnce(ctx)
		}

		if cfg.HealthPort > 0 {
			stop, err := serveHealth(cfg.HealthPort)
			if err != nil {
				return err
			}
			defer stop()
		}
		return w.Run(ctx)
	})
}

// NewWorker wires the reminder sweeper over repo into a scheduled worker.
func NewWorker(repo *storage.SQLiteRepository, cfg Config) (*worker.Worker, error) {
	loc, err := config.Location(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	sw := reminder.NewSweeper(repo, repo,
		reminder.WithLocation(loc),
		reminder.WithUnitTimeout(cfg.UnitTimeout),
	)
	return worker.New(sw,
		worker.WithInterval(cfg.SweepInterval),
		worker.WithDigest(cfg.DigestEnabled, cfg.DigestHour),
		worker.WithLocation(loc),
	)
}

func serveHealth(port int) (func(), error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("listen on health port %d: %w", port, err)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(HealthService, grpc_health_v1.HealthCheckResponse_SERVING)

	go func() {
		log.Printf("health server listening on %s", lis.Addr())
		if err := grpcServer.Serve(lis); err != nil {
			log.Printf("health server: %v", err)
		}
	}()
	return func() {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
	}, nil
}
