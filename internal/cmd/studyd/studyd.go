// Package studyd parses the studyd command line and runs either a one-shot
// import or export, or the interactive agenda browser.
package studyd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/studyd/internal/ical"
	"github.com/sandeepkv93/studyd/internal/platform/config"
	"github.com/sandeepkv93/studyd/internal/storage"
	"github.com/sandeepkv93/studyd/internal/update"
)

var ErrUserRequired = errors.New("a user id is required (-user or STUDYD_USER)")

type Config struct {
	update.RuntimeConfig
	// ImportPath is a JSON bundle loaded before anything else runs.
	ImportPath string
	// ExportPath receives a one-shot .ics snapshot for the user.
	ExportPath string
}

// ParseConfig reads .env, then STUDYD_* variables, then flags.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	if err := config.LoadDotEnv(""); err != nil {
		return Config{}, err
	}
	rc, err := update.RuntimeConfigFromEnv(update.DefaultRuntimeConfig())
	if err != nil {
		return Config{}, err
	}
	cfg := Config{RuntimeConfig: rc}
	fs.StringVar(&cfg.UserID, "user", cfg.UserID, "User whose agenda is shown")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.Timezone, "tz", cfg.Timezone, "IANA zone used for today and class times")
	fs.StringVar(&cfg.ImportPath, "import", "", "Import a JSON bundle of users, courses, assignments and tasks")
	fs.StringVar(&cfg.ExportPath, "export", "", "Write the user's calendar to this .ics file and exit")
	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.Location, err = config.Location(cfg.Timezone); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run imports, exports or starts the browser. Import and export exit without
// starting the browser.
func Run(ctx context.Context, cfg Config) error {
	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	oneShot := false
	if cfg.ImportPath != "" {
		oneShot = true
		if err := ImportFile(ctx, repo, cfg.ImportPath); err != nil {
			return err
		}
	}
	if cfg.ExportPath != "" {
		oneShot = true
		if err := Export(ctx, repo, cfg); err != nil {
			return err
		}
	}
	if oneShot {
		return nil
	}

	if strings.TrimSpace(cfg.UserID) == "" {
		return ErrUserRequired
	}
	program := tea.NewProgram(update.NewModel(repo, cfg.RuntimeConfig), tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// ImportFile loads a storage.Bundle from a JSON file into repo.
func ImportFile(ctx context.Context, repo *storage.SQLiteRepository, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read bundle: %w", err)
	}
	var bundle storage.Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return fmt.Errorf("decode bundle %s: %w", path, err)
	}
	if err := repo.Import(ctx, bundle); err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	log.Printf("imported %d users, %d courses, %d assignments, %d tasks from %s",
		len(bundle.Users), len(bundle.Courses), len(bundle.Assignments), len(bundle.Tasks), path)
	return nil
}

// Export writes cfg.UserID's records to cfg.ExportPath.
func Export(ctx context.Context, repo *storage.SQLiteRepository, cfg Config) error {
	if strings.TrimSpace(cfg.UserID) == "" {
		return ErrUserRequired
	}
	src, err := repo.LoadSources(ctx, cfg.UserID)
	if err != nil {
		return fmt.Errorf("load %s: %w", cfg.UserID, err)
	}
	now := time.Now
	if cfg.Now != nil {
		now = cfg.Now
	}
	stats, err := ical.WriteFile(cfg.ExportPath, src, now().In(cfg.Location), ical.Options{Location: cfg.Location})
	if err != nil {
		return fmt.Errorf("export %s: %w", cfg.ExportPath, err)
	}
	if len(stats.Skipped) > 0 {
		log.Printf("export: skipped %d records without a usable date: %s", len(stats.Skipped), strings.Join(stats.Skipped, ", "))
	}
	log.Printf("exported %d events to %s", stats.Events, cfg.ExportPath)
	return nil
}
