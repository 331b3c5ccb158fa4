package update

import (
	"time"

	"github.com/sandeepkv93/studyd/internal/platform/config"
)

type RuntimeConfig struct {
	UserID   string
	DBPath   string
	Timezone string
	Location *time.Location
	// Now is the clock "today" is read from. Defaults to time.Now.
	Now func() time.Time
}

type runtimeEnv struct {
	UserID   string `env:"STUDYD_USER"`
	DBPath   string `env:"STUDYD_DB_PATH"`
	Timezone string `env:"STUDYD_TIMEZONE"`
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{DBPath: "data/studyd.db", Location: time.Local}
}

// RuntimeConfigFromEnv overrides base with any STUDYD_* values that are set
// and resolves the zone.
func RuntimeConfigFromEnv(base RuntimeConfig) (RuntimeConfig, error) {
	env := runtimeEnv{UserID: base.UserID, DBPath: base.DBPath, Timezone: base.Timezone}
	if err := config.ParseEnv(&env); err != nil {
		return RuntimeConfig{}, err
	}
	cfg := base
	cfg.UserID = env.UserID
	cfg.DBPath = env.DBPath
	cfg.Timezone = env.Timezone
	loc, err := config.Location(cfg.Timezone)
	if err != nil {
		return RuntimeConfig{}, err
	}
	cfg.Location = loc
	return cfg, nil
}
