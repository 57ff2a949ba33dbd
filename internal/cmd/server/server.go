// Package server parses preset service flags and launches the service.
package server

import (
	"context"
	"flag"

	app "github.com/lumenfield/lumenfield/internal/app/server"
	entrypoint "github.com/lumenfield/lumenfield/internal/platform/cmd"
)

// Config holds preset server command configuration.
type Config struct {
	Port       int    `env:"LUMENFIELD_PORT" envDefault:"8080"`
	DBPath     string `env:"LUMENFIELD_DB_PATH" envDefault:"data/presets.db"`
	CatalogURL string `env:"LUMENFIELD_CATALOG_URL"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The preset HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the SQLite preset database")
	fs.StringVar(&cfg.CatalogURL, "catalog-url", cfg.CatalogURL, "URL of the factory preset catalog (empty disables the factory tier)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the preset HTTP API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServicePresets, func(ctx context.Context) error {
		return app.Run(ctx, app.Options{
			Port:       cfg.Port,
			DBPath:     cfg.DBPath,
			CatalogURL: cfg.CatalogURL,
		})
	})
}
