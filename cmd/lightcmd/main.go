// Command lightcmd serves the natural-language home control API.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/lightcmd/internal/app"
	"github.com/dokzlo13/lightcmd/internal/config"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	flag.StringVar(&configPath, "c", "config.yaml", "Path to configuration file (shorthand)")
	syncCatalog := flag.Bool("sync-catalog", false, "Fetch scenes and rooms from the bridge, print catalog YAML and exit")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", configPath).Msg("Failed to load configuration")
	}
	configureLogger(cfg.Log)

	if *syncCatalog {
		err = printCatalog(cfg)
	} else {
		err = serve(cfg, configPath)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("lightcmd exited with error")
	}
}

// printCatalog writes the bridge's scenes and rooms to stdout as catalog YAML.
func printCatalog(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Hue.Timeout.Duration()*3)
	defer cancel()
	return app.SyncCatalog(ctx, cfg, os.Stdout)
}

func serve(cfg *config.Config, configPath string) error {
	log.Info().Str("config", configPath).Str("catalog", cfg.Catalog.Path).Msg("Starting lightcmd")

	application, err := app.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := app.NotifyContext(context.Background())
	defer stop()
	return application.Run(ctx)
}
