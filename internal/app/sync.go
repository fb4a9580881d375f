package app

import (
	"context"
	"io"

	"github.com/dokzlo13/lightcmd/internal/catalog"
	"github.com/dokzlo13/lightcmd/internal/config"
	"github.com/dokzlo13/lightcmd/internal/hue"
)

// SyncCatalog fetches scenes and rooms from the configured bridge and writes
// them to w as catalog YAML.
func SyncCatalog(ctx context.Context, cfg *config.Config, w io.Writer) error {
	client := hue.NewClient(cfg.Hue.Bridge, cfg.Hue.Token, hue.Options{
		Timeout:      cfg.Hue.Timeout.Duration(),
		RateLimitRPS: cfg.Hue.RateLimitRPS,
	})
	defer client.Close()

	defaultLocation := cfg.Catalog.DefaultLocation
	if defaultLocation == "" {
		defaultLocation = "living_room"
	}

	f, err := client.FetchCatalog(ctx, catalog.NormalizeLocation(defaultLocation))
	if err != nil {
		return err
	}
	return catalog.Write(w, f)
}
