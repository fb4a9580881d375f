package hue

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/lightcmd/internal/catalog"
)

// FetchCatalog builds a catalog file from the bridge's scenes and rooms.
// Each room becomes a location pointing at its grouped_light service.
// Rooms without a grouped_light service are skipped.
func (c *Client) FetchCatalog(ctx context.Context, defaultLocation string) (catalog.File, error) {
	scenes, err := c.GetScenes(ctx)
	if err != nil {
		return catalog.File{}, fmt.Errorf("failed to fetch scenes: %w", err)
	}

	rooms, err := c.GetRooms(ctx)
	if err != nil {
		return catalog.File{}, fmt.Errorf("failed to fetch rooms: %w", err)
	}

	f := catalog.File{DefaultLocation: defaultLocation}

	for _, room := range rooms {
		groupID := room.GroupedLightID()
		if groupID == "" {
			log.Warn().Str("room", room.Metadata.Name).Msg("Room has no grouped_light service, skipping")
			continue
		}
		f.Locations = append(f.Locations, catalog.Entry{
			Name: catalog.NormalizeLocation(room.Metadata.Name),
			ID:   groupID,
		})
	}

	for _, scene := range scenes {
		f.Scenes = append(f.Scenes, catalog.Entry{
			Name: catalog.NormalizeScene(scene.Metadata.Name),
			ID:   scene.ID,
		})
	}

	log.Info().
		Int("scenes", len(f.Scenes)).
		Int("locations", len(f.Locations)).
		Msg("Fetched catalog from bridge")

	return f, nil
}
