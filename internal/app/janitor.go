package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Pruner deletes ledger entries past retention.
type Pruner interface {
	DeleteOlderThan(retention time.Duration) (int64, error)
}

// Janitor enforces ledger retention once at start and then on every tick.
type Janitor struct {
	pruner    Pruner
	retention time.Duration
	interval  time.Duration
}

// NewJanitor creates a janitor. A zero retention disables pruning.
func NewJanitor(pruner Pruner, retention, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Janitor{pruner: pruner, retention: retention, interval: interval}
}

// Run prunes until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	if j.retention <= 0 {
		return
	}

	j.prune()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.prune()
		}
	}
}

func (j *Janitor) prune() {
	deleted, err := j.pruner.DeleteOlderThan(j.retention)
	if err != nil {
		log.Error().Err(err).Msg("Failed to cleanup old ledger entries")
	} else if deleted > 0 {
		log.Info().Int64("deleted", deleted).Dur("retention", j.retention).Msg("Cleaned up old ledger entries")
	}
}
