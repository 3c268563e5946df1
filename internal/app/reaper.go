package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/anmol0706/kalov/internal/core"
)

// Reaper periodically evicts empty rooms older than Threshold. Rooms created
// over the REST facade and never joined have no leave event to clean them
// up; the reaper is the backstop (primary eviction stays immediate, on the
// leave that empties a room). Sweeping is idempotent.
type Reaper struct {
	Registry  *core.Registry
	Interval  time.Duration
	Threshold time.Duration
}

// Run ticks until ctx is canceled. Fire-and-forget; start it in a goroutine.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	log.Info().Str("module", "app.reaper").Dur("interval", r.Interval).
		Dur("threshold", r.Threshold).Msg("reaper started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.reaper").Msg("reaper stopped")
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Sweep runs one eviction pass.
func (r *Reaper) Sweep() int {
	removed := r.Registry.DeleteStale(time.Now(), r.Threshold)
	if removed > 0 {
		log.Info().Str("module", "app.reaper").Int("removed", removed).Msg("swept stale rooms")
	}
	return removed
}
