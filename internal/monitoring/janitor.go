package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/isdelr/inventory-manager-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Purger removes revocation entries whose tokens have expired anyway.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Janitor runs housekeeping jobs on a cron schedule.
type Janitor struct {
	cron     *cron.Cron
	purger   Purger
	eventSvc services.EventServiceProvider
	timeout  time.Duration
}

// NewJanitor creates a janitor that purges expired revocations on schedule,
// a standard five-field cron expression.
func NewJanitor(schedule string, purger Purger, eventSvc services.EventServiceProvider) (*Janitor, error) {
	j := &Janitor{
		cron:     cron.New(),
		purger:   purger,
		eventSvc: eventSvc,
		timeout:  30 * time.Second,
	}
	if _, err := j.cron.AddFunc(schedule, j.PurgeRevocations); err != nil {
		return nil, fmt.Errorf("invalid purge schedule %q: %w", schedule, err)
	}
	return j, nil
}

// Run starts the cron loop and blocks until ctx is cancelled. A job that is
// running at that point is allowed to finish.
func (j *Janitor) Run(ctx context.Context) {
	log.Info().Msg("Starting background janitor...")
	j.cron.Start()
	<-ctx.Done()
	<-j.cron.Stop().Done()
	log.Info().Msg("Stopping background janitor.")
}

// PurgeRevocations deletes expired revocation entries once.
func (j *Janitor) PurgeRevocations() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	n, err := j.purger.PurgeExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Janitor: Failed to purge revoked tokens")
		if j.eventSvc != nil {
			_ = j.eventSvc.CreateEvent(ctx, "system.janitor.fail", "error", fmt.Sprintf("Purging revoked tokens failed: %v", err), nil)
		}
		return
	}
	if n > 0 {
		log.Info().Int64("purged", n).Msg("Janitor: Purged expired revoked tokens")
	}
}
