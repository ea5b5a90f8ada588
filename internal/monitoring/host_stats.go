package monitoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/isdelr/inventory-manager-be/internal/services"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostStats is a snapshot of the machine the API runs on.
type HostStats struct {
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent"`
	MemoryUsedMB  uint64    `json:"memory_used_mb"`
	UptimeSeconds uint64    `json:"uptime_seconds"`
	SampledAt     time.Time `json:"sampled_at"`
}

// StatUpdater periodically samples host statistics and raises an event
// when memory pressure is high.
type StatUpdater struct {
	eventSvc services.EventServiceProvider
	interval time.Duration

	mu        sync.RWMutex
	latest    HostStats
	lastAlert time.Time
}

// NewStatUpdater creates a new StatUpdater. eventSvc may be nil.
func NewStatUpdater(eventSvc services.EventServiceProvider) *StatUpdater {
	return &StatUpdater{
		eventSvc: eventSvc,
		interval: 15 * time.Second,
	}
}

// Run samples immediately and then on every tick until ctx is cancelled.
func (su *StatUpdater) Run(ctx context.Context) {
	log.Info().Msg("Starting background stat updater...")
	ticker := time.NewTicker(su.interval)
	defer ticker.Stop()

	su.update()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Stopping background stat updater.")
			return
		case <-ticker.C:
			su.update()
		}
	}
}

// Latest returns the most recent snapshot. It is zero before the first sample.
func (su *StatUpdater) Latest() HostStats {
	su.mu.RLock()
	defer su.mu.RUnlock()
	return su.latest
}

func (su *StatUpdater) update() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats, err := Sample(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("StatUpdater: Failed to sample host stats")
		return
	}
	su.mu.Lock()
	su.latest = stats
	su.mu.Unlock()

	su.checkAndAlertForHighMemory(ctx, stats)
}

func (su *StatUpdater) checkAndAlertForHighMemory(ctx context.Context, stats HostStats) {
	const highMemThreshold = 90.0
	const alertCooldown = 15 * time.Minute

	if stats.MemoryPercent <= highMemThreshold || su.eventSvc == nil {
		return
	}
	if !su.lastAlert.IsZero() && time.Since(su.lastAlert) < alertCooldown {
		return
	}
	msg := fmt.Sprintf("High memory usage (%.1f%%) on the API host.", stats.MemoryPercent)
	if err := su.eventSvc.CreateEvent(ctx, "system.alert.memory", "warn", msg, nil); err != nil {
		log.Warn().Err(err).Msg("StatUpdater: Failed to record memory alert")
		return
	}
	su.lastAlert = time.Now()
}

// Sample reads CPU, memory and uptime from the host.
func Sample(ctx context.Context) (HostStats, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return HostStats{}, fmt.Errorf("read memory: %w", err)
	}
	uptime, err := host.UptimeWithContext(ctx)
	if err != nil {
		return HostStats{}, fmt.Errorf("read uptime: %w", err)
	}
	stats := HostStats{
		MemoryPercent: vm.UsedPercent,
		MemoryUsedMB:  vm.Used / 1024 / 1024,
		UptimeSeconds: uptime,
		SampledAt:     time.Now().UTC(),
	}
	// Zero interval compares against the previous call; the first call may
	// report 0.
	if pct, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pct) > 0 {
		stats.CPUPercent = pct[0]
	}
	return stats, nil
}
