package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bnema/classcall/internal/ports"
)

const DefaultMonitorInterval = time.Second

type MonitorConfig struct {
	Interval time.Duration
	// AnnounceChannel receives the auto-lock notice. Empty disables it.
	AnnounceChannel string
}

// Monitor drives the inactivity tick of the active roster.
type Monitor struct {
	service  *Service
	clock    ports.Clock
	sender   ports.Sender
	interval time.Duration
	channel  string
	logger   *slog.Logger
}

func NewMonitor(service *Service, clock ports.Clock, sender ports.Sender, cfg MonitorConfig, logger *slog.Logger) *Monitor {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultMonitorInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Monitor{
		service:  service,
		clock:    clock,
		sender:   sender,
		interval: cfg.Interval,
		channel:  cfg.AnnounceChannel,
		logger:   logger,
	}
}

// Run ticks until ctx is done. Ticks that arrive while the previous one is
// still being handled are dropped by the ticker.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
			m.Tick(ctx)
		}
	}
}

// Tick runs one inactivity step and announces an auto-lock when configured.
func (m *Monitor) Tick(ctx context.Context) TickResult {
	result := m.service.Tick(ctx)
	if !result.AutoLocked || m.sender == nil || m.channel == "" {
		return result
	}

	text := fmt.Sprintf("Class Call locked after %d seconds of inactivity.", result.LockTimer)
	if err := m.sender.Send(ctx, m.channel, text); err != nil {
		m.logger.WarnContext(ctx, "announce auto-lock", "roster_id", result.RosterID, "channel", m.channel, "err", err)
	}
	return result
}
