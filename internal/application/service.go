package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bnema/classcall/internal/domain"
	"github.com/bnema/classcall/internal/ports"
)

type ServiceConfig struct {
	// LockTimer seeds every new roster's auto-lock threshold, in seconds.
	LockTimer int
	// AutoStart lets a claim start a roster when none is active.
	AutoStart bool
}

// Service holds the single active roster, if any, and serialises every
// command, claim and monitor tick behind one mutex.
type Service struct {
	mu     sync.Mutex
	roster *domain.Roster

	cfg    ServiceConfig
	ids    ports.RosterIDGenerator
	logger *slog.Logger
}

func NewService(cfg ServiceConfig, ids ports.RosterIDGenerator, logger *slog.Logger) *Service {
	if cfg.LockTimer <= 0 {
		cfg.LockTimer = domain.DefaultLockTimer
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Service{
		cfg:    cfg,
		ids:    ids,
		logger: logger,
	}
}

// Start replaces any active roster with a fresh one.
func (s *Service) Start(ctx context.Context) (domain.RosterID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.startLocked()
	if err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "class call started", "roster_id", id)
	return id, nil
}

// Reset is Start under another name; the previous roster is discarded.
func (s *Service) Reset(ctx context.Context) (domain.RosterID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.activeID()
	id, err := s.startLocked()
	if err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "class call restarted", "roster_id", id, "previous_roster_id", previous)
	return id, nil
}

func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.InfoContext(ctx, "class call stopped", "roster_id", s.activeID())
	s.roster = nil
}

// Display renders the active roster, in format when given, else in the
// roster's own format.
func (s *Service) Display(ctx context.Context, format string) (string, error) {
	var rendered string
	err := s.withRoster(func(r *domain.Roster) error {
		if format == "" {
			r.Touch()
			rendered = r.String()
			return nil
		}
		parsed, err := domain.ParseFormat(format)
		if err != nil {
			return err
		}
		r.Touch()
		rendered = r.Export(parsed)
		return nil
	})
	return rendered, err
}

func (s *Service) SetFormat(ctx context.Context, format string) error {
	return s.withRoster(func(r *domain.Roster) error {
		if err := r.SetFormat(format); err != nil {
			return err
		}
		r.Touch()
		s.logger.DebugContext(ctx, "format changed", "roster_id", r.ID, "format", r.Format())
		return nil
	})
}

// ImportResult reports the outcome of a successful import.
type ImportResult struct {
	Started  bool
	Rendered string
}

// Import starts a roster when none is active, then replaces its entries.
// The started roster is kept even when the import itself fails.
func (s *Service) Import(ctx context.Context, text string) (ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result ImportResult
	if s.roster == nil {
		id, err := s.startLocked()
		if err != nil {
			return result, err
		}
		result.Started = true
		s.logger.InfoContext(ctx, "class call started for import", "roster_id", id)
	}

	if err := s.roster.Import(text); err != nil {
		s.logger.DebugContext(ctx, "import rejected", "roster_id", s.roster.ID, "err", err)
		return result, fmt.Errorf("import class call: %w", err)
	}

	result.Rendered = s.roster.String()
	s.logger.InfoContext(ctx, "class call imported", "roster_id", s.roster.ID, "entries", len(s.roster.Entries()))
	return result, nil
}

// ClaimResult reports the outcome of an accepted claim.
type ClaimResult struct {
	Started  bool
	Rendered string
}

// Claim applies a parsed claim from author. Locked rosters reject claims;
// an absent roster is started first when AutoStart is set.
func (s *Service) Claim(ctx context.Context, author string, claim domain.Claim) (ClaimResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result ClaimResult
	if s.roster == nil {
		if !s.cfg.AutoStart {
			return result, domain.ErrNoActiveRoster
		}
		id, err := s.startLocked()
		if err != nil {
			return result, err
		}
		result.Started = true
		s.logger.InfoContext(ctx, "class call started by claim", "roster_id", id, "author", author)
	}

	if s.roster.Locked {
		return result, domain.ErrRosterLocked
	}

	s.roster.ReceiveCall(author, claim)
	s.logger.DebugContext(ctx, "claim accepted", "roster_id", s.roster.ID, "author", author, "position", claim.Position)

	result.Rendered = s.roster.String()
	return result, nil
}

func (s *Service) Close(ctx context.Context, author string, slots []string) (string, error) {
	var rendered string
	err := s.withRoster(func(r *domain.Roster) error {
		if err := r.Close(author, slots); err != nil {
			return err
		}
		s.logger.DebugContext(ctx, "slots closed", "roster_id", r.ID, "author", author, "slots", slots)
		rendered = r.String()
		return nil
	})
	return rendered, err
}

func (s *Service) Swap(ctx context.Context, first, second string) (string, error) {
	var rendered string
	err := s.withRoster(func(r *domain.Roster) error {
		if err := r.Swap(first, second); err != nil {
			return err
		}
		s.logger.DebugContext(ctx, "slots swapped", "roster_id", r.ID, "first", first, "second", second)
		rendered = r.String()
		return nil
	})
	return rendered, err
}

// Mode sets the mode when value is not empty and returns the current mode.
func (s *Service) Mode(ctx context.Context, value string) (string, error) {
	var mode string
	err := s.withRoster(func(r *domain.Roster) error {
		r.Touch()
		if value != "" {
			r.Mode = value
		}
		mode = r.Mode
		return nil
	})
	return mode, err
}

// Leader sets the leader when value is not empty and returns the current
// leader.
func (s *Service) Leader(ctx context.Context, value string) (string, error) {
	var leader string
	err := s.withRoster(func(r *domain.Roster) error {
		r.Touch()
		if value != "" {
			r.Leader = value
		}
		leader = r.Leader
		return nil
	})
	return leader, err
}

func (s *Service) Lock(ctx context.Context) error {
	return s.withRoster(func(r *domain.Roster) error {
		r.Touch()
		r.Lock()
		s.logger.InfoContext(ctx, "class call locked", "roster_id", r.ID)
		return nil
	})
}

func (s *Service) Unlock(ctx context.Context) error {
	return s.withRoster(func(r *domain.Roster) error {
		r.Touch()
		r.Unlock()
		s.logger.InfoContext(ctx, "class call unlocked", "roster_id", r.ID)
		return nil
	})
}

func (s *Service) SetLockTimer(ctx context.Context, seconds int) error {
	return s.withRoster(func(r *domain.Roster) error {
		if err := r.SetLockTimer(seconds); err != nil {
			return err
		}
		s.logger.DebugContext(ctx, "lock timer changed", "roster_id", r.ID, "seconds", seconds)
		return nil
	})
}

func (s *Service) LockTimer(ctx context.Context) (int, error) {
	var seconds int
	err := s.withRoster(func(r *domain.Roster) error {
		seconds = r.LockTimer
		return nil
	})
	return seconds, err
}

// TickResult describes one inactivity tick.
type TickResult struct {
	Active     bool
	AutoLocked bool
	RosterID   domain.RosterID
	LockTimer  int
}

// Tick advances the active roster's inactivity counter by one second.
func (s *Service) Tick(ctx context.Context) TickResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.roster == nil {
		return TickResult{}
	}

	result := TickResult{
		Active:     true,
		AutoLocked: s.roster.Tick(),
		RosterID:   s.roster.ID,
		LockTimer:  s.roster.LockTimer,
	}
	if result.AutoLocked {
		s.logger.InfoContext(ctx, "class call auto-locked", "roster_id", s.roster.ID, "lock_timer", s.roster.LockTimer)
	}
	return result
}

func (s *Service) withRoster(fn func(*domain.Roster) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.roster == nil {
		return domain.ErrNoActiveRoster
	}
	return fn(s.roster)
}

func (s *Service) startLocked() (domain.RosterID, error) {
	if s.ids == nil {
		return "", errors.New("roster id generator is not configured")
	}
	id, err := s.ids.NewRosterID()
	if err != nil {
		return "", fmt.Errorf("generate roster id: %w", err)
	}
	s.roster = domain.NewRoster(id, s.cfg.LockTimer)
	return id, nil
}

func (s *Service) activeID() domain.RosterID {
	if s.roster == nil {
		return ""
	}
	return s.roster.ID
}
