package application

import (
	"context"

	"github.com/bnema/classcall/internal/domain"
)

// Snapshot is a read-only copy of the active roster.
type Snapshot struct {
	ID            domain.RosterID
	Entries       []domain.SlotEntry
	Mode          string
	Leader        string
	Locked        bool
	LockTimer     int
	SinceLastCall int
	Used          bool
	Format        domain.Format
}

func (s *Service) Snapshot(_ context.Context) (Snapshot, error) {
	var snapshot Snapshot
	err := s.withRoster(func(r *domain.Roster) error {
		snapshot = Snapshot{
			ID:            r.ID,
			Entries:       r.Entries(),
			Mode:          r.Mode,
			Leader:        r.Leader,
			Locked:        r.Locked,
			LockTimer:     r.LockTimer,
			SinceLastCall: r.SinceLastCall,
			Used:          r.Used,
			Format:        r.Format(),
		}
		return nil
	})
	return snapshot, err
}

// Active reports whether a roster is currently running.
func (s *Service) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.roster != nil
}
