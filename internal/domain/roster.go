package domain

import (
	"fmt"
	"slices"
	"strings"
)

// DefaultLockTimer is the inactivity period, in seconds, used when no
// positive value is configured.
const DefaultLockTimer = 300

type RosterID string

// SlotEntry is one claimed slot of a roster.
type SlotEntry struct {
	Position int
	Name     string
	Caller   string
	Status   string
}

// Roster is a single Class Call. Entries are kept sorted by position and
// positions are unique. A Roster is not safe for concurrent use.
type Roster struct {
	ID            RosterID
	Mode          string
	Leader        string
	Locked        bool
	LockTimer     int
	SinceLastCall int
	Used          bool

	entries []SlotEntry
	format  Format
}

func NewRoster(id RosterID, lockTimer int) *Roster {
	if lockTimer <= 0 {
		lockTimer = DefaultLockTimer
	}

	return &Roster{
		ID:        id,
		LockTimer: lockTimer,
		format:    FormatDefault,
	}
}

// Entries returns a copy of the entries in position order.
func (r *Roster) Entries() []SlotEntry {
	return slices.Clone(r.entries)
}

// Entry returns the entry at position, if any.
func (r *Roster) Entry(position int) (SlotEntry, bool) {
	if i := r.indexOf(position); i >= 0 {
		return r.entries[i], true
	}
	return SlotEntry{}, false
}

// ReceiveCall applies an accepted claim. A new position creates an entry;
// an occupied position keeps its name, gains the claim text as status and
// takes the new caller.
func (r *Roster) ReceiveCall(author string, claim Claim) {
	if i := r.indexOf(claim.Position); i >= 0 {
		entry := &r.entries[i]
		entry.Status = joinStatus(entry.Status, claim.Rest)
		entry.Caller = author
	} else {
		r.entries = append(r.entries, SlotEntry{
			Position: claim.Position,
			Name:     claim.Rest,
			Caller:   author,
		})
		r.sortEntries()
	}

	r.Used = true
	r.SinceLastCall = 0
}

// Close marks every listed slot with CloseMarker, in order and without
// deduplication. All slots are validated before anything changes.
func (r *Roster) Close(author string, slots []string) error {
	claims := make([]Claim, 0, len(slots))
	for _, slot := range slots {
		claim, err := closeClaim(slot)
		if err != nil {
			return err
		}
		claims = append(claims, claim)
	}

	for _, claim := range claims {
		r.ReceiveCall(author, claim)
	}

	return nil
}

// Swap exchanges the positions of whatever entries sit at the two slots.
// Unoccupied slots are tolerated.
func (r *Roster) Swap(first, second string) error {
	a, err := ParseSlot(first)
	if err != nil {
		return err
	}
	b, err := ParseSlot(second)
	if err != nil {
		return err
	}
	if r.Locked {
		return ErrRosterLocked
	}

	ia, ib := r.indexOf(a), r.indexOf(b)
	if ia >= 0 {
		r.entries[ia].Position = b
	}
	if ib >= 0 {
		r.entries[ib].Position = a
	}
	r.sortEntries()

	return nil
}

func (r *Roster) Lock() {
	r.Locked = true
}

func (r *Roster) Unlock() {
	r.Locked = false
}

// Touch resets the inactivity counter.
func (r *Roster) Touch() {
	r.SinceLastCall = 0
}

func (r *Roster) SetLockTimer(seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("%w: %d (must be a positive number of seconds)", ErrInvalidLockTimer, seconds)
	}
	r.LockTimer = seconds
	return nil
}

// Tick advances the inactivity counter by one second and reports whether
// this tick auto-locked the roster. Only a used, unlocked roster locks, so
// the lock fires once per inactivity period.
func (r *Roster) Tick() bool {
	r.SinceLastCall++
	if r.SinceLastCall >= r.LockTimer && r.Used && !r.Locked {
		r.Locked = true
		return true
	}
	return false
}

func (r *Roster) Format() Format {
	return r.format
}

// SetFormat accepts only known format names; anything else keeps the
// current format.
func (r *Roster) SetFormat(value string) error {
	format, err := ParseFormat(value)
	if err != nil {
		return err
	}
	r.format = format
	return nil
}

// String renders the roster in its current format.
func (r *Roster) String() string {
	return r.Export(r.format)
}

func (r *Roster) indexOf(position int) int {
	return slices.IndexFunc(r.entries, func(e SlotEntry) bool {
		return e.Position == position
	})
}

func (r *Roster) sortEntries() {
	slices.SortStableFunc(r.entries, func(a, b SlotEntry) int {
		return a.Position - b.Position
	})
}

func joinStatus(status, addition string) string {
	if strings.TrimSpace(status) == "" {
		return addition
	}
	return status + " " + addition
}
