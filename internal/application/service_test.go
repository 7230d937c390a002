package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/bnema/classcall/internal/domain"
	"github.com/bnema/classcall/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sequentialIDs struct {
	mu   sync.Mutex
	next int
}

func (g *sequentialIDs) NewRosterID() (domain.RosterID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.next++
	return domain.RosterID(fmt.Sprintf("cc-%d", g.next)), nil
}

func newTestService(t *testing.T, lockTimer int) *Service {
	t.Helper()

	return NewService(ServiceConfig{LockTimer: lockTimer, AutoStart: true}, &sequentialIDs{}, nil)
}

func mustClaim(t *testing.T, svc *Service, author, line string) ClaimResult {
	t.Helper()

	claim, ok := domain.ParseClaim(line)
	require.True(t, ok, "claim %q should parse", line)
	result, err := svc.Claim(context.Background(), author, claim)
	require.NoError(t, err)
	return result
}

func TestServiceCommandsRequireActiveRoster(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, 60)
	ctx := context.Background()

	_, err := svc.Display(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNoActiveRoster)
	assert.ErrorIs(t, svc.SetFormat(ctx, "grid"), domain.ErrNoActiveRoster)
	_, err = svc.Close(ctx, "lead", []string{"1"})
	assert.ErrorIs(t, err, domain.ErrNoActiveRoster)
	_, err = svc.Swap(ctx, "1", "2")
	assert.ErrorIs(t, err, domain.ErrNoActiveRoster)
	_, err = svc.Mode(ctx, "Raid")
	assert.ErrorIs(t, err, domain.ErrNoActiveRoster)
	_, err = svc.Leader(ctx, "lead")
	assert.ErrorIs(t, err, domain.ErrNoActiveRoster)
	assert.ErrorIs(t, svc.Lock(ctx), domain.ErrNoActiveRoster)
	assert.ErrorIs(t, svc.Unlock(ctx), domain.ErrNoActiveRoster)
	assert.ErrorIs(t, svc.SetLockTimer(ctx, 10), domain.ErrNoActiveRoster)
	_, err = svc.LockTimer(ctx)
	assert.ErrorIs(t, err, domain.ErrNoActiveRoster)
	_, err = svc.Snapshot(ctx)
	assert.ErrorIs(t, err, domain.ErrNoActiveRoster)
	assert.Equal(t, TickResult{}, svc.Tick(ctx))
}

func TestServiceStartResetStop(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, 60)
	ctx := context.Background()

	id, err := svc.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.RosterID("cc-1"), id)
	mustClaim(t, svc, "alice", "1 Medic")

	id, err = svc.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.RosterID("cc-2"), id)

	snapshot, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Entries)
	assert.False(t, snapshot.Used)
	assert.Equal(t, 60, snapshot.LockTimer)

	svc.Stop(ctx)
	assert.False(t, svc.Active())
}

func TestServiceStartFailsWhenIDGenerationFails(t *testing.T) {
	t.Parallel()

	ids := mocks.NewMockRosterIDGenerator(t)
	idErr := errors.New("entropy exhausted")
	ids.EXPECT().NewRosterID().Return(domain.RosterID(""), idErr)

	svc := NewService(ServiceConfig{LockTimer: 60}, ids, nil)

	_, err := svc.Start(context.Background())
	require.ErrorIs(t, err, idErr)
	assert.False(t, svc.Active())
}

func TestServiceClaimAutoStarts(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, 60)

	result := mustClaim(t, svc, "alice", "3 Alpha")
	assert.True(t, result.Started)
	assert.Equal(t, "3 Alpha alice\nMode: Leader:", result.Rendered)

	result = mustClaim(t, svc, "bob", "4 Bravo")
	assert.False(t, result.Started)
}

func TestServiceClaimWithoutAutoStart(t *testing.T) {
	t.Parallel()

	svc := NewService(ServiceConfig{LockTimer: 60}, &sequentialIDs{}, nil)
	claim, _ := domain.ParseClaim("3 Alpha")

	_, err := svc.Claim(context.Background(), "alice", claim)
	require.ErrorIs(t, err, domain.ErrNoActiveRoster)
	assert.False(t, svc.Active())
}

func TestServiceClaimRejectedWhileLocked(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, 60)
	ctx := context.Background()
	mustClaim(t, svc, "alice", "1 Medic")
	require.NoError(t, svc.Lock(ctx))

	claim, _ := domain.ParseClaim("2 Scout")
	_, err := svc.Claim(ctx, "bob", claim)
	require.ErrorIs(t, err, domain.ErrRosterLocked)

	snapshot, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snapshot.Entries, 1)
}

func TestServiceAdministrativeCommandsResetInactivity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tests := []struct {
		name  string
		run   func(svc *Service) error
		reset bool
	}{
		{name: "display", run: func(svc *Service) error { _, err := svc.Display(ctx, ""); return err }, reset: true},
		{name: "set format", run: func(svc *Service) error { return svc.SetFormat(ctx, "grid") }, reset: true},
		{name: "mode", run: func(svc *Service) error { _, err := svc.Mode(ctx, "Raid"); return err }, reset: true},
		{name: "leader", run: func(svc *Service) error { _, err := svc.Leader(ctx, ""); return err }, reset: true},
		{name: "lock", run: func(svc *Service) error { return svc.Lock(ctx) }, reset: true},
		{name: "unlock", run: func(svc *Service) error { return svc.Unlock(ctx) }, reset: true},
		{name: "close", run: func(svc *Service) error { _, err := svc.Close(ctx, "lead", []string{"1"}); return err }, reset: true},
		{name: "set lock timer", run: func(svc *Service) error { return svc.SetLockTimer(ctx, 120) }},
		{name: "swap", run: func(svc *Service) error { _, err := svc.Swap(ctx, "1", "2"); return err }},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := newTestService(t, 60)
			mustClaim(t, svc, "alice", "1 Medic")
			for range 5 {
				svc.Tick(ctx)
			}

			require.NoError(t, tc.run(svc))

			snapshot, err := svc.Snapshot(ctx)
			require.NoError(t, err)
			if tc.reset {
				assert.Zero(t, snapshot.SinceLastCall)
			} else {
				assert.Equal(t, 5, snapshot.SinceLastCall)
			}
		})
	}
}

func TestServiceRejectedFormatKeepsInactivity(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, 60)
	ctx := context.Background()
	mustClaim(t, svc, "alice", "1 Medic")
	for range 5 {
		svc.Tick(ctx)
	}

	_, err := svc.Display(ctx, "table")
	require.ErrorIs(t, err, domain.ErrInvalidFormat)
	require.ErrorIs(t, svc.SetFormat(ctx, "table"), domain.ErrInvalidFormat)

	snapshot, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, snapshot.SinceLastCall)
}

func TestServiceDisplayFormatOverride(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, 60)
	ctx := context.Background()
	mustClaim(t, svc, "alice", "1 Medic")

	grid, err := svc.Display(ctx, "grid")
	require.NoError(t, err)
	assert.Contains(t, grid, "# | Class | Caller | Status")

	plain, err := svc.Display(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "1 Medic alice\nMode: Leader:", plain)

	_, err = svc.Display(ctx, "fancy")
	assert.ErrorIs(t, err, domain.ErrInvalidFormat)
}

func TestServiceImport(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, 60)
	ctx := context.Background()

	result, err := svc.Import(ctx, "2 Medic alice 5 Scout bob -- Mode: Raid Leader: lead")
	require.NoError(t, err)
	assert.True(t, result.Started)
	assert.Contains(t, result.Rendered, "5 Scout bob --")

	_, err = svc.Import(ctx, "nonsense")
	require.ErrorIs(t, err, domain.ErrInvalidImport)

	snapshot, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snapshot.Entries, 2)
	assert.Equal(t, "Raid", snapshot.Mode)
}

func TestServiceModeAndLeaderQueries(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, 60)
	ctx := context.Background()
	_, err := svc.Start(ctx)
	require.NoError(t, err)

	mode, err := svc.Mode(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, mode)

	mode, err = svc.Mode(ctx, "Hard Raid")
	require.NoError(t, err)
	assert.Equal(t, "Hard Raid", mode)

	leader, err := svc.Leader(ctx, "Zed")
	require.NoError(t, err)
	assert.Equal(t, "Zed", leader)

	leader, err = svc.Leader(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Zed", leader)
}

func TestServiceSwapRejectedWhileLocked(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, 60)
	ctx := context.Background()
	mustClaim(t, svc, "alice", "2 Foo")
	mustClaim(t, svc, "bob", "7 Bar")
	require.NoError(t, svc.Lock(ctx))

	_, err := svc.Swap(ctx, "2", "7")
	require.ErrorIs(t, err, domain.ErrRosterLocked)

	snapshot, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Foo", snapshot.Entries[0].Name)
	assert.Equal(t, 2, snapshot.Entries[0].Position)
}

func TestServiceTickAutoLocksOnce(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, 3)
	ctx := context.Background()
	mustClaim(t, svc, "alice", "1 Medic")

	assert.False(t, svc.Tick(ctx).AutoLocked)
	assert.False(t, svc.Tick(ctx).AutoLocked)
	result := svc.Tick(ctx)
	assert.True(t, result.AutoLocked)
	assert.Equal(t, 3, result.LockTimer)
	assert.False(t, svc.Tick(ctx).AutoLocked)

	snapshot, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snapshot.Locked)
}

func TestServiceConcurrentClaimsAndTicks(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, 1_000_000)
	ctx := context.Background()
	_, err := svc.Start(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 1; i <= 9; i++ {
		wg.Add(2)
		go func(position int) {
			defer wg.Done()
			claim := domain.Claim{Position: position, Rest: "Class"}
			_, _ = svc.Claim(ctx, fmt.Sprintf("player-%d", position), claim)
		}(i)
		go func() {
			defer wg.Done()
			svc.Tick(ctx)
		}()
	}
	wg.Wait()

	snapshot, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot.Entries, 9)
	for i, entry := range snapshot.Entries {
		assert.Equal(t, i+1, entry.Position)
	}
}
