package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportRoundTrip(t *testing.T) {
	t.Parallel()

	source := sampleRoster(t)
	claim(t, source, "carol", "9 Pilot")
	claim(t, source, "dave", "9 late")

	target := NewRoster("cc-2", 60)
	require.NoError(t, target.Import(source.Export(FormatDefault)))

	assert.Equal(t, source.Entries(), target.Entries())
	assert.Equal(t, "Raid", target.Mode)
	assert.Equal(t, "lead", target.Leader)
}

func TestImportRoundTripKeepsDigitsInStatus(t *testing.T) {
	t.Parallel()

	source := NewRoster("cc-1", 60)
	claim(t, source, "bob", "4 Medic")
	claim(t, source, "carol", "4 back in 5 min")
	claim(t, source, "dave", "7 Scout")
	claim(t, source, "erin", "7 ready in 2")

	target := NewRoster("cc-2", 60)
	require.NoError(t, target.Import(source.Export(FormatDefault)))

	assert.Equal(t, []SlotEntry{
		{Position: 4, Name: "Medic", Caller: "carol", Status: "back in 5 min"},
		{Position: 7, Name: "Scout", Caller: "erin", Status: "ready in 2"},
	}, target.Entries())
}

func TestImportReadsRepeatedSlotAsStatus(t *testing.T) {
	t.Parallel()

	r := NewRoster("cc-1", 60)
	require.NoError(t, r.Import("1 Medic alice swap 1 Scout bob Mode: Leader:"))

	assert.Equal(t, []SlotEntry{
		{Position: 1, Name: "Medic", Caller: "alice", Status: "swap 1 Scout bob"},
	}, r.Entries())
}

func TestImportPrefersNewEntryWhenBothReadingsParse(t *testing.T) {
	t.Parallel()

	r := NewRoster("cc-1", 60)
	require.NoError(t, r.Import("1 Medic alice ok 2 Scout bob Mode: Leader:"))

	assert.Equal(t, []SlotEntry{
		{Position: 1, Name: "Medic", Caller: "alice", Status: "ok"},
		{Position: 2, Name: "Scout", Caller: "bob"},
	}, r.Entries())
}

// Names and callers are single tokens in the export format, so multi-word
// values shift into the following fields.
func TestImportSplitsMultiWordNames(t *testing.T) {
	t.Parallel()

	source := NewRoster("cc-1", 60)
	claim(t, source, "alice", "3 Heavy Gunner")
	claim(t, source, "Mary Jane", "5 Medic")

	target := NewRoster("cc-2", 60)
	require.NoError(t, target.Import(source.Export(FormatDefault)))

	assert.Equal(t, []SlotEntry{
		{Position: 3, Name: "Heavy", Caller: "Gunner", Status: "alice"},
		{Position: 5, Name: "Medic", Caller: "Mary", Status: "Jane"},
	}, target.Entries())
}

func TestImportCollapsesWhitespace(t *testing.T) {
	t.Parallel()

	r := NewRoster("cc-1", 60)
	require.NoError(t, r.Import("  3   Medic\talice \n\n 1 Scout   bob   --   Mode:   Leader:  "))

	assert.Equal(t, []SlotEntry{
		{Position: 1, Name: "Scout", Caller: "bob", Status: "--"},
		{Position: 3, Name: "Medic", Caller: "alice"},
	}, r.Entries())
	assert.Empty(t, r.Mode)
	assert.Empty(t, r.Leader)
}

func TestImportWithoutTrailerKeepsModeAndLeader(t *testing.T) {
	t.Parallel()

	r := NewRoster("cc-1", 60)
	r.Mode = "Raid"
	r.Leader = "lead"

	require.NoError(t, r.Import("2 Medic alice"))

	assert.Equal(t, "Raid", r.Mode)
	assert.Equal(t, "lead", r.Leader)
	assert.Len(t, r.Entries(), 1)
}

func TestImportFailuresLeaveRosterUntouched(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: "   "},
		{name: "does not start with slot", text: "Medic alice"},
		{name: "invalid slot", text: "0 Medic alice"},
		{name: "two digit slot", text: "12 Medic alice"},
		{name: "missing caller", text: "1 Medic"},
		{name: "name starts with digit", text: "1 2Medic alice"},
		{name: "caller is trailer", text: "1 Medic Mode: Leader:"},
		{name: "mode without leader", text: "1 Medic alice Mode: Raid"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := sampleRoster(t)
			before := r.Entries()

			err := r.Import(tc.text)
			require.ErrorIs(t, err, ErrInvalidImport)
			assert.Equal(t, before, r.Entries())
			assert.Equal(t, "Raid", r.Mode)
			assert.Equal(t, "lead", r.Leader)
		})
	}
}

func TestImportLeavesSessionStateAlone(t *testing.T) {
	t.Parallel()

	r := NewRoster("cc-1", 60)
	r.Locked = true
	r.SinceLastCall = 12
	require.NoError(t, r.SetFormat("grid"))

	require.NoError(t, r.Import("1 Medic alice Mode: Leader:"))

	assert.True(t, r.Locked)
	assert.Equal(t, 12, r.SinceLastCall)
	assert.False(t, r.Used)
	assert.Equal(t, FormatGrid, r.Format())
}
