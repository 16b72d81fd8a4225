package dataprocessing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golfpulse/pkg/contracts/domain"
)

func sessionShots(player string, date time.Time, carries ...float64) []domain.Shot {
	shots := make([]domain.Shot, 0, len(carries))
	for i, carry := range carries {
		shots = append(shots, domain.Shot{
			Player: player,
			Date:   date,
			Index:  i,
			Club:   "Driver",
			Carry:  carry,
		})
	}
	return shots
}

func TestBaseStoreMergeAppendsAndReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewBaseStore(nil)
	day := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)

	first := store.Merge(ctx, sessionShots("Martin", day, 200, 205))
	assert.Equal(t, 1, first.Version())
	assert.Equal(t, 2, first.Len())

	// Re-upload with a corrected second shot plus one new shot.
	corrected := sessionShots("Martin", day, 200, 207, 210)
	second := store.Merge(ctx, corrected)

	assert.Equal(t, 2, second.Version())
	assert.Equal(t, 3, second.Len())

	shots := second.ShotsFor("Martin", day)
	require.Len(t, shots, 3)
	assert.InDelta(t, 207, shots[1].Carry, 1e-9, "collision replaces in place")
	assert.InDelta(t, 210, shots[2].Carry, 1e-9)

	assert.Equal(t, 2, first.Len(), "older snapshots never change")
}

func TestBaseStoreMergeIdempotent(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	rows := append(sessionShots("Martin", day, 200, 205), sessionShots("Dupont", day, 180)...)

	store := NewBaseStore(nil)
	once := store.Merge(ctx, rows)
	twice := store.Merge(ctx, rows)

	assert.Equal(t, once.AllShots(), twice.AllShots())
	assert.Equal(t, once.Summaries(), twice.Summaries())
	assert.Equal(t, once.Players(), twice.Players())
}

func TestBaseStoreInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := NewBaseStore(nil)
	day := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)

	store.Merge(ctx, sessionShots("Martin", day, 200))
	store.Merge(ctx, sessionShots("Dupont", day, 180))
	snap := store.Merge(ctx, sessionShots("Martin", day.AddDate(0, 0, 7), 202))

	all := snap.AllShots()
	require.Len(t, all, 3)
	assert.Equal(t, "Martin", all[0].Player)
	assert.Equal(t, "Dupont", all[1].Player)
	assert.Equal(t, "Martin", all[2].Player, "merge order survives across sessions")
}

func TestBaseSnapshotAccessors(t *testing.T) {
	ctx := context.Background()
	store := NewBaseStore(nil)
	june5 := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	june12 := june5.AddDate(0, 0, 7)

	store.Merge(ctx, sessionShots("Martin", june12, 202, 204))
	store.Merge(ctx, sessionShots("Martin", june5, 200))
	snap := store.Merge(ctx, sessionShots("Dupont", june5, 180))

	assert.Equal(t, []string{"Dupont", "Martin"}, snap.Players())
	assert.Equal(t, []time.Time{june5, june12}, snap.SessionDatesFor("Martin"), "dates sort ascending regardless of merge order")

	keys := snap.SessionsOn(june5)
	require.Len(t, keys, 2)
	assert.Equal(t, "Dupont", keys[0].Player)
	assert.Equal(t, "Martin", keys[1].Player)

	sum, ok := snap.SummaryFor("Martin", june12)
	require.True(t, ok)
	assert.Equal(t, 2, sum.TotalShots)
	assert.Equal(t, 2, sum.GoodDriveCount)

	summaries := snap.Summaries()
	require.Len(t, summaries, 3)
	assert.Equal(t, june5, summaries[0].Date)
	assert.Equal(t, "Dupont", summaries[0].Player, "same-day summaries sort by player")
}

func TestBaseStoreSummariesTrackReplacement(t *testing.T) {
	ctx := context.Background()
	store := NewBaseStore(nil)
	day := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)

	store.Merge(ctx, sessionShots("Martin", day, 200, 118))
	sum, ok := store.Snapshot().SummaryFor("Martin", day)
	require.True(t, ok)
	assert.Equal(t, 1, sum.GoodDriveCount)

	// The corrected upload turns the short drive into a good one.
	store.Merge(ctx, sessionShots("Martin", day, 200, 125))
	sum, ok = store.Snapshot().SummaryFor("Martin", day)
	require.True(t, ok)
	assert.Equal(t, 2, sum.GoodDriveCount)
	assert.Equal(t, 2, sum.TotalShots)
}

func TestBaseStoreMergeSessions(t *testing.T) {
	ctx := context.Background()
	store := NewBaseStore(nil)
	day := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)

	snap := store.MergeSessions(ctx, []Session{
		{Player: "Martin", Date: day, Shots: sessionShots("Martin", day, 200)},
		{Player: "Dupont", Date: day, Shots: sessionShots("Dupont", day, 180, 185)},
	})

	assert.Equal(t, 3, snap.Len())
	assert.Equal(t, []string{"Dupont", "Martin"}, snap.Players())
}

func TestBaseStoreManyPlayers(t *testing.T) {
	ctx := context.Background()
	store := NewBaseStore(nil)
	day := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)

	var rows []domain.Shot
	for p := 0; p < 5; p++ {
		rows = append(rows, sessionShots(fmt.Sprintf("Player%d", p), day, 150, 160, 170)...)
	}
	snap := store.Merge(ctx, rows)

	assert.Equal(t, 15, snap.Len())
	assert.Len(t, snap.Players(), 5)
	for _, player := range snap.Players() {
		assert.Len(t, snap.ShotsFor(player, day), 3)
	}
}
