package performance

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"golfpulse/internal/dataprocessing"
	"golfpulse/internal/exporter"
	"golfpulse/internal/gapping"
	"golfpulse/internal/models"
	"golfpulse/pkg/contracts/domain"
)

// Benchmark workload sizes, chosen to mirror a busy coaching group: a
// season of weekly sessions for a full roster.
const (
	benchPlayers        = 8
	benchSessionDates   = 3
	benchShotsPerPlayer = 60
)

func benchLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// syntheticSession builds one player session with a deterministic
// carry and dispersion spread.
func syntheticSession(rng *rand.Rand, player string, date time.Time, shots int) []domain.Shot {
	out := make([]domain.Shot, shots)
	for i := range out {
		carry := 180 + rng.Float64()*60
		out[i] = domain.Shot{
			Player:     player,
			RawPlayer:  player,
			Hand:       domain.HandRight,
			Date:       date,
			Index:      i + 1,
			Club:       "Driver",
			Carry:      carry,
			Total:      carry + 10 + rng.Float64()*10,
			Offline:    rng.Float64()*30 - 15,
			ClubSpeed:  95 + rng.Float64()*15,
			BallSpeed:  140 + rng.Float64()*20,
			BackSpin:   2200 + rng.Float64()*800,
			SpinAxis:   rng.Float64()*16 - 8,
			VLA:        11 + rng.Float64()*4,
			PeakHeight: 25 + rng.Float64()*10,
		}
	}
	return out
}

// syntheticSnapshot merges a full roster worth of sessions into a fresh
// store and returns the published snapshot.
func syntheticSnapshot(tb testing.TB) *dataprocessing.BaseSnapshot {
	rng := rand.New(rand.NewSource(42))
	store := dataprocessing.NewBaseStore(benchLogger())

	var snap *dataprocessing.BaseSnapshot
	for d := 0; d < benchSessionDates; d++ {
		date := time.Date(2024, 6, 5+7*d, 0, 0, 0, 0, time.UTC)
		for p := 0; p < benchPlayers; p++ {
			player := fmt.Sprintf("joueur%02d", p)
			snap = store.Merge(context.Background(), syntheticSession(rng, player, date, benchShotsPerPlayer))
		}
	}
	require.NotNil(tb, snap)
	return snap
}

// BenchmarkGappingAnalysis measures one session's gapping computation,
// the statistic behind every Model H record.
func BenchmarkGappingAnalysis(b *testing.B) {
	rng := rand.New(rand.NewSource(7))
	date := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	shots := syntheticSession(rng, "joueur01", date, 120)
	engine := gapping.NewEngine(benchLogger(), gapping.DefaultConfig())
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := engine.Gap(ctx, shots); err != nil {
			b.Fatalf("gapping failed: %v", err)
		}
	}
}

// BenchmarkGappingAnalysisBySessionSize tracks how the carry band scan
// scales with session length.
func BenchmarkGappingAnalysisBySessionSize(b *testing.B) {
	for _, size := range []int{30, 120, 500} {
		b.Run(fmt.Sprintf("Shots_%d", size), func(b *testing.B) {
			rng := rand.New(rand.NewSource(int64(size)))
			date := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
			shots := syntheticSession(rng, "joueur01", date, size)
			engine := gapping.NewEngine(benchLogger(), gapping.DefaultConfig())
			ctx := context.Background()

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if _, err := engine.Gap(ctx, shots); err != nil {
					b.Fatalf("gapping failed: %v", err)
				}
			}
		})
	}
}

// BenchmarkBaseMerge measures folding a fresh upload into an empty
// store, the append path of ingest.
func BenchmarkBaseMerge(b *testing.B) {
	rng := rand.New(rand.NewSource(11))
	date := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	rows := syntheticSession(rng, "joueur01", date, 1000)
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		store := dataprocessing.NewBaseStore(benchLogger())
		store.Merge(ctx, rows)
	}
}

// BenchmarkBaseRemerge measures merging rows the store already holds,
// the replace path a re-exported upload takes.
func BenchmarkBaseRemerge(b *testing.B) {
	rng := rand.New(rand.NewSource(11))
	date := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	rows := syntheticSession(rng, "joueur01", date, 1000)
	ctx := context.Background()
	store := dataprocessing.NewBaseStore(benchLogger())
	store.Merge(ctx, rows)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		store.Merge(ctx, rows)
	}
}

// BenchmarkSnapshotShotsFor measures the per-session read path the
// model builders sit on.
func BenchmarkSnapshotShotsFor(b *testing.B) {
	snap := syntheticSnapshot(b)
	date := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if shots := snap.ShotsFor("joueur03", date); len(shots) != benchShotsPerPlayer {
			b.Fatalf("expected %d shots, got %d", benchShotsPerPlayer, len(shots))
		}
	}
}

// BenchmarkAssemblerRun measures the full model fan-out at different
// concurrency limits.
func BenchmarkAssemblerRun(b *testing.B) {
	benchmarks := []struct {
		name        string
		concurrency int
	}{
		{"Concurrent_1", 1},
		{"Concurrent_2", 2},
		{"Concurrent_4", 4},
		{"Concurrent_8", 8},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			benchmarkAssemblerRun(b, bm.concurrency)
		})
	}
}

func benchmarkAssemblerRun(b *testing.B, concurrency int) {
	snap := syntheticSnapshot(b)
	assembler := models.NewAssembler(benchLogger(), models.AssemblerConfig{
		Concurrency: concurrency,
	})
	ctx := context.Background()
	wantRecords := benchSessionDates * (benchPlayers*5 + 5)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		result, err := assembler.Run(ctx, snap, models.RunRequest{Concurrency: concurrency})
		if err != nil {
			b.Fatalf("assembly failed: %v", err)
		}
		if len(result.Records) != wantRecords {
			b.Fatalf("expected %d records, got %d", wantRecords, len(result.Records))
		}
	}
}

// BenchmarkBaseWorkbookWrite measures persisting the merged store to
// its workbook, the slowest artifact of a run.
func BenchmarkBaseWorkbookWrite(b *testing.B) {
	snap := syntheticSnapshot(b)
	writer := exporter.NewBaseWorkbookWriter(benchLogger())
	dir := b.TempDir()
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		path := filepath.Join(dir, fmt.Sprintf("base_%d.xlsx", i))
		if err := writer.Write(ctx, snap, path); err != nil {
			b.Fatalf("workbook write failed: %v", err)
		}
	}
}
