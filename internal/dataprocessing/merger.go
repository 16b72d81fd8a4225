package dataprocessing

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golfpulse/pkg/contracts/domain"
)

// BaseStore holds every shot ever merged, keyed by (player, date, shot
// index). Merges go through a single writer; readers work on the
// immutable snapshot published by the last merge, so a report run can
// fan out over stable data while uploads keep arriving.
type BaseStore struct {
	logger *slog.Logger

	mu   sync.Mutex
	snap *BaseSnapshot
}

// NewBaseStore creates an empty store.
func NewBaseStore(logger *slog.Logger) *BaseStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &BaseStore{
		logger: logger.With(slog.String("component", "base_store")),
		snap:   emptySnapshot(),
	}
}

// Snapshot returns the currently published snapshot.
func (s *BaseStore) Snapshot() *BaseSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Merge folds rows into the store and publishes a new snapshot. A row
// whose (player, date, index) key already exists replaces the stored
// shot in place, keeping its original position; new keys append. Merging
// the same rows again therefore reproduces the same store content.
func (s *BaseStore) Merge(ctx context.Context, rows []domain.Shot) *BaseSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.snap
	next := &BaseSnapshot{
		version:   prev.version + 1,
		mergedAt:  time.Now().UTC(),
		shots:     make(map[domain.ShotKey]domain.Shot, len(prev.shots)+len(rows)),
		order:     make([]domain.ShotKey, len(prev.order), len(prev.order)+len(rows)),
		summaries: make(map[domain.SessionKey]domain.SessionSummary, len(prev.summaries)),
	}
	copy(next.order, prev.order)
	for k, v := range prev.shots {
		next.shots[k] = v
	}
	for k, v := range prev.summaries {
		next.summaries[k] = v
	}

	touched := make(map[domain.SessionKey]struct{})
	added, replaced := 0, 0
	for _, row := range rows {
		key := row.Key()
		if _, exists := next.shots[key]; exists {
			replaced++
		} else {
			next.order = append(next.order, key)
			added++
		}
		next.shots[key] = row
		touched[row.SessionKey()] = struct{}{}
	}
	for sk := range touched {
		next.summaries[sk] = domain.SummarizeSession(next.sessionShots(sk))
	}

	s.snap = next
	s.logger.InfoContext(ctx, "base store merged",
		slog.Int("rows", len(rows)),
		slog.Int("added", added),
		slog.Int("replaced", replaced),
		slog.Int("total_shots", len(next.shots)),
		slog.Int("version", next.version))
	return next
}

// MergeSessions folds loader output into the store.
func (s *BaseStore) MergeSessions(ctx context.Context, sessions []Session) *BaseSnapshot {
	var rows []domain.Shot
	for _, sess := range sessions {
		rows = append(rows, sess.Shots...)
	}
	return s.Merge(ctx, rows)
}

// BaseSnapshot is one immutable version of the merged Base. Accessors
// return copies; nothing handed out aliases snapshot internals.
type BaseSnapshot struct {
	version   int
	mergedAt  time.Time
	shots     map[domain.ShotKey]domain.Shot
	order     []domain.ShotKey
	summaries map[domain.SessionKey]domain.SessionSummary
}

func emptySnapshot() *BaseSnapshot {
	return &BaseSnapshot{
		shots:     make(map[domain.ShotKey]domain.Shot),
		summaries: make(map[domain.SessionKey]domain.SessionSummary),
	}
}

// Version counts merges since the store was created; the empty store is
// version zero.
func (b *BaseSnapshot) Version() int { return b.version }

// MergedAt reports when this snapshot was published.
func (b *BaseSnapshot) MergedAt() time.Time { return b.mergedAt }

// Len returns the number of stored shots.
func (b *BaseSnapshot) Len() int { return len(b.shots) }

// AllShots returns every stored shot in merged order.
func (b *BaseSnapshot) AllShots() []domain.Shot {
	out := make([]domain.Shot, 0, len(b.order))
	for _, key := range b.order {
		out = append(out, b.shots[key])
	}
	return out
}

// Players lists every player in the store, sorted.
func (b *BaseSnapshot) Players() []string {
	seen := make(map[string]struct{})
	var out []string
	for sk := range b.summaries {
		if _, dup := seen[sk.Player]; dup {
			continue
		}
		seen[sk.Player] = struct{}{}
		out = append(out, sk.Player)
	}
	sort.Strings(out)
	return out
}

// SessionDatesFor lists a player's session dates in ascending order.
func (b *BaseSnapshot) SessionDatesFor(player string) []time.Time {
	var out []time.Time
	for sk := range b.summaries {
		if sk.Player != player {
			continue
		}
		if t, err := time.Parse("2006-01-02", sk.Date); err == nil {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// ShotsFor returns one session's shots in merged order.
func (b *BaseSnapshot) ShotsFor(player string, date time.Time) []domain.Shot {
	return b.sessionShots(domain.SessionKey{Player: player, Date: domain.DateKey(date)})
}

// SessionsOn lists the session keys sharing one date, sorted by player.
func (b *BaseSnapshot) SessionsOn(date time.Time) []domain.SessionKey {
	day := domain.DateKey(date)
	var out []domain.SessionKey
	for sk := range b.summaries {
		if sk.Date == day {
			out = append(out, sk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Player < out[j].Player })
	return out
}

// Summaries returns every session summary, sorted by date then player.
func (b *BaseSnapshot) Summaries() []domain.SessionSummary {
	out := make([]domain.SessionSummary, 0, len(b.summaries))
	for _, sum := range b.summaries {
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Player < out[j].Player
	})
	return out
}

// SummaryFor returns one session's summary.
func (b *BaseSnapshot) SummaryFor(player string, date time.Time) (domain.SessionSummary, bool) {
	sum, ok := b.summaries[domain.SessionKey{Player: player, Date: domain.DateKey(date)}]
	return sum, ok
}

func (b *BaseSnapshot) sessionShots(key domain.SessionKey) []domain.Shot {
	var out []domain.Shot
	for _, sk := range b.order {
		if sk.Player == key.Player && sk.Date == key.Date {
			out = append(out, b.shots[sk])
		}
	}
	return out
}
