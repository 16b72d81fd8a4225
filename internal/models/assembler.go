package models

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"golfpulse/internal/dataprocessing"
	"golfpulse/internal/gapping"
	"golfpulse/pkg/contracts/domain"
)

// AssemblerConfig configures assembly runs.
type AssemblerConfig struct {
	Gapping     gapping.Config `json:"gapping" yaml:"gapping"`
	Concurrency int            `json:"concurrency" yaml:"concurrency" validate:"gte=0,lte=64"`
}

// DefaultAssemblerConfig returns the assembly defaults.
func DefaultAssemblerConfig() AssemblerConfig {
	return AssemblerConfig{
		Gapping:     gapping.DefaultConfig(),
		Concurrency: DefaultConcurrency,
	}
}

// Assembler builds every model record of a report run. Runs share the
// assembler; all per-run state lives on the stack of Run.
type Assembler struct {
	logger   *slog.Logger
	cfg      AssemblerConfig
	engine   *gapping.Engine
	validate *validator.Validate
	tracer   *RunTracer
}

// NewAssembler creates an assembler. A nil logger falls back to
// slog.Default; a zero config gets the defaults.
func NewAssembler(logger *slog.Logger, cfg AssemblerConfig) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Gapping == (gapping.Config{}) {
		cfg.Gapping = gapping.DefaultConfig()
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Assembler{
		logger:   logger.With(slog.String("component", "models")),
		cfg:      cfg,
		engine:   gapping.NewEngine(logger, cfg.Gapping),
		validate: newRunValidator(),
	}
}

// WithTracer attaches run tracing and metrics.
func (a *Assembler) WithTracer(t *RunTracer) *Assembler {
	a.tracer = t
	return a
}

// Config returns the configuration the assembler runs with.
func (a *Assembler) Config() AssemblerConfig {
	return a.cfg
}

// Run assembles every student and group record for the requested dates.
// Player-level failures degrade records and never abort the run; only
// structural conditions (no snapshot, a date no player resolves to) and
// cancellation do.
func (a *Assembler) Run(ctx context.Context, snap *dataprocessing.BaseSnapshot, req RunRequest) (*RunResult, error) {
	started := time.Now()
	if snap == nil {
		return nil, NewInputError("assembly needs a base snapshot", ErrNilSnapshot)
	}
	if err := a.validate.Struct(&req); err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid run request: %v", err))
	}

	runID := uuid.New().String()
	dates, err := a.resolveDates(snap, req)
	if err != nil {
		return nil, err
	}
	limit := a.cfg.Concurrency
	if req.Concurrency > 0 {
		limit = req.Concurrency
	}

	log := a.logger.With(slog.String("run_id", runID))
	ctx, span := a.tracer.StartRun(ctx, runID, len(dates))
	log.InfoContext(ctx, "assembly run started",
		slog.Int("session_dates", len(dates)),
		slog.Int("snapshot_shots", snap.Len()),
		slog.Int("snapshot_version", snap.Version()),
		slog.Int("concurrency", limit))

	result := &RunResult{
		RunID:        runID,
		Diagnostics:  req.Diagnostics,
		StartedAt:    started,
		SessionDates: dates,
	}
	errs := &ErrorList{}
	playerSet := make(map[string]bool)

	for _, date := range dates {
		records, players, dateErrs, err := a.assembleDate(ctx, log, runID, snap, date, req, limit)
		if err != nil {
			a.tracer.FinishRun(ctx, span, runID, time.Since(started), len(result.Records), err)
			log.ErrorContext(ctx, "assembly run aborted",
				slog.String("date", domain.DateKey(date)),
				slog.String("error", err.Error()))
			return nil, err
		}
		result.Records = append(result.Records, records...)
		for _, p := range players {
			playerSet[p] = true
		}
		errs.Errors = append(errs.Errors, dateErrs.Errors...)
	}

	if errs.HasErrors() {
		result.Errors = errs
	}
	result.PlayerCount = len(playerSet)
	result.Duration = time.Since(started)

	a.tracer.FinishRun(ctx, span, runID, result.Duration, len(result.Records), nil)
	log.InfoContext(ctx, "assembly run finished",
		slog.Int("records", len(result.Records)),
		slog.Int("players", result.PlayerCount),
		slog.Int("degraded", len(result.DegradedRecords())),
		slog.Duration("duration", result.Duration))
	return result, nil
}

// resolveDates expands the request against the snapshot. Empty request
// dates mean every date present, ascending.
func (a *Assembler) resolveDates(snap *dataprocessing.BaseSnapshot, req RunRequest) ([]time.Time, error) {
	if len(req.SessionDates) > 0 {
		dates := append([]time.Time(nil), req.SessionDates...)
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
		return dates, nil
	}

	seen := make(map[string]time.Time)
	for _, p := range snap.Players() {
		for _, d := range snap.SessionDatesFor(p) {
			seen[domain.DateKey(d)] = d
		}
	}
	if len(seen) == 0 {
		return nil, NewInputError("nothing to assemble", ErrNoSessionDates)
	}
	dates := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// assembleDate builds every record of one session date: the student
// fan-out first, then the group models over the collected artifacts.
func (a *Assembler) assembleDate(ctx context.Context, log *slog.Logger, runID string, snap *dataprocessing.BaseSnapshot, date time.Time, req RunRequest, limit int) ([]domain.ModelRecord, []string, *ErrorList, error) {
	players := playerScope(snap.SessionsOn(date), req.Players)
	if len(players) == 0 {
		return nil, nil, nil, NewInputError(fmt.Sprintf("no players have shots on %s", domain.DateKey(date)), ErrNoPlayers)
	}

	var (
		mu       sync.Mutex
		records  []domain.ModelRecord
		outcomes []GappingOutcome
		errs     ErrorList
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, player := range players {
		g.Go(func() error {
			recs, outcome, perr := a.assemblePlayer(gctx, runID, snap, player, date)
			mu.Lock()
			defer mu.Unlock()
			records = append(records, recs...)
			outcomes = append(outcomes, outcome)
			errs.Add(perr)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, nil, NewCancellationError(err.Error())
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, NewCancellationError(err.Error())
	}

	// Deterministic output order regardless of fan-out interleaving.
	sort.SliceStable(records, func(i, j int) bool { return records[i].Player < records[j].Player })
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Player < outcomes[j].Player })

	for _, o := range outcomes {
		status := domain.StatusOK
		if o.Err != nil {
			status = domain.StatusDegraded
		}
		a.tracer.RecordGapping(ctx, o.Player, status)
	}

	sessions := make([]PlayerSession, 0, len(players))
	for _, p := range players {
		sessions = append(sessions, PlayerSession{Player: p, Shots: snap.ShotsFor(p, date)})
	}
	records = append(records, a.assembleGroup(ctx, runID, date, sessions, outcomes)...)

	if errs.HasErrors() {
		log.WarnContext(ctx, "session assembled with degraded records",
			slog.String("date", domain.DateKey(date)),
			slog.Int("degraded", len(errs.Errors)))
	}
	return records, players, &errs, nil
}

// assemblePlayer builds the five student records for one session.
func (a *Assembler) assemblePlayer(ctx context.Context, runID string, snap *dataprocessing.BaseSnapshot, player string, date time.Time) ([]domain.ModelRecord, GappingOutcome, *ModelError) {
	outcome := GappingOutcome{Player: player}
	if err := ctx.Err(); err != nil {
		outcome.Err = err
		return nil, outcome, NewCancellationError(err.Error())
	}

	ctx, span := a.tracer.StartSession(ctx, player, date)
	shots := snap.ShotsFor(player, date)

	var records []domain.ModelRecord
	for _, b := range []struct {
		model domain.ModelLetter
		build func() interface{}
	}{
		{domain.ModelA, func() interface{} { return BuildModelA(shots) }},
		{domain.ModelB, func() interface{} { return BuildModelB(shots) }},
		{domain.ModelCEleve, func() interface{} { return BuildModelCEleve(shots) }},
		{domain.ModelE, func() interface{} { return BuildModelE(snap, player, date) }},
	} {
		start := time.Now()
		payload := b.build()
		a.tracer.RecordModel(ctx, runID, b.model, domain.ScopeStudent, time.Since(start), true)
		records = append(records, a.record(runID, b.model, domain.ScopeStudent, player, date, payload))
	}

	start := time.Now()
	hPayload, herr := BuildModelHEleve(ctx, a.engine, snap, player, date)
	a.tracer.RecordModel(ctx, runID, domain.ModelHEleve, domain.ScopeStudent, time.Since(start), herr == nil)
	if herr != nil {
		outcome.Err = herr.Cause
		if outcome.Err == nil {
			outcome.Err = herr
		}
		rec := a.record(runID, domain.ModelHEleve, domain.ScopeStudent, player, date, nil)
		rec.Status = domain.StatusDegraded
		rec.DegradedReason = herr.Message
		records = append(records, rec)
		a.tracer.FinishSession(span, len(records), true)
		return records, outcome, herr
	}

	outcome.Result = hPayload.Gapping
	records = append(records, a.record(runID, domain.ModelHEleve, domain.ScopeStudent, player, date, hPayload))
	a.tracer.FinishSession(span, len(records), false)
	return records, outcome, nil
}

// assembleGroup builds the five group records of one session date.
func (a *Assembler) assembleGroup(ctx context.Context, runID string, date time.Time, sessions []PlayerSession, outcomes []GappingOutcome) []domain.ModelRecord {
	ctx, span := a.tracer.StartSession(ctx, "groupe", date)

	var records []domain.ModelRecord
	for _, b := range []struct {
		model domain.ModelLetter
		build func() interface{}
	}{
		{domain.ModelCGroupe, func() interface{} { return BuildModelCGroup(sessions) }},
		{domain.ModelD, func() interface{} { return BuildModelD(sessions) }},
		{domain.ModelF, func() interface{} { return BuildModelF(sessions) }},
		{domain.ModelG, func() interface{} { return BuildModelG(sessions) }},
	} {
		start := time.Now()
		payload := b.build()
		a.tracer.RecordModel(ctx, runID, b.model, domain.ScopeGroup, time.Since(start), true)
		records = append(records, a.record(runID, b.model, domain.ScopeGroup, "", date, payload))
	}

	start := time.Now()
	hPayload, ok := BuildModelHGroup(outcomes)
	a.tracer.RecordModel(ctx, runID, domain.ModelHGroupe, domain.ScopeGroup, time.Since(start), ok)
	rec := a.record(runID, domain.ModelHGroupe, domain.ScopeGroup, "", date, hPayload)
	if !ok {
		rec.Status = domain.StatusDegraded
		rec.DegradedReason = "insufficient good shots: no player produced a valid gapping result"
	}
	records = append(records, rec)

	a.tracer.FinishSession(span, len(records), !ok)
	return records
}

// record stamps one assembled payload with its routing metadata.
func (a *Assembler) record(runID string, model domain.ModelLetter, scope domain.ModelScope, player string, date time.Time, payload interface{}) domain.ModelRecord {
	return domain.ModelRecord{
		ID:          uuid.New().String(),
		RunID:       runID,
		Model:       model,
		Scope:       scope,
		Player:      player,
		SessionDate: date,
		Status:      domain.StatusOK,
		Payload:     payload,
		GeneratedAt: time.Now().UTC(),
	}
}

// playerScope intersects the session's players with the requested
// restriction, keeping ascending player order.
func playerScope(keys []domain.SessionKey, restrict []string) []string {
	want := make(map[string]bool, len(restrict))
	for _, p := range restrict {
		want[p] = true
	}
	var out []string
	for _, k := range keys {
		if len(want) > 0 && !want[k.Player] {
			continue
		}
		out = append(out, k.Player)
	}
	return out
}
