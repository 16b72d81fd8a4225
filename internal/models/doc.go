// Package models assembles the analytic report records computed from a
// Base snapshot: five student models per (player, session) and five
// group models per session date.
//
// The package is organized around a small set of components:
//
// Assembler: the run orchestrator. Given a Base snapshot and a set of
// session dates it resolves the player scope per date, fans the student
// model builders out over an errgroup with a bounded limit, then builds
// the group models from the collected per-player artifacts. One run
// produces one RunResult with a uuid run ID and every assembled
// ModelRecord.
//
// Builders: pure functions from session shots to model payloads. Student
// builders cover the session overview (A), the driver deep-dive (B), the
// per-club table (C_ELEVE), the session progression (E) and the gapping
// report (H_ELEVE). Group builders cover the comparison table (C_GROUPE),
// the ranking board (D), the session roll-up (F), the pooled dispersion
// (G) and the gapping aggregation (H_GROUPE).
//
// Failure isolation: a player whose session fails gapping still gets the
// A, B, C_ELEVE and E records; only the H-series records for that player
// degrade, with the reason attached. Group models aggregate every player
// that has shots for the date regardless of gapping status. A run aborts
// only on structural conditions, such as a date that resolves to no
// players at all.
//
// Example usage:
//
//	asm := models.NewAssembler(logger, models.AssemblerConfig{
//		Gapping: gapping.DefaultConfig(),
//	})
//	result, err := asm.Run(ctx, store.Snapshot(), models.RunRequest{
//		SessionDates: []time.Time{sessionDate},
//	})
//	for _, rec := range result.Records {
//		// hand rec to the rendering collaborator
//	}
//
// Payloads carry plain exported structs the rendering collaborator can
// consume directly; layout and typography stay out of this package.
package models
