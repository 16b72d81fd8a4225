// Package shared holds cross-cutting helpers that belong to no single
// domain package.
//
// # Structure
//
//   - testutil: shared test tooling, currently the slog capture used to
//     assert on what a component logged
//
// # Usage Guidelines
//
// This package should only contain generic helpers with no business
// logic and no dependencies on other internal packages; anything
// domain-specific lives with its domain.
//
// Example usage:
//
//	logger, capture := testutil.Capture()
//	store := dataprocessing.NewBaseStore(logger)
//	store.Merge(ctx, rows)
//	assert.True(t, capture.Has(slog.LevelInfo, "base store merged"))
package shared
