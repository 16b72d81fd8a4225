// Package dataprocessing turns launch-monitor CSV uploads into validated
// session data and maintains the Base store every session merges into.
//
// # Architecture
//
// The package is organized into three main components:
//
// 1. Column mapper: canonicalizes the header variants different launch
// monitors export for the same measure
// 2. Loader: parses CSV uploads into per-(player, date) sessions with
// per-row validation diagnostics
// 3. BaseStore: the merged, keyed store of every shot ever uploaded,
// published as immutable snapshots
//
// # Data Flow
//
// The typical data flow through this package:
//
//	CSV upload → Loader → Sessions + RowDiagnostics → BaseStore.Merge → BaseSnapshot
//
// Model builders never touch the store directly; they read a snapshot
// taken at the start of a run, so a concurrent upload can never shift
// the data under a report half-way through.
//
// # Missing values
//
// Optional shot measures (spin, launch angles, peak height) are NaN when
// the upload lacks the column or the cell does not parse. Carry and
// Offline are required: a row where either fails coercion is dropped and
// recorded as a RowDiagnostic instead of poisoning the session.
package dataprocessing
