// Package exporter persists assembly output at the system boundary.
//
// This package contains three main components:
//
// BaseWorkbookWriter: renders a Base snapshot as the coaching workbook
// with Shots and Sessions sheets. ReadBaseWorkbook restores the stored
// shots so a new run can start from the persisted Base.
//
// RecordWriter: files one JSON artifact per assembled model record
// under the routing convention (Eleves/<alias>/<date> for students,
// Groupe/<date> for the group, Base/ for the workbook) and reports the
// written paths.
//
// CSVWriter: shots-table and ad-hoc CSV export with UTF-8 BOM support
// for spreadsheet round-trips.
//
// Example usage:
//
//	// Render one session's artifacts
//	writer := exporter.NewRecordWriter(logger)
//	result, err := writer.Render(ctx, snapshot, run.Records, sessionDate, "out")
//
//	// Restore the Base on the next run
//	shots, err := exporter.ReadBaseWorkbook(result.BaseStorePath)
package exporter
