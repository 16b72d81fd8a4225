// Package files keeps the raw inputs of report runs on disk.
//
// The Archiver copies ingested upload CSVs into a per-session folder
// under the report tree's Uploads/ directory and writes dated copies
// of the Base workbook, so the exact inputs of any past session stay
// available for replay or audit.
//
// Example usage:
//
//	archiver := files.NewArchiver(logger, paths.ArchiveDir)
//
//	// After a successful run
//	copies, err := archiver.ArchiveUploads(ctx, sessionDate, uploadPaths)
//	dated, err := archiver.ArchiveBase(ctx, basePath, sessionDate)
package files
