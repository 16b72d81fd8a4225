// Package config provides centralized configuration management for the
// GolfPulse reporting system. It handles loading configuration from
// multiple sources, validation, and a type-safe API for the rest of
// the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of
// precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Built-in defaults (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern GOLF_* for namespacing:
//
//	GOLF_LOGGING_LEVEL=debug
//	GOLF_ROSTER_PATH=/etc/golfpulse/roster.yaml
//	GOLF_GAPPING_MIN_GOOD_SHOTS=25
//	GOLF_RUN_CONCURRENCY=8
//	GOLF_EXPORT_OUTPUT_DIR=/srv/reports
//
// # Path Management
//
// The Paths type resolves the report output layout (Base/, Eleves/,
// Groupe/) from the export configuration and can create it:
//
//	paths := config.NewPaths(cfg.Export)
//	if err := paths.EnsureDirectories(); err != nil { ... }
//	uploads, err := paths.UploadCSVs()
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
