package config

// Application constants for the GolfPulse reporting system.
const (
	// Application Info
	AppName    = "GolfPulse"
	AppVersion = "1.2.0"

	// Default locations, relative to the working directory
	DefaultRosterFile = "roster.yaml"
	DefaultUploadsDir = "data/uploads"
	DefaultOutputDir  = "data/reports"
	DefaultLogsDir    = "logs"
	DefaultLogFile    = "logs/app.log"

	// Upload discovery
	UploadCSVGlob = "*.csv"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Run Settings
	DefaultRunConcurrency = 4
)
