package types

// RunMode specifies the deployment mode of the application
type RunMode string

const (
	// ModeLocal runs everything for local development
	ModeLocal RunMode = "local"
	// ModeAPI runs the HTTP API server
	ModeAPI RunMode = "api"
)

// LogLevel specifies the logging verbosity
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
