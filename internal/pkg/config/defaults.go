package config

import "time"

// Default values for configuration.
const (
	// Server defaults
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 8080
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxUploadSizeMB = 10

	// Frontend defaults
	DefaultBackendURL          = "http://localhost:8080/api"
	DefaultHealthCheckInterval = 30 * time.Second
	DefaultRequestTimeout      = 0 // таймаут транспорта
	DefaultFrontendHost        = "0.0.0.0"
	DefaultFrontendPort        = 3000
	DefaultSessionTTL          = 2 * time.Hour

	// Processing defaults
	DefaultCacheTTL        = 60 * time.Minute
	DefaultCleanupInterval = 1 * time.Hour

	// Bot defaults
	DefaultPollingTimeout  = 60
	DefaultExcelThreshold  = 4096
	DefaultBotTaskTimeout  = 2 * time.Minute
	DefaultBarWidth        = 30
	DefaultDownloadTimeout = 30 * time.Second

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Daemon defaults
	DefaultPidFile       = "chat-analyzer.pid"
	DefaultDaemonLogFile = "chat-analyzer.log"
	DefaultWorkDir       = "./"
)
