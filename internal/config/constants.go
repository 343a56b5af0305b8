package config

import "time"

// Application constants
const (
	AppName    = "player-stats"
	AppVersion = "1.0.0"

	// Source
	DefaultSourceURL     = "https://github.com/LeScott2406/StatsApp/raw/refs/heads/main/updated_player_stats.xlsx"
	DefaultSourceTimeout = 60 * time.Second
	DefaultSheetRange    = "A:ZZ"
	DefaultPreset        = "obv"

	// HTTP
	DefaultRequestTimeout = 90 * time.Second
	DefaultRateLimit      = 20 // requests per second
	DefaultBurstSize      = 40

	// WebSocket
	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second

	// Files
	DefaultLogFile   = "logs/app.log"
	DefaultExportDir = "exports"
)
