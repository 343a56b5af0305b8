package services

import (
	"context"
	"log/slog"
	"runtime"
	"strconv"
	"time"

	"playerstats/pkg/contracts"
)

// SessionCounter reports the number of open live sessions
type SessionCounter interface {
	SessionCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	loader    TableLoader
	source    string
	sessions  SessionCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Since   string `json:"since,omitempty"`
}

// Health states
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
)

// NewHealthService creates a health service. source names the data source in
// readiness output; sessions may be nil.
func NewHealthService(version string, loader TableLoader, source string, sessions SessionCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	if version == "" {
		version = contracts.Version
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("source", source))

	return &HealthService{
		version:   version,
		loader:    loader,
		source:    source,
		sessions:  sessions,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready once the player table can be served. The first
// probe triggers the load, so a ready instance answers queries from cache.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]interface{}{
			"data":      hs.checkDataHealth(ctx),
			"websocket": hs.checkWebSocketHealth(),
		},
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != StatusReady {
			status.Status = StatusNotReady
			break
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":      hs.version,
		"api_version":  info.APIVersion,
		"build_time":   info.BuildTime,
		"git_commit":   info.GitCommit,
		"go_version":   info.GoVersion,
		"os":           info.OS,
		"arch":         info.Architecture,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

func (hs *HealthService) checkDataHealth(ctx context.Context) ServiceHealth {
	if hs.loader == nil {
		return ServiceHealth{Status: StatusNotReady, Message: "no data source configured"}
	}

	if loaded, at := hs.loader.Loaded(); loaded {
		return ServiceHealth{
			Status:  StatusReady,
			Message: hs.source,
			Since:   at.Format(time.RFC3339),
		}
	}

	if _, err := hs.loader.Table(ctx); err != nil {
		hs.logger.WarnContext(ctx, "Readiness check could not load player table",
			slog.String("source", hs.source),
			slog.String("error", err.Error()))
		return ServiceHealth{Status: StatusNotReady, Message: err.Error()}
	}

	_, at := hs.loader.Loaded()
	return ServiceHealth{
		Status:  StatusReady,
		Message: hs.source,
		Since:   at.Format(time.RFC3339),
	}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.sessions == nil {
		return ServiceHealth{Status: StatusReady, Message: "live sessions disabled"}
	}
	return ServiceHealth{
		Status:  StatusReady,
		Message: "live sessions open: " + strconv.Itoa(hs.sessions.SessionCount()),
	}
}
