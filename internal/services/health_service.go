package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/storage"
)

// Health states reported by the checks.
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
)

// ClientCounter reports connected WebSocket clients.
type ClientCounter interface {
	ClientCount() int
}

// UserCounter reports how many users can log in.
type UserCounter interface {
	Len() int
}

// HealthDeps are the collaborators a HealthService inspects. Nil
// collaborators are reported as not ready.
type HealthDeps struct {
	Version   string
	BuildTime string
	DataDir   string
	Users     UserCounter
	Store     storage.ArtifactStore
	Hub       ClientCounter
	Logger    *slog.Logger
}

// HealthService provides health check functionality
type HealthService struct {
	deps      HealthDeps
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service.
func NewHealthService(deps HealthDeps) *HealthService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("HealthService initialized",
		slog.String("version", deps.Version),
		slog.String("build_time", deps.BuildTime))

	return &HealthService{deps: deps, startTime: time.Now(), logger: logger}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   hs.deps.Version,
	}
}

// ReadinessCheck reports whether every dependency of the workflows is
// usable.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.deps.Version,
		Services: map[string]ServiceHealth{
			"data":      hs.checkData(),
			"users":     hs.checkUsers(),
			"storage":   hs.checkStorage(),
			"websocket": hs.checkWebSocket(),
		},
	}

	for name, service := range status.Services {
		if service.Status != StatusReady {
			status.Status = StatusNotReady
			hs.logger.WarnContext(ctx, "Readiness check failed",
				slog.String("service", name),
				slog.String("message", service.Message))
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   hs.deps.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.deps.Version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if hs.deps.BuildTime != "" {
		result["build_time"] = hs.deps.BuildTime
	}
	if hs.deps.Store != nil {
		result["storage_backend"] = hs.deps.Store.Backend()
	}
	return result
}

// checkData verifies the data directory exists and is writable.
func (hs *HealthService) checkData() ServiceHealth {
	dir := hs.deps.DataDir
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ServiceHealth{Status: StatusNotReady, Message: fmt.Sprintf("data directory not found: %s", dir)}
	}
	probe, err := os.CreateTemp(dir, ".health-")
	if err != nil {
		return ServiceHealth{Status: StatusNotReady, Message: fmt.Sprintf("cannot write to data directory: %v", err)}
	}
	probe.Close()
	os.Remove(probe.Name())
	return ServiceHealth{Status: StatusReady}
}

func (hs *HealthService) checkUsers() ServiceHealth {
	if hs.deps.Users == nil {
		return ServiceHealth{Status: StatusNotReady, Message: "user directory not configured"}
	}
	n := hs.deps.Users.Len()
	if n == 0 {
		return ServiceHealth{Status: StatusNotReady, Message: "no users configured"}
	}
	return ServiceHealth{Status: StatusReady, Message: fmt.Sprintf("%d users", n)}
}

func (hs *HealthService) checkStorage() ServiceHealth {
	if hs.deps.Store == nil {
		return ServiceHealth{Status: StatusNotReady, Message: "artifact store not configured"}
	}
	return ServiceHealth{Status: StatusReady, Message: "backend " + hs.deps.Store.Backend()}
}

func (hs *HealthService) checkWebSocket() ServiceHealth {
	if hs.deps.Hub == nil {
		return ServiceHealth{Status: StatusNotReady, Message: "websocket hub not running"}
	}
	return ServiceHealth{Status: StatusReady, Message: fmt.Sprintf("%d clients", hs.deps.Hub.ClientCount())}
}
