package app

import (
	"context"
	"fmt"
	"time"

	"usetidy/internal/shared/util"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	// Check config
	if s.app.Config == nil {
		status.Status = "degraded"
		status.Components["config"] = "missing"
	} else {
		status.Components["config"] = "ok"
	}

	// Check manifest. A project without one still organizes; unknown
	// roots just classify as external.
	if s.app.Deps != nil {
		status.Components["manifest"] = fmt.Sprintf("ok (%d dependencies)", s.app.Deps.Len())
	} else {
		status.Components["manifest"] = "missing"
	}

	// Check history store
	if s.app.History != nil {
		status.Components["history"] = "ok"
	} else if s.app.Config != nil && s.app.Config.DB.Enabled {
		status.Status = "degraded"
		status.Components["history"] = "missing but enabled in config"
	} else {
		status.Components["history"] = "disabled"
	}

	// Check watcher
	if s.app.watcherRunning() {
		status.Components["watcher"] = "running"
	} else {
		status.Components["watcher"] = "idle"
	}

	status.Components["heap"] = fmt.Sprintf("%d MB", util.GetHeapAllocMB())

	return status
}
