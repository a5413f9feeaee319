package web

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/tutora/platform/pkg/httpx"
)

// DatabaseStatus is the persistence layer's externally observable state.
// The persistence layer itself is a collaborator; health only maps its
// signal onto the response.
type DatabaseStatus struct {
	Status string `json:"status"` // "healthy" or "unhealthy"
	State  string `json:"state"`  // driver connection state name
}

// HealthReporter is implemented by the persistence layer.
type HealthReporter interface {
	DatabaseStatus(ctx context.Context) DatabaseStatus
}

type memoryStats struct {
	AllocMB      uint64 `json:"alloc_mb"`
	TotalAllocMB uint64 `json:"total_alloc_mb"`
	SysMB        uint64 `json:"sys_mb"`
	NumGC        uint32 `json:"num_gc"`
}

type healthResponse struct {
	Status   string         `json:"status"`
	Database DatabaseStatus `json:"database"`
	Memory   memoryStats    `json:"memory"`
	Uptime   string         `json:"uptime"`
}

// HealthHandler reports service health: overall status, database connection
// state, process memory and uptime.
func HealthHandler(startTime time.Time, db HealthReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK

		dbStatus := DatabaseStatus{Status: "unknown", State: "unconfigured"}
		if db != nil {
			dbStatus = db.DatabaseStatus(r.Context())
		}
		if dbStatus.Status == "unhealthy" {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		httpx.WriteJSON(w, code, healthResponse{
			Status:   status,
			Database: dbStatus,
			Memory: memoryStats{
				AllocMB:      mem.Alloc / 1024 / 1024,
				TotalAllocMB: mem.TotalAlloc / 1024 / 1024,
				SysMB:        mem.Sys / 1024 / 1024,
				NumGC:        mem.NumGC,
			},
			Uptime: time.Since(startTime).String(),
		})
	}
}
