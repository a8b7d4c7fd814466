package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"boardshoot-server/internal/cache"
	"boardshoot-server/pkg/response"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	mirror cache.Mirror
}

func NewHealthHandler(db Pinger, mirror cache.Mirror) *HealthHandler {
	return &HealthHandler{db: db, mirror: mirror}
}

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// Check reports 503 only when the database is down; the mirror is optional.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := healthStatus{Status: "ok", Database: "up", Cache: "up"}
	code := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		status.Status = "unavailable"
		status.Database = "down"
		code = http.StatusServiceUnavailable
	}

	if err := h.mirror.Ping(ctx); err != nil {
		if errors.Is(err, cache.ErrDisabled) {
			status.Cache = "disabled"
		} else {
			status.Cache = "down"
			if code == http.StatusOK {
				status.Status = "degraded"
			}
		}
	}

	response.JSON(w, code, status)
}
