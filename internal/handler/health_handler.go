package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type healthStatus struct {
	Status   string    `json:"status"`
	Database string    `json:"database"`
	Time     time.Time `json:"time"`
}

// HealthHandler は DB に ping して稼働状況を返す。
type HealthHandler struct {
	ping func(ctx context.Context) error
	now  func() time.Time
}

func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping, now: time.Now}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.health)
}

func (h *HealthHandler) health(c echo.Context) error {
	st := healthStatus{Status: "ok", Database: "up", Time: h.now().UTC()}
	if err := h.ping(c.Request().Context()); err != nil {
		st.Status = "degraded"
		st.Database = "down"
		return c.JSON(http.StatusServiceUnavailable, Response{Success: false, Message: "database unavailable", Data: st})
	}
	return respond(c, http.StatusOK, st)
}
