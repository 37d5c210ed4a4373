package handler // declare the package name; contains HTTP handlers

import (
	"context"
	"database/sql"
	"net/http" // net/http provides status codes and response helpers
	"time"

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports whether the service and its backing stores are
// reachable.  Redis is optional; a nil client is reported as disabled.
type HealthHandler struct {
	DB    *sql.DB
	Redis *redis.Client
}

// Health is used by load balancers and monitoring systems.  It answers 200
// when the database responds and 503 otherwise.  A Redis outage degrades
// caching and rate limiting but does not fail the check.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status, dbState := http.StatusOK, "ok"
	if err := h.DB.PingContext(ctx); err != nil {
		status, dbState = http.StatusServiceUnavailable, "down"
	}
	redisState := "disabled"
	if h.Redis != nil {
		redisState = "ok"
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			redisState = "down"
		}
	}
	return c.JSON(status, echo.Map{"status": http.StatusText(status), "database": dbState, "redis": redisState})
}
