package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

const (
	StatusOK        = "ok"
	StatusSaturated = "saturated"
	StatusDown      = "down"
)

// PoolHealth is the /health/db payload: a pool snapshot plus an overall
// status for the attempt-log database.
type PoolHealth struct {
	Status        string `json:"status"`
	TotalConns    int32  `json:"total_conns"`
	IdleConns     int32  `json:"idle_conns"`
	AcquiredConns int32  `json:"acquired_conns"`
	MaxConns      int32  `json:"max_conns"`
	AcquireWait   string `json:"acquire_wait"`
	Error         string `json:"error,omitempty"`
}

// poolStatus folds a ping result and pool occupancy into one status value.
// A saturated pool still answers 200: requests queue but the database is up.
func poolStatus(acquired, maxConns int32, pingErr error) string {
	if pingErr != nil {
		return StatusDown
	}
	if maxConns > 0 && acquired >= maxConns {
		return StatusSaturated
	}
	return StatusOK
}

// HealthHandler reports attempt-log database health. Down answers 503 so a
// load balancer can pull the instance; anything else answers 200.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
		defer cancel()

		pingErr := pool.Ping(ctx)
		stat := pool.Stat()

		health := PoolHealth{
			Status:        poolStatus(stat.AcquiredConns(), stat.MaxConns(), pingErr),
			TotalConns:    stat.TotalConns(),
			IdleConns:     stat.IdleConns(),
			AcquiredConns: stat.AcquiredConns(),
			MaxConns:      stat.MaxConns(),
			AcquireWait:   stat.AcquireDuration().String(),
		}
		if pingErr != nil {
			health.Error = pingErr.Error()
			return c.JSON(http.StatusServiceUnavailable, health)
		}
		return c.JSON(http.StatusOK, health)
	}
}
