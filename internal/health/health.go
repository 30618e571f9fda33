package health

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"campus-backend/pkg/utils"
)

type Checker struct {
	pool *pgxpool.Pool
}

func NewChecker(pool *pgxpool.Pool) *Checker {
	return &Checker{pool: pool}
}

type status struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Time     string `json:"time"`
}

// Handler reports liveness plus a database ping. A failed ping returns 503 so
// load balancers can pull the instance.
func (c *Checker) Handler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s := status{
		Status:   "ok",
		Database: "up",
		Time:     time.Now().UTC().Format(time.RFC3339),
	}

	if err := c.pool.Ping(ctx); err != nil {
		s.Status = "degraded"
		s.Database = "down"
		utils.JSON(w, http.StatusServiceUnavailable, s)
		return
	}

	utils.JSON(w, http.StatusOK, s)
}
