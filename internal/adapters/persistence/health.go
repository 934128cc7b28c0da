package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/jsamuelsen/offermaster-service/internal/domain"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

// HealthChecker reports database reachability to the readiness probe.
type HealthChecker struct {
	db   *gorm.DB
	name string
}

var _ ports.HealthChecker = (*HealthChecker)(nil)

// NewHealthChecker creates a checker named after the driver.
func NewHealthChecker(db *gorm.DB, driver string) *HealthChecker {
	return &HealthChecker{db: db, name: driver}
}

func (h *HealthChecker) Name() string { return h.name }

// Check pings the connection pool.
func (h *HealthChecker) Check(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return fmt.Errorf("accessing connection pool: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return domain.NewUnavailableError(h.name, err.Error())
	}
	return nil
}
