package repository

import (
	"context"

	"github.com/jhoicas/surblend-api/internal/domain/entity"
)

// ActivityLogRepository bitácora append-only.
type ActivityLogRepository interface {
	Append(ctx context.Context, entry *entity.ActivityLog) error
}
