package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/jhoicas/surblend-api/internal/domain/repository"
)

var _ repository.ActivityLogRepository = (*ActivityLogRepo)(nil)

// ActivityLogRepo bitácora de auditoría.
type ActivityLogRepo struct {
	q Querier
}

// NewActivityLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewActivityLogRepository(q Querier) *ActivityLogRepo {
	return &ActivityLogRepo{q: q}
}

// Append inserta una entrada. Details se guarda como JSONB.
func (r *ActivityLogRepo) Append(ctx context.Context, e *entity.ActivityLog) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("marshal activity details: %w", err)
	}
	query := `
		INSERT INTO activity_logs (id, user_id, action, entity_type, entity_id, details, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.q.Exec(ctx, query,
		e.ID, nullString(e.UserID), e.Action, e.EntityType, e.EntityID, details, nullString(e.IPAddress), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	return nil
}
