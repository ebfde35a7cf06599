package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/jhoicas/surblend-api/internal/domain/repository"
)

var _ repository.PriceHistoryRepository = (*PriceHistoryRepo)(nil)

// PriceHistoryRepo historial append-only de costos de ingredientes.
type PriceHistoryRepo struct {
	q Querier
}

// NewPriceHistoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPriceHistoryRepository(q Querier) *PriceHistoryRepo {
	return &PriceHistoryRepo{q: q}
}

// Append registra un cambio de costo.
func (r *PriceHistoryRepo) Append(ctx context.Context, c *entity.PriceChange) error {
	query := `
		INSERT INTO ingredient_price_history (id, ingredient_id, old_price, new_price, reason, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, c.ID, c.IngredientID, c.OldPrice, c.NewPrice, c.Reason, nullString(c.ChangedBy), c.ChangedAt)
	if err != nil {
		return fmt.Errorf("insert price change: %w", err)
	}
	return nil
}

// ListByIngredient historial del ingrediente, más reciente primero.
func (r *PriceHistoryRepo) ListByIngredient(ctx context.Context, ingredientID string) ([]*entity.PriceChange, error) {
	query := `
		SELECT id, ingredient_id, old_price, new_price, reason, changed_by, changed_at
		FROM ingredient_price_history WHERE ingredient_id = $1 ORDER BY changed_at DESC`
	rows, err := r.q.Query(ctx, query, ingredientID)
	if err != nil {
		return nil, fmt.Errorf("list price history: %w", err)
	}
	defer rows.Close()
	var list []*entity.PriceChange
	for rows.Next() {
		var (
			c  entity.PriceChange
			by *string
		)
		if err := rows.Scan(&c.ID, &c.IngredientID, &c.OldPrice, &c.NewPrice, &c.Reason, &by, &c.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan price change: %w", err)
		}
		c.ChangedBy = derefString(by)
		list = append(list, &c)
	}
	return list, rows.Err()
}
