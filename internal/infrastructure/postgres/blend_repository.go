package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/surblend-api/internal/domain"
	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/jhoicas/surblend-api/internal/domain/repository"
)

var _ repository.BlendRepository = (*BlendRepo)(nil)

const blendColumns = `
	b.id, b.name, b.code, b.description, b.target, b.application_rate, b.application_unit,
	b.is_template, b.is_active, b.created_by, b.created_at, b.updated_at`

// BlendRepo guarda cabecera (blends) y composición (blend_components).
// Los valores derivados no se guardan.
type BlendRepo struct {
	q TxQuerier
}

// NewBlendRepository construye el adaptador. Pasar pool o tx.
func NewBlendRepository(q TxQuerier) *BlendRepo {
	return &BlendRepo{q: q}
}

// Create inserta cabecera y composición en una transacción.
func (r *BlendRepo) Create(ctx context.Context, b *entity.Blend) error {
	target, err := marshalTarget(b.Target)
	if err != nil {
		return err
	}
	return inTx(ctx, r.q, func(tx pgx.Tx) error {
		query := `
			INSERT INTO blends (id, name, code, description, target, application_rate, application_unit,
			                    is_template, is_active, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
		_, err := tx.Exec(ctx, query,
			b.ID, b.Name, nullString(b.Code), b.Description, target, b.ApplicationRate, b.ApplicationUnit,
			b.IsTemplate, b.IsActive, nullString(b.CreatedBy), b.CreatedAt, b.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert blend: %w", err)
		}
		return insertComponents(ctx, tx, b)
	})
}

// GetByID obtiene una mezcla con su composición.
func (r *BlendRepo) GetByID(ctx context.Context, id string) (*entity.Blend, error) {
	return r.getOne(ctx, `SELECT `+blendColumns+` FROM blends b WHERE b.id = $1`, id)
}

// GetByCode obtiene una mezcla por código.
func (r *BlendRepo) GetByCode(ctx context.Context, code string) (*entity.Blend, error) {
	return r.getOne(ctx, `SELECT `+blendColumns+` FROM blends b WHERE b.code = $1`, code)
}

// List lista mezclas con su composición.
func (r *BlendRepo) List(ctx context.Context, f repository.BlendFilter) ([]*entity.Blend, int, error) {
	where := []string{"TRUE"}
	if f.ActiveOnly {
		where = append(where, "b.is_active")
	}
	if f.TemplatesOnly {
		where = append(where, "b.is_template")
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM blends b WHERE `+cond).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count blends: %w", err)
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+blendColumns+` FROM blends b WHERE `+cond+` ORDER BY b.name LIMIT $1 OFFSET $2`,
		f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list blends: %w", err)
	}
	var list []*entity.Blend
	for rows.Next() {
		b, err := scanBlend(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan blend: %w", err)
		}
		list = append(list, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for _, b := range list {
		if err := r.loadComponents(ctx, b); err != nil {
			return nil, 0, err
		}
	}
	return list, total, nil
}

// Update reemplaza cabecera y composición.
func (r *BlendRepo) Update(ctx context.Context, b *entity.Blend) error {
	target, err := marshalTarget(b.Target)
	if err != nil {
		return err
	}
	return inTx(ctx, r.q, func(tx pgx.Tx) error {
		query := `
			UPDATE blends SET name = $2, code = $3, description = $4, target = $5, application_rate = $6,
			                  application_unit = $7, is_template = $8, is_active = $9, updated_at = $10
			WHERE id = $1`
		tag, err := tx.Exec(ctx, query,
			b.ID, b.Name, nullString(b.Code), b.Description, target, b.ApplicationRate,
			b.ApplicationUnit, b.IsTemplate, b.IsActive, b.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("update blend: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return &domain.NotFoundError{Entity: "blend", ID: b.ID}
		}
		if _, err := tx.Exec(ctx, `DELETE FROM blend_components WHERE blend_id = $1`, b.ID); err != nil {
			return fmt.Errorf("delete blend components: %w", err)
		}
		return insertComponents(ctx, tx, b)
	})
}

// SetActive activa o desactiva la mezcla.
func (r *BlendRepo) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.q.Exec(ctx, `UPDATE blends SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set blend active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "blend", ID: id}
	}
	return nil
}

// Delete elimina la mezcla (la composición se borra en cascada).
func (r *BlendRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM blends WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete blend: %w", err)
	}
	return nil
}

func (r *BlendRepo) getOne(ctx context.Context, query string, arg any) (*entity.Blend, error) {
	b, err := scanBlend(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get blend: %w", err)
	}
	if err := r.loadComponents(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BlendRepo) loadComponents(ctx context.Context, b *entity.Blend) error {
	query := `
		SELECT c.ingredient_id, i.name, c.percentage, c.amount
		FROM blend_components c
		JOIN ingredients i ON i.id = c.ingredient_id
		WHERE c.blend_id = $1
		ORDER BY c.position`
	rows, err := r.q.Query(ctx, query, b.ID)
	if err != nil {
		return fmt.Errorf("list blend components: %w", err)
	}
	defer rows.Close()
	b.Components = b.Components[:0]
	for rows.Next() {
		var c entity.BlendComponent
		if err := rows.Scan(&c.IngredientID, &c.IngredientName, &c.Percentage, &c.Amount); err != nil {
			return fmt.Errorf("scan blend component: %w", err)
		}
		b.Components = append(b.Components, c)
	}
	return rows.Err()
}

func insertComponents(ctx context.Context, tx pgx.Tx, b *entity.Blend) error {
	batch := &pgx.Batch{}
	for i, c := range b.Components {
		batch.Queue(`
			INSERT INTO blend_components (blend_id, position, ingredient_id, percentage, amount)
			VALUES ($1, $2, $3, $4, $5)`,
			b.ID, i, c.IngredientID, c.Percentage, c.Amount)
	}
	br := tx.SendBatch(ctx, batch)
	for range b.Components {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert blend component: %w", err)
		}
	}
	return br.Close()
}

func scanBlend(row rowScanner) (*entity.Blend, error) {
	var (
		b         entity.Blend
		code, by  *string
		targetRaw []byte
	)
	err := row.Scan(
		&b.ID, &b.Name, &code, &b.Description, &targetRaw, &b.ApplicationRate, &b.ApplicationUnit,
		&b.IsTemplate, &b.IsActive, &by, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Code = derefString(code)
	b.CreatedBy = derefString(by)
	if len(targetRaw) > 0 {
		var t entity.NutrientProfile
		if err := json.Unmarshal(targetRaw, &t); err != nil {
			return nil, fmt.Errorf("unmarshal blend target: %w", err)
		}
		b.Target = &t
	}
	return &b, nil
}

func marshalTarget(t *entity.NutrientProfile) ([]byte, error) {
	if t == nil {
		return nil, nil
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal blend target: %w", err)
	}
	return raw, nil
}
