package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/surblend-api/internal/domain"
	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/jhoicas/surblend-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.IngredientRepository = (*IngredientRepo)(nil)

const ingredientColumns = `
	id, name, code, type,
	nitrogen, phosphate, potash, sulfur, calcium, magnesium,
	boron, iron, manganese, zinc, copper, molybdenum,
	density, moisture_content, cost_per_ton, margin_percent, fixed_margin,
	is_available, min_order_qty, max_order_qty, source, notes, created_at, updated_at`

// IngredientRepo implementación de IngredientRepository (usable con pool o tx).
type IngredientRepo struct {
	q Querier
}

// NewIngredientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIngredientRepository(q Querier) *IngredientRepo {
	return &IngredientRepo{q: q}
}

// Create persiste un ingrediente.
func (r *IngredientRepo) Create(ctx context.Context, ing *entity.Ingredient) error {
	query := `INSERT INTO ingredients (` + ingredientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		        $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)`
	n := ing.Nutrients
	_, err := r.q.Exec(ctx, query,
		ing.ID, ing.Name, nullString(ing.Code), ing.Type,
		n.Nitrogen, n.Phosphate, n.Potash, n.Sulfur, n.Calcium, n.Magnesium,
		n.Boron, n.Iron, n.Manganese, n.Zinc, n.Copper, n.Molybdenum,
		nullDecimal(ing.Density), ing.MoistureContent, ing.CostPerTon, ing.MarginPercent, nullDecimal(ing.FixedMargin),
		ing.IsAvailable, ing.MinOrderQty, nullDecimal(ing.MaxOrderQty), ing.Source, ing.Notes, ing.CreatedAt, ing.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert ingredient: %w", err)
	}
	return nil
}

// GetByID obtiene un ingrediente por ID.
func (r *IngredientRepo) GetByID(ctx context.Context, id string) (*entity.Ingredient, error) {
	return r.getOne(ctx, `SELECT `+ingredientColumns+` FROM ingredients WHERE id = $1`, id)
}

// GetByName busca por nombre sin distinguir mayúsculas.
func (r *IngredientRepo) GetByName(ctx context.Context, name string) (*entity.Ingredient, error) {
	return r.getOne(ctx, `SELECT `+ingredientColumns+` FROM ingredients WHERE lower(name) = lower($1)`, name)
}

// GetByCode obtiene un ingrediente por código.
func (r *IngredientRepo) GetByCode(ctx context.Context, code string) (*entity.Ingredient, error) {
	return r.getOne(ctx, `SELECT `+ingredientColumns+` FROM ingredients WHERE code = $1`, code)
}

// GetByIDs resuelve varios ingredientes en una consulta.
func (r *IngredientRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Ingredient, error) {
	out := make(map[string]*entity.Ingredient, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+ingredientColumns+` FROM ingredients WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, fmt.Errorf("get ingredients: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		out[ing.ID] = ing
	}
	return out, rows.Err()
}

// List lista ingredientes ordenados por nombre, con el total para paginar.
func (r *IngredientRepo) List(ctx context.Context, f repository.IngredientFilter) ([]*entity.Ingredient, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	if f.OnlyAvailable {
		where = append(where, "is_available")
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR code ILIKE $%d)", len(args), len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM ingredients WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ingredients: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM ingredients WHERE %s ORDER BY name LIMIT $%d OFFSET $%d`,
		ingredientColumns, cond, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()
	var list []*entity.Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan ingredient: %w", err)
		}
		list = append(list, ing)
	}
	return list, total, rows.Err()
}

// Update actualiza todo salvo cost_per_ton.
func (r *IngredientRepo) Update(ctx context.Context, ing *entity.Ingredient) error {
	query := `
		UPDATE ingredients SET
			name = $2, code = $3, type = $4,
			nitrogen = $5, phosphate = $6, potash = $7, sulfur = $8, calcium = $9, magnesium = $10,
			boron = $11, iron = $12, manganese = $13, zinc = $14, copper = $15, molybdenum = $16,
			density = $17, moisture_content = $18, margin_percent = $19, fixed_margin = $20,
			is_available = $21, min_order_qty = $22, max_order_qty = $23, source = $24, notes = $25,
			updated_at = $26
		WHERE id = $1`
	n := ing.Nutrients
	tag, err := r.q.Exec(ctx, query,
		ing.ID, ing.Name, nullString(ing.Code), ing.Type,
		n.Nitrogen, n.Phosphate, n.Potash, n.Sulfur, n.Calcium, n.Magnesium,
		n.Boron, n.Iron, n.Manganese, n.Zinc, n.Copper, n.Molybdenum,
		nullDecimal(ing.Density), ing.MoistureContent, ing.MarginPercent, nullDecimal(ing.FixedMargin),
		ing.IsAvailable, ing.MinOrderQty, nullDecimal(ing.MaxOrderQty), ing.Source, ing.Notes,
		ing.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update ingredient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "ingredient", ID: ing.ID}
	}
	return nil
}

// UpdateCost cambia el costo por tonelada solo si sigue siendo oldCost.
func (r *IngredientRepo) UpdateCost(ctx context.Context, id string, oldCost, cost decimal.Decimal, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE ingredients SET cost_per_ton = $2, updated_at = $3 WHERE id = $1 AND cost_per_ton = $4`,
		id, cost, at, oldCost)
	if err != nil {
		return fmt.Errorf("update ingredient cost: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM ingredients WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("update ingredient cost: %w", err)
	}
	if !exists {
		return &domain.NotFoundError{Entity: "ingredient", ID: id}
	}
	return domain.ErrConflict
}

// IsReferenced indica si alguna mezcla usa el ingrediente.
func (r *IngredientRepo) IsReferenced(ctx context.Context, id string) (bool, error) {
	var used bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM blend_components WHERE ingredient_id = $1)`, id).Scan(&used)
	if err != nil {
		return false, fmt.Errorf("ingredient references: %w", err)
	}
	return used, nil
}

// Delete elimina un ingrediente.
func (r *IngredientRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM ingredients WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete ingredient: %w", err)
	}
	return nil
}

func (r *IngredientRepo) getOne(ctx context.Context, query string, arg any) (*entity.Ingredient, error) {
	ing, err := scanIngredient(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ingredient: %w", err)
	}
	return ing, nil
}

func scanIngredient(row rowScanner) (*entity.Ingredient, error) {
	var (
		ing                               entity.Ingredient
		code                              *string
		density, fixedMargin, maxOrderQty decimal.NullDecimal
	)
	n := &ing.Nutrients
	err := row.Scan(
		&ing.ID, &ing.Name, &code, &ing.Type,
		&n.Nitrogen, &n.Phosphate, &n.Potash, &n.Sulfur, &n.Calcium, &n.Magnesium,
		&n.Boron, &n.Iron, &n.Manganese, &n.Zinc, &n.Copper, &n.Molybdenum,
		&density, &ing.MoistureContent, &ing.CostPerTon, &ing.MarginPercent, &fixedMargin,
		&ing.IsAvailable, &ing.MinOrderQty, &maxOrderQty, &ing.Source, &ing.Notes, &ing.CreatedAt, &ing.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ing.Code = derefString(code)
	ing.Density = decimalPtr(density)
	ing.FixedMargin = decimalPtr(fixedMargin)
	ing.MaxOrderQty = decimalPtr(maxOrderQty)
	return &ing, nil
}
