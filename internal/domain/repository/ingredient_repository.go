package repository

import (
	"context"
	"time"

	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// IngredientFilter filtros de listado del catálogo.
type IngredientFilter struct {
	OnlyAvailable bool
	Search        string // coincidencia parcial sobre nombre o código
	Limit         int
	Offset        int
}

// IngredientRepository define el puerto de persistencia para Ingredient.
// Devuelve nil, nil cuando el registro no existe.
type IngredientRepository interface {
	Create(ctx context.Context, ing *entity.Ingredient) error
	GetByID(ctx context.Context, id string) (*entity.Ingredient, error)
	// GetByIDs devuelve los ingredientes encontrados indexados por ID (los ausentes no aparecen).
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Ingredient, error)
	GetByName(ctx context.Context, name string) (*entity.Ingredient, error)
	GetByCode(ctx context.Context, code string) (*entity.Ingredient, error)
	List(ctx context.Context, f IngredientFilter) ([]*entity.Ingredient, int, error)
	// Update actualiza todo salvo cost_per_ton (que solo cambia vía UpdateCost).
	Update(ctx context.Context, ing *entity.Ingredient) error
	// UpdateCost es compare-and-set sobre el costo vigente: si ya no es oldCost devuelve
	// domain.ErrConflict y no escribe nada.
	UpdateCost(ctx context.Context, id string, oldCost, cost decimal.Decimal, at time.Time) error
	// IsReferenced indica si alguna mezcla usa el ingrediente.
	IsReferenced(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// PriceHistoryRepository auditoría append-only de cambios de costo.
type PriceHistoryRepository interface {
	Append(ctx context.Context, change *entity.PriceChange) error
	ListByIngredient(ctx context.Context, ingredientID string) ([]*entity.PriceChange, error)
}
