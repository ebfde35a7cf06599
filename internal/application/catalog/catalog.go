// Package catalog contiene los casos de uso del catálogo de ingredientes y de las
// formulaciones de mezcla. El cálculo de la mezcla vive en domain/blend; aquí solo se
// resuelven ingredientes, se persiste y se audita.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/surblend-api/internal/domain"
	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/jhoicas/surblend-api/internal/domain/repository"
	"golang.org/x/text/cases"
)

// Catalog vista de solo lectura sobre los ingredientes. Un ID inexistente es un
// *domain.NotFoundError, nunca un nil silencioso.
type Catalog struct {
	repo repository.IngredientRepository
}

// NewCatalog construye la vista.
func NewCatalog(repo repository.IngredientRepository) *Catalog {
	return &Catalog{repo: repo}
}

// Get devuelve un ingrediente por ID.
func (c *Catalog) Get(ctx context.Context, id string) (*entity.Ingredient, error) {
	ing, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("catalog: get %s: %w", id, err)
	}
	if ing == nil {
		return nil, &domain.NotFoundError{Entity: "ingredient", ID: id}
	}
	return ing, nil
}

// GetMany resuelve varios IDs en una sola consulta. El primer ID ausente (en el orden
// recibido) produce NotFoundError.
func (c *Catalog) GetMany(ctx context.Context, ids []string) (map[string]*entity.Ingredient, error) {
	if len(ids) == 0 {
		return map[string]*entity.Ingredient{}, nil
	}
	found, err := c.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("catalog: get many: %w", err)
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return nil, &domain.NotFoundError{Entity: "ingredient", ID: id}
		}
	}
	return found, nil
}

// foldName normaliza un nombre para comparar unicidad sin distinguir mayúsculas ni espacios.
func foldName(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}
