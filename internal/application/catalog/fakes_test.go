package catalog_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/surblend-api/internal/domain"
	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/jhoicas/surblend-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

type fakeIngredientRepo struct {
	mu         sync.Mutex
	byID       map[string]entity.Ingredient
	referenced map[string]bool
	// beforeCost simula un cambio concurrente confirmado antes del compare-and-set.
	beforeCost func(r *fakeIngredientRepo)
}

func newFakeIngredientRepo() *fakeIngredientRepo {
	return &fakeIngredientRepo{byID: map[string]entity.Ingredient{}, referenced: map[string]bool{}}
}

func (r *fakeIngredientRepo) Create(_ context.Context, ing *entity.Ingredient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[ing.ID] = *ing
	return nil
}

func (r *fakeIngredientRepo) GetByID(_ context.Context, id string) (*entity.Ingredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ing, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &ing, nil
}

func (r *fakeIngredientRepo) GetByIDs(_ context.Context, ids []string) (map[string]*entity.Ingredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*entity.Ingredient, len(ids))
	for _, id := range ids {
		if ing, ok := r.byID[id]; ok {
			ing := ing
			out[id] = &ing
		}
	}
	return out, nil
}

func (r *fakeIngredientRepo) find(match func(entity.Ingredient) bool) *entity.Ingredient {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ing := range r.byID {
		if match(ing) {
			ing := ing
			return &ing
		}
	}
	return nil
}

func (r *fakeIngredientRepo) GetByName(_ context.Context, name string) (*entity.Ingredient, error) {
	return r.find(func(i entity.Ingredient) bool { return strings.EqualFold(i.Name, name) }), nil
}

func (r *fakeIngredientRepo) GetByCode(_ context.Context, code string) (*entity.Ingredient, error) {
	return r.find(func(i entity.Ingredient) bool { return i.Code != "" && i.Code == code }), nil
}

func (r *fakeIngredientRepo) List(_ context.Context, f repository.IngredientFilter) ([]*entity.Ingredient, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Ingredient
	for _, ing := range r.byID {
		if f.OnlyAvailable && !ing.IsAvailable {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(ing.Name), strings.ToLower(f.Search)) {
			continue
		}
		ing := ing
		out = append(out, &ing)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, len(out), nil
}

func (r *fakeIngredientRepo) Update(_ context.Context, ing *entity.Ingredient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cost := r.byID[ing.ID].CostPerTon
	cp := *ing
	cp.CostPerTon = cost
	r.byID[ing.ID] = cp
	return nil
}

func (r *fakeIngredientRepo) UpdateCost(_ context.Context, id string, oldCost, cost decimal.Decimal, at time.Time) error {
	if hook := r.beforeCost; hook != nil {
		r.beforeCost = nil
		hook(r)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ing, ok := r.byID[id]
	if !ok {
		return &domain.NotFoundError{Entity: "ingredient", ID: id}
	}
	if !ing.CostPerTon.Equal(oldCost) {
		return domain.ErrConflict
	}
	ing.CostPerTon = cost
	ing.UpdatedAt = at
	r.byID[id] = ing
	return nil
}

func (r *fakeIngredientRepo) IsReferenced(_ context.Context, id string) (bool, error) {
	return r.referenced[id], nil
}

func (r *fakeIngredientRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

type fakePriceRepo struct {
	changes []*entity.PriceChange
}

func (p *fakePriceRepo) Append(_ context.Context, c *entity.PriceChange) error {
	p.changes = append(p.changes, c)
	return nil
}

func (p *fakePriceRepo) ListByIngredient(_ context.Context, id string) ([]*entity.PriceChange, error) {
	var out []*entity.PriceChange
	for i := len(p.changes) - 1; i >= 0; i-- {
		if p.changes[i].IngredientID == id {
			out = append(out, p.changes[i])
		}
	}
	return out, nil
}

type fakeLogRepo struct {
	entries []*entity.ActivityLog
}

func (l *fakeLogRepo) Append(_ context.Context, e *entity.ActivityLog) error {
	l.entries = append(l.entries, e)
	return nil
}

type fakeTx struct {
	ings   *fakeIngredientRepo
	prices *fakePriceRepo
	logs   *fakeLogRepo
}

func (t *fakeTx) RunCatalog(_ context.Context, fn func(repository.IngredientRepository, repository.PriceHistoryRepository, repository.ActivityLogRepository) error) error {
	return fn(t.ings, t.prices, t.logs)
}

type fakeBlendRepo struct {
	byID    map[string]entity.Blend
	deleted []string
}

func newFakeBlendRepo() *fakeBlendRepo {
	return &fakeBlendRepo{byID: map[string]entity.Blend{}}
}

func clone(b entity.Blend) *entity.Blend {
	b.Components = append([]entity.BlendComponent(nil), b.Components...)
	return &b
}

func (r *fakeBlendRepo) Create(_ context.Context, b *entity.Blend) error {
	r.byID[b.ID] = *clone(*b)
	return nil
}

func (r *fakeBlendRepo) GetByID(_ context.Context, id string) (*entity.Blend, error) {
	b, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return clone(b), nil
}

func (r *fakeBlendRepo) GetByCode(_ context.Context, code string) (*entity.Blend, error) {
	for _, b := range r.byID {
		if b.Code == code {
			return clone(b), nil
		}
	}
	return nil, nil
}

func (r *fakeBlendRepo) List(_ context.Context, f repository.BlendFilter) ([]*entity.Blend, int, error) {
	var out []*entity.Blend
	for _, b := range r.byID {
		if f.ActiveOnly && !b.IsActive {
			continue
		}
		if f.TemplatesOnly && !b.IsTemplate {
			continue
		}
		out = append(out, clone(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, len(out), nil
}

func (r *fakeBlendRepo) Update(_ context.Context, b *entity.Blend) error {
	r.byID[b.ID] = *clone(*b)
	return nil
}

func (r *fakeBlendRepo) SetActive(_ context.Context, id string, active bool) error {
	b := r.byID[id]
	b.IsActive = active
	r.byID[id] = b
	return nil
}

func (r *fakeBlendRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type fakeQuoteCounter map[string]int

func (f fakeQuoteCounter) CountByBlend(_ context.Context, id string) (int, error) {
	return f[id], nil
}
