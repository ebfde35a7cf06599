package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/surblend-api/internal/application/catalog"
	"github.com/jhoicas/surblend-api/internal/application/dto"
	"github.com/jhoicas/surblend-api/internal/domain"
	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

var fixedNow = time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)

type catalogEnv struct {
	ings   *fakeIngredientRepo
	prices *fakePriceRepo
	logs   *fakeLogRepo
	uc     *catalog.IngredientUseCase
}

func newCatalogEnv() *catalogEnv {
	env := &catalogEnv{ings: newFakeIngredientRepo(), prices: &fakePriceRepo{}, logs: &fakeLogRepo{}}
	env.uc = catalog.NewIngredientUseCase(env.ings, env.prices,
		&fakeTx{ings: env.ings, prices: env.prices, logs: env.logs}, zerolog.Nop()).
		WithClock(func() time.Time { return fixedNow })
	return env
}

func urea() dto.CreateIngredientRequest {
	return dto.CreateIngredientRequest{
		Name:       "Urea",
		Code:       "UR46",
		Nutrients:  dto.NutrientsDTO{Nitrogen: d("46")},
		CostPerTon: d("500"),
	}
}

func TestIngredientCreate_Defaults(t *testing.T) {
	env := newCatalogEnv()

	ing, err := env.uc.Create(context.Background(), urea())
	require.NoError(t, err)
	assert.NotEmpty(t, ing.ID)
	assert.Equal(t, entity.IngredientDry, ing.Type)
	assert.True(t, d("20").Equal(ing.MarginPercent))
	assert.True(t, ing.IsAvailable)
	assert.Equal(t, fixedNow, ing.CreatedAt)
}

func TestIngredientCreate_Rejections(t *testing.T) {
	cases := map[string]func(r *dto.CreateIngredientRequest){
		"sin nombre":      func(r *dto.CreateIngredientRequest) { r.Name = "  " },
		"costo cero":      func(r *dto.CreateIngredientRequest) { r.CostPerTon = decimal.Zero },
		"tipo":            func(r *dto.CreateIngredientRequest) { r.Type = "gas" },
		"nutriente > 100": func(r *dto.CreateIngredientRequest) { r.Nutrients.Potash = d("100.5") },
		"nutriente < 0":   func(r *dto.CreateIngredientRequest) { r.Nutrients.Sulfur = d("-1") },
		"humedad":         func(r *dto.CreateIngredientRequest) { r.MoistureContent = d("101") },
		"margen negativo": func(r *dto.CreateIngredientRequest) { r.MarginPercent = dp("-1") },
		"máximo < mínimo": func(r *dto.CreateIngredientRequest) { r.MinOrderQty, r.MaxOrderQty = d("5"), dp("2") },
		"mínimo negativo": func(r *dto.CreateIngredientRequest) { r.MinOrderQty = d("-1") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			env := newCatalogEnv()
			req := urea()
			mutate(&req)
			_, err := env.uc.Create(context.Background(), req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, env.ings.byID)
		})
	}
}

func TestIngredientCreate_Duplicates(t *testing.T) {
	env := newCatalogEnv()
	ctx := context.Background()
	_, err := env.uc.Create(ctx, urea())
	require.NoError(t, err)

	dup := urea()
	dup.Name = "  UREA "
	dup.Code = ""
	_, err = env.uc.Create(ctx, dup)
	assert.ErrorIs(t, err, domain.ErrDuplicate, "el nombre no distingue mayúsculas")

	dup = urea()
	dup.Name = "Urea granulada"
	_, err = env.uc.Create(ctx, dup)
	assert.ErrorIs(t, err, domain.ErrDuplicate, "código repetido")
}

func TestIngredientUpdate_KeepsCost(t *testing.T) {
	env := newCatalogEnv()
	ctx := context.Background()
	ing, err := env.uc.Create(ctx, urea())
	require.NoError(t, err)

	notAvailable := false
	updated, err := env.uc.Update(ctx, ing.ID, dto.UpdateIngredientRequest{IsAvailable: &notAvailable, MaxOrderQty: dp("40")})
	require.NoError(t, err)
	assert.False(t, updated.IsAvailable)
	assert.True(t, d("500").Equal(updated.CostPerTon))

	_, err = env.uc.Update(ctx, "missing", dto.UpdateIngredientRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngredientChangePrice(t *testing.T) {
	env := newCatalogEnv()
	ctx := context.Background()
	ing, err := env.uc.Create(ctx, urea())
	require.NoError(t, err)

	_, err = env.uc.ChangePrice(ctx, "u1", "10.0.0.1", ing.ID, dto.ChangePriceRequest{CostPerTon: d("550")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "motivo requerido")

	_, err = env.uc.ChangePrice(ctx, "u1", "10.0.0.1", ing.ID, dto.ChangePriceRequest{CostPerTon: d("-1"), Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	same, err := env.uc.ChangePrice(ctx, "u1", "10.0.0.1", ing.ID, dto.ChangePriceRequest{CostPerTon: d("500.00"), Reason: "sin cambio"})
	require.NoError(t, err)
	assert.True(t, d("500").Equal(same.CostPerTon))
	assert.Empty(t, env.prices.changes, "mismo precio no deja historial")

	changed, err := env.uc.ChangePrice(ctx, "u1", "10.0.0.1", ing.ID, dto.ChangePriceRequest{CostPerTon: d("550"), Reason: "proveedor"})
	require.NoError(t, err)
	assert.True(t, d("550").Equal(changed.CostPerTon))

	stored, _ := env.ings.GetByID(ctx, ing.ID)
	assert.True(t, d("550").Equal(stored.CostPerTon))

	require.Len(t, env.logs.entries, 1)
	assert.Equal(t, entity.ActionIngredientPrice, env.logs.entries[0].Action)
	assert.Equal(t, "10.0.0.1", env.logs.entries[0].IPAddress)

	_, err = env.uc.ChangePrice(ctx, "u2", "", ing.ID, dto.ChangePriceRequest{CostPerTon: d("530"), Reason: "ajuste"})
	require.NoError(t, err)

	history, err := env.uc.PriceHistory(ctx, ing.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, d("550").Equal(history[0].OldPrice))
	assert.True(t, d("530").Equal(history[0].NewPrice))
	assert.Equal(t, "u2", history[0].ChangedBy)
	assert.True(t, d("500").Equal(history[1].OldPrice))
}

func TestIngredientChangePrice_StaleOldPrice(t *testing.T) {
	env := newCatalogEnv()
	ctx := context.Background()
	ing, err := env.uc.Create(ctx, urea())
	require.NoError(t, err)

	// otro cambio 500 → 600 se confirma entre la lectura y la escritura
	env.ings.beforeCost = func(r *fakeIngredientRepo) {
		r.mu.Lock()
		defer r.mu.Unlock()
		cur := r.byID[ing.ID]
		cur.CostPerTon = d("600")
		r.byID[ing.ID] = cur
	}
	_, err = env.uc.ChangePrice(ctx, "u1", "", ing.ID, dto.ChangePriceRequest{CostPerTon: d("700"), Reason: "proveedor"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Empty(t, env.prices.changes, "sin historial con precio anterior obsoleto")
	assert.Empty(t, env.logs.entries)

	stored, _ := env.ings.GetByID(ctx, ing.ID)
	assert.True(t, d("600").Equal(stored.CostPerTon))

	// reintento con la lectura fresca: el historial encadena 600 → 700
	_, err = env.uc.ChangePrice(ctx, "u1", "", ing.ID, dto.ChangePriceRequest{CostPerTon: d("700"), Reason: "proveedor"})
	require.NoError(t, err)
	require.Len(t, env.prices.changes, 1)
	assert.True(t, d("600").Equal(env.prices.changes[0].OldPrice))
	assert.True(t, d("700").Equal(env.prices.changes[0].NewPrice))
}

func TestIngredientDelete(t *testing.T) {
	env := newCatalogEnv()
	ctx := context.Background()
	used, err := env.uc.Create(ctx, urea())
	require.NoError(t, err)
	free := urea()
	free.Name, free.Code = "Sulfato de amonio", ""
	unused, err := env.uc.Create(ctx, free)
	require.NoError(t, err)
	env.ings.referenced[used.ID] = true

	assert.ErrorIs(t, env.uc.Delete(ctx, used.ID), domain.ErrConflict)
	require.NoError(t, env.uc.Delete(ctx, unused.ID))
	assert.ErrorIs(t, env.uc.Delete(ctx, unused.ID), domain.ErrNotFound)
}

func TestIngredientList_Filters(t *testing.T) {
	env := newCatalogEnv()
	ctx := context.Background()
	_, err := env.uc.Create(ctx, urea())
	require.NoError(t, err)
	off := urea()
	off.Name, off.Code = "Nitrato de potasio", ""
	no := false
	off.IsAvailable = &no
	_, err = env.uc.Create(ctx, off)
	require.NoError(t, err)

	all, err := env.uc.List(ctx, false, "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Page.Total)
	assert.Equal(t, 20, all.Page.Limit)

	avail, err := env.uc.List(ctx, true, "", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, avail.Items, 1)
	assert.Equal(t, "Urea", avail.Items[0].Name)

	search, err := env.uc.List(ctx, false, "potasio", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, search.Items, 1)
}

func TestCatalogGetMany_MissingIsNotFound(t *testing.T) {
	env := newCatalogEnv()
	ctx := context.Background()
	ing, err := env.uc.Create(ctx, urea())
	require.NoError(t, err)

	c := catalog.NewCatalog(env.ings)
	found, err := c.GetMany(ctx, []string{ing.ID})
	require.NoError(t, err)
	assert.Contains(t, found, ing.ID)

	_, err = c.GetMany(ctx, []string{ing.ID, "ghost"})
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "ghost", nf.ID)
}
