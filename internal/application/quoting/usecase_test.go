package quoting_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/surblend-api/internal/application/dto"
	"github.com/jhoicas/surblend-api/internal/application/quoting"
	"github.com/jhoicas/surblend-api/internal/domain"
	"github.com/jhoicas/surblend-api/internal/domain/blend"
	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/jhoicas/surblend-api/internal/domain/pricing"
	"github.com/jhoicas/surblend-api/internal/infrastructure/memory"
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

type quoteEnv struct {
	uc        *quoting.QuoteUseCase
	quotes    *fakeQuoteRepo
	logs      *fakeLogRepo
	customers *fakeCustomers
	blends    *fakeBlends
	ings      *fakeIngredients
	rec       *countingRecorder
	clock     *time.Time
}

// newQuoteEnv mezcla 50/50 urea (46-0-0, $500) + DAP (18-46-0, $700): 32-23-0 a $600/t.
func newQuoteEnv(t *testing.T) *quoteEnv {
	t.Helper()
	urea := &entity.Ingredient{ID: "urea", Name: "Urea", CostPerTon: d("500"), IsAvailable: true,
		Nutrients: entity.NutrientProfile{Nitrogen: d("46")}}
	dap := &entity.Ingredient{ID: "dap", Name: "DAP", CostPerTon: d("700"), IsAvailable: true,
		Nutrients: entity.NutrientProfile{Nitrogen: d("18"), Phosphate: d("46")}}

	res, err := blend.Compose([]blend.Input{
		{Ingredient: urea, Percentage: d("50")},
		{Ingredient: dap, Percentage: d("50")},
	}, d("200"))
	require.NoError(t, err)
	b := &entity.Blend{ID: "b1", Name: "Maíz 32-23", ApplicationUnit: entity.UnitLbsPerAcre, IsActive: true}
	res.Apply(b)
	inactive := &entity.Blend{ID: "b-off", Name: "Vieja", ApplicationUnit: entity.UnitLbsPerAcre}
	res.Apply(inactive)

	env := &quoteEnv{
		quotes: newFakeQuoteRepo(),
		logs:   &fakeLogRepo{},
		customers: &fakeCustomers{byID: map[string]*entity.Customer{
			"c1":  {ID: "c1", Name: "Finca El Roble", IsActive: true},
			"c2":  {ID: "c2", Name: "Agro Llanos", IsActive: true, DefaultMargin: &entity.MarginPolicy{Type: entity.MarginFixed, Value: d("75")}},
			"off": {ID: "off", Name: "Inactivo"},
		}},
		blends: &fakeBlends{byID: map[string]*entity.Blend{"b1": b, "b-off": inactive}},
		ings:   &fakeIngredients{byID: map[string]*entity.Ingredient{"urea": urea, "dap": dap}},
		rec:    newRecorder(),
	}
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	env.clock = &now

	alloc := quoting.NewAllocator(memory.NewQuoteSequenceStore(nil), quoting.AllocatorConfig{}, env.rec, zerolog.Nop())
	env.uc = quoting.NewQuoteUseCase(
		&fakeTx{quotes: env.quotes, logs: env.logs},
		env.quotes, env.customers, env.blends, env.ings,
		pricing.NewEngine(pricing.Config{Precision: 2}),
		alloc,
		quoting.Config{ValidityDays: 30, DefaultMargin: entity.MarginPolicy{Type: entity.MarginPercent, Value: d("20")}},
		env.rec, zerolog.Nop(),
	).WithClock(func() time.Time { return *env.clock })
	return env
}

func (e *quoteEnv) advance(dur time.Duration) { *e.clock = e.clock.Add(dur) }

func (e *quoteEnv) create(t *testing.T, req dto.CreateQuoteRequest) *dto.QuoteResponse {
	t.Helper()
	q, err := e.uc.Create(context.Background(), "u1", "127.0.0.1", req)
	require.NoError(t, err)
	return q
}

func TestQuoteCreate_PercentMargin(t *testing.T) {
	env := newQuoteEnv(t)

	q := env.create(t, dto.CreateQuoteRequest{CustomerID: "c1", BlendID: "b1", Quantity: d("10")})

	assert.Equal(t, "Q-202401-0001", q.QuoteNumber)
	assert.Equal(t, entity.QuoteStatusDraft, q.Status)
	assert.Equal(t, entity.MarginPercent, q.MarginType)
	assert.True(t, d("600").Equal(q.Blend.CostPerTon))
	assert.True(t, d("720").Equal(q.UnitPrice), q.UnitPrice.String())
	assert.True(t, d("7200").Equal(q.TotalPrice), q.TotalPrice.String())
	assert.Equal(t, time.Date(2024, 2, 14, 10, 0, 0, 0, time.UTC), q.ValidUntil)
	assert.Equal(t, "u1", q.CreatedBy)
	assert.Equal(t, []string{entity.ActionQuoteCreated}, env.logs.actions())
	assert.Equal(t, 1, env.rec.created)

	second := env.create(t, dto.CreateQuoteRequest{CustomerID: "c1", BlendID: "b1", Quantity: d("1")})
	assert.Equal(t, "Q-202401-0002", second.QuoteNumber)
}

func TestQuoteCreate_MarginResolution(t *testing.T) {
	env := newQuoteEnv(t)

	// margen del cliente: fijo $75/t
	q := env.create(t, dto.CreateQuoteRequest{CustomerID: "c2", BlendID: "b1", Quantity: d("2")})
	assert.Equal(t, entity.MarginFixed, q.MarginType)
	assert.True(t, d("675").Equal(q.UnitPrice), q.UnitPrice.String())

	// la petición gana sobre el cliente
	q = env.create(t, dto.CreateQuoteRequest{CustomerID: "c2", BlendID: "b1", Quantity: d("2"),
		MarginType: entity.MarginPercent, MarginValue: dp("10")})
	assert.Equal(t, entity.MarginPercent, q.MarginType)
	assert.True(t, d("660").Equal(q.UnitPrice), q.UnitPrice.String())

	// solo el valor: conserva el tipo del cliente
	q = env.create(t, dto.CreateQuoteRequest{CustomerID: "c2", BlendID: "b1", Quantity: d("2"), MarginValue: dp("50")})
	assert.Equal(t, entity.MarginFixed, q.MarginType)
	assert.True(t, d("650").Equal(q.UnitPrice), q.UnitPrice.String())
}

func TestQuoteCreate_ServicesAndAcres(t *testing.T) {
	env := newQuoteEnv(t)

	q := env.create(t, dto.CreateQuoteRequest{
		CustomerID: "c1", BlendID: "b1", Quantity: d("10"),
		Services:         []dto.ServiceDTO{{Name: "Flete", Cost: d("250")}, {Name: "Ensacado", Cost: d("50")}},
		ApplicationAcres: dp("100"),
	})
	assert.True(t, d("300").Equal(q.ServicesTotal))
	require.NotNil(t, q.CostPerAcre)
	assert.True(t, d("75").Equal(*q.CostPerAcre), q.CostPerAcre.String())
}

func TestQuoteCreate_Rejections(t *testing.T) {
	env := newQuoteEnv(t)
	ctx := context.Background()

	cases := map[string]struct {
		req  dto.CreateQuoteRequest
		want error
	}{
		"sin cliente":       {dto.CreateQuoteRequest{BlendID: "b1", Quantity: d("1")}, domain.ErrInvalidInput},
		"sin mezcla":        {dto.CreateQuoteRequest{CustomerID: "c1", Quantity: d("1")}, domain.ErrInvalidInput},
		"cliente no existe": {dto.CreateQuoteRequest{CustomerID: "nope", BlendID: "b1", Quantity: d("1")}, domain.ErrNotFound},
		"cliente inactivo":  {dto.CreateQuoteRequest{CustomerID: "off", BlendID: "b1", Quantity: d("1")}, domain.ErrInvalidInput},
		"mezcla no existe":  {dto.CreateQuoteRequest{CustomerID: "c1", BlendID: "nope", Quantity: d("1")}, domain.ErrNotFound},
		"mezcla inactiva":   {dto.CreateQuoteRequest{CustomerID: "c1", BlendID: "b-off", Quantity: d("1")}, domain.ErrInvalidInput},
		"cantidad cero":     {dto.CreateQuoteRequest{CustomerID: "c1", BlendID: "b1", Quantity: d("0")}, domain.ErrInvalidInput},
		"margen negativo": {dto.CreateQuoteRequest{CustomerID: "c1", BlendID: "b1", Quantity: d("1"),
			MarginValue: dp("-5")}, domain.ErrInvalidInput},
		"tipo de margen": {dto.CreateQuoteRequest{CustomerID: "c1", BlendID: "b1", Quantity: d("1"),
			MarginType: "markup"}, domain.ErrInvalidInput},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.uc.Create(ctx, "u1", "", tc.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// ningún rechazo consume número ni deja cotización
	assert.Empty(t, env.quotes.quotes)
	q := env.create(t, dto.CreateQuoteRequest{CustomerID: "c1", BlendID: "b1", Quantity: d("1")})
	assert.Equal(t, "Q-202401-0001", q.QuoteNumber)
}

func TestQuoteCreate_OrderBounds(t *testing.T) {
	env := newQuoteEnv(t)
	env.ings.byID["urea"].MinOrderQty = d("2")
	env.ings.byID["dap"].MaxOrderQty = dp("5")

	// 2 t → 1 t de urea, por debajo del mínimo
	_, err := env.uc.Create(context.Background(), "u1", "", dto.CreateQuoteRequest{CustomerID: "c1", BlendID: "b1", Quantity: d("2")})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Reason, "Urea")

	// 12 t → 6 t de DAP, por encima del máximo
	_, err = env.uc.Create(context.Background(), "u1", "", dto.CreateQuoteRequest{CustomerID: "c1", BlendID: "b1", Quantity: d("12")})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Reason, "DAP")

	env.create(t, dto.CreateQuoteRequest{CustomerID: "c1", BlendID: "b1", Quantity: d("8")})
}

func TestQuoteCreate_SnapshotIsFrozen(t *testing.T) {
	env := newQuoteEnv(t)
	q := env.create(t, dto.CreateQuoteRequest{CustomerID: "c1", BlendID: "b1", Quantity: d("10")})

	// la mezcla cambia de costo después de cotizar
	env.blends.byID["b1"].CostPerTon = d("900")

	qty := d("20")
	updated, err := env.uc.Update(context.Background(), "u1", "", q.ID, dto.UpdateQuoteRequest{Quantity: &qty})
	require.NoError(t, err)
	assert.True(t, d("600").Equal(updated.Blend.CostPerTon))
	assert.True(t, d("14400").Equal(updated.TotalPrice), updated.TotalPrice.String())
}

func TestQuoteGet_ByIDAndNumber(t *testing.T) {
	env := newQuoteEnv(t)
	q := env.create(t, dto.CreateQuoteRequest{CustomerID: "c1", BlendID: "b1", Quantity: d("1")})

	byID, err := env.uc.Get(context.Background(), q.ID)
	require.NoError(t, err)
	byNumber, err := env.uc.Get(context.Background(), q.QuoteNumber)
	require.NoError(t, err)
	assert.Equal(t, byID.ID, byNumber.ID)

	_, err = env.uc.Get(context.Background(), "Q-209912-0001")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQuoteList_Filters(t *testing.T) {
	env := newQuoteEnv(t)
	env.create(t, dto.CreateQuoteRequest{CustomerID: "c1", BlendID: "b1", Quantity: d("1")})
	env.create(t, dto.CreateQuoteRequest{CustomerID: "c2", BlendID: "b1", Quantity: d("1")})

	res, err := env.uc.List(context.Background(), "draft", "c2", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "c2", res.Items[0].CustomerID)
	assert.Equal(t, 1, res.Page.Total)

	_, err = env.uc.List(context.Background(), "PENDING", "", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestQuoteUpdate_OnlyDraft(t *testing.T) {
	env := newQuoteEnv(t)
	ctx := context.Background()
	q := env.create(t, dto.CreateQuoteRequest{CustomerID: "c1", BlendID: "b1", Quantity: d("10")})

	fixed := entity.MarginFixed
	updated, err := env.uc.Update(ctx, "u1", "", q.ID, dto.UpdateQuoteRequest{MarginType: &fixed, MarginValue: dp("100")})
	require.NoError(t, err)
	assert.True(t, d("700").Equal(updated.UnitPrice))
	assert.Equal(t, q.QuoteNumber, updated.QuoteNumber, "el número no cambia al editar")

	_, err = env.uc.Transition(ctx, "u1", "", q.ID, "send")
	require.NoError(t, err)

	_, err = env.uc.Update(ctx, "u1", "", q.ID, dto.UpdateQuoteRequest{MarginValue: dp("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t,
		[]string{entity.ActionQuoteCreated, entity.ActionQuoteUpdated, entity.ActionQuoteTransition},
		env.logs.actions())
}

func TestQuoteTransition_Lifecycle(t *testing.T) {
	env := newQuoteEnv(t)
	ctx := context.Background()
	q := env.create(t, dto.CreateQuoteRequest{CustomerID: "c1", BlendID: "b1", Quantity: d("10")})

	sent, err := env.uc.Transition(ctx, "u1", "", q.ID, "send")
	require.NoError(t, err)
	assert.Equal(t, entity.QuoteStatusSent, sent.Status)
	require.NotNil(t, sent.SentAt)

	env.advance(48 * time.Hour)
	accepted, err := env.uc.Transition(ctx, "u1", "", q.QuoteNumber, entity.QuoteStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, entity.QuoteStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.AcceptedAt)

	_, err = env.uc.Transition(ctx, "u1", "", q.ID, "reject")
	var ite *domain.InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, entity.QuoteStatusAccepted, ite.From)

	assert.Equal(t, 1, env.rec.transitions["DRAFT->SENT"])
	assert.Equal(t, 1, env.rec.transitions["SENT->ACCEPTED"])
}

func TestQuoteTransition_AfterLapse(t *testing.T) {
	env := newQuoteEnv(t)
	ctx := context.Background()
	q := env.create(t, dto.CreateQuoteRequest{CustomerID: "c1", BlendID: "b1", Quantity: d("10")})
	_, err := env.uc.Transition(ctx, "u1", "", q.ID, "send")
	require.NoError(t, err)

	env.advance(31 * 24 * time.Hour)
	_, err = env.uc.Transition(ctx, "u1", "", q.ID, "accept")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	rejected, err := env.uc.Transition(ctx, "u1", "", q.ID, "reject")
	require.NoError(t, err)
	assert.Equal(t, entity.QuoteStatusRejected, rejected.Status)
}

func TestQuoteTransition_LostRace(t *testing.T) {
	env := newQuoteEnv(t)
	ctx := context.Background()
	q := env.create(t, dto.CreateQuoteRequest{CustomerID: "c1", BlendID: "b1", Quantity: d("10")})
	_, err := env.uc.Transition(ctx, "u1", "", q.ID, "send")
	require.NoError(t, err)

	// otra petición acepta entre la lectura y el compare-and-set
	env.quotes.beforeCAS = func(r *fakeQuoteRepo, id string) {
		r.beforeCAS = nil
		r.setStatus(id, entity.QuoteStatusAccepted)
	}
	_, err = env.uc.Transition(ctx, "u2", "", q.ID, "reject")
	var ite *domain.InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, entity.QuoteStatusAccepted, ite.From)
	assert.Equal(t, entity.QuoteStatusRejected, ite.To)
	assert.Zero(t, env.rec.transitions["SENT->REJECTED"])
}

func TestQuoteTransition_UnknownTarget(t *testing.T) {
	env := newQuoteEnv(t)
	q := env.create(t, dto.CreateQuoteRequest{CustomerID: "c1", BlendID: "b1", Quantity: d("10")})

	_, err := env.uc.Transition(context.Background(), "u1", "", q.ID, "archive")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = env.uc.Transition(context.Background(), "u1", "", "missing", "send")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQuoteExpireDue(t *testing.T) {
	env := newQuoteEnv(t)
	ctx := context.Background()
	draft := env.create(t, dto.CreateQuoteRequest{CustomerID: "c1", BlendID: "b1", Quantity: d("1")})
	sent := env.create(t, dto.CreateQuoteRequest{CustomerID: "c1", BlendID: "b1", Quantity: d("1")})
	_, err := env.uc.Transition(ctx, "u1", "", sent.ID, "send")
	require.NoError(t, err)

	n, err := env.uc.ExpireDue(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, n, "todavía vigentes")

	env.advance(30*24*time.Hour + time.Second)
	fresh := env.create(t, dto.CreateQuoteRequest{CustomerID: "c1", BlendID: "b1", Quantity: d("1")})

	n, err = env.uc.ExpireDue(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, env.rec.expired)

	for id, want := range map[string]string{
		draft.ID: entity.QuoteStatusExpired,
		sent.ID:  entity.QuoteStatusExpired,
		fresh.ID: entity.QuoteStatusDraft,
	} {
		got, err := env.uc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status)
	}

	n, err = env.uc.ExpireDue(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, n, "segunda pasada sin cambios")

	// expirar explícitamente una cotización ya vencida no falla
	again, err := env.uc.Transition(ctx, "u1", "", draft.ID, "expire")
	require.NoError(t, err)
	assert.Equal(t, entity.QuoteStatusExpired, again.Status)
}

func TestQuoteCreate_AllocationFailureIsRetryable(t *testing.T) {
	env := newQuoteEnv(t)
	store := &flakyStore{failures: 100}
	alloc := quoting.NewAllocator(store, quoting.AllocatorConfig{MaxAttempts: 2, Backoff: time.Millisecond}, nil, zerolog.Nop())
	uc := quoting.NewQuoteUseCase(&fakeTx{quotes: env.quotes, logs: env.logs}, env.quotes, env.customers, env.blends, env.ings,
		pricing.NewEngine(pricing.Config{}), alloc, quoting.Config{}, nil, zerolog.Nop())

	_, err := uc.Create(context.Background(), "u1", "", dto.CreateQuoteRequest{CustomerID: "c1", BlendID: "b1", Quantity: d("1")})
	require.Error(t, err)
	assert.True(t, domain.IsRetryable(err))
	assert.True(t, errors.Is(err, domain.ErrRetryable))
	assert.Empty(t, env.quotes.quotes)
}
