// Package quoting orquesta la cotización: resuelve cliente y mezcla, congela la mezcla,
// aplica el motor de precios, asigna el número y gobierna el ciclo de vida persistido.
package quoting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/surblend-api/internal/application/dto"
	"github.com/jhoicas/surblend-api/internal/domain"
	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/jhoicas/surblend-api/internal/domain/pricing"
	"github.com/jhoicas/surblend-api/internal/domain/quote"
	"github.com/jhoicas/surblend-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultValidityDays vigencia de una cotización.
const DefaultValidityDays = 30

// Config parámetros de cotización que vienen de la configuración.
type Config struct {
	ValidityDays  int
	DefaultMargin entity.MarginPolicy // último recurso si ni la petición ni el cliente traen margen
}

// QuoteUseCase casos de uso de cotizaciones.
type QuoteUseCase struct {
	txRunner     TxRunner
	quoteRepo    repository.QuoteRepository
	customerRepo repository.CustomerRepository
	blends       BlendResolver
	ingredients  IngredientLookup
	engine       *pricing.Engine
	allocator    *Allocator
	cfg          Config
	recorder     Recorder
	log          zerolog.Logger
	now          func() time.Time
}

// NewQuoteUseCase construye el caso de uso.
func NewQuoteUseCase(
	txRunner TxRunner,
	quoteRepo repository.QuoteRepository,
	customerRepo repository.CustomerRepository,
	blends BlendResolver,
	ingredients IngredientLookup,
	engine *pricing.Engine,
	allocator *Allocator,
	cfg Config,
	recorder Recorder,
	log zerolog.Logger,
) *QuoteUseCase {
	if cfg.ValidityDays <= 0 {
		cfg.ValidityDays = DefaultValidityDays
	}
	if cfg.DefaultMargin.Type == "" {
		cfg.DefaultMargin = entity.MarginPolicy{Type: entity.MarginPercent, Value: decimal.NewFromInt(20)}
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &QuoteUseCase{
		txRunner:     txRunner,
		quoteRepo:    quoteRepo,
		customerRepo: customerRepo,
		blends:       blends,
		ingredients:  ingredients,
		engine:       engine,
		allocator:    allocator,
		cfg:          cfg,
		recorder:     recorder,
		log:          log,
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *QuoteUseCase) WithClock(now func() time.Time) *QuoteUseCase {
	uc.now = now
	return uc
}

// Create cotiza una mezcla a un cliente. La mezcla se recalcula con los precios vigentes
// y se congela en la cotización; el número se asigna solo cuando todo lo demás es válido.
func (uc *QuoteUseCase) Create(ctx context.Context, userID, ip string, in dto.CreateQuoteRequest) (*dto.QuoteResponse, error) {
	if in.CustomerID == "" {
		return nil, domain.NewValidationError("customer_id", "", "cliente requerido")
	}
	if in.BlendID == "" {
		return nil, domain.NewValidationError("blend_id", "", "mezcla requerida")
	}

	customer, err := uc.customerRepo.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, &domain.NotFoundError{Entity: "customer", ID: in.CustomerID}
	}
	if !customer.IsActive {
		return nil, domain.NewValidationError("customer_id", customer.ID, "cliente inactivo")
	}

	b, err := uc.blends.Resolve(ctx, in.BlendID)
	if err != nil {
		return nil, err
	}
	if !b.IsActive {
		return nil, domain.NewValidationError("blend_id", b.ID, "mezcla inactiva")
	}

	q := &entity.Quote{
		ID:               uuid.New().String(),
		CustomerID:       customer.ID,
		BlendID:          b.ID,
		Blend:            b.Snapshot(),
		Quantity:         in.Quantity,
		Margin:           uc.resolveMargin(customer, in.MarginType, in.MarginValue),
		Services:         servicesFromDTO(in.Services),
		ApplicationAcres: in.ApplicationAcres,
		Status:           entity.QuoteStatusDraft,
		InternalNotes:    in.InternalNotes,
		CustomerNotes:    in.CustomerNotes,
		CreatedBy:        userID,
	}
	if err := uc.price(ctx, q); err != nil {
		return nil, err
	}

	now := uc.now()
	number, err := uc.allocator.Allocate(ctx, now)
	if err != nil {
		return nil, err
	}
	q.Number = number.String()
	q.ValidUntil = quote.ValidUntil(now, uc.cfg.ValidityDays)
	q.CreatedAt = now
	q.UpdatedAt = now

	err = uc.txRunner.RunQuoting(ctx, func(quoteRepo repository.QuoteRepository, logRepo repository.ActivityLogRepository) error {
		if err := quoteRepo.Create(ctx, q); err != nil {
			return err
		}
		return logRepo.Append(ctx, activity(userID, ip, entity.ActionQuoteCreated, q, map[string]any{
			"quote_number": q.Number,
			"total_price":  q.TotalPrice.String(),
		}, now))
	})
	if err != nil {
		return nil, fmt.Errorf("guardar cotización %s: %w", q.Number, err)
	}
	uc.recorder.QuoteCreated()
	uc.log.Info().
		Str("quote_number", q.Number).
		Str("customer_id", q.CustomerID).
		Str("blend_id", q.BlendID).
		Str("total_price", q.TotalPrice.String()).
		Msg("cotización creada")
	return QuoteToResponse(q), nil
}

// Get obtiene una cotización por ID o por número (Q-YYYYMM-NNNN).
func (uc *QuoteUseCase) Get(ctx context.Context, idOrNumber string) (*dto.QuoteResponse, error) {
	q, err := uc.load(ctx, idOrNumber)
	if err != nil {
		return nil, err
	}
	return QuoteToResponse(q), nil
}

// List lista cotizaciones con filtros de estado y cliente.
func (uc *QuoteUseCase) List(ctx context.Context, status, customerID string, page dto.PageRequest) (*dto.QuoteListResponse, error) {
	page.DefaultPage()
	if status != "" {
		status = strings.ToUpper(status)
		if !validStatus(status) {
			return nil, domain.NewValidationError("status", status, "estado desconocido")
		}
	}
	list, total, err := uc.quoteRepo.List(ctx, repository.QuoteFilter{
		Status:     status,
		CustomerID: customerID,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.QuoteResponse, 0, len(list))
	for _, q := range list {
		items = append(items, *QuoteToResponse(q))
	}
	return &dto.QuoteListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Update edita una cotización en DRAFT y la vuelve a cotizar sobre la mezcla congelada.
func (uc *QuoteUseCase) Update(ctx context.Context, userID, ip, id string, in dto.UpdateQuoteRequest) (*dto.QuoteResponse, error) {
	q, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := quote.EnsureEditable(q); err != nil {
		return nil, err
	}
	if in.Quantity != nil {
		q.Quantity = *in.Quantity
	}
	if in.MarginType != nil {
		q.Margin.Type = *in.MarginType
	}
	if in.MarginValue != nil {
		q.Margin.Value = *in.MarginValue
	}
	if in.Services != nil {
		q.Services = servicesFromDTO(*in.Services)
	}
	if in.ApplicationAcres != nil {
		q.ApplicationAcres = in.ApplicationAcres
	}
	if in.InternalNotes != nil {
		q.InternalNotes = *in.InternalNotes
	}
	if in.CustomerNotes != nil {
		q.CustomerNotes = *in.CustomerNotes
	}
	if err := uc.price(ctx, q); err != nil {
		return nil, err
	}

	now := uc.now()
	q.UpdatedAt = now
	err = uc.txRunner.RunQuoting(ctx, func(quoteRepo repository.QuoteRepository, logRepo repository.ActivityLogRepository) error {
		if err := quoteRepo.UpdatePricing(ctx, q, entity.QuoteStatusDraft); err != nil {
			return err
		}
		return logRepo.Append(ctx, activity(userID, ip, entity.ActionQuoteUpdated, q, map[string]any{
			"total_price": q.TotalPrice.String(),
		}, now))
	})
	if errors.Is(err, domain.ErrConflict) {
		return nil, uc.conflict(ctx, q.ID, entity.QuoteStatusDraft)
	}
	if err != nil {
		return nil, err
	}
	return QuoteToResponse(q), nil
}

// Transition aplica send/accept/reject/expire con compare-and-set sobre el estado.
// Si otra petición cambió el estado primero, el perdedor recibe InvalidTransitionError
// con el estado encontrado.
func (uc *QuoteUseCase) Transition(ctx context.Context, userID, ip, id, target string) (*dto.QuoteResponse, error) {
	q, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	next, changed, err := uc.transition(ctx, userID, ip, q, strings.ToUpper(target))
	if err != nil {
		return nil, err
	}
	if changed {
		uc.log.Info().
			Str("quote_number", q.Number).
			Str("from", q.Status).
			Str("to", next.Status).
			Str("user_id", userID).
			Msg("transición de cotización")
	}
	return QuoteToResponse(next), nil
}

// ExpireDue vence las cotizaciones DRAFT/SENT cuya vigencia pasó, en lotes de batch.
// Las que cambiaron de estado en paralelo se omiten.
func (uc *QuoteUseCase) ExpireDue(ctx context.Context, batch int) (int, error) {
	if batch <= 0 {
		batch = 200
	}
	now := uc.now()
	list, err := uc.quoteRepo.ListExpirable(ctx, now, batch)
	if err != nil {
		return 0, fmt.Errorf("listar cotizaciones vencidas: %w", err)
	}
	expired := 0
	for _, q := range list {
		if ctx.Err() != nil {
			break
		}
		_, changed, err := uc.transition(ctx, "", "", q, entity.QuoteStatusExpired)
		if errors.Is(err, domain.ErrInvalidTransition) {
			uc.log.Debug().Str("quote_number", q.Number).Err(err).Msg("cotización omitida en el vencimiento")
			continue
		}
		if err != nil {
			return expired, err
		}
		if changed {
			expired++
		}
	}
	if expired > 0 {
		uc.recorder.QuotesExpired(expired)
		uc.log.Info().Int("expired", expired).Msg("cotizaciones vencidas")
	}
	return expired, nil
}

func (uc *QuoteUseCase) transition(ctx context.Context, userID, ip string, q *entity.Quote, target string) (*entity.Quote, bool, error) {
	now := uc.now()
	next, err := quote.Transition(*q, target, now)
	if err != nil {
		return nil, false, err
	}
	if next.Status == q.Status {
		return &next, false, nil
	}
	err = uc.txRunner.RunQuoting(ctx, func(quoteRepo repository.QuoteRepository, logRepo repository.ActivityLogRepository) error {
		if err := quoteRepo.UpdateStatus(ctx, &next, q.Status); err != nil {
			return err
		}
		return logRepo.Append(ctx, activity(userID, ip, entity.ActionQuoteTransition, &next, map[string]any{
			"quote_number": next.Number,
			"from":         q.Status,
			"to":           next.Status,
		}, now))
	})
	if errors.Is(err, domain.ErrConflict) {
		return nil, false, uc.conflict(ctx, q.ID, target)
	}
	if err != nil {
		return nil, false, err
	}
	uc.recorder.QuoteTransitioned(q.Status, next.Status)
	return &next, true, nil
}

// conflict relee la cotización para informar el estado que ganó la carrera.
func (uc *QuoteUseCase) conflict(ctx context.Context, id, target string) error {
	current, err := uc.quoteRepo.GetByID(ctx, id)
	if err != nil || current == nil {
		return &domain.InvalidTransitionError{From: "?", To: target, Reason: "la cotización cambió de estado en paralelo"}
	}
	return &domain.InvalidTransitionError{From: current.Status, To: target, Reason: "la cotización cambió de estado en paralelo"}
}

// price corre el motor sobre la mezcla congelada y valida los topes de pedido por ingrediente.
func (uc *QuoteUseCase) price(ctx context.Context, q *entity.Quote) error {
	res, err := uc.engine.Price(pricing.Input{
		Blend:            q.Blend,
		Quantity:         q.Quantity,
		Margin:           q.Margin,
		Services:         q.Services,
		ApplicationAcres: q.ApplicationAcres,
	})
	if err != nil {
		return err
	}
	if err := uc.checkOrderBounds(ctx, q); err != nil {
		return err
	}
	res.ApplyTo(q)
	return nil
}

// checkOrderBounds toneladas de cada ingrediente (cantidad × pct/100) dentro de su mínimo y máximo.
func (uc *QuoteUseCase) checkOrderBounds(ctx context.Context, q *entity.Quote) error {
	comps := q.Blend.Components
	if len(comps) == 0 || uc.ingredients == nil {
		return nil
	}
	ids := make([]string, 0, len(comps))
	for _, c := range comps {
		ids = append(ids, c.IngredientID)
	}
	ings, err := uc.ingredients.GetMany(ctx, ids)
	if err != nil {
		return err
	}
	for _, c := range comps {
		ing := ings[c.IngredientID]
		if ing == nil {
			continue
		}
		tons := q.Quantity.Mul(c.Percentage.Shift(-2))
		if ing.MinOrderQty.IsPositive() && tons.LessThan(ing.MinOrderQty) {
			return domain.NewValidationError("quantity", q.Quantity,
				fmt.Sprintf("%s: %s t por debajo del pedido mínimo %s t", ing.Name, tons.StringFixed(3), ing.MinOrderQty))
		}
		if ing.MaxOrderQty != nil && tons.GreaterThan(*ing.MaxOrderQty) {
			return domain.NewValidationError("quantity", q.Quantity,
				fmt.Sprintf("%s: %s t supera el pedido máximo %s t", ing.Name, tons.StringFixed(3), *ing.MaxOrderQty))
		}
	}
	return nil
}

// resolveMargin petición → margen por defecto del cliente → configuración.
func (uc *QuoteUseCase) resolveMargin(c *entity.Customer, typ string, value *decimal.Decimal) entity.MarginPolicy {
	m := uc.cfg.DefaultMargin
	if c.DefaultMargin != nil {
		m = *c.DefaultMargin
	}
	if typ != "" {
		m.Type = typ
	}
	if value != nil {
		m.Value = *value
	}
	return m
}

func (uc *QuoteUseCase) load(ctx context.Context, idOrNumber string) (*entity.Quote, error) {
	var (
		q   *entity.Quote
		err error
	)
	if strings.HasPrefix(idOrNumber, quote.NumberPrefix+"-") {
		q, err = uc.quoteRepo.GetByNumber(ctx, idOrNumber)
	} else {
		q, err = uc.quoteRepo.GetByID(ctx, idOrNumber)
	}
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, &domain.NotFoundError{Entity: "quote", ID: idOrNumber}
	}
	return q, nil
}

func activity(userID, ip, action string, q *entity.Quote, details map[string]any, at time.Time) *entity.ActivityLog {
	return &entity.ActivityLog{
		ID:         uuid.New().String(),
		UserID:     userID,
		Action:     action,
		EntityType: "quote",
		EntityID:   q.ID,
		Details:    details,
		IPAddress:  ip,
		CreatedAt:  at,
	}
}

func validStatus(s string) bool {
	switch s {
	case entity.QuoteStatusDraft, entity.QuoteStatusSent, entity.QuoteStatusAccepted,
		entity.QuoteStatusRejected, entity.QuoteStatusExpired:
		return true
	}
	return false
}
