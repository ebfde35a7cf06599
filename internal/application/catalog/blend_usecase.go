package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/surblend-api/internal/application/dto"
	"github.com/jhoicas/surblend-api/internal/domain"
	"github.com/jhoicas/surblend-api/internal/domain/blend"
	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/jhoicas/surblend-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// BlendDefaults dosis por defecto cuando la mezcla no la indica.
type BlendDefaults struct {
	ApplicationRate decimal.Decimal
	ApplicationUnit string
}

// QuoteCounter cuenta cotizaciones que referencian una mezcla.
type QuoteCounter interface {
	CountByBlend(ctx context.Context, blendID string) (int, error)
}

// BlendUseCase formulación de mezclas: compone, persiste la composición y recalcula
// los valores derivados en cada lectura.
type BlendUseCase struct {
	repo     repository.BlendRepository
	catalog  *Catalog
	quotes   QuoteCounter
	logRepo  repository.ActivityLogRepository
	defaults BlendDefaults
	log      zerolog.Logger
	now      func() time.Time
}

// NewBlendUseCase construye el caso de uso.
func NewBlendUseCase(
	repo repository.BlendRepository,
	catalog *Catalog,
	quotes QuoteCounter,
	logRepo repository.ActivityLogRepository,
	defaults BlendDefaults,
	log zerolog.Logger,
) *BlendUseCase {
	if !defaults.ApplicationRate.IsPositive() {
		defaults.ApplicationRate = decimal.NewFromInt(200)
	}
	if defaults.ApplicationUnit == "" {
		defaults.ApplicationUnit = entity.UnitLbsPerAcre
	}
	return &BlendUseCase{
		repo:     repo,
		catalog:  catalog,
		quotes:   quotes,
		logRepo:  logRepo,
		defaults: defaults,
		log:      log,
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *BlendUseCase) WithClock(now func() time.Time) *BlendUseCase {
	uc.now = now
	return uc
}

// Preview compone sin persistir (calculadora de la UI).
func (uc *BlendUseCase) Preview(ctx context.Context, in dto.CreateBlendRequest) (*dto.BlendResponse, error) {
	b, err := uc.build(ctx, in)
	if err != nil {
		return nil, err
	}
	return BlendToResponse(b), nil
}

// Create compone y guarda una mezcla nueva.
func (uc *BlendUseCase) Create(ctx context.Context, userID string, in dto.CreateBlendRequest) (*dto.BlendResponse, error) {
	b, err := uc.build(ctx, in)
	if err != nil {
		return nil, err
	}
	if b.Code != "" {
		other, err := uc.repo.GetByCode(ctx, b.Code)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, fmt.Errorf("mezcla %q: %w", b.Code, domain.ErrDuplicate)
		}
	}
	now := uc.now()
	b.ID = uuid.New().String()
	b.IsActive = true
	b.CreatedBy = userID
	b.CreatedAt = now
	b.UpdatedAt = now
	if err := uc.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	uc.log.Info().Str("blend_id", b.ID).Str("cost_per_ton", b.CostPerTon.String()).Msg("mezcla creada")
	return BlendToResponse(b), nil
}

// Get devuelve la mezcla con nutrientes y costo recalculados con los precios vigentes.
func (uc *BlendUseCase) Get(ctx context.Context, id string) (*dto.BlendResponse, error) {
	b, err := uc.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return BlendToResponse(b), nil
}

// Resolve carga la mezcla y recalcula sus valores derivados.
func (uc *BlendUseCase) Resolve(ctx context.Context, id string) (*entity.Blend, error) {
	b, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, &domain.NotFoundError{Entity: "blend", ID: id}
	}
	if err := uc.recompute(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// List lista mezclas recalculadas.
func (uc *BlendUseCase) List(ctx context.Context, activeOnly, templatesOnly bool, page dto.PageRequest) (*dto.BlendListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.repo.List(ctx, repository.BlendFilter{
		ActiveOnly:    activeOnly,
		TemplatesOnly: templatesOnly,
		Limit:         page.Limit,
		Offset:        page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.BlendResponse, 0, len(list))
	for _, b := range list {
		if err := uc.recompute(ctx, b); err != nil {
			return nil, fmt.Errorf("mezcla %s: %w", b.ID, err)
		}
		items = append(items, *BlendToResponse(b))
	}
	return &dto.BlendListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Update cambia cabecera, objetivo o composición. Una composición nueva se valida
// completa contra el catálogo vigente.
func (uc *BlendUseCase) Update(ctx context.Context, id string, in dto.UpdateBlendRequest) (*dto.BlendResponse, error) {
	b, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, &domain.NotFoundError{Entity: "blend", ID: id}
	}
	if in.Name != nil {
		b.Name = strings.TrimSpace(*in.Name)
		if b.Name == "" {
			return nil, domain.NewValidationError("name", "", "nombre requerido")
		}
	}
	if in.Description != nil {
		b.Description = *in.Description
	}
	if in.IsTemplate != nil {
		b.IsTemplate = *in.IsTemplate
	}
	if in.Target != nil {
		t := in.Target.ToEntity()
		b.Target = &t
	}
	if in.ApplicationUnit != nil {
		b.ApplicationUnit = *in.ApplicationUnit
	}
	rate := b.ApplicationRate
	if in.ApplicationRate != nil {
		rate = *in.ApplicationRate
	}

	if len(in.Components) > 0 {
		res, err := uc.compose(ctx, in.Components, rate, true)
		if err != nil {
			return nil, err
		}
		res.Apply(b)
	} else {
		// Misma composición con otra dosis: las cantidades se derivan de nuevo.
		if !rate.Equal(b.ApplicationRate) {
			for i := range b.Components {
				b.Components[i].Amount = b.Components[i].Percentage.Shift(-2).Mul(rate)
			}
			b.ApplicationRate = rate
		}
		if err := uc.recompute(ctx, b); err != nil {
			return nil, err
		}
	}
	b.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return BlendToResponse(b), nil
}

// Delete borra la mezcla; si hay cotizaciones que la referencian solo la desactiva.
func (uc *BlendUseCase) Delete(ctx context.Context, userID, ip, id string) (*dto.DeleteBlendResponse, error) {
	b, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, &domain.NotFoundError{Entity: "blend", ID: id}
	}
	n, err := uc.quotes.CountByBlend(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if err := uc.repo.Delete(ctx, id); err != nil {
			return nil, err
		}
		return &dto.DeleteBlendResponse{ID: id, Deleted: true}, nil
	}
	if err := uc.repo.SetActive(ctx, id, false); err != nil {
		return nil, err
	}
	if err := uc.logRepo.Append(ctx, &entity.ActivityLog{
		ID:         uuid.New().String(),
		UserID:     userID,
		Action:     entity.ActionBlendDeactivated,
		EntityType: "blend",
		EntityID:   id,
		Details:    map[string]any{"quotes": n},
		IPAddress:  ip,
		CreatedAt:  uc.now(),
	}); err != nil {
		uc.log.Warn().Err(err).Str("blend_id", id).Msg("no se pudo registrar la desactivación")
	}
	return &dto.DeleteBlendResponse{ID: id, Deactivated: true}, nil
}

func (uc *BlendUseCase) build(ctx context.Context, in dto.CreateBlendRequest) (*entity.Blend, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "", "nombre requerido")
	}
	rate := uc.defaults.ApplicationRate
	if in.ApplicationRate != nil {
		rate = *in.ApplicationRate
	}
	unit := in.ApplicationUnit
	if unit == "" {
		unit = uc.defaults.ApplicationUnit
	}
	b := &entity.Blend{
		Name:            name,
		Code:            strings.TrimSpace(in.Code),
		Description:     in.Description,
		ApplicationUnit: unit,
		IsTemplate:      in.IsTemplate,
		IsActive:        true,
	}
	if in.Target != nil {
		t := in.Target.ToEntity()
		b.Target = &t
	}
	res, err := uc.compose(ctx, in.Components, rate, true)
	if err != nil {
		return nil, err
	}
	res.Apply(b)
	return b, nil
}

// recompute deriva de nuevo nutrientes y costo de una composición guardada.
// No exige disponibilidad: una mezcla existente sigue siendo legible.
func (uc *BlendUseCase) recompute(ctx context.Context, b *entity.Blend) error {
	reqs := make([]dto.BlendComponentRequest, 0, len(b.Components))
	for _, c := range b.Components {
		amount := c.Amount
		reqs = append(reqs, dto.BlendComponentRequest{
			IngredientID: c.IngredientID,
			Percentage:   c.Percentage,
			Amount:       &amount,
		})
	}
	res, err := uc.compose(ctx, reqs, b.ApplicationRate, false)
	if err != nil {
		return err
	}
	res.Apply(b)
	return nil
}

func (uc *BlendUseCase) compose(ctx context.Context, comps []dto.BlendComponentRequest, rate decimal.Decimal, requireAvailable bool) (*blend.Result, error) {
	ids := make([]string, 0, len(comps))
	for i, c := range comps {
		if c.IngredientID == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("composition[%d].ingredient_id", i), "", "ingrediente requerido")
		}
		ids = append(ids, c.IngredientID)
	}
	ings, err := uc.catalog.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	inputs := make([]blend.Input, 0, len(comps))
	for i, c := range comps {
		ing := ings[c.IngredientID]
		if requireAvailable && !ing.IsAvailable {
			return nil, domain.NewValidationError(fmt.Sprintf("composition[%d].ingredient_id", i), ing.ID, "ingrediente no disponible")
		}
		inputs = append(inputs, blend.Input{Ingredient: ing, Percentage: c.Percentage, Amount: c.Amount})
	}
	return blend.Compose(inputs, rate)
}
