package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/surblend-api/internal/application/dto"
	"github.com/jhoicas/surblend-api/internal/domain"
	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/jhoicas/surblend-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var defaultIngredientMargin = decimal.NewFromInt(20)

// IngredientUseCase administración del catálogo de ingredientes.
type IngredientUseCase struct {
	repo      repository.IngredientRepository
	priceRepo repository.PriceHistoryRepository
	txRunner  TxRunner
	log       zerolog.Logger
	now       func() time.Time
}

// NewIngredientUseCase construye el caso de uso.
func NewIngredientUseCase(
	repo repository.IngredientRepository,
	priceRepo repository.PriceHistoryRepository,
	txRunner TxRunner,
	log zerolog.Logger,
) *IngredientUseCase {
	return &IngredientUseCase{
		repo:      repo,
		priceRepo: priceRepo,
		txRunner:  txRunner,
		log:       log,
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *IngredientUseCase) WithClock(now func() time.Time) *IngredientUseCase {
	uc.now = now
	return uc
}

// Create valida y da de alta un ingrediente. Nombre y código son únicos.
func (uc *IngredientUseCase) Create(ctx context.Context, in dto.CreateIngredientRequest) (*dto.IngredientResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "", "nombre requerido")
	}
	typ := in.Type
	if typ == "" {
		typ = entity.IngredientDry
	}
	now := uc.now()
	ing := &entity.Ingredient{
		ID:              uuid.New().String(),
		Name:            name,
		Code:            strings.TrimSpace(in.Code),
		Type:            typ,
		Nutrients:       in.Nutrients.ToEntity(),
		Density:         in.Density,
		MoistureContent: in.MoistureContent,
		CostPerTon:      in.CostPerTon,
		MarginPercent:   defaultIngredientMargin,
		FixedMargin:     in.FixedMargin,
		IsAvailable:     true,
		MinOrderQty:     in.MinOrderQty,
		MaxOrderQty:     in.MaxOrderQty,
		Source:          in.Source,
		Notes:           in.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.MarginPercent != nil {
		ing.MarginPercent = *in.MarginPercent
	}
	if in.IsAvailable != nil {
		ing.IsAvailable = *in.IsAvailable
	}
	if !ing.CostPerTon.IsPositive() {
		return nil, domain.NewValidationError("cost_per_ton", ing.CostPerTon, "debe ser mayor que 0")
	}
	if err := validateIngredient(ing); err != nil {
		return nil, err
	}
	if err := uc.ensureUnique(ctx, ing, ""); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, ing); err != nil {
		return nil, err
	}
	uc.log.Info().Str("ingredient_id", ing.ID).Str("name", ing.Name).Msg("ingrediente creado")
	return IngredientToResponse(ing), nil
}

// Get devuelve un ingrediente.
func (uc *IngredientUseCase) Get(ctx context.Context, id string) (*dto.IngredientResponse, error) {
	ing, err := NewCatalog(uc.repo).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return IngredientToResponse(ing), nil
}

// List lista el catálogo; onlyAvailable filtra los ingredientes que se pueden usar en mezclas nuevas.
func (uc *IngredientUseCase) List(ctx context.Context, onlyAvailable bool, search string, page dto.PageRequest) (*dto.IngredientListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.repo.List(ctx, repository.IngredientFilter{
		OnlyAvailable: onlyAvailable,
		Search:        strings.TrimSpace(search),
		Limit:         page.Limit,
		Offset:        page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.IngredientResponse, 0, len(list))
	for _, ing := range list {
		items = append(items, *IngredientToResponse(ing))
	}
	return &dto.IngredientListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Update modifica los campos no monetarios. El costo cambia solo con ChangePrice.
func (uc *IngredientUseCase) Update(ctx context.Context, id string, in dto.UpdateIngredientRequest) (*dto.IngredientResponse, error) {
	ing, err := NewCatalog(uc.repo).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		ing.Name = strings.TrimSpace(*in.Name)
		if ing.Name == "" {
			return nil, domain.NewValidationError("name", "", "nombre requerido")
		}
	}
	if in.Code != nil {
		ing.Code = strings.TrimSpace(*in.Code)
	}
	if in.Type != nil {
		ing.Type = *in.Type
	}
	if in.Nutrients != nil {
		ing.Nutrients = in.Nutrients.ToEntity()
	}
	if in.MarginPercent != nil {
		ing.MarginPercent = *in.MarginPercent
	}
	if in.FixedMargin != nil {
		ing.FixedMargin = in.FixedMargin
	}
	if in.IsAvailable != nil {
		ing.IsAvailable = *in.IsAvailable
	}
	if in.MinOrderQty != nil {
		ing.MinOrderQty = *in.MinOrderQty
	}
	if in.MaxOrderQty != nil {
		ing.MaxOrderQty = in.MaxOrderQty
	}
	if in.Notes != nil {
		ing.Notes = *in.Notes
	}
	if err := validateIngredient(ing); err != nil {
		return nil, err
	}
	if err := uc.ensureUnique(ctx, ing, ing.ID); err != nil {
		return nil, err
	}
	ing.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, ing); err != nil {
		return nil, err
	}
	return IngredientToResponse(ing), nil
}

// ChangePrice actualiza el costo por tonelada dejando rastro en el historial y la bitácora.
// Un precio igual al vigente no genera registro. Si otro cambio se confirmó entre la
// lectura y la escritura devuelve domain.ErrConflict sin tocar el historial.
func (uc *IngredientUseCase) ChangePrice(ctx context.Context, userID, ip, id string, in dto.ChangePriceRequest) (*dto.IngredientResponse, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, domain.NewValidationError("reason", "", "motivo requerido para cambiar el precio")
	}
	if !in.CostPerTon.IsPositive() {
		return nil, domain.NewValidationError("cost_per_ton", in.CostPerTon, "debe ser mayor que 0")
	}
	ing, err := NewCatalog(uc.repo).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ing.CostPerTon.Equal(in.CostPerTon) {
		return IngredientToResponse(ing), nil
	}

	now := uc.now()
	change := &entity.PriceChange{
		ID:           uuid.New().String(),
		IngredientID: ing.ID,
		OldPrice:     ing.CostPerTon,
		NewPrice:     in.CostPerTon,
		Reason:       reason,
		ChangedBy:    userID,
		ChangedAt:    now,
	}
	err = uc.txRunner.RunCatalog(ctx, func(
		ingredientRepo repository.IngredientRepository,
		priceRepo repository.PriceHistoryRepository,
		logRepo repository.ActivityLogRepository,
	) error {
		if err := ingredientRepo.UpdateCost(ctx, ing.ID, change.OldPrice, in.CostPerTon, now); err != nil {
			return err
		}
		if err := priceRepo.Append(ctx, change); err != nil {
			return err
		}
		return logRepo.Append(ctx, &entity.ActivityLog{
			ID:         uuid.New().String(),
			UserID:     userID,
			Action:     entity.ActionIngredientPrice,
			EntityType: "ingredient",
			EntityID:   ing.ID,
			Details: map[string]any{
				"old_price": change.OldPrice.String(),
				"new_price": change.NewPrice.String(),
				"reason":    reason,
			},
			IPAddress: ip,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("cambio de precio %s: %w", ing.ID, err)
	}
	uc.log.Info().
		Str("ingredient_id", ing.ID).
		Str("old_price", change.OldPrice.String()).
		Str("new_price", change.NewPrice.String()).
		Str("user_id", userID).
		Msg("precio de ingrediente actualizado")

	ing.CostPerTon = in.CostPerTon
	ing.UpdatedAt = now
	return IngredientToResponse(ing), nil
}

// PriceHistory historial de cambios de costo, más reciente primero.
func (uc *IngredientUseCase) PriceHistory(ctx context.Context, id string) ([]dto.PriceChangeResponse, error) {
	if _, err := NewCatalog(uc.repo).Get(ctx, id); err != nil {
		return nil, err
	}
	list, err := uc.priceRepo.ListByIngredient(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PriceChangeResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.PriceChangeResponse{
			ID:        c.ID,
			OldPrice:  c.OldPrice,
			NewPrice:  c.NewPrice,
			Reason:    c.Reason,
			ChangedBy: c.ChangedBy,
			ChangedAt: c.ChangedAt,
		})
	}
	return out, nil
}

// Delete elimina un ingrediente. Si alguna mezcla lo usa devuelve domain.ErrConflict
// (se debe marcar como no disponible en su lugar).
func (uc *IngredientUseCase) Delete(ctx context.Context, id string) error {
	if _, err := NewCatalog(uc.repo).Get(ctx, id); err != nil {
		return err
	}
	used, err := uc.repo.IsReferenced(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return fmt.Errorf("ingrediente %s usado por mezclas: %w", id, domain.ErrConflict)
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *IngredientUseCase) ensureUnique(ctx context.Context, ing *entity.Ingredient, selfID string) error {
	other, err := uc.repo.GetByName(ctx, ing.Name)
	if err != nil {
		return err
	}
	if other != nil && other.ID != selfID && foldName(other.Name) == foldName(ing.Name) {
		return fmt.Errorf("ingrediente %q: %w", ing.Name, domain.ErrDuplicate)
	}
	if ing.Code == "" {
		return nil
	}
	other, err = uc.repo.GetByCode(ctx, ing.Code)
	if err != nil {
		return err
	}
	if other != nil && other.ID != selfID {
		return fmt.Errorf("código %q: %w", ing.Code, domain.ErrDuplicate)
	}
	return nil
}

func validateIngredient(ing *entity.Ingredient) error {
	if ing.Type != entity.IngredientDry && ing.Type != entity.IngredientLiquid {
		return domain.NewValidationError("type", ing.Type, "debe ser dry o liquid")
	}
	if f, bad := ing.Nutrients.OutOfRange(); bad {
		return domain.NewValidationError("nutrients."+f.Name, f.Value, "debe estar entre 0 y 100")
	}
	if ing.MoistureContent.IsNegative() || ing.MoistureContent.GreaterThan(decimal.NewFromInt(100)) {
		return domain.NewValidationError("moisture_content", ing.MoistureContent, "debe estar entre 0 y 100")
	}
	if ing.MarginPercent.IsNegative() {
		return domain.NewValidationError("margin_percent", ing.MarginPercent, "no puede ser negativo")
	}
	if ing.FixedMargin != nil && ing.FixedMargin.IsNegative() {
		return domain.NewValidationError("fixed_margin", *ing.FixedMargin, "no puede ser negativo")
	}
	if ing.MinOrderQty.IsNegative() {
		return domain.NewValidationError("min_order_qty", ing.MinOrderQty, "no puede ser negativo")
	}
	if ing.MaxOrderQty != nil && ing.MaxOrderQty.LessThan(ing.MinOrderQty) {
		return domain.NewValidationError("max_order_qty", *ing.MaxOrderQty, "menor que min_order_qty")
	}
	return nil
}
