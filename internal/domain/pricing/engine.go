// Package pricing aplica la política de margen y los servicios a una mezcla congelada
// (BlendSnapshot) para producir los precios de una cotización.
package pricing

import (
	"fmt"
	"strings"

	"github.com/jhoicas/surblend-api/internal/domain"
	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DefaultPrecision centavos.
const DefaultPrecision int32 = 2

// Config parámetros del motor (vienen de la configuración, no de globales).
type Config struct {
	Precision int32 // decimales de la unidad monetaria
}

// Engine motor de precios. Sin estado mutable: seguro para uso concurrente.
type Engine struct {
	precision int32
}

// NewEngine construye el motor. Una precisión negativa se trata como 0 (unidades enteras).
func NewEngine(cfg Config) *Engine {
	p := cfg.Precision
	if p < 0 {
		p = 0
	}
	return &Engine{precision: p}
}

// Precision decimales usados al redondear.
func (e *Engine) Precision() int32 { return e.precision }

// Input datos de entrada de una cotización.
type Input struct {
	Blend            entity.BlendSnapshot
	Quantity         decimal.Decimal // toneladas
	Margin           entity.MarginPolicy
	Services         []entity.Service
	ApplicationAcres *decimal.Decimal // nil = no aplica
}

// Result precios derivados. CostPerAcre es nil cuando no se informó superficie.
type Result struct {
	UnitPrice     decimal.Decimal
	TotalPrice    decimal.Decimal
	ServicesTotal decimal.Decimal
	CostPerAcre   *decimal.Decimal
}

// Price calcula:
//
//	percent: unit = costo × (1 + margen/100)
//	fixed:   unit = costo + margen
//	total    = round(unit × cantidad)
//	servicios = Σ costo tal cual (monto plano, sin escalar ni redondear)
//	costo/acre = (total + servicios) / acres
//
// El redondeo es half-up a Precision decimales (nunca bancario). Con las mismas
// entradas el resultado es idéntico bit a bit.
func (e *Engine) Price(in Input) (*Result, error) {
	if !in.Blend.CostPerTon.IsPositive() {
		return nil, domain.NewValidationError("blend.cost_per_ton", in.Blend.CostPerTon, "debe ser mayor que 0")
	}
	if !in.Quantity.IsPositive() {
		return nil, domain.NewValidationError("quantity", in.Quantity, "debe ser mayor que 0")
	}
	if in.Margin.Value.IsNegative() {
		return nil, domain.NewValidationError("margin_value", in.Margin.Value, "no puede ser negativo")
	}

	var unit decimal.Decimal
	switch in.Margin.Type {
	case entity.MarginPercent:
		unit = in.Blend.CostPerTon.Mul(decimal.NewFromInt(1).Add(in.Margin.Value.Shift(-2)))
	case entity.MarginFixed:
		unit = in.Blend.CostPerTon.Add(in.Margin.Value)
	default:
		return nil, domain.NewValidationError("margin_type", in.Margin.Type, "debe ser percent o fixed")
	}

	servicesTotal := decimal.Zero
	for i, s := range in.Services {
		if strings.TrimSpace(s.Name) == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("services[%d].name", i), "", "nombre requerido")
		}
		if s.Cost.IsNegative() {
			return nil, domain.NewValidationError(fmt.Sprintf("services[%d].cost", i), s.Cost, "no puede ser negativo")
		}
		servicesTotal = servicesTotal.Add(s.Cost)
	}

	res := &Result{
		UnitPrice:     e.round(unit),
		ServicesTotal: servicesTotal,
	}
	res.TotalPrice = e.round(res.UnitPrice.Mul(in.Quantity))

	if in.ApplicationAcres != nil {
		acres := *in.ApplicationAcres
		if !acres.IsPositive() {
			return nil, domain.NewValidationError("application_acres", acres, "debe ser mayor que 0")
		}
		perAcre := e.round(res.TotalPrice.Add(res.ServicesTotal).Div(acres))
		res.CostPerAcre = &perAcre
	}
	return res, nil
}

// ApplyTo copia los precios sobre la cotización.
func (r *Result) ApplyTo(q *entity.Quote) {
	q.UnitPrice = r.UnitPrice
	q.TotalPrice = r.TotalPrice
	q.ServicesTotal = r.ServicesTotal
	q.CostPerAcre = r.CostPerAcre
}

// round half-up (Round de shopspring redondea la mitad alejándose de cero).
func (e *Engine) round(d decimal.Decimal) decimal.Decimal {
	return d.Round(e.precision)
}
