package entity

import "github.com/shopspring/decimal"

// Nombres canónicos de nutrientes (usados en errores de validación y respuestas).
const (
	NutrientNitrogen   = "nitrogen"
	NutrientPhosphate  = "phosphate" // P2O5
	NutrientPotash     = "potash"    // K2O
	NutrientSulfur     = "sulfur"
	NutrientCalcium    = "calcium"
	NutrientMagnesium  = "magnesium"
	NutrientBoron      = "boron"
	NutrientIron       = "iron"
	NutrientManganese  = "manganese"
	NutrientZinc       = "zinc"
	NutrientCopper     = "copper"
	NutrientMolybdenum = "molybdenum"
)

var (
	nutrientMin = decimal.Zero
	nutrientMax = decimal.NewFromInt(100)
)

// NutrientProfile composición porcentual (0–100) de cada nutriente rastreado.
// La comparten ingredientes y mezclas.
type NutrientProfile struct {
	Nitrogen   decimal.Decimal `json:"nitrogen"`
	Phosphate  decimal.Decimal `json:"phosphate"`
	Potash     decimal.Decimal `json:"potash"`
	Sulfur     decimal.Decimal `json:"sulfur"`
	Calcium    decimal.Decimal `json:"calcium"`
	Magnesium  decimal.Decimal `json:"magnesium"`
	Boron      decimal.Decimal `json:"boron"`
	Iron       decimal.Decimal `json:"iron"`
	Manganese  decimal.Decimal `json:"manganese"`
	Zinc       decimal.Decimal `json:"zinc"`
	Copper     decimal.Decimal `json:"copper"`
	Molybdenum decimal.Decimal `json:"molybdenum"`
}

// NutrientField par nombre/valor en el orden canónico.
type NutrientField struct {
	Name  string
	Value decimal.Decimal
}

// Fields devuelve los 12 nutrientes en orden N, P, K, S, Ca, Mg, B, Fe, Mn, Zn, Cu, Mo.
func (p NutrientProfile) Fields() []NutrientField {
	return []NutrientField{
		{NutrientNitrogen, p.Nitrogen},
		{NutrientPhosphate, p.Phosphate},
		{NutrientPotash, p.Potash},
		{NutrientSulfur, p.Sulfur},
		{NutrientCalcium, p.Calcium},
		{NutrientMagnesium, p.Magnesium},
		{NutrientBoron, p.Boron},
		{NutrientIron, p.Iron},
		{NutrientManganese, p.Manganese},
		{NutrientZinc, p.Zinc},
		{NutrientCopper, p.Copper},
		{NutrientMolybdenum, p.Molybdenum},
	}
}

// ProfileFromFields reconstruye un perfil a partir de Fields(); nombres desconocidos se ignoran.
func ProfileFromFields(fields []NutrientField) NutrientProfile {
	var p NutrientProfile
	for _, f := range fields {
		switch f.Name {
		case NutrientNitrogen:
			p.Nitrogen = f.Value
		case NutrientPhosphate:
			p.Phosphate = f.Value
		case NutrientPotash:
			p.Potash = f.Value
		case NutrientSulfur:
			p.Sulfur = f.Value
		case NutrientCalcium:
			p.Calcium = f.Value
		case NutrientMagnesium:
			p.Magnesium = f.Value
		case NutrientBoron:
			p.Boron = f.Value
		case NutrientIron:
			p.Iron = f.Value
		case NutrientManganese:
			p.Manganese = f.Value
		case NutrientZinc:
			p.Zinc = f.Value
		case NutrientCopper:
			p.Copper = f.Value
		case NutrientMolybdenum:
			p.Molybdenum = f.Value
		}
	}
	return p
}

// Scale multiplica cada nutriente por factor.
func (p NutrientProfile) Scale(factor decimal.Decimal) NutrientProfile {
	fields := p.Fields()
	for i := range fields {
		fields[i].Value = fields[i].Value.Mul(factor)
	}
	return ProfileFromFields(fields)
}

// Add suma nutriente a nutriente.
func (p NutrientProfile) Add(o NutrientProfile) NutrientProfile {
	a, b := p.Fields(), o.Fields()
	for i := range a {
		a[i].Value = a[i].Value.Add(b[i].Value)
	}
	return ProfileFromFields(a)
}

// Sub resta nutriente a nutriente (p - o).
func (p NutrientProfile) Sub(o NutrientProfile) NutrientProfile {
	a, b := p.Fields(), o.Fields()
	for i := range a {
		a[i].Value = a[i].Value.Sub(b[i].Value)
	}
	return ProfileFromFields(a)
}

// OutOfRange devuelve el primer nutriente fuera de [0,100], si existe.
func (p NutrientProfile) OutOfRange() (NutrientField, bool) {
	for _, f := range p.Fields() {
		if f.Value.LessThan(nutrientMin) || f.Value.GreaterThan(nutrientMax) {
			return f, true
		}
	}
	return NutrientField{}, false
}
