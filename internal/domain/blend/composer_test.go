package blend_test

import (
	"errors"
	"testing"

	"github.com/jhoicas/surblend-api/internal/domain"
	"github.com/jhoicas/surblend-api/internal/domain/blend"
	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func urea() *entity.Ingredient {
	return &entity.Ingredient{ID: "urea", Name: "Urea", CostPerTon: dec("500"),
		Nutrients: entity.NutrientProfile{Nitrogen: dec("46")}}
}

func dap() *entity.Ingredient {
	return &entity.Ingredient{ID: "dap", Name: "DAP", CostPerTon: dec("700"),
		Nutrients: entity.NutrientProfile{Nitrogen: dec("18"), Phosphate: dec("46")}}
}

func potash() *entity.Ingredient {
	return &entity.Ingredient{ID: "mop", Name: "Potash", CostPerTon: dec("450"),
		Nutrients: entity.NutrientProfile{Potash: dec("60")}}
}

func requireValidation(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr), "se esperaba ValidationError, llegó %T", err)
	assert.Equal(t, field, vErr.Field)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCompose_TwoIngredients(t *testing.T) {
	res, err := blend.Compose([]blend.Input{
		{Ingredient: urea(), Percentage: dec("50")},
		{Ingredient: dap(), Percentage: dec("50")},
	}, dec("200"))
	require.NoError(t, err)

	assert.True(t, res.Nutrients.Nitrogen.Equal(dec("32")), "N=%s", res.Nutrients.Nitrogen)
	assert.True(t, res.Nutrients.Phosphate.Equal(dec("23")))
	assert.True(t, res.Nutrients.Potash.IsZero())
	assert.True(t, res.CostPerTon.Equal(dec("600")), "costo=%s", res.CostPerTon)

	require.Len(t, res.Components, 2)
	assert.Equal(t, "Urea", res.Components[0].IngredientName)
	assert.True(t, res.Components[0].Amount.Equal(dec("100")))
	assert.True(t, res.Components[1].Amount.Equal(dec("100")))
}

func TestCompose_ThreeWayUnevenShares(t *testing.T) {
	res, err := blend.Compose([]blend.Input{
		{Ingredient: urea(), Percentage: dec("30")},
		{Ingredient: dap(), Percentage: dec("45")},
		{Ingredient: potash(), Percentage: dec("25")},
	}, dec("300"))
	require.NoError(t, err)

	// N = 46×0.30 + 18×0.45 = 13.8 + 8.1
	assert.True(t, res.Nutrients.Nitrogen.Equal(dec("21.9")))
	assert.True(t, res.Nutrients.Phosphate.Equal(dec("20.7")))
	assert.True(t, res.Nutrients.Potash.Equal(dec("15")))
	// 150 + 315 + 112.5
	assert.True(t, res.CostPerTon.Equal(dec("577.5")))
	assert.True(t, res.Components[2].Amount.Equal(dec("75")))
}

func TestCompose_PercentSumTolerance(t *testing.T) {
	tests := []struct {
		first, second string
		ok            bool
	}{
		{"50", "49.99", true},  // 99.99
		{"50", "50.01", true},  // 100.01
		{"50", "49.995", true}, // 99.995
		{"50", "49.98", false}, // 99.98
		{"50", "50.02", false}, // 100.02
		{"50", "49.9", false},  // 99.9
		{"60", "41", false},    // 101
	}
	for _, tc := range tests {
		sum := dec(tc.first).Add(dec(tc.second))
		t.Run(sum.String(), func(t *testing.T) {
			_, err := blend.Compose([]blend.Input{
				{Ingredient: urea(), Percentage: dec(tc.first)},
				{Ingredient: dap(), Percentage: dec(tc.second)},
			}, dec("200"))
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			requireValidation(t, err, "composition")
		})
	}
}

func TestCompose_HalfAndHalfAveragesNutrient(t *testing.T) {
	// 46 % N y 0 % N a partes iguales ⇒ 23 % N
	res, err := blend.Compose([]blend.Input{
		{Ingredient: urea(), Percentage: dec("50")},
		{Ingredient: potash(), Percentage: dec("50")},
	}, dec("200"))
	require.NoError(t, err)
	assert.True(t, res.Nutrients.Nitrogen.Equal(dec("23")), "N=%s", res.Nutrients.Nitrogen)
	assert.True(t, res.Nutrients.Potash.Equal(dec("30")))
	assert.True(t, res.CostPerTon.Equal(dec("475")))
}

func TestCompose_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		inputs []blend.Input
		rate   string
		field  string
	}{
		{"vacía", nil, "200", "composition"},
		{"dosis cero", []blend.Input{{Ingredient: urea(), Percentage: dec("100")}}, "0", "application_rate"},
		{"ingrediente nil", []blend.Input{{Percentage: dec("100")}}, "200", "composition[0].ingredient_id"},
		{"repetido", []blend.Input{
			{Ingredient: urea(), Percentage: dec("50")},
			{Ingredient: urea(), Percentage: dec("50")},
		}, "200", "composition[1].ingredient_id"},
		{"porcentaje > 100", []blend.Input{{Ingredient: urea(), Percentage: dec("100.5")}}, "200", "composition[0].percentage"},
		{"porcentaje negativo", []blend.Input{
			{Ingredient: urea(), Percentage: dec("-10")},
			{Ingredient: dap(), Percentage: dec("110")},
		}, "200", "composition[0].percentage"},
		{"costo cero", []blend.Input{{Ingredient: &entity.Ingredient{ID: "x", Name: "X"}, Percentage: dec("100")}}, "200", "composition[0].cost_per_ton"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := blend.Compose(tc.inputs, dec(tc.rate))
			requireValidation(t, err, tc.field)
		})
	}
}

func TestCompose_Amounts(t *testing.T) {
	// dentro de la tolerancia: se respeta lo informado
	res, err := blend.Compose([]blend.Input{
		{Ingredient: urea(), Percentage: dec("50"), Amount: decPtr("100.005")},
		{Ingredient: dap(), Percentage: dec("50")},
	}, dec("200"))
	require.NoError(t, err)
	assert.True(t, res.Components[0].Amount.Equal(dec("100.005")))

	_, err = blend.Compose([]blend.Input{
		{Ingredient: urea(), Percentage: dec("50"), Amount: decPtr("120")},
		{Ingredient: dap(), Percentage: dec("50")},
	}, dec("200"))
	requireValidation(t, err, "composition[0].amount")

	_, err = blend.Compose([]blend.Input{
		{Ingredient: urea(), Percentage: dec("100"), Amount: decPtr("-1")},
	}, dec("200"))
	requireValidation(t, err, "composition[0].amount")
}

func TestCompose_NutrientOutOfRange(t *testing.T) {
	bad := &entity.Ingredient{ID: "bad", Name: "Mal cargado", CostPerTon: dec("100"),
		Nutrients: entity.NutrientProfile{Sulfur: dec("140")}}
	_, err := blend.Compose([]blend.Input{{Ingredient: bad, Percentage: dec("100")}}, dec("200"))
	requireValidation(t, err, "nutrients.sulfur")
}

func TestApplicationMetrics(t *testing.T) {
	res, err := blend.Compose([]blend.Input{
		{Ingredient: urea(), Percentage: dec("50")},
		{Ingredient: dap(), Percentage: dec("50")},
	}, dec("200"))
	require.NoError(t, err)

	m := res.ApplicationMetrics(entity.UnitLbsPerAcre)
	require.NotNil(t, m)
	// 200 lbs/acre × 32% N
	assert.True(t, m.NutrientsPerAcre.Nitrogen.Equal(dec("64")))
	assert.True(t, m.NutrientsPerAcre.Phosphate.Equal(dec("46")))
	// 200 × 600 / 2000
	assert.True(t, m.CostPerAcre.Equal(dec("60")))

	assert.Nil(t, res.ApplicationMetrics("gal/acre"))
}

func TestApplyAndTargetDelta(t *testing.T) {
	res, err := blend.Compose([]blend.Input{{Ingredient: urea(), Percentage: dec("100")}}, dec("100"))
	require.NoError(t, err)

	b := &entity.Blend{ApplicationUnit: entity.UnitLbsPerAcre}
	res.Apply(b)
	assert.True(t, b.CostPerTon.Equal(dec("500")))
	require.NotNil(t, b.Application)
	assert.True(t, b.Application.CostPerAcre.Equal(dec("25")))

	assert.Nil(t, blend.TargetDelta(b.Nutrients, nil))
	target := entity.NutrientProfile{Nitrogen: dec("40"), Phosphate: dec("5")}
	d := blend.TargetDelta(b.Nutrients, &target)
	require.NotNil(t, d)
	assert.True(t, d.Nitrogen.Equal(dec("6")))
	assert.True(t, d.Phosphate.Equal(dec("-5")))
}
