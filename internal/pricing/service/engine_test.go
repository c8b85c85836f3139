package service

import (
	"testing"

	pricingdomain "github.com/opsdeck/opsbill/internal/pricing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftLines() []pricingdomain.DraftLine {
	return []pricingdomain.DraftLine{
		{Type: pricingdomain.LineTypeBaseSubscription, Description: "Monthly retainer", Quantity: 2, UnitPriceCents: 1500},
		{Type: pricingdomain.LineTypeProject, Description: "Site redesign", Quantity: 1, UnitPriceCents: 5000},
		{Type: pricingdomain.LineTypeUsage, Description: "Extra revisions", Quantity: 3.5, UnitPriceCents: 200},
	}
}

func TestLineAmount(t *testing.T) {
	tests := []struct {
		name     string
		quantity float64
		price    int64
		want     int64
	}{
		{"whole units", 2, 1500, 3000},
		{"single unit", 1, 5000, 5000},
		{"fractional quantity", 3.5, 200, 700},
		{"zero quantity", 0, 1200, 0},
		{"exact half rounds up", 0.5, 25, 13},
		{"quarter cent rounds down", 0.25, 25, 6},
		{"three quarter cent rounds up", 0.75, 25, 19},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineAmount(pricingdomain.DraftLine{
				Type:           pricingdomain.LineTypeUsage,
				Quantity:       tt.quantity,
				UnitPriceCents: tt.price,
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

// Negative amounts only arise on synthesized discount lines; a negative
// half rounds toward positive infinity under the engine's rounding rule.
func TestLineAmount_DiscountLineRounding(t *testing.T) {
	got := LineAmount(pricingdomain.DraftLine{
		Type:           pricingdomain.LineTypeDiscount,
		Quantity:       0.5,
		UnitPriceCents: -25,
	})
	assert.Equal(t, int64(-12), got)
}

func TestLineAmount_PanicsOnContractViolation(t *testing.T) {
	assert.Panics(t, func() {
		LineAmount(pricingdomain.DraftLine{Quantity: -1, UnitPriceCents: 100})
	})
	assert.Panics(t, func() {
		LineAmount(pricingdomain.DraftLine{
			Type:           pricingdomain.LineTypeUsage,
			Quantity:       1,
			UnitPriceCents: -100,
		})
	})
}

func TestSubtotal(t *testing.T) {
	assert.Equal(t, int64(8700), Subtotal(draftLines()))
	assert.Equal(t, int64(0), Subtotal(nil))
}

func TestAutoPayDiscount(t *testing.T) {
	assert.Equal(t, int64(500), AutoPayDiscount(true, 500))
	assert.Equal(t, int64(0), AutoPayDiscount(false, 500))
	// Negative configured discount clamps to 0, never flips into a fee.
	assert.Equal(t, int64(0), AutoPayDiscount(true, -200))
}

func TestProcessingFee(t *testing.T) {
	rules := pricingdomain.DefaultRules()

	assert.Equal(t, int64(320), ProcessingFee(10000, pricingdomain.PaymentMethodCard, rules.CardFeeRate, rules.CardFeeFixedCents))
	assert.Equal(t, int64(282), ProcessingFee(8700, pricingdomain.PaymentMethodCard, rules.CardFeeRate, rules.CardFeeFixedCents))
	assert.Equal(t, int64(0), ProcessingFee(0, pricingdomain.PaymentMethodCard, rules.CardFeeRate, rules.CardFeeFixedCents))
	assert.Equal(t, int64(0), ProcessingFee(-100, pricingdomain.PaymentMethodCard, rules.CardFeeRate, rules.CardFeeFixedCents))
	assert.Equal(t, int64(0), ProcessingFee(10000, pricingdomain.PaymentMethodACH, rules.CardFeeRate, rules.CardFeeFixedCents))
	assert.Equal(t, int64(0), ProcessingFee(10000, pricingdomain.PaymentMethodOffline, rules.CardFeeRate, rules.CardFeeFixedCents))
}

func TestApply_Offline(t *testing.T) {
	result := Apply(draftLines(), pricingdomain.Adjustments{
		PaymentMethod: pricingdomain.PaymentMethodOffline,
	}, pricingdomain.DefaultRules())

	assert.Len(t, result.Lines, 3)
	assert.Equal(t, int64(8700), result.SubtotalCents)
	assert.Equal(t, result.SubtotalCents, result.TotalCents)
}

func TestApply_ACHAutoPay(t *testing.T) {
	result := Apply(draftLines(), pricingdomain.Adjustments{
		PaymentMethod:  pricingdomain.PaymentMethodACH,
		AutoPayEnabled: true,
	}, pricingdomain.DefaultRules())

	require.Len(t, result.Lines, 4)
	discount := result.Lines[3]
	assert.Equal(t, pricingdomain.LineTypeDiscount, discount.Type)
	assert.Equal(t, "ACH Auto-Pay Discount", discount.Description)
	assert.Equal(t, float64(1), discount.Quantity)
	assert.Equal(t, int64(-500), discount.UnitPriceCents)
	assert.Equal(t, int64(-500), discount.AmountCents)

	assert.Equal(t, int64(8700), result.SubtotalCents)
	assert.Equal(t, int64(8200), result.TotalCents)
}

func TestApply_ACHWithoutAutoPay(t *testing.T) {
	result := Apply(draftLines(), pricingdomain.Adjustments{
		PaymentMethod: pricingdomain.PaymentMethodACH,
	}, pricingdomain.DefaultRules())

	assert.Len(t, result.Lines, 3)
	assert.Equal(t, result.SubtotalCents, result.TotalCents)
}

func TestApply_ACHDiscountOverride(t *testing.T) {
	override := int64(750)
	result := Apply(draftLines(), pricingdomain.Adjustments{
		PaymentMethod:    pricingdomain.PaymentMethodACH,
		AutoPayEnabled:   true,
		ACHDiscountCents: &override,
	}, pricingdomain.DefaultRules())

	require.Len(t, result.Lines, 4)
	assert.Equal(t, int64(-750), result.Lines[3].AmountCents)
	assert.Equal(t, int64(8700-750), result.TotalCents)
}

func TestApply_CardVisibleFee(t *testing.T) {
	lines := []pricingdomain.DraftLine{
		{Type: pricingdomain.LineTypeBaseSubscription, Description: "Retainer", Quantity: 1, UnitPriceCents: 10000},
	}
	result := Apply(lines, pricingdomain.Adjustments{
		PaymentMethod: pricingdomain.PaymentMethodCard,
	}, pricingdomain.DefaultRules())

	require.Len(t, result.Lines, 2)
	fee := result.Lines[1]
	assert.Equal(t, pricingdomain.LineTypeProcessingFee, fee.Type)
	assert.Equal(t, "Card Processing Fee", fee.Description)
	assert.Equal(t, float64(1), fee.Quantity)
	assert.Equal(t, int64(320), fee.UnitPriceCents)
	assert.Equal(t, int64(320), fee.AmountCents)

	assert.Equal(t, int64(10000), result.SubtotalCents)
	assert.Equal(t, int64(10320), result.TotalCents)
}

func TestApply_CardHiddenFee(t *testing.T) {
	lines := []pricingdomain.DraftLine{
		{Type: pricingdomain.LineTypeBaseSubscription, Description: "Retainer", Quantity: 1, UnitPriceCents: 10000},
	}
	hide := false
	result := Apply(lines, pricingdomain.Adjustments{
		PaymentMethod:         pricingdomain.PaymentMethodCard,
		ShowProcessingFeeLine: &hide,
	}, pricingdomain.DefaultRules())

	// No fee line, but the fee still lands in the total exactly once.
	require.Len(t, result.Lines, 1)
	assert.Equal(t, int64(10000), result.SubtotalCents)
	assert.Equal(t, int64(10320), result.TotalCents)
}

func TestApply_CardEmptyDraft(t *testing.T) {
	result := Apply(nil, pricingdomain.Adjustments{
		PaymentMethod: pricingdomain.PaymentMethodCard,
	}, pricingdomain.DefaultRules())

	assert.Empty(t, result.Lines)
	assert.Equal(t, int64(0), result.SubtotalCents)
	assert.Equal(t, int64(0), result.TotalCents)
}

func TestApply_CardCombinedScenario(t *testing.T) {
	result := Apply(draftLines(), pricingdomain.Adjustments{
		PaymentMethod: pricingdomain.PaymentMethodCard,
	}, pricingdomain.DefaultRules())

	// subtotal 3000 + 5000 + 700 = 8700; fee round(8700*0.029)+30 = 282.
	require.Len(t, result.Lines, 4)
	assert.Equal(t, int64(8700), result.SubtotalCents)
	assert.Equal(t, int64(282), result.Lines[3].AmountCents)
	assert.Equal(t, int64(8982), result.TotalCents)
}

func TestApply_FeeRateOverride(t *testing.T) {
	rate := 0.05
	fixed := int64(0)
	result := Apply(draftLines(), pricingdomain.Adjustments{
		PaymentMethod:           pricingdomain.PaymentMethodCard,
		ProcessingFeeRate:       &rate,
		ProcessingFeeFixedCents: &fixed,
	}, pricingdomain.DefaultRules())

	// round(8700 * 0.05) = 435, no fixed component.
	require.Len(t, result.Lines, 4)
	assert.Equal(t, int64(435), result.Lines[3].AmountCents)
	assert.Equal(t, int64(9135), result.TotalCents)
}

// Subtotal never moves with the payment method: only the adjustment lines
// and the total do.
func TestApply_SubtotalInvariantAcrossMethods(t *testing.T) {
	for _, adj := range []pricingdomain.Adjustments{
		{PaymentMethod: pricingdomain.PaymentMethodOffline},
		{PaymentMethod: pricingdomain.PaymentMethodACH, AutoPayEnabled: true},
		{PaymentMethod: pricingdomain.PaymentMethodCard},
	} {
		result := Apply(draftLines(), adj, pricingdomain.DefaultRules())
		assert.Equal(t, int64(8700), result.SubtotalCents, "method %s", adj.PaymentMethod)
	}
}

func TestApply_Idempotent(t *testing.T) {
	lines := draftLines()
	adj := pricingdomain.Adjustments{
		PaymentMethod:  pricingdomain.PaymentMethodACH,
		AutoPayEnabled: true,
	}

	first := Apply(lines, adj, pricingdomain.DefaultRules())
	second := Apply(lines, adj, pricingdomain.DefaultRules())
	assert.Equal(t, first, second)
}

func TestApply_PassesMetadataThrough(t *testing.T) {
	lines := []pricingdomain.DraftLine{
		{
			Type:           pricingdomain.LineTypeProject,
			Description:    "Brand refresh",
			Quantity:       1,
			UnitPriceCents: 25000,
			Metadata:       map[string]any{"project_id": "prj_42"},
		},
	}
	result := Apply(lines, pricingdomain.Adjustments{
		PaymentMethod: pricingdomain.PaymentMethodOffline,
	}, pricingdomain.DefaultRules())

	require.Len(t, result.Lines, 1)
	assert.Equal(t, "prj_42", result.Lines[0].Metadata["project_id"])
}
