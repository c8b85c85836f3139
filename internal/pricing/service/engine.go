// Package service implements the invoice pricing/adjustment engine.
//
// The engine is pure and synchronous: every function operates solely on
// its inputs and allocates fresh outputs, so it is safe to call
// concurrently without locking. Money never leaves integer cents past
// the per-line rounding step.
package service

import (
	"fmt"
	"math"

	pricingdomain "github.com/opsdeck/opsbill/internal/pricing/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	achDiscountDescription = "ACH Auto-Pay Discount"
	cardFeeDescription     = "Card Processing Fee"
)

// roundCents rounds half-up (ties toward positive infinity). This is the
// single rounding rule for all money math in the engine.
func roundCents(raw float64) int64 {
	return int64(math.Floor(raw + 0.5))
}

// LineAmount computes the rounded cent amount for one draft line:
// round(quantity x unit price). Rounding happens on the product, never on
// intermediate values.
//
// Panics when the line violates the caller contract (non-finite or
// negative quantity, negative unit price on a non-discount line); those
// indicate a bug in the caller, not a runtime failure.
func LineAmount(line pricingdomain.DraftLine) int64 {
	mustValidLine(line)
	return roundCents(line.Quantity * float64(line.UnitPriceCents))
}

// CalculateLine attaches the computed amount to a draft line.
func CalculateLine(line pricingdomain.DraftLine) pricingdomain.CalculatedLine {
	return pricingdomain.CalculatedLine{
		DraftLine:   line,
		AmountCents: LineAmount(line),
	}
}

// Subtotal sums per-line amounts in input order. Each line is rounded
// individually before summation.
func Subtotal(lines []pricingdomain.DraftLine) int64 {
	var sum int64
	for _, line := range lines {
		sum += LineAmount(line)
	}
	return sum
}

// AutoPayDiscount returns the discount in cents, or 0 when auto-pay is
// disabled. A negative configured discount is treated as 0, never flipped
// into a fee.
func AutoPayDiscount(autoPayEnabled bool, discountCents int64) int64 {
	if !autoPayEnabled {
		return 0
	}
	return max(discountCents, 0)
}

// ProcessingFee computes the card-rail surcharge from the pre-discount
// subtotal: round(subtotal x rate) + fixed. ACH and offline payments are
// fee-free, as is a zero or negative subtotal.
func ProcessingFee(subtotalCents int64, method pricingdomain.PaymentMethodType, rate float64, fixedCents int64) int64 {
	if method != pricingdomain.PaymentMethodCard || subtotalCents <= 0 {
		return 0
	}
	return roundCents(float64(subtotalCents)*rate) + fixedCents
}

// Apply is the orchestrating entry point. It calculates every draft line,
// appends the ACH auto-pay discount and card processing fee lines that the
// payment method calls for, and returns the full line set together with
// the pre-adjustment subtotal and the final total.
//
// The fee is computed from the base subtotal and contributes to the total
// exactly once: as a visible line by default, or folded invisibly into
// the total when adj.ShowProcessingFeeLine is explicitly false.
func Apply(lines []pricingdomain.DraftLine, adj pricingdomain.Adjustments, rules pricingdomain.Rules) pricingdomain.Result {
	calculated := make([]pricingdomain.CalculatedLine, 0, len(lines)+2)
	var subtotal int64
	for _, line := range lines {
		cl := CalculateLine(line)
		subtotal += cl.AmountCents
		calculated = append(calculated, cl)
	}

	if adj.PaymentMethod == pricingdomain.PaymentMethodACH {
		discountCents := rules.AutoPayDiscountCents
		if adj.ACHDiscountCents != nil {
			discountCents = *adj.ACHDiscountCents
		}
		if discount := AutoPayDiscount(adj.AutoPayEnabled, discountCents); discount > 0 {
			calculated = append(calculated, pricingdomain.CalculatedLine{
				DraftLine: pricingdomain.DraftLine{
					Type:           pricingdomain.LineTypeDiscount,
					Description:    achDiscountDescription,
					Quantity:       1,
					UnitPriceCents: -discount,
				},
				AmountCents: -discount,
			})
		}
	}

	rate := rules.CardFeeRate
	if adj.ProcessingFeeRate != nil {
		rate = *adj.ProcessingFeeRate
	}
	fixed := rules.CardFeeFixedCents
	if adj.ProcessingFeeFixedCents != nil {
		fixed = *adj.ProcessingFeeFixedCents
	}
	fee := ProcessingFee(subtotal, adj.PaymentMethod, rate, fixed)

	showFeeLine := adj.ShowProcessingFeeLine == nil || *adj.ShowProcessingFeeLine
	var hiddenFee int64
	switch {
	case fee > 0 && showFeeLine:
		calculated = append(calculated, pricingdomain.CalculatedLine{
			DraftLine: pricingdomain.DraftLine{
				Type:           pricingdomain.LineTypeProcessingFee,
				Description:    cardFeeDescription,
				Quantity:       1,
				UnitPriceCents: fee,
			},
			AmountCents: fee,
		})
	case fee > 0:
		hiddenFee = fee
	}

	var total int64
	for _, cl := range calculated {
		total += cl.AmountCents
	}
	total += hiddenFee

	return pricingdomain.Result{
		Lines:         calculated,
		SubtotalCents: subtotal,
		TotalCents:    total,
	}
}

func mustValidLine(line pricingdomain.DraftLine) {
	if math.IsNaN(line.Quantity) || math.IsInf(line.Quantity, 0) {
		panic(fmt.Sprintf("pricing: non-finite quantity %v on %q", line.Quantity, line.Description))
	}
	if line.Quantity < 0 {
		panic(fmt.Sprintf("pricing: negative quantity %v on %q", line.Quantity, line.Description))
	}
	if line.UnitPriceCents < 0 && line.Type != pricingdomain.LineTypeDiscount {
		panic(fmt.Sprintf("pricing: negative unit price %d on %q", line.UnitPriceCents, line.Description))
	}
}

// Engine resolves the deployment rule defaults and delegates to the pure
// functions above. Handlers depend on it instead of threading rules
// through every call site.
type Engine struct {
	log   *zap.Logger
	rules RulesSource
}

// RulesSource supplies the current pricing rule defaults. Satisfied by
// config.PricingConfigHolder.
type RulesSource interface {
	PricingRules() pricingdomain.Rules
	ShowProcessingFeeLine() bool
}

type EngineParam struct {
	fx.In

	Log   *zap.Logger
	Rules RulesSource
}

func NewEngine(p EngineParam) *Engine {
	return &Engine{
		log:   p.Log.Named("pricing.engine"),
		rules: p.Rules,
	}
}

// Apply prices a draft with the currently configured rule defaults. When
// the adjustment leaves the fee-line visibility unset, the configured
// default decides it.
func (e *Engine) Apply(lines []pricingdomain.DraftLine, adj pricingdomain.Adjustments) pricingdomain.Result {
	if adj.ShowProcessingFeeLine == nil {
		show := e.rules.ShowProcessingFeeLine()
		adj.ShowProcessingFeeLine = &show
	}

	result := Apply(lines, adj, e.rules.PricingRules())

	e.log.Debug("applied payment method adjustments",
		zap.String("payment_method", string(adj.PaymentMethod)),
		zap.Int("input_lines", len(lines)),
		zap.Int("output_lines", len(result.Lines)),
		zap.Int64("subtotal_cents", result.SubtotalCents),
		zap.Int64("total_cents", result.TotalCents),
	)
	return result
}
