// Package domain contains the types consumed and produced by the
// pricing/adjustment engine. All money values are integer minor units
// (cents); quantities may be fractional.
package domain

// PaymentMethodType selects which adjustments apply to an invoice draft.
type PaymentMethodType string

const (
	PaymentMethodCard    PaymentMethodType = "card"
	PaymentMethodACH     PaymentMethodType = "ach"
	PaymentMethodOffline PaymentMethodType = "offline"
)

// LineType tags the origin of a billing line.
//
// Discount is a dedicated tag for the synthesized ACH auto-pay discount
// line; fee lines keep LineTypeProcessingFee.
type LineType string

const (
	LineTypeBaseSubscription LineType = "base_subscription"
	LineTypeUsage            LineType = "usage"
	LineTypeProject          LineType = "project"
	LineTypeProcessingFee    LineType = "processing_fee"
	LineTypeDiscount         LineType = "discount"
)

// DraftLine is an unadjusted billable entry. UnitPriceCents must be
// non-negative for caller-supplied lines; only engine-synthesized
// discount lines carry a negative unit price.
type DraftLine struct {
	Type           LineType       `json:"line_type"`
	Description    string         `json:"description"`
	Quantity       float64        `json:"quantity"`
	UnitPriceCents int64          `json:"unit_price_cents"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// CalculatedLine is a DraftLine with its rounded cent amount attached.
type CalculatedLine struct {
	DraftLine
	AmountCents int64 `json:"amount_cents"`
}

// Rules holds the deployment-wide pricing defaults. They are resolved by
// the billing configuration source and passed into the engine explicitly
// so tests can override them without global side effects.
type Rules struct {
	AutoPayDiscountCents int64
	CardFeeRate          float64
	CardFeeFixedCents    int64
}

// DefaultRules returns the stock rule set: $5.00 auto-pay discount,
// 2.9% + $0.30 card processing fee.
func DefaultRules() Rules {
	return Rules{
		AutoPayDiscountCents: 500,
		CardFeeRate:          0.029,
		CardFeeFixedCents:    30,
	}
}

// Adjustments is the per-invoice payment-method configuration. Nil
// pointer fields fall back to the engine's Rules; ShowProcessingFeeLine
// defaults to true.
type Adjustments struct {
	PaymentMethod           PaymentMethodType `json:"payment_method_type"`
	AutoPayEnabled          bool              `json:"auto_pay_enabled"`
	ACHDiscountCents        *int64            `json:"ach_discount_cents,omitempty"`
	ProcessingFeeRate       *float64          `json:"processing_fee_rate,omitempty"`
	ProcessingFeeFixedCents *int64            `json:"processing_fee_fixed_cents,omitempty"`
	ShowProcessingFeeLine   *bool             `json:"show_processing_fee_line,omitempty"`
}

// Result is a finalized line set. SubtotalCents covers the caller-supplied
// lines only; TotalCents includes every adjustment, whether or not the fee
// was emitted as a visible line.
type Result struct {
	Lines         []CalculatedLine `json:"lines"`
	SubtotalCents int64            `json:"subtotal_cents"`
	TotalCents    int64            `json:"total_cents"`
}
