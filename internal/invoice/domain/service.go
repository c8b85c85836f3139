package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	pricingdomain "github.com/opsdeck/opsbill/internal/pricing/domain"
)

// GenerateRequest describes an invoice draft: the client-supplied lines
// plus the client's payment-method configuration.
type GenerateRequest struct {
	CustomerID  snowflake.ID              `json:"customer_id"`
	Currency    string                    `json:"currency"`
	Lines       []pricingdomain.DraftLine `json:"lines"`
	Adjustments pricingdomain.Adjustments `json:"adjustments"`
	Metadata    map[string]any            `json:"metadata,omitempty"`
}

type ListRequest struct {
	CustomerID *snowflake.ID
	Status     *InvoiceStatus
}

type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (*Invoice, error)
	GetByID(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context, req ListRequest) ([]Invoice, error)
}

var (
	ErrInvalidCustomer      = errors.New("invalid_customer")
	ErrInvalidCurrency      = errors.New("invalid_currency")
	ErrEmptyDraft           = errors.New("empty_draft")
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrInvalidUnitPrice     = errors.New("invalid_unit_price")
	ErrInvalidLineType      = errors.New("invalid_line_type")
	ErrInvalidPaymentMethod = errors.New("invalid_payment_method")
	ErrInvalidInvoiceID     = errors.New("invalid_invoice_id")
	ErrInvoiceNotFound      = errors.New("invoice_not_found")
)
