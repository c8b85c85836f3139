package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/opsdeck/opsbill/internal/invoice/domain"
	"github.com/opsdeck/opsbill/internal/invoice/format"
	pricingdomain "github.com/opsdeck/opsbill/internal/pricing/domain"
	pricingservice "github.com/opsdeck/opsbill/internal/pricing/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Engine *pricingservice.Engine
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID  *snowflake.Node
	engine *pricingservice.Engine
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("invoice.service"),

		genID:  p.GenID,
		engine: p.Engine,
	}
}

// Generate validates a draft, prices it through the adjustment engine,
// and persists the invoice with its full line set in one transaction.
// Validation happens here so engine preconditions can never trip on
// user-supplied input.
func (s *Service) Generate(ctx context.Context, req invoicedomain.GenerateRequest) (*invoicedomain.Invoice, error) {
	if req.CustomerID == 0 {
		return nil, invoicedomain.ErrInvalidCustomer
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if len(currency) != 3 {
		return nil, invoicedomain.ErrInvalidCurrency
	}
	if len(req.Lines) == 0 {
		return nil, invoicedomain.ErrEmptyDraft
	}
	if err := validatePaymentMethod(req.Adjustments.PaymentMethod); err != nil {
		return nil, err
	}
	for _, line := range req.Lines {
		if err := validateDraftLine(line); err != nil {
			return nil, err
		}
	}

	result := s.engine.Apply(req.Lines, req.Adjustments)

	now := time.Now().UTC()
	invoice := &invoicedomain.Invoice{
		ID:             s.genID.Generate(),
		CustomerID:     req.CustomerID,
		Status:         invoicedomain.InvoiceStatusDraft,
		PaymentMethod:  req.Adjustments.PaymentMethod,
		AutoPayEnabled: req.Adjustments.AutoPayEnabled,
		SubtotalAmount: result.SubtotalCents,
		TotalAmount:    result.TotalCents,
		Currency:       currency,
		IssuedAt:       &now,
		Metadata:       toJSONMap(req.Metadata),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq int64
		if err := tx.Model(&invoicedomain.Invoice{}).Count(&seq).Error; err != nil {
			return err
		}

		number, err := format.FormatInvoiceNumber(format.DefaultInvoiceNumberTemplate, now, seq+1)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number

		for i, cl := range result.Lines {
			invoice.Lines = append(invoice.Lines, invoicedomain.InvoiceLine{
				ID:          s.genID.Generate(),
				InvoiceID:   invoice.ID,
				LineType:    cl.Type,
				Description: cl.Description,
				Quantity:    cl.Quantity,
				UnitPrice:   cl.UnitPriceCents,
				Amount:      cl.AmountCents,
				Position:    i,
				Metadata:    toJSONMap(cl.Metadata),
				CreatedAt:   now,
			})
		}

		return tx.Create(invoice).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invoice generated",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("payment_method", string(invoice.PaymentMethod)),
		zap.Int64("subtotal_cents", invoice.SubtotalAmount),
		zap.Int64("total_cents", invoice.TotalAmount),
	)
	return invoice, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*invoicedomain.Invoice, error) {
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, invoicedomain.ErrInvalidInvoiceID
	}

	var invoice invoicedomain.Invoice
	err = s.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&invoice, "id = ?", invoiceID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, invoicedomain.ErrInvoiceNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListRequest) ([]invoicedomain.Invoice, error) {
	query := s.db.WithContext(ctx).Model(&invoicedomain.Invoice{}).Order("created_at DESC")
	if req.CustomerID != nil {
		query = query.Where("customer_id = ?", *req.CustomerID)
	}
	if req.Status != nil {
		query = query.Where("status = ?", *req.Status)
	}

	var invoices []invoicedomain.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func validatePaymentMethod(method pricingdomain.PaymentMethodType) error {
	switch method {
	case pricingdomain.PaymentMethodCard, pricingdomain.PaymentMethodACH, pricingdomain.PaymentMethodOffline:
		return nil
	default:
		return invoicedomain.ErrInvalidPaymentMethod
	}
}

func validateDraftLine(line pricingdomain.DraftLine) error {
	switch line.Type {
	case pricingdomain.LineTypeBaseSubscription,
		pricingdomain.LineTypeUsage,
		pricingdomain.LineTypeProject,
		pricingdomain.LineTypeProcessingFee:
	default:
		// Discount lines are engine-synthesized, never caller input.
		return invoicedomain.ErrInvalidLineType
	}
	if line.Quantity <= 0 || math.IsNaN(line.Quantity) || math.IsInf(line.Quantity, 0) {
		return invoicedomain.ErrInvalidQuantity
	}
	if line.UnitPriceCents < 0 {
		return invoicedomain.ErrInvalidUnitPrice
	}
	return nil
}

func toJSONMap(m map[string]any) datatypes.JSONMap {
	if len(m) == 0 {
		return datatypes.JSONMap{}
	}
	return datatypes.JSONMap(m)
}
