// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	pricingdomain "github.com/opsdeck/opsbill/internal/pricing/domain"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "DRAFT"
	InvoiceStatusOpen  InvoiceStatus = "OPEN"
	InvoiceStatusPaid  InvoiceStatus = "PAID"
	InvoiceStatusVoid  InvoiceStatus = "VOID"
)

// Invoice represents a generated invoice. Subtotal covers the
// client-supplied lines only; Total includes every adjustment.
type Invoice struct {
	ID             snowflake.ID                    `gorm:"primaryKey" json:"id"`
	CustomerID     snowflake.ID                    `gorm:"not null;index" json:"customer_id"`
	InvoiceNumber  string                          `gorm:"type:text;not null;uniqueIndex" json:"invoice_number"`
	Status         InvoiceStatus                   `gorm:"type:text;not null;default:'DRAFT'" json:"status"`
	PaymentMethod  pricingdomain.PaymentMethodType `gorm:"type:text;not null" json:"payment_method"`
	AutoPayEnabled bool                            `gorm:"not null;default:false" json:"auto_pay_enabled"`
	SubtotalAmount int64                           `gorm:"not null;default:0" json:"subtotal_amount"`
	TotalAmount    int64                           `gorm:"not null;default:0" json:"total_amount"`
	Currency       string                          `gorm:"type:text;not null" json:"currency"`
	IssuedAt       *time.Time                      `gorm:"" json:"issued_at,omitempty"`
	DueAt          *time.Time                      `gorm:"" json:"due_at,omitempty"`
	Metadata       datatypes.JSONMap               `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedAt      time.Time                       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time                       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Lines []InvoiceLine `gorm:"foreignKey:InvoiceID" json:"lines,omitempty"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceLine represents a line on an invoice, including the adjustment
// lines synthesized by the pricing engine.
type InvoiceLine struct {
	ID          snowflake.ID           `gorm:"primaryKey" json:"id"`
	InvoiceID   snowflake.ID           `gorm:"not null;index" json:"invoice_id"`
	LineType    pricingdomain.LineType `gorm:"type:text;not null" json:"line_type"`
	Description string                 `gorm:"type:text" json:"description"`
	Quantity    float64                `gorm:"not null" json:"quantity"`
	UnitPrice   int64                  `gorm:"not null" json:"unit_price"`
	Amount      int64                  `gorm:"not null" json:"amount"`
	Position    int                    `gorm:"not null;default:0" json:"position"`
	Metadata    datatypes.JSONMap      `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedAt   time.Time              `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceLine) TableName() string { return "invoice_lines" }
