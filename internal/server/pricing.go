package server

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	pricingdomain "github.com/opsdeck/opsbill/internal/pricing/domain"
)

type previewPricingRequest struct {
	Lines       []pricingdomain.DraftLine `json:"lines"`
	Adjustments pricingdomain.Adjustments `json:"adjustments"`
}

// PreviewPricing prices a draft without persisting anything. An empty
// line list is a valid draft and yields a zero subtotal and total.
func (s *Server) PreviewPricing(c *gin.Context) {
	var req previewPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := validatePreview(req); err != nil {
		AbortWithError(c, err)
		return
	}

	result := s.pricingEngine.Apply(req.Lines, req.Adjustments)
	s.metrics.RecordPricingPreview(string(req.Adjustments.PaymentMethod))

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func validatePreview(req previewPricingRequest) error {
	switch req.Adjustments.PaymentMethod {
	case pricingdomain.PaymentMethodCard, pricingdomain.PaymentMethodACH, pricingdomain.PaymentMethodOffline:
	default:
		return newValidationError("adjustments.payment_method_type", "invalid_payment_method", "payment method must be card, ach, or offline")
	}

	for i, line := range req.Lines {
		field := fmt.Sprintf("lines[%d]", i)
		switch line.Type {
		case pricingdomain.LineTypeBaseSubscription,
			pricingdomain.LineTypeUsage,
			pricingdomain.LineTypeProject,
			pricingdomain.LineTypeProcessingFee:
		default:
			return newValidationError(field+".line_type", "invalid_line_type", "unknown line type")
		}
		if line.Quantity <= 0 || math.IsNaN(line.Quantity) || math.IsInf(line.Quantity, 0) {
			return newValidationError(field+".quantity", "invalid_quantity", "quantity must be a positive finite number")
		}
		if line.UnitPriceCents < 0 {
			return newValidationError(field+".unit_price_cents", "invalid_unit_price", "unit price cannot be negative")
		}
	}

	return nil
}
