package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPricingConfig(t *testing.T) {
	cfg := DefaultPricingConfig()

	assert.Equal(t, int64(500), cfg.AutoPayDiscountCents)
	assert.Equal(t, 0.029, cfg.CardFeeRate)
	assert.Equal(t, int64(30), cfg.CardFeeFixedCents)
	assert.True(t, cfg.ShowProcessingFeeLine)
	assert.NoError(t, validatePricingConfig(cfg))
}

func TestValidatePricingConfig(t *testing.T) {
	cfg := DefaultPricingConfig()

	cfg.AutoPayDiscountCents = -1
	assert.Error(t, validatePricingConfig(cfg))

	cfg = DefaultPricingConfig()
	cfg.CardFeeRate = 1.5
	assert.Error(t, validatePricingConfig(cfg))

	cfg = DefaultPricingConfig()
	cfg.CardFeeFixedCents = -30
	assert.Error(t, validatePricingConfig(cfg))
}
