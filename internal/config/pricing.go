package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	pricingdomain "github.com/opsdeck/opsbill/internal/pricing/domain"
	"github.com/spf13/viper"
)

// PricingConfig holds the deployment defaults for the pricing engine.
type PricingConfig struct {
	AutoPayDiscountCents  int64   `mapstructure:"autoPayDiscountCents"`
	CardFeeRate           float64 `mapstructure:"cardFeeRate"`
	CardFeeFixedCents     int64   `mapstructure:"cardFeeFixedCents"`
	ShowProcessingFeeLine bool    `mapstructure:"showProcessingFeeLine"`
}

func DefaultPricingConfig() PricingConfig {
	rules := pricingdomain.DefaultRules()
	return PricingConfig{
		AutoPayDiscountCents:  rules.AutoPayDiscountCents,
		CardFeeRate:           rules.CardFeeRate,
		CardFeeFixedCents:     rules.CardFeeFixedCents,
		ShowProcessingFeeLine: true,
	}
}

// PricingConfigHolder exposes the current pricing defaults with hot
// reload. Reads are lock-free; a reloaded config is swapped in atomically
// and an invalid one is ignored.
type PricingConfigHolder struct {
	current atomic.Value // holds PricingConfig
}

func NewPricingConfigHolder() (*PricingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("pricing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/opsbill/config") // Volume-mounted config
	v.AddConfigPath("/etc/opsbill")            // System config
	v.AddConfigPath(".")                       // Current directory (dev mode)

	v.SetEnvPrefix("OPSBILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultPricingConfig()
		v.SetDefault("pricing.autoPayDiscountCents", defaults.AutoPayDiscountCents)
		v.SetDefault("pricing.cardFeeRate", defaults.CardFeeRate)
		v.SetDefault("pricing.cardFeeFixedCents", defaults.CardFeeFixedCents)
		v.SetDefault("pricing.showProcessingFeeLine", defaults.ShowProcessingFeeLine)
	}

	var cfg PricingConfig
	if err := v.UnmarshalKey("pricing", &cfg); err != nil {
		return nil, err
	}
	if err := validatePricingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PricingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PricingConfig
		if err := v.UnmarshalKey("pricing", &updated); err != nil {
			log.Printf("[pricing-config] reload failed: %v", err)
			return
		}
		if err := validatePricingConfig(updated); err != nil {
			log.Printf("[pricing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[pricing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *PricingConfigHolder) Get() PricingConfig {
	return h.current.Load().(PricingConfig)
}

// PricingRules satisfies the engine's RulesSource.
func (h *PricingConfigHolder) PricingRules() pricingdomain.Rules {
	cfg := h.Get()
	return pricingdomain.Rules{
		AutoPayDiscountCents: cfg.AutoPayDiscountCents,
		CardFeeRate:          cfg.CardFeeRate,
		CardFeeFixedCents:    cfg.CardFeeFixedCents,
	}
}

func (h *PricingConfigHolder) ShowProcessingFeeLine() bool {
	return h.Get().ShowProcessingFeeLine
}

func validatePricingConfig(cfg PricingConfig) error {
	if cfg.AutoPayDiscountCents < 0 {
		return errors.New("pricing.autoPayDiscountCents cannot be negative")
	}
	if cfg.CardFeeRate < 0 || cfg.CardFeeRate >= 1 {
		return errors.New("pricing.cardFeeRate must be within [0, 1)")
	}
	if cfg.CardFeeFixedCents < 0 {
		return errors.New("pricing.cardFeeFixedCents cannot be negative")
	}
	return nil
}
