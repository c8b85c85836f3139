package pricing

import (
	"github.com/opsdeck/opsbill/internal/config"
	"github.com/opsdeck/opsbill/internal/pricing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricing.engine",
	fx.Provide(
		func(h *config.PricingConfigHolder) service.RulesSource { return h },
		service.NewEngine,
	),
)
