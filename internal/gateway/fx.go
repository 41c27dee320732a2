package gateway

import (
	"go.uber.org/fx"

	"github.com/givebridge/givebridge/internal/config"
	"github.com/givebridge/givebridge/internal/gateway/domain"
	"github.com/givebridge/givebridge/internal/gateway/stripe"
)

var Module = fx.Module("gateway",
	fx.Provide(NewGateway),
	fx.Provide(NewWebhookAdapter),
)

func NewGateway(cfg config.Config) (domain.Gateway, error) {
	if cfg.GatewayAPIKey == "" {
		return nil, domain.ErrInvalidConfig
	}
	return stripe.NewClient(cfg.GatewayAPIKey, cfg.GatewayAccountID), nil
}

func NewWebhookAdapter(cfg config.Config) (domain.WebhookAdapter, error) {
	return stripe.NewWebhook(cfg.GatewayWebhookSecret)
}
