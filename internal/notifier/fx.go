package notifier

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/givebridge/givebridge/internal/config"
	"github.com/givebridge/givebridge/internal/observability/metrics"
)

var Module = fx.Module("notifier",
	fx.Provide(NewProvider),
	fx.Provide(NewNotifier),
)

func NewProvider(cfg config.Config, log *zap.Logger) Provider {
	if cfg.SMTPHost == "" {
		log.Named("notifier").Info("no smtp relay configured, notifications disabled")
		return NoOpProvider{}
	}
	provider, err := NewSMTPProvider(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	if err != nil {
		log.Named("notifier").Warn("invalid smtp configuration, notifications disabled", zap.Error(err))
		return NoOpProvider{}
	}
	return provider
}

type Params struct {
	fx.In

	LC         fx.Lifecycle
	Provider   Provider
	Log        *zap.Logger
	Settings   *config.SettingsHolder
	ObsMetrics *metrics.Metrics `optional:"true"`
}

func NewNotifier(p Params) *Notifier {
	n := New(p.Provider, p.Log, p.Settings, p.ObsMetrics)
	p.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			n.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			n.Stop()
			return nil
		},
	})
	return n
}
