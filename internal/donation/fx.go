package donation

import (
	"go.uber.org/fx"

	"github.com/givebridge/givebridge/internal/donation/domain"
	"github.com/givebridge/givebridge/internal/donation/repository"
	"github.com/givebridge/givebridge/internal/donation/service"
	"github.com/givebridge/givebridge/internal/donation/webhook"
)

var Module = fx.Module("donation.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func(s *service.Service) domain.Service { return s }),
	fx.Provide(webhook.NewService),
)
