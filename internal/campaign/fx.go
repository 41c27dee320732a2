package campaign

import (
	"go.uber.org/fx"

	"github.com/givebridge/givebridge/internal/campaign/repository"
	"github.com/givebridge/givebridge/internal/campaign/service"
)

var Module = fx.Module("campaign.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
