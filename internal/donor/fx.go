package donor

import (
	"go.uber.org/fx"

	"github.com/givebridge/givebridge/internal/donor/repository"
	"github.com/givebridge/givebridge/internal/donor/service"
)

var Module = fx.Module("donor.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
