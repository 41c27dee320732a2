package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/givebridge/givebridge/internal/analytics"
	"github.com/givebridge/givebridge/internal/campaign"
	"github.com/givebridge/givebridge/internal/clock"
	"github.com/givebridge/givebridge/internal/config"
	"github.com/givebridge/givebridge/internal/donation"
	"github.com/givebridge/givebridge/internal/donor"
	"github.com/givebridge/givebridge/internal/gateway"
	"github.com/givebridge/givebridge/internal/migration"
	"github.com/givebridge/givebridge/internal/notifier"
	"github.com/givebridge/givebridge/internal/observability"
	"github.com/givebridge/givebridge/internal/ratelimit"
	"github.com/givebridge/givebridge/internal/server"
	"github.com/givebridge/givebridge/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		gateway.Module,
		campaign.Module,
		donor.Module,
		donation.Module,
		analytics.Module,
		notifier.Module,
		ratelimit.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
