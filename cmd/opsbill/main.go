package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/opsdeck/opsbill/internal/config"
	"github.com/opsdeck/opsbill/internal/logger"
	"github.com/opsdeck/opsbill/internal/migration"
	"github.com/opsdeck/opsbill/internal/server"
	"github.com/opsdeck/opsbill/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
