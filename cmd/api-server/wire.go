//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/petroshong/calofeed-sub001/backend/provider"
	"github.com/petroshong/calofeed-sub001/config"
	"github.com/petroshong/calofeed-sub001/handler"
	"github.com/petroshong/calofeed-sub001/pkg/server"
	"github.com/petroshong/calofeed-sub001/pkg/socket"
	"github.com/petroshong/calofeed-sub001/service"
)

func InitServer(cfg *config.Config) (*server.AppProvider, func(), error) {
	wire.Build(
		provider.ProviderSet,
		service.ProviderSet,
		handler.ProviderSet,

		socket.NewHub,
		wire.Bind(new(service.Pusher), new(*socket.Hub)),

		server.NewGinEngine,
		wire.Struct(new(server.Handlers), "*"),
		wire.Struct(new(server.AppProvider), "*"),
	)
	return nil, nil, nil
}
