package handler

import "github.com/google/wire"

var ProviderSet = wire.NewSet(
	wire.Struct(new(Auth), "*"),
	wire.Struct(new(User), "*"),
	wire.Struct(new(Entry), "*"),
	wire.Struct(new(Meal), "*"),
	wire.Struct(new(Upload), "*"),
	wire.Struct(new(Comments), "*"),
	wire.Struct(new(Follow), "*"),
	wire.Struct(new(Challenge), "*"),
	wire.Struct(new(Notification), "*"),
	wire.Struct(new(Weight), "*"),
)
