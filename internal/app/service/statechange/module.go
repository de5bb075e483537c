package statechange

import "go.uber.org/fx"

// Module exposes the state change recorder via Fx.
var Module = fx.Options(
	fx.Provide(New),
)
