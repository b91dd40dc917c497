package chat

import (
	"go.uber.org/fx"
)

// Module provides the chat domain
var Module = fx.Module("chat",
	fx.Provide(NewRepository),
	fx.Provide(NewService),
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
