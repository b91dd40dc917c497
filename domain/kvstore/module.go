package kvstore

import (
	"go.uber.org/fx"
)

// Module provides the kvstore domain
var Module = fx.Module("kvstore",
	fx.Provide(NewRepository),
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
