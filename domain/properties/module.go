package properties

import (
	"go.uber.org/fx"
)

// Module provides the properties domain
var Module = fx.Module("properties",
	fx.Provide(NewRepository),
	fx.Provide(NewService),
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
