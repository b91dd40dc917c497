package uploads

import (
	"go.uber.org/fx"
)

// Module provides the uploads domain
var Module = fx.Module("uploads",
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
