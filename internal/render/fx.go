package render

import "go.uber.org/fx"

var Module = fx.Module("render",
	fx.Provide(NewClient),
)
