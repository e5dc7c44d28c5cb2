package router

import "go.uber.org/fx"

// Module builds the gin engine serving /api and /metrics.
var Module = fx.Module("router", fx.Provide(Setup))
