package metrics

import "go.uber.org/fx"

// Module provides the Prometheus collectors shared by HTTP and use cases.
var Module = fx.Module("metrics", fx.Provide(New))
