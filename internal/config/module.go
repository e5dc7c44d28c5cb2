package config

import "go.uber.org/fx"

// Module provides *Config parsed from the environment and flags.
var Module = fx.Module("config", fx.Provide(Load))
