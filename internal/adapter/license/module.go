package license

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/veo3store/internal/config"
)

// Module exposes license issuer implementation to fx graph.
var Module = fx.Provide(newIssuer)

type issuerParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newIssuer(p issuerParams) (Issuer, error) {
	return NewHTTPClient(p.Config.LicenseServiceAddress, p.Config.LicenseRetryAttempts, p.Logger)
}
