package repository

import (
	"context"
	"time"
)

// LicenseRepository reports on issued licenses.
type LicenseRepository interface {
	Counts(ctx context.Context, now time.Time) (total int, active int, err error)
}
