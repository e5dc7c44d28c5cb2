package model

import "time"

// License is a device-bound entitlement minted on approval.
type License struct {
	ID         string
	OrderID    string
	UserID     int64
	Key        string
	MaxDevices int
	StartsAt   time.Time
	EndsAt     time.Time
}

// LicenseRequest asks the issuer for a license bound to an order.
type LicenseRequest struct {
	OrderID        string
	UserID         int64
	PackageID      string
	DurationMonths int
	MaxDevices     int
}
