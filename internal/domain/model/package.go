package model

// Package is a subscription offer from the catalog.
type Package struct {
	ID              string
	Slug            string
	Name            string
	Description     string
	DurationMonths  int
	OriginalPrice   int64
	SalePrice       int64
	DiscountPercent int
	Features        []string
	Popular         bool
	MaxDevices      int
	Active          bool
	SortOrder       int
}
