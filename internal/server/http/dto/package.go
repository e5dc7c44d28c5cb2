package dto

// PackageResponse is a catalog entry.
type PackageResponse struct {
	ID              string   `json:"id"`
	Slug            string   `json:"slug"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	DurationMonths  int      `json:"durationMonths"`
	OriginalPrice   int64    `json:"originalPrice"`
	SalePrice       int64    `json:"salePrice"`
	DiscountPercent int      `json:"discountPercent"`
	Features        []string `json:"features"`
	MaxDevices      int      `json:"maxDevices"`
	IsPopular       bool     `json:"isPopular"`
	IsActive        bool     `json:"isActive"`
	SortOrder       int      `json:"sortOrder"`
}
