package dto

import "time"

// CreateOrderRequest opens an order for a package.
type CreateOrderRequest struct {
	PackageID     string `json:"packageId" binding:"required"`
	PaymentMethod string `json:"paymentMethod" binding:"omitempty,paymentmethod"`
}

// OrderUser is the customer embedded in an order.
type OrderUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OrderPackage is the package snapshot embedded in an order.
type OrderPackage struct {
	Name           string `json:"name"`
	DurationMonths int    `json:"durationMonths"`
}

// OrderLicense is the delivered license embedded in an order.
type OrderLicense struct {
	LicenseKey string     `json:"licenseKey"`
	EndDate    *time.Time `json:"endDate,omitempty"`
}

// OrderResponse is the wire form of an order.
type OrderResponse struct {
	ID              string        `json:"id"`
	OrderNumber     string        `json:"orderNumber"`
	UserID          string        `json:"userId"`
	PackageID       string        `json:"packageId"`
	Amount          int64         `json:"amount"`
	Currency        string        `json:"currency"`
	PaymentMethod   string        `json:"paymentMethod"`
	TransferContent string        `json:"transferContent"`
	Status          string        `json:"status"`
	StatusLabel     string        `json:"statusLabel"`
	UserConfirmedAt *time.Time    `json:"userConfirmedAt,omitempty"`
	ApprovedAt      *time.Time    `json:"approvedAt,omitempty"`
	RejectedAt      *time.Time    `json:"rejectedAt,omitempty"`
	RejectionReason string        `json:"rejectionReason,omitempty"`
	LicenseID       string        `json:"licenseId,omitempty"`
	MaxDevices      int           `json:"maxDevices"`
	DeliveryMethod  string        `json:"deliveryMethod,omitempty"`
	DeliveryContact string        `json:"deliveryContact,omitempty"`
	DeliveredAt     *time.Time    `json:"deliveredAt,omitempty"`
	AdminNotes      string        `json:"adminNotes,omitempty"`
	ExpiresAt       time.Time     `json:"expiresAt"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
	User            *OrderUser    `json:"user,omitempty"`
	Package         OrderPackage  `json:"package"`
	License         *OrderLicense `json:"license,omitempty"`
}

// BankInfo is the beneficiary account quoted to the customer.
type BankInfo struct {
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
}

// PaymentResponse tells the customer what to transfer.
type PaymentResponse struct {
	QRCode          string   `json:"qrCode"`
	BankInfo        BankInfo `json:"bankInfo"`
	Amount          int64    `json:"amount"`
	TransferContent string   `json:"transferContent"`
	VietQRURL       string   `json:"vietQRUrl"`
}

// CheckoutResponse pairs an order with its payment instructions.
type CheckoutResponse struct {
	Order   OrderResponse    `json:"order"`
	Payment *PaymentResponse `json:"payment,omitempty"`
}

// OrderStatusResponse is the lightweight polling answer.
type OrderStatusResponse struct {
	Status string `json:"status"`
}

// Pagination describes the window of a listing.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// OrderListResponse is a page of orders.
type OrderListResponse struct {
	Orders     []OrderResponse `json:"orders"`
	Pagination Pagination      `json:"pagination"`
}
