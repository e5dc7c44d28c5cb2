package model

import (
	"fmt"
	"time"
)

// OrderStatus describes the order lifecycle.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusRejected   OrderStatus = "REJECTED"
	OrderStatusExpired    OrderStatus = "EXPIRED"
)

type statusTraits struct {
	label    string
	terminal bool
	next     []OrderStatus
}

// orderStatuses is the complete status table. A status missing here is not a status.
var orderStatuses = map[OrderStatus]statusTraits{
	OrderStatusPending: {
		label: "Chờ thanh toán",
		next:  []OrderStatus{OrderStatusProcessing, OrderStatusExpired},
	},
	OrderStatusProcessing: {
		label: "Chờ xác nhận",
		next:  []OrderStatus{OrderStatusCompleted, OrderStatusRejected},
	},
	OrderStatusCompleted: {label: "Hoàn thành", terminal: true},
	OrderStatusRejected:  {label: "Đã hủy", terminal: true},
	OrderStatusExpired:   {label: "Hết hạn", terminal: true},
}

// OrderStatuses lists statuses in lifecycle order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusCompleted,
		OrderStatusRejected,
		OrderStatusExpired,
	}
}

// ParseOrderStatus converts raw value into a known status.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(raw)
	if _, ok := orderStatuses[status]; !ok {
		return "", fmt.Errorf("unknown order status %q", raw)
	}
	return status, nil
}

// Valid reports whether the status belongs to the lifecycle.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatuses[s]
	return ok
}

// Label returns the customer facing name.
func (s OrderStatus) Label() string {
	if traits, ok := orderStatuses[s]; ok {
		return traits.label
	}
	return string(s)
}

// Terminal reports whether no further transition is allowed.
func (s OrderStatus) Terminal() bool {
	return orderStatuses[s].terminal
}

// CanTransitionTo reports whether s -> next is a lifecycle edge.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, candidate := range orderStatuses[s].next {
		if candidate == next {
			return true
		}
	}
	return false
}

// PaymentMethod identifies how the customer pays.
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "VND_BANK_TRANSFER"
	PaymentMethodUSDT         PaymentMethod = "USDT"
)

// Supported reports whether checkout accepts the method.
func (m PaymentMethod) Supported() bool {
	return m == PaymentMethodBankTransfer
}

// DeliveryMethod identifies the channel used to hand over a license.
type DeliveryMethod string

const (
	DeliveryMethodEmail    DeliveryMethod = "EMAIL"
	DeliveryMethodTelegram DeliveryMethod = "TELEGRAM"
	DeliveryMethodZalo     DeliveryMethod = "ZALO"
)

// Valid reports whether the delivery method is known.
func (m DeliveryMethod) Valid() bool {
	switch m {
	case DeliveryMethodEmail, DeliveryMethodTelegram, DeliveryMethodZalo:
		return true
	}
	return false
}

// CurrencyVND is the only currency orders are priced in.
const CurrencyVND = "VND"

// Order describes a license purchase.
type Order struct {
	ID              string
	OrderNumber     string
	UserID          int64
	UserEmail       string
	UserName        string
	PackageID       string
	PackageName     string
	DurationMonths  int
	Amount          int64
	Currency        string
	PaymentMethod   PaymentMethod
	TransferContent string
	Status          OrderStatus
	UserConfirmedAt *time.Time
	ApprovedAt      *time.Time
	RejectedAt      *time.Time
	RejectionReason string
	LicenseID       string
	LicenseKey      string
	LicenseEndsAt   *time.Time
	MaxDevices      int
	DeliveryMethod  DeliveryMethod
	DeliveryContact string
	DeliveredAt     *time.Time
	AdminNotes      string
	ExpiresAt       time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Due reports whether an unconfirmed order has outlived its payment window.
func (o *Order) Due(now time.Time) bool {
	return o.Status == OrderStatusPending && !now.Before(o.ExpiresAt)
}

// OrderFilter narrows order listings. Zero values mean no restriction.
type OrderFilter struct {
	Status OrderStatus
	UserID int64
	Search string
}

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Page selects a window of a listing.
type Page struct {
	Page  int
	Limit int
}

// Normalize applies defaults and bounds.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	return p
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// OrderList is a page of orders with the unpaged total.
type OrderList struct {
	Orders []Order
	Total  int
	Page   int
	Limit  int
}

// TotalPages returns the number of pages for the total.
func (l OrderList) TotalPages() int {
	if l.Limit <= 0 || l.Total == 0 {
		return 0
	}
	return (l.Total + l.Limit - 1) / l.Limit
}
