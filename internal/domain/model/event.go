package model

import "time"

// OrderEventType names a lifecycle notification.
type OrderEventType string

const (
	OrderEventCreated          OrderEventType = "order.created"
	OrderEventPaymentConfirmed OrderEventType = "order.payment_confirmed"
	OrderEventLicenseDelivery  OrderEventType = "order.license_delivery"
	OrderEventRejected         OrderEventType = "order.rejected"
	OrderEventExpired          OrderEventType = "order.expired"
)

// OrderEvent is emitted after a committed transition.
type OrderEvent struct {
	Type            OrderEventType `json:"type"`
	OrderID         string         `json:"order_id"`
	OrderNumber     string         `json:"order_number"`
	UserID          int64          `json:"user_id"`
	Amount          int64          `json:"amount"`
	TransferContent string         `json:"transfer_content"`
	Status          OrderStatus    `json:"status"`
	DeliveryMethod  DeliveryMethod `json:"delivery_method,omitempty"`
	DeliveryContact string         `json:"delivery_contact,omitempty"`
	Message         string         `json:"message"`
	OccurredAt      time.Time      `json:"occurred_at"`
}
