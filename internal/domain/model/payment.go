package model

// BankInfo is the beneficiary account for manual transfers.
type BankInfo struct {
	BankName      string
	BankCode      string
	AccountNumber string
	AccountName   string
}

// PaymentInstructions tell the customer how to pay an order.
type PaymentInstructions struct {
	Bank            BankInfo
	Amount          int64
	TransferContent string
	QRCodeURL       string
}

// Checkout is the result of creating an order.
type Checkout struct {
	Order   *Order
	Payment PaymentInstructions
}
