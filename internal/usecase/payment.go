package usecase

import (
	"net/url"
	"strconv"

	"github.com/polkiloo/veo3store/internal/config"
	"github.com/polkiloo/veo3store/internal/domain/model"
)

const vietQRBase = "https://img.vietqr.io/image/"

// PaymentDesk renders bank transfer instructions for an order.
type PaymentDesk struct {
	bank model.BankInfo
}

// NewPaymentDesk builds a PaymentDesk from the configured beneficiary.
func NewPaymentDesk(cfg *config.Config) *PaymentDesk {
	return &PaymentDesk{bank: model.BankInfo{
		BankName:      cfg.Bank.Name,
		BankCode:      cfg.Bank.Code,
		AccountNumber: cfg.Bank.AccountNumber,
		AccountName:   cfg.Bank.AccountName,
	}}
}

// Bank returns the beneficiary account.
func (d *PaymentDesk) Bank() model.BankInfo {
	return d.bank
}

// Instructions returns what the customer has to transfer and quote.
func (d *PaymentDesk) Instructions(order *model.Order) model.PaymentInstructions {
	return model.PaymentInstructions{
		Bank:            d.bank,
		Amount:          order.Amount,
		TransferContent: order.TransferContent,
		QRCodeURL:       d.qrURL(order),
	}
}

func (d *PaymentDesk) qrURL(order *model.Order) string {
	q := url.Values{}
	q.Set("amount", strconv.FormatInt(order.Amount, 10))
	q.Set("addInfo", order.TransferContent)
	q.Set("accountName", d.bank.AccountName)
	return vietQRBase + url.PathEscape(d.bank.BankCode) + "-" + url.PathEscape(d.bank.AccountNumber) +
		"-compact2.png?" + q.Encode()
}

// Checkout pairs an order with its payment instructions.
func (d *PaymentDesk) Checkout(order *model.Order) *model.Checkout {
	return &model.Checkout{Order: order, Payment: d.Instructions(order)}
}
