package client

import (
	"context"
	"fmt"
	"sync"

	domainErrors "github.com/polkiloo/veo3store/internal/domain/errors"
	"github.com/polkiloo/veo3store/internal/server/http/dto"
)

// CheckoutStep is the position of a Checkout in the purchase flow.
type CheckoutStep int

const (
	StepMethodSelection CheckoutStep = iota
	StepPaymentDisplay
	StepConfirmed
)

func (s CheckoutStep) String() string {
	switch s {
	case StepMethodSelection:
		return "method_selection"
	case StepPaymentDisplay:
		return "payment_display"
	case StepConfirmed:
		return "confirmed"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

const (
	MethodBankTransfer = "VND_BANK_TRANSFER"
	MethodUSDT         = "USDT"
)

// Checkout walks one package purchase: pick a method, create the order and
// show the transfer instructions, then confirm the transfer was made.
type Checkout struct {
	client *Client

	mu      sync.Mutex
	step    CheckoutStep
	method  string
	order   *dto.OrderResponse
	payment *dto.PaymentResponse
	busy    bool
	// seq numbers every request that changes the order; applied is the
	// newest one whose answer was kept.
	seq     uint64
	applied uint64
}

func NewCheckout(c *Client) *Checkout {
	return &Checkout{client: c, method: MethodBankTransfer}
}

func (co *Checkout) Step() CheckoutStep {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.step
}

// Order returns the order created by Start, if any.
func (co *Checkout) Order() *dto.OrderResponse {
	co.mu.Lock()
	defer co.mu.Unlock()
	if co.order == nil {
		return nil
	}
	o := *co.order
	return &o
}

// Payment returns the transfer instructions shown after Start.
func (co *Checkout) Payment() *dto.PaymentResponse {
	co.mu.Lock()
	defer co.mu.Unlock()
	if co.payment == nil {
		return nil
	}
	p := *co.payment
	return &p
}

func (co *Checkout) SelectMethod(method string) error {
	co.mu.Lock()
	defer co.mu.Unlock()
	if co.step != StepMethodSelection {
		return co.outOfOrder("select a payment method")
	}
	switch method {
	case MethodBankTransfer:
		co.method = method
		return nil
	case MethodUSDT:
		return domainErrors.NewValidationError("paymentMethod", "USDT payment is not supported yet")
	default:
		return domainErrors.NewValidationError("paymentMethod", fmt.Sprintf("unknown payment method %q", method))
	}
}

// Start creates the order and keeps the payment instructions. A second
// Start while the first is still waiting is refused.
func (co *Checkout) Start(ctx context.Context, packageID string) error {
	if packageID == "" {
		return domainErrors.NewValidationError("packageId", "package is required")
	}

	co.mu.Lock()
	if err := co.begin("start", StepMethodSelection); err != nil {
		co.mu.Unlock()
		return err
	}
	method := co.method
	co.mu.Unlock()

	res, err := co.client.CreateOrder(ctx, packageID, method)

	co.mu.Lock()
	defer co.mu.Unlock()
	co.busy = false
	if err != nil {
		return err
	}
	co.seq++
	co.applied = co.seq
	co.order = &res.Order
	co.payment = res.Payment
	co.step = StepPaymentDisplay
	return nil
}

// Confirm tells the store the transfer was sent. Status polls that were
// sent before the confirmation landed are discarded.
func (co *Checkout) Confirm(ctx context.Context) error {
	co.mu.Lock()
	if co.order == nil {
		err := co.outOfOrder("confirm")
		co.mu.Unlock()
		return err
	}
	if err := co.begin("confirm", StepPaymentDisplay); err != nil {
		co.mu.Unlock()
		return err
	}
	id := co.order.ID
	co.mu.Unlock()

	order, err := co.client.ConfirmPayment(ctx, id)

	co.mu.Lock()
	defer co.mu.Unlock()
	co.busy = false
	if err != nil {
		return err
	}
	co.seq++
	co.applied = co.seq
	co.order = order
	co.step = StepConfirmed
	return nil
}

// Refresh polls the order status and returns it. When a newer answer was
// applied while the poll was in flight, the held status is returned instead.
func (co *Checkout) Refresh(ctx context.Context) (string, error) {
	co.mu.Lock()
	if co.order == nil {
		err := co.outOfOrder("refresh")
		co.mu.Unlock()
		return "", err
	}
	id := co.order.ID
	co.seq++
	seq := co.seq
	co.mu.Unlock()

	status, err := co.client.OrderStatus(ctx, id)
	if err != nil {
		return "", err
	}

	co.mu.Lock()
	defer co.mu.Unlock()
	if seq <= co.applied || co.order == nil || co.order.ID != id {
		if co.order != nil {
			return co.order.Status, nil
		}
		return status, nil
	}
	co.applied = seq
	co.order.Status = status
	return status, nil
}

// begin marks a step-changing request as in flight. mu must be held.
func (co *Checkout) begin(action string, want CheckoutStep) error {
	if co.step != want {
		return co.outOfOrder(action)
	}
	if co.busy {
		return domainErrors.NewValidationError("checkout", fmt.Sprintf("cannot %s while another request is in flight", action))
	}
	co.busy = true
	return nil
}

// outOfOrder must be called with mu held.
func (co *Checkout) outOfOrder(action string) error {
	return domainErrors.NewValidationError("checkout", fmt.Sprintf("cannot %s during %s", action, co.step))
}
