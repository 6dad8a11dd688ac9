package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_shop/internal/checkout/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var (
	// ErrUnavailable covers transport failures and an open circuit breaker.
	// Surfaced to the user as a generic failure, never verbatim.
	ErrUnavailable = errors.New("payment service unavailable")

	ErrUnknownMethod = errors.New("unknown payment method")
)

// RejectionError carries the validation endpoint's message, shown to the
// user verbatim.
type RejectionError struct {
	Message string
}

func (e *RejectionError) Error() string {
	return e.Message
}

// Charge is everything an adapter needs to execute one payment attempt.
type Charge struct {
	SessionID string
	OwnerID   string
	Amount    decimal.Decimal
	Currency  currency.Unit
	Payment   domain.PaymentInfo
}

// Adapter executes the side effect of completing a payment for one variant.
// A nil error means the payment went through.
type Adapter interface {
	Submit(ctx context.Context, charge Charge) error
}

// Dispatcher holds exactly one adapter per variant.
type Dispatcher struct {
	adapters map[domain.Method]Adapter
}

// NewDispatcher builds the closed dispatch table. redirectDelay is the
// simulated wallet confirmation pause.
func NewDispatcher(client *Client, redirectDelay time.Duration) *Dispatcher {
	return &Dispatcher{
		adapters: map[domain.Method]Adapter{
			domain.MethodCard:           &CardAdapter{},
			domain.MethodWalletRedirect: &WalletRedirectAdapter{Delay: redirectDelay},
			domain.MethodPeerTransfer:   &TransferAdapter{Client: client, Path: "/api/payment/validate"},
			domain.MethodBankTransfer:   &TransferAdapter{Client: client, Path: "/api/payment/validate/bank", BankTransfer: true},
		},
	}
}

func (d *Dispatcher) Submit(ctx context.Context, charge Charge) error {
	adapter, ok := d.adapters[charge.Payment.Method]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMethod, charge.Payment.Method)
	}
	return adapter.Submit(ctx, charge)
}
