package publisher

import (
	"context"
	"time"
)

// CartChangedEvent feeds the external notification collaborator (toasts,
// badges). Fire-and-forget.
type CartChangedEvent struct {
	OwnerID   string    `json:"owner_id"`
	Count     int       `json:"count"`
	Total     string    `json:"total"`
	Currency  string    `json:"currency"`
	ChangedAt time.Time `json:"changed_at"`
}

// OrderCompletedEvent feeds the external navigation collaborator once a
// checkout session reaches its terminal state.
type OrderCompletedEvent struct {
	OrderID       string    `json:"order_id"`
	OwnerID       string    `json:"owner_id"`
	PaymentMethod string    `json:"payment_method"`
	Total         string    `json:"total"`
	Currency      string    `json:"currency"`
	CompletedAt   time.Time `json:"completed_at"`
}

// Notifier is the outward side channel. Implementations must never block the
// caller on delivery problems; failures are logged and dropped.
type Notifier interface {
	CartChanged(ctx context.Context, event CartChangedEvent)
	OrderCompleted(ctx context.Context, event OrderCompletedEvent)
}

// NoopNotifier is used when no broker is configured and in tests.
type NoopNotifier struct{}

func (NoopNotifier) CartChanged(context.Context, CartChangedEvent)       {}
func (NoopNotifier) OrderCompleted(context.Context, OrderCompletedEvent) {}
