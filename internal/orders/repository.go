package orders

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_shop/internal/cart/domain"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateOrder = errors.New("order already recorded")
)

type OrderItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

// Order is the durable record of a completed checkout. It is written before
// the cart is cleared so a completed order can never be lost with its cart.
type Order struct {
	ID            string
	SessionID     string
	OwnerID       string
	PaymentMethod string
	TotalAmount   string
	Currency      string
	Items         []OrderItem
	CreatedAt     time.Time
}

// ItemsFromCart snapshots cart items into order lines.
func ItemsFromCart(items []domain.CartItem) []OrderItem {
	out := make([]OrderItem, len(items))
	for i, item := range items {
		out[i] = OrderItem{
			ProductID:   item.Product.ID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.Product.UnitPrice.StringFixed(2),
		}
	}
	return out
}

// Repository records completed orders durably.
type Repository interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetOrderByID(ctx context.Context, id string) (*Order, error)
	Close() error
}
