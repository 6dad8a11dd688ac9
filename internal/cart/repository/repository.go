package repository

import (
	"context"
	"errors"

	"github.com/fjod/go_shop/internal/cart/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// Adapter is the narrow persistence port the cart store writes through:
// whole-snapshot load and save, keyed by the cart owner. Consumers define
// this interface, not the storage implementations.
type Adapter interface {
	Load(ctx context.Context, ownerID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, ownerID string) error
	Close() error
}
