package store

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/fjod/go_shop/internal/cart/cache"
	"github.com/fjod/go_shop/internal/cart/domain"
	"github.com/fjod/go_shop/internal/cart/repository"
	"github.com/fjod/go_shop/internal/publisher"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Store holds the authoritative in-memory cart for one visitor. Every
// mutation is a single atomic transition under the lock; persistence and
// notifications happen asynchronously afterwards and are non-fatal.
type Store struct {
	mu       sync.Mutex
	cart     *domain.Cart
	adapter  repository.Adapter
	cache    cache.CartCache
	notifier publisher.Notifier
	currency currency.Unit

	saveTimeout time.Duration
	wg          sync.WaitGroup
}

func newStore(cart *domain.Cart, adapter repository.Adapter, cartCache cache.CartCache,
	notifier publisher.Notifier, unit currency.Unit, saveTimeout time.Duration) *Store {
	return &Store{
		cart:        cart,
		adapter:     adapter,
		cache:       cartCache,
		notifier:    notifier,
		currency:    unit,
		saveTimeout: saveTimeout,
	}
}

// AddItem inserts product with quantity one, or bumps the quantity of the
// existing entry. The same product never produces two entries.
func (s *Store) AddItem(product domain.Product) *domain.Cart {
	s.mu.Lock()
	if i := s.cart.Find(product.ID); i >= 0 {
		s.cart.Items[i].Quantity++
	} else {
		s.cart.Items = append(s.cart.Items, domain.CartItem{
			Product:  product,
			Quantity: 1,
			AddedAt:  time.Now(),
		})
	}
	s.cart.UpdatedAt = time.Now()
	snapshot := s.cart.Clone()
	s.mu.Unlock()

	s.persist(snapshot)
	return snapshot
}

// UpdateQuantity sets the quantity for productID, removing the item when
// quantity drops to zero or below. Unknown IDs are a no-op.
func (s *Store) UpdateQuantity(productID string, quantity int) *domain.Cart {
	s.mu.Lock()
	i := s.cart.Find(productID)
	if i < 0 {
		snapshot := s.cart.Clone()
		s.mu.Unlock()
		return snapshot
	}

	if quantity <= 0 {
		s.cart.Items = append(s.cart.Items[:i], s.cart.Items[i+1:]...)
	} else {
		s.cart.Items[i].Quantity = quantity
	}
	s.cart.UpdatedAt = time.Now()
	snapshot := s.cart.Clone()
	s.mu.Unlock()

	s.persist(snapshot)
	return snapshot
}

// RemoveItem removes the item unconditionally.
func (s *Store) RemoveItem(productID string) *domain.Cart {
	s.mu.Lock()
	i := s.cart.Find(productID)
	if i < 0 {
		snapshot := s.cart.Clone()
		s.mu.Unlock()
		return snapshot
	}

	s.cart.Items = append(s.cart.Items[:i], s.cart.Items[i+1:]...)
	s.cart.UpdatedAt = time.Now()
	snapshot := s.cart.Clone()
	s.mu.Unlock()

	s.persist(snapshot)
	return snapshot
}

// Deduct removes the purchased quantities from the cart after an order
// completes. Items added while the payment was resolving were not part of
// the order and survive.
func (s *Store) Deduct(purchased []domain.CartItem) {
	s.mu.Lock()
	for _, p := range purchased {
		i := s.cart.Find(p.Product.ID)
		if i < 0 {
			continue
		}
		if s.cart.Items[i].Quantity <= p.Quantity {
			s.cart.Items = append(s.cart.Items[:i], s.cart.Items[i+1:]...)
		} else {
			s.cart.Items[i].Quantity -= p.Quantity
		}
	}
	s.cart.UpdatedAt = time.Now()
	snapshot := s.cart.Clone()
	s.mu.Unlock()

	s.persist(snapshot)
}

// Clear empties the cart unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	s.cart.Items = nil
	s.cart.UpdatedAt = time.Now()
	snapshot := s.cart.Clone()
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
		defer cancel()

		if err := s.adapter.Delete(ctx, snapshot.OwnerID); err != nil && !errors.Is(err, repository.ErrCartNotFound) {
			log.Printf("cart delete error: %v", err)
		}
		if s.cache != nil {
			if err := s.cache.Delete(ctx, snapshot.OwnerID); err != nil {
				log.Printf("cache delete error: %v", err)
			}
		}
		s.notify(ctx, snapshot)
	}()
}

// Snapshot returns a deep copy of the current cart.
func (s *Store) Snapshot() *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

func (s *Store) Items() []domain.CartItem {
	return s.Snapshot().Items
}

func (s *Store) Total() decimal.Decimal {
	return s.Snapshot().Total()
}

func (s *Store) Count() int {
	return s.Snapshot().Count()
}

// Currency is the unit all totals are quoted in.
func (s *Store) Currency() currency.Unit {
	return s.currency
}

// persist writes the snapshot through the adapter and cache off the calling
// goroutine. Failures are logged, never surfaced.
func (s *Store) persist(snapshot *domain.Cart) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
		defer cancel()

		if err := s.adapter.Save(ctx, snapshot); err != nil {
			log.Printf("cart save error: %v", err)
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, snapshot.OwnerID, snapshot); err != nil {
				log.Printf("cache set error: %v", err)
			}
		}
		s.notify(ctx, snapshot)
	}()
}

func (s *Store) notify(ctx context.Context, snapshot *domain.Cart) {
	s.notifier.CartChanged(ctx, publisher.CartChangedEvent{
		OwnerID:   snapshot.OwnerID,
		Count:     snapshot.Count(),
		Total:     snapshot.Total().StringFixed(2),
		Currency:  s.currency.String(),
		ChangedAt: time.Now(),
	})
}

// Flush blocks until pending asynchronous writes are done.
func (s *Store) Flush() {
	s.wg.Wait()
}
