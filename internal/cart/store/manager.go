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
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/currency"
)

// Manager hands out one Store per visitor, restoring the persisted cart on
// first access. Restores are collapsed with singleflight so concurrent
// requests from the same visitor trigger a single load.
type Manager struct {
	mu     sync.Mutex
	stores map[string]*Store
	sfg    singleflight.Group

	adapter     repository.Adapter
	cache       cache.CartCache
	notifier    publisher.Notifier
	currency    currency.Unit
	saveTimeout time.Duration
}

func NewManager(adapter repository.Adapter, cartCache cache.CartCache, notifier publisher.Notifier) *Manager {
	if notifier == nil {
		notifier = publisher.NoopNotifier{}
	}
	return &Manager{
		stores:      make(map[string]*Store),
		adapter:     adapter,
		cache:       cartCache,
		notifier:    notifier,
		currency:    currency.USD,
		saveTimeout: 3 * time.Second,
	}
}

// ForOwner returns the store for ownerID, restoring the persisted cart the
// first time the owner shows up.
func (m *Manager) ForOwner(ctx context.Context, ownerID string) *Store {
	m.mu.Lock()
	if s, ok := m.stores[ownerID]; ok {
		m.mu.Unlock()
		return s
	}
	m.mu.Unlock()

	v, _, _ := m.sfg.Do(ownerID, func() (interface{}, error) {
		cart := m.restore(ctx, ownerID)
		s := newStore(cart, m.adapter, m.cache, m.notifier, m.currency, m.saveTimeout)

		m.mu.Lock()
		m.stores[ownerID] = s
		m.mu.Unlock()
		return s, nil
	})

	return v.(*Store)
}

// restore reads the cart back from cache, then the adapter. Load failures
// are non-fatal: the visitor starts with an empty cart and the error is
// logged.
func (m *Manager) restore(ctx context.Context, ownerID string) *domain.Cart {
	if m.cache != nil {
		cart, err := m.cache.Get(ctx, ownerID)
		if err == nil {
			return cart
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err)
		}
	}

	cart, err := m.adapter.Load(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, repository.ErrCartNotFound) {
			log.Printf("cart load error: %v", err)
		}
		now := time.Now()
		return &domain.Cart{OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}
	}

	if m.cache != nil {
		go func() {
			cacheCtx, cancel := context.WithTimeout(context.Background(), m.saveTimeout)
			defer cancel()
			if errSet := m.cache.Set(cacheCtx, ownerID, cart); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()
	}

	return cart
}

// Close flushes pending writes on every store and closes the adapter.
func (m *Manager) Close() error {
	m.mu.Lock()
	stores := make([]*Store, 0, len(m.stores))
	for _, s := range m.stores {
		stores = append(stores, s)
	}
	m.mu.Unlock()

	for _, s := range stores {
		s.Flush()
	}
	return m.adapter.Close()
}
