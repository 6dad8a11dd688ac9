package service

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_shop/internal/cart/store"
	"github.com/fjod/go_shop/internal/orders"
	"github.com/fjod/go_shop/internal/publisher"
)

// Completed sessions stay queryable long enough for the client to read the
// final view, then are evicted and torn down.
const completedRetention = 5 * time.Minute

// Registry tracks live checkout sessions. One visitor may run one session
// at a time; a completed session is terminal and a new one must be started
// for another order.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Controller

	carts           *store.Manager
	gateway         PaymentGateway
	orders          orders.Repository
	notifier        publisher.Notifier
	completionDelay time.Duration
	retention       time.Duration
}

func NewRegistry(carts *store.Manager, pg PaymentGateway, repo orders.Repository,
	notifier publisher.Notifier, completionDelay time.Duration) *Registry {
	if notifier == nil {
		notifier = publisher.NoopNotifier{}
	}
	return &Registry{
		sessions:        make(map[string]*Controller),
		carts:           carts,
		gateway:         pg,
		orders:          repo,
		notifier:        notifier,
		completionDelay: completionDelay,
		retention:       completedRetention,
	}
}

// Create starts a fresh session for ownerID in ShippingEntry.
func (r *Registry) Create(ctx context.Context, ownerID string) *Controller {
	cart := r.carts.ForOwner(ctx, ownerID)
	c := NewController(ownerID, cart, r.gateway, r.orders, r.notifier, r.completionDelay)
	c.onTerminal = func() { r.scheduleEvict(c) }

	r.mu.Lock()
	r.sessions[c.ID()] = c
	r.mu.Unlock()
	return c
}

// scheduleEvict removes a completed session after the retention window and
// tears it down.
func (r *Registry) scheduleEvict(c *Controller) {
	time.AfterFunc(r.retention, func() {
		r.mu.Lock()
		cur, ok := r.sessions[c.ID()]
		if ok && cur == c {
			delete(r.sessions, c.ID())
		}
		r.mu.Unlock()
		c.Close()
	})
}

func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return c, nil
}

// Abandon exits the session and removes it from the registry.
func (r *Registry) Abandon(id string) error {
	r.mu.Lock()
	c, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	if err := c.Abandon(); err != nil {
		// Already terminal; tearing down is still fine.
		c.Close()
	}
	return nil
}

// Close tears down every live session.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, c := range r.sessions {
		c.Close()
		delete(r.sessions, id)
	}
}
