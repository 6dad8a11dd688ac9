package service

import (
	"context"
	"sync"

	cartdomain "github.com/fjod/go_shop/internal/cart/domain"
	"github.com/fjod/go_shop/internal/cart/repository"
	"github.com/fjod/go_shop/internal/checkout/gateway"
	"github.com/fjod/go_shop/internal/orders"
	"github.com/fjod/go_shop/internal/publisher"
)

// memAdapter implements repository.Adapter in memory for controller tests.
type memAdapter struct {
	m     sync.Mutex
	carts map[string]*cartdomain.Cart
}

func newMemAdapter() *memAdapter {
	return &memAdapter{carts: make(map[string]*cartdomain.Cart)}
}

func (a *memAdapter) Load(_ context.Context, ownerID string) (*cartdomain.Cart, error) {
	a.m.Lock()
	defer a.m.Unlock()
	cart, ok := a.carts[ownerID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return cart.Clone(), nil
}

func (a *memAdapter) Save(_ context.Context, cart *cartdomain.Cart) error {
	a.m.Lock()
	defer a.m.Unlock()
	a.carts[cart.OwnerID] = cart.Clone()
	return nil
}

func (a *memAdapter) Delete(_ context.Context, ownerID string) error {
	a.m.Lock()
	defer a.m.Unlock()
	delete(a.carts, ownerID)
	return nil
}

func (a *memAdapter) Close() error { return nil }

// mockGateway counts submissions and optionally blocks until released.
type mockGateway struct {
	m       sync.Mutex
	calls   int
	charges []gateway.Charge
	err     error
	release chan struct{}
}

func (g *mockGateway) Submit(ctx context.Context, charge gateway.Charge) error {
	g.m.Lock()
	g.calls++
	g.charges = append(g.charges, charge)
	release := g.release
	err := g.err
	g.m.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (g *mockGateway) callCount() int {
	g.m.Lock()
	defer g.m.Unlock()
	return g.calls
}

func (g *mockGateway) lastCharge() gateway.Charge {
	g.m.Lock()
	defer g.m.Unlock()
	return g.charges[len(g.charges)-1]
}

// mockOrders records created orders.
type mockOrders struct {
	m      sync.Mutex
	orders []*orders.Order
	err    error
}

func (r *mockOrders) CreateOrder(_ context.Context, order *orders.Order) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.err != nil {
		return r.err
	}
	r.orders = append(r.orders, order)
	return nil
}

func (r *mockOrders) GetOrderByID(_ context.Context, id string) (*orders.Order, error) {
	r.m.Lock()
	defer r.m.Unlock()
	for _, o := range r.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, orders.ErrOrderNotFound
}

func (r *mockOrders) Close() error { return nil }

func (r *mockOrders) created() []*orders.Order {
	r.m.Lock()
	defer r.m.Unlock()
	out := make([]*orders.Order, len(r.orders))
	copy(out, r.orders)
	return out
}

// mockNotifier records outward events.
type mockNotifier struct {
	m         sync.Mutex
	completed []publisher.OrderCompletedEvent
}

func (n *mockNotifier) CartChanged(context.Context, publisher.CartChangedEvent) {}

func (n *mockNotifier) OrderCompleted(_ context.Context, e publisher.OrderCompletedEvent) {
	n.m.Lock()
	defer n.m.Unlock()
	n.completed = append(n.completed, e)
}

func (n *mockNotifier) completedEvents() []publisher.OrderCompletedEvent {
	n.m.Lock()
	defer n.m.Unlock()
	out := make([]publisher.OrderCompletedEvent, len(n.completed))
	copy(out, n.completed)
	return out
}
