package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_shop/internal/cart/cache"
	"github.com/fjod/go_shop/internal/cart/domain"
	"github.com/fjod/go_shop/internal/cart/repository"
	"github.com/fjod/go_shop/internal/publisher"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAdapter struct {
	m     sync.Mutex
	carts map[string]*domain.Cart
	err   error
}

func newMockAdapter() *mockAdapter {
	return &mockAdapter{carts: make(map[string]*domain.Cart)}
}

func (a *mockAdapter) Load(_ context.Context, ownerID string) (*domain.Cart, error) {
	a.m.Lock()
	defer a.m.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	cart, ok := a.carts[ownerID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return cart.Clone(), nil
}

func (a *mockAdapter) Save(_ context.Context, cart *domain.Cart) error {
	a.m.Lock()
	defer a.m.Unlock()
	if a.err != nil {
		return a.err
	}
	a.carts[cart.OwnerID] = cart.Clone()
	return nil
}

func (a *mockAdapter) Delete(_ context.Context, ownerID string) error {
	a.m.Lock()
	defer a.m.Unlock()
	if a.err != nil {
		return a.err
	}
	if _, ok := a.carts[ownerID]; !ok {
		return repository.ErrCartNotFound
	}
	delete(a.carts, ownerID)
	return nil
}

func (a *mockAdapter) Close() error { return nil }

func (a *mockAdapter) stored(ownerID string) *domain.Cart {
	a.m.Lock()
	defer a.m.Unlock()
	return a.carts[ownerID]
}

type mockCache struct {
	m     sync.Mutex
	carts map[string]*domain.Cart
}

func newMockCache() *mockCache {
	return &mockCache{carts: make(map[string]*domain.Cart)}
}

func (c *mockCache) Get(_ context.Context, ownerID string) (*domain.Cart, error) {
	c.m.Lock()
	defer c.m.Unlock()
	cart, ok := c.carts[ownerID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cart.Clone(), nil
}

func (c *mockCache) Set(_ context.Context, ownerID string, cart *domain.Cart) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.carts[ownerID] = cart.Clone()
	return nil
}

func (c *mockCache) Delete(_ context.Context, ownerID string) error {
	c.m.Lock()
	defer c.m.Unlock()
	delete(c.carts, ownerID)
	return nil
}

func product(id string, price int64) domain.Product {
	return domain.Product{
		ID:        id,
		Name:      "product " + id,
		UnitPrice: decimal.NewFromInt(price),
		Category:  "test",
	}
}

func testManager(t *testing.T) (*Manager, *mockAdapter) {
	t.Helper()
	adapter := newMockAdapter()
	return NewManager(adapter, newMockCache(), publisher.NoopNotifier{}), adapter
}

func TestAddItem_SameProductTwice(t *testing.T) {
	m, _ := testManager(t)
	s := m.ForOwner(context.Background(), "visitor-1")

	s.AddItem(product("p1", 10))
	cart := s.AddItem(product("p1", 10))

	require.Len(t, cart.Items, 1, "same product must never produce two entries")
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 2, s.Count())
}

func TestUpdateQuantity_ZeroRemoves(t *testing.T) {
	m, _ := testManager(t)
	s := m.ForOwner(context.Background(), "visitor-1")

	s.AddItem(product("p1", 10))
	cart := s.UpdateQuantity("p1", 0)

	assert.Empty(t, cart.Items)
	assert.True(t, s.Total().IsZero())
}

func TestUpdateQuantity_UnknownIDIsNoop(t *testing.T) {
	m, _ := testManager(t)
	s := m.ForOwner(context.Background(), "visitor-1")

	s.AddItem(product("p1", 10))
	cart := s.UpdateQuantity("missing", 5)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestTotal_TracksQuantitiesExactly(t *testing.T) {
	m, _ := testManager(t)
	s := m.ForOwner(context.Background(), "visitor-1")

	s.AddItem(product("p1", 10))
	s.UpdateQuantity("p1", 2)
	s.AddItem(product("p2", 25))

	assert.True(t, s.Total().Equal(decimal.NewFromInt(45)))
	assert.Equal(t, 3, s.Count())

	// Quantity invariant: no item below one after arbitrary mutations.
	s.UpdateQuantity("p2", -3)
	for _, item := range s.Items() {
		assert.GreaterOrEqual(t, item.Quantity, 1)
	}
	assert.True(t, s.Total().Equal(decimal.NewFromInt(20)))
}

func TestRemoveItem(t *testing.T) {
	m, _ := testManager(t)
	s := m.ForOwner(context.Background(), "visitor-1")

	s.AddItem(product("p1", 10))
	s.AddItem(product("p2", 25))
	cart := s.RemoveItem("p1")

	require.Len(t, cart.Items, 1)
	assert.Equal(t, "p2", cart.Items[0].Product.ID)
}

func TestPersistence_RestoredOnNewManager(t *testing.T) {
	adapter := newMockAdapter()
	m := NewManager(adapter, nil, publisher.NoopNotifier{})

	s := m.ForOwner(context.Background(), "visitor-1")
	s.AddItem(product("p1", 10))
	s.AddItem(product("p1", 10))
	s.Flush()

	// Simulate a reload: fresh manager over the same adapter.
	m2 := NewManager(adapter, nil, publisher.NoopNotifier{})
	restored := m2.ForOwner(context.Background(), "visitor-1")

	require.Len(t, restored.Items(), 1)
	assert.Equal(t, 2, restored.Items()[0].Quantity)
}

func TestPersistence_SaveFailureIsNonFatal(t *testing.T) {
	adapter := newMockAdapter()
	adapter.err = errors.New("disk full")
	m := NewManager(adapter, nil, publisher.NoopNotifier{})

	s := m.ForOwner(context.Background(), "visitor-1")
	cart := s.AddItem(product("p1", 10))
	s.Flush()

	// The in-memory cart is still mutated; the failure is only logged.
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, s.Count())
}

func TestClear_DeletesPersistedCart(t *testing.T) {
	m, adapter := testManager(t)
	s := m.ForOwner(context.Background(), "visitor-1")

	s.AddItem(product("p1", 10))
	s.Flush()
	require.NotNil(t, adapter.stored("visitor-1"))

	s.Clear()
	s.Flush()

	assert.Empty(t, s.Items())
	assert.Nil(t, adapter.stored("visitor-1"))
}

func TestDeduct_RemovesOnlyPurchasedQuantities(t *testing.T) {
	m, adapter := testManager(t)
	s := m.ForOwner(context.Background(), "visitor-1")

	s.AddItem(product("p1", 10))
	s.AddItem(product("p1", 10))
	s.AddItem(product("p2", 25))
	purchased := s.Snapshot().Items

	// More of p1 and a brand-new p3 land after the purchase snapshot.
	s.AddItem(product("p1", 10))
	s.AddItem(product("p3", 5))

	s.Deduct(purchased)
	s.Flush()

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].Product.ID)
	assert.Equal(t, 1, items[0].Quantity, "only the purchased quantity is removed")
	assert.Equal(t, "p3", items[1].Product.ID)

	stored := adapter.stored("visitor-1")
	require.NotNil(t, stored)
	assert.Len(t, stored.Items, 2)
}

func TestDeduct_FullPurchaseEmptiesCart(t *testing.T) {
	m, _ := testManager(t)
	s := m.ForOwner(context.Background(), "visitor-1")

	s.AddItem(product("p1", 10))
	s.AddItem(product("p2", 25))

	s.Deduct(s.Snapshot().Items)
	s.Flush()

	assert.Empty(t, s.Items())
	assert.True(t, s.Total().IsZero())
}

func TestForOwner_SameStoreReturned(t *testing.T) {
	m, _ := testManager(t)

	s1 := m.ForOwner(context.Background(), "visitor-1")
	s2 := m.ForOwner(context.Background(), "visitor-1")
	assert.Same(t, s1, s2)

	other := m.ForOwner(context.Background(), "visitor-2")
	assert.NotSame(t, s1, other)
}

func TestNotifier_ReceivesCartChanges(t *testing.T) {
	adapter := newMockAdapter()
	notifier := &recordingNotifier{}
	m := NewManager(adapter, nil, notifier)

	s := m.ForOwner(context.Background(), "visitor-1")
	s.AddItem(product("p1", 10))
	s.Flush()

	events := notifier.cartEvents()
	require.Len(t, events, 1)
	assert.Equal(t, 1, events[0].Count)
	assert.Equal(t, "10.00", events[0].Total)
	assert.Equal(t, "USD", events[0].Currency)
}

type recordingNotifier struct {
	m      sync.Mutex
	events []publisher.CartChangedEvent
}

func (n *recordingNotifier) CartChanged(_ context.Context, e publisher.CartChangedEvent) {
	n.m.Lock()
	defer n.m.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) OrderCompleted(context.Context, publisher.OrderCompletedEvent) {}

func (n *recordingNotifier) cartEvents() []publisher.CartChangedEvent {
	n.m.Lock()
	defer n.m.Unlock()
	out := make([]publisher.CartChangedEvent, len(n.events))
	copy(out, n.events)
	return out
}

func TestConcurrentMutations_ConsistentSnapshot(t *testing.T) {
	m, _ := testManager(t)
	s := m.ForOwner(context.Background(), "visitor-1")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddItem(product("p1", 10))
		}()
	}
	wg.Wait()

	require.Len(t, s.Items(), 1)
	assert.Equal(t, 10, s.Count())
	assert.True(t, s.Total().Equal(decimal.NewFromInt(100)))

	// Give async persistence a moment, then flush.
	time.Sleep(10 * time.Millisecond)
	s.Flush()
}
