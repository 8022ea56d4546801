package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/jadupage/storefront/internal/client/api"
	"github.com/jadupage/storefront/internal/client/models"
	"github.com/jadupage/storefront/internal/common"
	"github.com/jadupage/storefront/internal/logging"
)

// CartManager maintains the in-memory cart view over the remote cart.
//
// Mutations are remote-first: the new state is sent to the server and
// applied locally only after confirmation, so a failed update leaves the
// displayed quantity and the totals untouched. Mutations
// on the same cart entry serialize; a second change to a row queues
// behind the one in flight.
type CartManager struct {
	client api.Client
	log    logging.Logger

	mu      sync.RWMutex
	items   []models.CartItem
	summary models.CartSummary

	lockMu sync.Mutex
	locks  map[int64]*sync.Mutex
}

func NewCartManager(client api.Client, log logging.Logger) *CartManager {
	return &CartManager{
		client: client,
		log:    log,
		locks:  make(map[int64]*sync.Mutex),
	}
}

// lockFor returns the per-entry mutex, creating it on first use.
func (m *CartManager) lockFor(id int64) *sync.Mutex {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// Load fetches the remote cart and replaces the local collection. Every
// item arrives checked.
func (m *CartManager) Load(ctx context.Context) error {
	entries, err := m.client.Cart(ctx)
	if err != nil {
		return fmt.Errorf("loading cart: %w", err)
	}

	items := make([]models.CartItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, models.CartItemFromEntry(e))
	}

	m.mu.Lock()
	m.items = items
	m.recompute()
	m.mu.Unlock()

	m.log.Debug(ctx, "cart loaded", "items", len(items))
	return nil
}

// Items returns a copy of the current cart view.
func (m *CartManager) Items() []models.CartItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.CartItem, len(m.items))
	copy(out, m.items)
	return out
}

// Summary returns the aggregates over the checked subset.
func (m *CartManager) Summary() models.CartSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.summary
}

// SetChecked marks one entry for inclusion in the next checkout. Local
// state only; no remote call.
func (m *CartManager) SetChecked(id int64, checked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Checked = checked
			m.recompute()
			return nil
		}
	}
	return fmt.Errorf("cart entry %d: %w", id, common.ErrNotFound)
}

// SetAllChecked marks every entry at once.
func (m *CartManager) SetAllChecked(checked bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		m.items[i].Checked = checked
	}
	m.recompute()
}

// ChangeQuantity applies a relative quantity change.
func (m *CartManager) ChangeQuantity(ctx context.Context, id int64, delta int) error {
	l := m.lockFor(id)
	l.Lock()
	defer l.Unlock()

	current, err := m.quantity(id)
	if err != nil {
		return err
	}
	return m.updateQuantity(ctx, id, current+delta)
}

// SetQuantity applies an absolute quantity.
func (m *CartManager) SetQuantity(ctx context.Context, id int64, value int) error {
	l := m.lockFor(id)
	l.Lock()
	defer l.Unlock()

	if _, err := m.quantity(id); err != nil {
		return err
	}
	return m.updateQuantity(ctx, id, value)
}

func (m *CartManager) quantity(id int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.items {
		if m.items[i].ID == id {
			return m.items[i].Quantity, nil
		}
	}
	return 0, fmt.Errorf("cart entry %d: %w", id, common.ErrNotFound)
}

// updateQuantity validates bounds, confirms remotely, then applies
// locally. Out-of-range values are rejected before any request is made.
func (m *CartManager) updateQuantity(ctx context.Context, id int64, value int) error {
	if value < models.MinQuantity || value > models.MaxQuantity {
		return models.ErrQuantityOutOfRange
	}

	if err := m.client.UpdateCartQuantity(ctx, id, value); err != nil {
		return fmt.Errorf("updating quantity: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Quantity = value
			break
		}
	}
	m.recompute()
	return nil
}

// Remove deletes one entry remotely, then drops it locally.
func (m *CartManager) Remove(ctx context.Context, id int64) error {
	l := m.lockFor(id)
	l.Lock()
	defer l.Unlock()

	if _, err := m.quantity(id); err != nil {
		return err
	}
	if err := m.client.RemoveCartItem(ctx, id); err != nil {
		return fmt.Errorf("removing cart item: %w", err)
	}

	m.mu.Lock()
	m.drop(id)
	m.recompute()
	m.mu.Unlock()
	return nil
}

// RemoveChecked deletes the checked subset sequentially and stops at the
// first failure: already-deleted entries stay removed, the rest stay
// untouched, and the caller gets ErrPartialMutation to reconcile with a
// reload. Nothing is rolled back.
func (m *CartManager) RemoveChecked(ctx context.Context) error {
	m.mu.RLock()
	ids := make([]int64, 0, len(m.items))
	for _, it := range m.items {
		if it.Checked {
			ids = append(ids, it.ID)
		}
	}
	m.mu.RUnlock()

	for i, id := range ids {
		if err := m.client.RemoveCartItem(ctx, id); err != nil {
			m.log.Warn(ctx, "bulk delete stopped", "deleted", i, "remaining", len(ids)-i, "err", err)
			if i == 0 {
				return fmt.Errorf("removing checked items: %w", err)
			}
			return fmt.Errorf("removing checked items (%d of %d deleted): %w", i, len(ids), common.ErrPartialMutation)
		}
		m.mu.Lock()
		m.drop(id)
		m.recompute()
		m.mu.Unlock()
	}
	return nil
}

// drop removes one entry from the local collection. Caller holds mu.
func (m *CartManager) drop(id int64) {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return
		}
	}
}

// recompute rebuilds the checked-subset summary. Caller holds mu.
// Shipping stays zero at cart level; the per-item fee only shows on the
// option label.
func (m *CartManager) recompute() {
	s := models.CartSummary{}
	for _, it := range m.items {
		if !it.Checked {
			continue
		}
		s.Count += it.Quantity
		s.Subtotal += it.UnitPrice * int64(it.Quantity)
	}
	s.Total = s.Subtotal + s.ShippingFee
	m.summary = s
}
