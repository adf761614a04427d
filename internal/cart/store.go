package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// State is a point-in-time copy of a cart.
type State struct {
	Items       []LineItem      `json:"items"`
	Total       decimal.Decimal `json:"total"`
	IsOpen      bool            `json:"is_open"`
	CatalogHash string          `json:"catalog_hash,omitempty"`
}

// Count returns the number of units across all lines.
func (s State) Count() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// Empty reports whether the cart holds no lines.
func (s State) Empty() bool {
	return len(s.Items) == 0
}

// EventKind names the mutation that produced an Event.
type EventKind string

const (
	EventItemAdded       EventKind = "item_added"
	EventItemRemoved     EventKind = "item_removed"
	EventQuantityUpdated EventKind = "quantity_updated"
	EventToggled         EventKind = "toggled"
	EventClosed          EventKind = "closed"
	EventCleared         EventKind = "cleared"
	EventInvalidated     EventKind = "invalidated"
	EventHashUpdated     EventKind = "hash_updated"
)

// Event is delivered to observers after every mutation.
type Event struct {
	Kind   EventKind
	LineID string
	State  State
}

// Observer reacts to cart mutations. Observers may read the store but must
// not mutate it. Events are delivered one at a time in mutation order, so a
// slow observer delays the next writer's notification but never readers.
type Observer interface {
	OnCartEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnCartEvent(e Event) { f(e) }

// Store holds one session's cart. Writes are serialized; the total is
// recomputed from the line items after every mutation.
type Store struct {
	mu          sync.RWMutex
	items       []LineItem
	total       decimal.Decimal
	isOpen      bool
	catalogHash string

	// seq numbers commits under mu; delivered trails it under notifyMu.
	seq       uint64
	notifyMu  sync.Mutex
	turn      *sync.Cond
	delivered uint64
	observers []Observer
}

// NewStore returns an empty, closed cart.
func NewStore() *Store {
	s := &Store{total: decimal.Zero}
	s.turn = sync.NewCond(&s.notifyMu)
	return s
}

// Restore builds a store from a saved snapshot. The saved total is ignored
// and recomputed from the items; lines with quantity below one are dropped.
func Restore(snapshot State) *Store {
	s := NewStore()
	for _, it := range snapshot.Items {
		if it.Quantity <= 0 || it.ID == "" {
			continue
		}
		s.items = append(s.items, it.clone())
	}
	s.isOpen = snapshot.IsOpen
	s.catalogHash = snapshot.CatalogHash
	s.recalculate()
	return s
}

// Subscribe registers an observer for subsequent mutations.
func (s *Store) Subscribe(o Observer) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.observers = append(s.observers, o)
}

// AddItem merges the item into an existing line with the same id or appends
// it. A quantity below one counts as one.
func (s *Store) AddItem(item LineItem) {
	qty := item.Quantity
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		line := item.clone()
		line.Price = NormalizePrice(line.Price)
		line.Quantity = qty
		s.items = append(s.items, line)
	}
	s.recalculate()
	s.commit(EventItemAdded, item.ID)
}

// RemoveItem drops the line with the given id. Unknown ids are ignored.
func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	s.items = without(s.items, id)
	s.recalculate()
	s.commit(EventItemRemoved, id)
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line.
// Unknown ids are ignored.
func (s *Store) UpdateQuantity(id string, quantity int) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		if quantity <= 0 {
			s.items = without(s.items, id)
		} else {
			s.items[i].Quantity = quantity
		}
		break
	}
	s.recalculate()
	s.commit(EventQuantityUpdated, id)
}

// ToggleOpen flips the overlay visibility flag.
func (s *Store) ToggleOpen() {
	s.mu.Lock()
	s.isOpen = !s.isOpen
	s.commit(EventToggled, "")
}

// Close hides the overlay.
func (s *Store) Close() {
	s.mu.Lock()
	s.isOpen = false
	s.commit(EventClosed, "")
}

// Clear resets the cart to empty and closed. The catalog hash is kept.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.isOpen = false
	s.recalculate()
	s.commit(EventCleared, "")
}

// ValidateCatalogHash compares the cart against the current catalog version.
// An empty cart just adopts the hash. A non-empty cart built against another
// version is cleared. It reports whether the cart was cleared.
func (s *Store) ValidateCatalogHash(current string) bool {
	s.mu.Lock()
	if len(s.items) == 0 {
		s.catalogHash = current
		s.commit(EventHashUpdated, "")
		return false
	}
	if s.catalogHash == current {
		s.mu.Unlock()
		return false
	}
	s.items = nil
	s.catalogHash = current
	s.recalculate()
	s.commit(EventInvalidated, "")
	return true
}

// State returns a deep copy of the cart.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Total returns the current total.
func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Count returns the number of units in the cart.
func (s *Store) Count() int {
	return s.State().Count()
}

// recalculate must be called with mu held.
func (s *Store) recalculate() {
	s.total = calculateTotal(s.items)
}

// commit takes the snapshot and a sequence number under the write lock,
// releases it, then waits for its turn to notify. Writers waiting their turn
// hold no store lock, so readers and observers can still call State.
func (s *Store) commit(kind EventKind, lineID string) {
	ev := Event{Kind: kind, LineID: lineID, State: s.snapshot()}
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	for s.delivered != seq-1 {
		s.turn.Wait()
	}
	for _, o := range s.observers {
		o.OnCartEvent(ev)
	}
	s.delivered = seq
	s.turn.Broadcast()
}

func (s *Store) snapshot() State {
	items := make([]LineItem, len(s.items))
	for i, it := range s.items {
		items[i] = it.clone()
	}
	return State{
		Items:       items,
		Total:       s.total,
		IsOpen:      s.isOpen,
		CatalogHash: s.catalogHash,
	}
}

func calculateTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func without(items []LineItem, id string) []LineItem {
	out := items[:0]
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}
