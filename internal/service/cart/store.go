package cart

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"sync"

	"github.com/shopspring/decimal"
	"restaurant-frontend/internal/domain"
	"restaurant-frontend/internal/repository/slot"
)

type slotRepo interface {
	Get(ctx context.Context, profileID, slot string) (string, error)
	Put(ctx context.Context, profileID, slot, value string) error
}

// Store is the persisted cart of one browser profile. Every mutation rewrites
// the whole line list to the profile's cart slot. Operations never fail: a
// write that cannot be persisted is logged and the in-memory state is kept.
type Store struct {
	mu        sync.Mutex
	repo      slotRepo
	profileID string
	logger    *log.Logger
	lines     []domain.CartLine
}

// Summary is the cart total as shown in the drawer and on checkout.
type Summary struct {
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

// Load builds the Store for profileID from its cart slot. An absent or
// corrupt slot yields an empty cart.
func Load(ctx context.Context, repo slotRepo, profileID string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Store{repo: repo, profileID: profileID, logger: logger}
	s.lines = s.read(ctx)
	return s
}

// Reload replaces the in-memory lines with whatever the slot currently holds.
func (s *Store) Reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = s.read(ctx)
}

// AddItem increments the quantity of an existing line or appends a new line
// with quantity 1.
func (s *Store) AddItem(ctx context.Context, item domain.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexOf(string(item.ID)); idx >= 0 {
		s.lines[idx].Quantity++
	} else {
		s.lines = append(s.lines, domain.LineFromMenuItem(item))
	}
	s.persist(ctx)
}

// RemoveItem deletes the line for itemID if there is one.
func (s *Store) RemoveItem(ctx context.Context, itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(itemID)
	if idx < 0 {
		return
	}
	s.lines = append(s.lines[:idx:idx], s.lines[idx+1:]...)
	s.persist(ctx)
}

// SetQuantity sets the quantity of an existing line; quantity < 1 removes it.
// Unknown ids are ignored.
func (s *Store) SetQuantity(ctx context.Context, itemID string, quantity int) {
	if quantity < 1 {
		s.RemoveItem(ctx, itemID)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(itemID)
	if idx < 0 {
		return
	}
	s.lines[idx].Quantity = quantity
	s.persist(ctx)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.persist(ctx)
}

// RemoveOrdered subtracts the ordered quantities from the cart. Lines that
// reach zero are dropped; anything added after the order was taken stays.
func (s *Store) RemoveOrdered(ctx context.Context, ordered map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.lines[:0:0]
	for _, l := range s.lines {
		l.Quantity -= ordered[l.ItemID]
		if l.Quantity > 0 {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		kept = nil
	}
	s.lines = kept
	s.persist(ctx)
}

// OnSessionEnded is the session binding's teardown hook.
func (s *Store) OnSessionEnded(ctx context.Context) {
	s.Clear(ctx)
}

// Lines returns a copy of the current lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// TotalItemCount is the sum of all line quantities.
func (s *Store) TotalItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return itemCount(s.lines)
}

// TotalPrice is the pre-tax subtotal.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return subtotal(s.lines)
}

// Summary applies taxRate to the subtotal. Tax is rounded to cents.
func (s *Store) Summary(taxRate decimal.Decimal) Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := subtotal(s.lines)
	tax := sub.Mul(taxRate).Round(2)
	return Summary{ItemCount: itemCount(s.lines), Subtotal: sub, Tax: tax, Total: sub.Add(tax)}
}

// QuantityMap is the itemId→quantity map sent with an order.
func (s *Store) QuantityMap() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.lines))
	for _, l := range s.lines {
		out[l.ItemID] = l.Quantity
	}
	return out
}

func (s *Store) indexOf(itemID string) int {
	for i, l := range s.lines {
		if l.ItemID == itemID {
			return i
		}
	}
	return -1
}

func (s *Store) persist(ctx context.Context) {
	lines := s.lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		s.logger.Printf("cart: encode profile=%s error=%v", s.profileID, err)
		return
	}
	if err := s.repo.Put(ctx, s.profileID, slot.Cart, string(data)); err != nil {
		s.logger.Printf("cart: persist profile=%s error=%v", s.profileID, err)
	}
}

func (s *Store) read(ctx context.Context) []domain.CartLine {
	raw, err := s.repo.Get(ctx, s.profileID, slot.Cart)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Printf("cart: load profile=%s error=%v", s.profileID, err)
		}
		return nil
	}
	var lines []domain.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		s.logger.Printf("cart: discard corrupt slot profile=%s error=%v", s.profileID, err)
		return nil
	}
	return normalize(lines)
}

// normalize enforces the line invariants on data read back from storage:
// non-empty id, quantity of at least 1, one line per id.
func normalize(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(lines))
	seen := make(map[string]int, len(lines))
	for _, l := range lines {
		if l.ItemID == "" || l.Quantity < 1 || l.UnitPrice.IsNegative() {
			continue
		}
		if idx, ok := seen[l.ItemID]; ok {
			out[idx].Quantity += l.Quantity
			continue
		}
		seen[l.ItemID] = len(out)
		out = append(out, l)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func itemCount(lines []domain.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func subtotal(lines []domain.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total
}
