package cart

import (
	"errors"
	"sync"

	"github.com/ray-remotestate/posgate/models"
)

var (
	ErrEmpty          = errors.New("cart is empty")
	ErrNoTable        = errors.New("no table selected")
	ErrUnknownProduct = errors.New("product not in menu")
)

// Cart is the draft order for a single table. Totals are always derived from lines.
type Cart struct {
	mu      sync.Mutex
	tableID string
	lines   []models.CartLine
}

func New() *Cart {
	return &Cart{}
}

// Start selects the table to order for. Choosing a different table drops the
// previous draft; re-selecting the current table keeps it.
func (c *Cart) Start(tableID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tableID != tableID {
		c.lines = nil
	}
	c.tableID = tableID
}

func (c *Cart) TableID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tableID
}

// AddItem increments an existing line or appends one with quantity 1, snapshotting name and price.
func (c *Cart) AddItem(p models.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, models.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  1,
	})
}

// RemoveItem drops the whole line regardless of quantity.
func (c *Cart) RemoveItem(productID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return true
		}
	}
	return false
}

// Decrement lowers a line by one; a line reaching zero is removed.
func (c *Cart) Decrement(productID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ProductID != productID {
			continue
		}
		if c.lines[i].Quantity <= 1 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		} else {
			c.lines[i].Quantity--
		}
		return true
	}
	return false
}

// Clear empties the draft and releases the table selection.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.tableID = ""
}

// Lines returns a copy in insertion order.
func (c *Cart) Lines() []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, l := range c.lines {
		total += l.Price * float64(l.Quantity)
	}
	return total
}

func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Items is the createOrder payload for the current draft.
func (c *Cart) Items() []models.OrderInputItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]models.OrderInputItem, 0, len(c.lines))
	for _, l := range c.lines {
		items = append(items, models.OrderInputItem{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return items
}

// Ready reports why the draft cannot be submitted, if it cannot.
func (c *Cart) Ready() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tableID == "" {
		return ErrNoTable
	}
	if len(c.lines) == 0 {
		return ErrEmpty
	}
	return nil
}

// Snapshot is the cart as the menu screen renders it.
type Snapshot struct {
	TableID   string            `json:"tableId"`
	Lines     []models.CartLine `json:"lines"`
	Total     float64           `json:"total"`
	ItemCount int               `json:"itemCount"`
}

// Snapshot reads the table and lines under one lock so a concurrent Start or
// Clear cannot pair one table with another table's lines.
func (c *Cart) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := make([]models.CartLine, len(c.lines))
	copy(lines, c.lines)
	s := Snapshot{TableID: c.tableID, Lines: lines}
	for _, l := range lines {
		s.Total += l.Price * float64(l.Quantity)
		s.ItemCount += l.Quantity
	}
	return s
}

// Registry keeps one cart per waiter, above any screen's lifetime.
type Registry struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewRegistry() *Registry {
	return &Registry{carts: make(map[string]*Cart)}
}

func (r *Registry) For(userID string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		c = New()
		r.carts[userID] = c
	}
	return c
}

// Drop forgets a user's cart, used on logout.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	delete(r.carts, userID)
	r.mu.Unlock()
}
