package cart

import (
	"sync"

	"cart-service/internal/models"
)

// Cart holds the line items for one shopping session. All mutations run to
// completion under the lock, so a consumer never observes a half-applied
// update. Carts live in process memory only; they are not persisted.
type Cart struct {
	mu    sync.Mutex
	items []models.LineItem
}

// New creates an empty cart
func New() *Cart {
	return &Cart{}
}

// AddItem adds a product to the cart. If a line item with the same product ID
// already exists its quantity is incremented by one and the original entry
// keeps its position and price; otherwise a new line item is appended with
// quantity 1. Returns the resulting line item and whether it already existed.
func (c *Cart) AddItem(p *models.Product) (models.LineItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID == p.ID {
			c.items[i].Quantity++
			return c.items[i], true
		}
	}

	item := models.LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Image:     p.Image,
		Category:  p.Category,
		Quantity:  1,
	}
	c.items = append(c.items, item)
	return item, false
}

// RemoveItem removes the line item with the given product ID. Removing an
// absent product is a no-op, not an error.
func (c *Cart) RemoveItem(productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(productID)
}

func (c *Cart) removeLocked(productID int64) {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// UpdateQuantity sets the quantity of a line item to an absolute value.
// A quantity <= 0 removes the item entirely. Unknown product IDs are a no-op.
func (c *Cart) UpdateQuantity(productID int64, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		c.removeLocked(productID)
		return
	}

	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items[i].Quantity = quantity
			return
		}
	}
}

// Clear empties the cart. Called once per completed order, after the payment
// collaborator reports success. Safe to call on an already empty cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Items returns a snapshot of the line items in insertion order.
func (c *Cart) Items() []models.LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make([]models.LineItem, len(c.items))
	copy(snapshot, c.items)
	return snapshot
}

// ItemCount returns the sum of quantities across all line items.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for i := range c.items {
		count += c.items[i].Quantity
	}
	return count
}

// Subtotal returns the sum of unit price times quantity across all line items.
func (c *Cart) Subtotal() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var subtotal int64
	for i := range c.items {
		subtotal += c.items[i].UnitPrice * int64(c.items[i].Quantity)
	}
	return subtotal
}

// IsEmpty reports whether the cart has no line items.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items) == 0
}
