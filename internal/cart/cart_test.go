package cart

import (
	"sync"
	"testing"

	"cart-service/internal/models"
	"cart-service/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id int64, name string, price int64) *models.Product {
	return &models.Product{ID: id, Name: name, Price: price}
}

func TestAddDistinctProducts(t *testing.T) {
	c := New()

	c.AddItem(product(1, "Embroidered Kurti Set", 2999))
	c.AddItem(product(2, "Silk Co-ord Set", 4599))
	c.AddItem(product(3, "Handcrafted Earrings", 899))

	assert.Equal(t, 3, c.ItemCount())
	assert.Len(t, c.Items(), 3)
}

func TestAddSameProductTwice(t *testing.T) {
	c := New()

	first := product(7, "Banarasi Saree", 8999)
	c.AddItem(first)

	// The second add carries a different price; the original entry wins.
	line, existed := c.AddItem(product(7, "Banarasi Saree", 12999))

	assert.True(t, existed)
	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, int64(8999), items[0].UnitPrice)
	assert.Equal(t, 2, line.Quantity)
}

func TestAddPreservesInsertionOrder(t *testing.T) {
	c := New()

	c.AddItem(product(10, "a", 100))
	c.AddItem(product(20, "b", 200))
	c.AddItem(product(30, "c", 300))
	c.AddItem(product(10, "a", 100))
	c.UpdateQuantity(20, 5)

	items := c.Items()
	require.Len(t, items, 3)
	assert.Equal(t, int64(10), items[0].ProductID)
	assert.Equal(t, int64(20), items[1].ProductID)
	assert.Equal(t, int64(30), items[2].ProductID)
}

func TestUpdateQuantityAbsolute(t *testing.T) {
	c := New()
	c.AddItem(product(1, "x", 500))
	c.AddItem(product(1, "x", 500))

	c.UpdateQuantity(1, 7)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
}

func TestUpdateQuantityZeroOrNegativeRemoves(t *testing.T) {
	for _, qty := range []int{0, -1} {
		c := New()
		c.AddItem(product(1, "x", 500))

		c.UpdateQuantity(1, qty)

		assert.Empty(t, c.Items())
		assert.Equal(t, 0, c.ItemCount())
	}
}

func TestUpdateQuantityUnknownProductIsNoop(t *testing.T) {
	c := New()
	c.AddItem(product(1, "x", 500))

	c.UpdateQuantity(99, 3)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestRemoveUnknownProductIsNoop(t *testing.T) {
	c := New()
	c.AddItem(product(1, "x", 500))
	c.AddItem(product(2, "y", 700))
	before := c.Items()

	c.RemoveItem(42)

	assert.Equal(t, before, c.Items())
}

func TestClearIsIdempotent(t *testing.T) {
	c := New()
	c.AddItem(product(1, "x", 500))

	c.Clear()
	assert.Empty(t, c.Items())
	assert.True(t, c.IsEmpty())

	c.Clear()
	assert.Empty(t, c.Items())
	assert.Equal(t, 0, c.ItemCount())
	assert.Equal(t, int64(0), c.Subtotal())
}

func TestSubtotalAndCount(t *testing.T) {
	c := New()
	c.AddItem(product(1, "lehenga", 14999))
	c.AddItem(product(2, "dupatta", 999))
	c.AddItem(product(2, "dupatta", 999))

	assert.Equal(t, int64(14999+2*999), c.Subtotal())
	assert.Equal(t, 3, c.ItemCount())
}

func TestEmptyCartAggregates(t *testing.T) {
	c := New()

	assert.Equal(t, 0, c.ItemCount())
	assert.Equal(t, int64(0), c.Subtotal())
	assert.True(t, c.IsEmpty())
}

func TestRegistryReturnsSameSession(t *testing.T) {
	r := NewRegistry()

	a := r.Get("sess-1")
	a.Cart.AddItem(product(1, "x", 100))

	b := r.Get("sess-1")
	assert.Same(t, a, b)
	assert.Equal(t, 1, b.Cart.ItemCount())

	other := r.Get("sess-2")
	assert.True(t, other.Cart.IsEmpty())
}

func TestRegistryLookupDoesNotCreate(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Lookup("missing")
	assert.False(t, ok)

	r.Get("present")
	_, ok = r.Lookup("present")
	assert.True(t, ok)
}

func TestSessionPromoLifecycle(t *testing.T) {
	r := NewRegistry()
	table := pricing.DefaultPromoTable()
	sess := r.Get("sess-1")

	active, newlyApplied := sess.ApplyPromo(table, "SAVE50")
	assert.False(t, active)
	assert.False(t, newlyApplied)
	assert.False(t, sess.Promo().Applied)

	active, newlyApplied = sess.ApplyPromo(table, "welcome10")
	assert.True(t, active)
	assert.True(t, newlyApplied)
	assert.True(t, sess.Promo().Applied)
	assert.Equal(t, "WELCOME10", sess.Promo().Code)

	// Re-applying while active is a no-op, not a second activation.
	active, newlyApplied = sess.ApplyPromo(table, "WELCOME10")
	assert.True(t, active)
	assert.False(t, newlyApplied)

	sess.ResetPromo()
	assert.False(t, sess.Promo().Applied)
}

func TestSessionPromoConcurrentApplySingleActivation(t *testing.T) {
	r := NewRegistry()
	table := pricing.DefaultPromoTable()
	sess := r.Get("sess-1")

	const goroutines = 16
	activations := make(chan bool, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, newlyApplied := sess.ApplyPromo(table, "WELCOME10")
			activations <- newlyApplied
		}()
	}
	wg.Wait()
	close(activations)

	activated := 0
	for newlyApplied := range activations {
		if newlyApplied {
			activated++
		}
	}
	assert.Equal(t, 1, activated)
	assert.True(t, sess.Promo().Applied)
}
