package pricing

import (
	"testing"

	"cart-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCartShippingThreshold(t *testing.T) {
	rules := DefaultRules()

	// Empty cart still pays the cart-page fee: 0 < 999.
	assert.Equal(t, int64(99), rules.CartShipping(0))
	assert.Equal(t, int64(99), rules.CartShipping(998))

	// Threshold is inclusive.
	assert.Equal(t, int64(0), rules.CartShipping(999))
	assert.Equal(t, int64(0), rules.CartShipping(16997))
}

func TestCheckoutShipping(t *testing.T) {
	rules := DefaultRules()

	// Express always costs the flat fee, even above the threshold.
	assert.Equal(t, int64(199), rules.CheckoutShipping(50, models.DeliveryExpress))
	assert.Equal(t, int64(199), rules.CheckoutShipping(20000, models.DeliveryExpress))

	// Standard is free on the checkout page.
	assert.Equal(t, int64(0), rules.CheckoutShipping(50, models.DeliveryStandard))
	assert.Equal(t, int64(0), rules.CheckoutShipping(20000, models.DeliveryStandard))
}

func TestTotalExamples(t *testing.T) {
	rules := DefaultRules()

	// Cart with [{price:14999, qty:1}, {price:999, qty:2}].
	subtotal := int64(14999 + 2*999)
	assert.Equal(t, int64(16997), subtotal)
	assert.Equal(t, int64(0), rules.CartShipping(subtotal))
	assert.Equal(t, int64(16997), Total(subtotal, 0, rules.CartShipping(subtotal)))

	// Empty cart: subtotal 0, cart-page shipping 99, total 99.
	assert.Equal(t, int64(99), Total(0, 0, rules.CartShipping(0)))
}

func TestPromoLookupCaseInsensitive(t *testing.T) {
	table := DefaultPromoTable()

	for _, code := range []string{"WELCOME10", "welcome10", "Welcome10", "  welcome10 "} {
		percent, ok := table.Lookup(code)
		assert.True(t, ok, code)
		assert.Equal(t, 10, percent)
	}

	_, ok := table.Lookup("FESTIVE20")
	assert.False(t, ok)
}

func TestPromoApplyIdempotent(t *testing.T) {
	table := DefaultPromoTable()
	var state PromoState

	assert.False(t, table.Apply(&state, "bogus"))
	assert.False(t, state.Applied)

	assert.True(t, table.Apply(&state, "welcome10"))
	assert.True(t, state.Applied)
	assert.Equal(t, "WELCOME10", state.Code)
	assert.Equal(t, 10, state.Percent)

	// Second apply changes nothing.
	assert.True(t, table.Apply(&state, "WELCOME10"))
	assert.Equal(t, 10, state.Percent)
}

func TestPromoDiscountRounding(t *testing.T) {
	state := PromoState{Code: "WELCOME10", Percent: 10, Applied: true}

	// 10% of 1000 is exactly 100.
	assert.Equal(t, int64(100), state.Discount(1000))

	// 10% of 995 is 99.5, rounded to 100; 10% of 994 is 99.4, rounded to 99.
	assert.Equal(t, int64(100), state.Discount(995))
	assert.Equal(t, int64(99), state.Discount(994))

	inactive := PromoState{}
	assert.Equal(t, int64(0), inactive.Discount(1000))
}

func TestPromoTotalWithShipping(t *testing.T) {
	rules := DefaultRules()
	state := PromoState{Code: "WELCOME10", Percent: 10, Applied: true}

	subtotal := int64(1000)
	discount := state.Discount(subtotal)
	shipping := rules.CartShipping(subtotal)

	assert.Equal(t, int64(100), discount)
	assert.Equal(t, int64(0), shipping)
	assert.Equal(t, int64(900), Total(subtotal, discount, shipping))
}
