package pricing

import "cart-service/internal/models"

// Rules holds the storefront pricing policy values.
type Rules struct {
	FreeShippingThreshold int64
	CartShippingFee       int64
	ExpressShippingFee    int64
}

// DefaultRules returns the storefront defaults: free shipping at and above
// 999, a 99 cart-page fee below it, and a 199 flat express fee.
func DefaultRules() Rules {
	return Rules{
		FreeShippingThreshold: 999,
		CartShippingFee:       99,
		ExpressShippingFee:    199,
	}
}

// CartShipping is the cart-page shipping rule: free at or above the
// threshold (inclusive), the flat cart fee below it.
func (r Rules) CartShipping(subtotal int64) int64 {
	if subtotal >= r.FreeShippingThreshold {
		return 0
	}
	return r.CartShippingFee
}

// CheckoutShipping is the checkout-page shipping rule: express delivery
// always costs the flat express fee regardless of subtotal, standard
// delivery is free. This differs from the cart-page rule on purpose; the
// two policies are kept separate rather than merged.
func (r Rules) CheckoutShipping(subtotal int64, deliveryMethod string) int64 {
	if deliveryMethod == models.DeliveryExpress {
		return r.ExpressShippingFee
	}
	return 0
}

// Total computes the grand total. Discount never exceeds subtotal since it
// is derived as a fraction of it, so the result is never negative.
func Total(subtotal, discount, shipping int64) int64 {
	return subtotal - discount + shipping
}
