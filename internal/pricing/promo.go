package pricing

import (
	"math"
	"strings"
)

// PromoTable maps uppercase promo codes to their percent discount. Matching
// is case-insensitive; unrecognized codes are silently rejected.
type PromoTable map[string]int

// DefaultPromoTable returns the recognized storefront codes.
func DefaultPromoTable() PromoTable {
	return PromoTable{
		"WELCOME10": 10,
	}
}

// Lookup returns the discount percent for a code.
func (t PromoTable) Lookup(code string) (int, bool) {
	percent, ok := t[strings.ToUpper(strings.TrimSpace(code))]
	return percent, ok
}

// PromoState tracks the promo applied to one session. It lives alongside the
// cart, not inside it.
type PromoState struct {
	Code    string
	Percent int
	Applied bool
}

// Apply activates the code against the state if recognized. Re-applying
// while a code is already active is a no-op. Returns whether a promo is
// active after the call.
func (t PromoTable) Apply(state *PromoState, code string) bool {
	if state.Applied {
		return true
	}
	percent, ok := t.Lookup(code)
	if !ok {
		return false
	}
	state.Code = strings.ToUpper(strings.TrimSpace(code))
	state.Percent = percent
	state.Applied = true
	return true
}

// Discount returns the promo discount for a subtotal, rounded to the
// nearest whole currency unit. Zero when no promo is active.
func (s PromoState) Discount(subtotal int64) int64 {
	if !s.Applied || s.Percent <= 0 {
		return 0
	}
	return int64(math.Round(float64(subtotal) * float64(s.Percent) / 100))
}
