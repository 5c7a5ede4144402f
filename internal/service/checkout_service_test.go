package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cart-service/internal/cart"
	"cart-service/internal/models"
	"cart-service/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	result  *ChargeResult
	err     error
	lastReq *ChargeRequest
}

func (g *stubGateway) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	g.lastReq = req
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

type stubIdempotency struct {
	seen map[string]bool
}

func (s *stubIdempotency) SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *stubIdempotency) DeleteIdempotencyKey(ctx context.Context, key string) error {
	delete(s.seen, key)
	return nil
}

func newTestCheckout(gateway *stubGateway) (*CheckoutService, *CartService, *cart.Registry, *eventRecorder, *notifyRecorder) {
	sessions := cart.NewRegistry()
	events := &eventRecorder{}
	notes := &notifyRecorder{}
	rules := pricing.DefaultRules()
	carts := NewCartService(sessions, testCatalog(), rules, pricing.DefaultPromoTable(), events, notes)
	checkout := NewCheckoutService(carts, sessions, rules, gateway, &stubIdempotency{}, time.Hour, "INR", events, notes)
	return checkout, carts, sessions, events, notes
}

func checkoutRequest() *models.CheckoutRequest {
	return &models.CheckoutRequest{
		Email:     "priya@example.com",
		FirstName: "Priya",
		LastName:  "Sharma",
		Phone:     "+91 98765 43210",
		Address:   "12 MG Road",
		City:      "Bengaluru",
		State:     "Karnataka",
		Pincode:   "560001",
	}
}

func TestCheckoutSuccessClearsCart(t *testing.T) {
	gateway := &stubGateway{result: &ChargeResult{Success: true, PaymentRef: "pay_ab12cd34"}}
	checkout, carts, sessions, events, notes := newTestCheckout(gateway)
	ctx := context.Background()

	_, err := carts.AddItem(ctx, "sess-1", 1)
	require.NoError(t, err)
	notes.notes = nil

	resp, err := checkout.Checkout(ctx, "sess-1", checkoutRequest())
	require.NoError(t, err)

	assert.Equal(t, models.CheckoutStatusPaid, resp.Status)
	assert.Equal(t, "pay_ab12cd34", resp.PaymentRef)
	assert.Contains(t, resp.OrderReference, "SS")

	// Standard delivery: subtotal 2999, no shipping, paise conversion at
	// the gateway boundary only.
	assert.Equal(t, int64(2999*100), gateway.lastReq.AmountPaise)
	assert.Equal(t, "INR", gateway.lastReq.Currency)
	assert.Equal(t, "Priya Sharma", gateway.lastReq.CustomerName)

	assert.True(t, sessions.Get("sess-1").Cart.IsEmpty())
	require.Len(t, events.succeeded, 1)
	require.Len(t, events.cleared, 1)

	require.NotEmpty(t, notes.notes)
	assert.Equal(t, "Payment Successful!", notes.notes[0].Title)
	assert.Contains(t, notes.notes[0].Description, "pay_ab12cd34")
}

func TestCheckoutFailureLeavesCartUntouched(t *testing.T) {
	gateway := &stubGateway{result: &ChargeResult{Success: false, Reason: "payment_cancelled"}}
	checkout, carts, sessions, events, notes := newTestCheckout(gateway)
	ctx := context.Background()

	_, err := carts.AddItem(ctx, "sess-1", 1)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, "sess-1", 2)
	require.NoError(t, err)
	notes.notes = nil

	resp, err := checkout.Checkout(ctx, "sess-1", checkoutRequest())
	require.NoError(t, err)

	assert.Equal(t, models.CheckoutStatusFailed, resp.Status)
	assert.Equal(t, 2, sessions.Get("sess-1").Cart.ItemCount())
	assert.Empty(t, events.cleared)
	require.Len(t, events.failed, 1)
	assert.Equal(t, "payment_cancelled", events.failed[0].Reason)

	require.Len(t, notes.notes, 1)
	assert.Equal(t, "Payment failed", notes.notes[0].Title)
	assert.Equal(t, "Payment was cancelled. Please try again.", notes.notes[0].Description)
	assert.Equal(t, models.StyleDestructive, notes.notes[0].StyleHint)
}

func TestCheckoutGatewayError(t *testing.T) {
	gateway := &stubGateway{err: errors.New("widget failed to load")}
	checkout, carts, sessions, events, _ := newTestCheckout(gateway)
	ctx := context.Background()

	_, err := carts.AddItem(ctx, "sess-1", 1)
	require.NoError(t, err)

	_, err = checkout.Checkout(ctx, "sess-1", checkoutRequest())
	assert.Error(t, err)
	assert.Equal(t, 1, sessions.Get("sess-1").Cart.ItemCount())
	require.Len(t, events.failed, 1)
	assert.Equal(t, "gateway_error", events.failed[0].Reason)
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	gateway := &stubGateway{result: &ChargeResult{Success: true, PaymentRef: "pay_x"}}
	checkout, _, _, _, notes := newTestCheckout(gateway)

	_, err := checkout.Checkout(context.Background(), "sess-1", checkoutRequest())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, gateway.lastReq)

	require.Len(t, notes.notes, 1)
	assert.Equal(t, "Empty Cart", notes.notes[0].Title)
}

func TestCheckoutExpressShippingAndPromoInAmount(t *testing.T) {
	gateway := &stubGateway{result: &ChargeResult{Success: true, PaymentRef: "pay_y"}}
	checkout, carts, _, _, _ := newTestCheckout(gateway)
	ctx := context.Background()

	// Subtotal 1000, WELCOME10 discount 100, express fee 199.
	_, err := carts.AddItem(ctx, "sess-1", 2)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, "sess-1", 3)
	require.NoError(t, err)
	require.True(t, carts.ApplyPromo(ctx, "sess-1", "WELCOME10"))

	req := checkoutRequest()
	req.DeliveryMethod = models.DeliveryExpress

	resp, err := checkout.Checkout(ctx, "sess-1", req)
	require.NoError(t, err)

	assert.Equal(t, int64((1000-100+199)*100), gateway.lastReq.AmountPaise)
	assert.Equal(t, gateway.lastReq.AmountPaise, resp.AmountPaise)
}

func TestCheckoutDuplicateIdempotencyKey(t *testing.T) {
	gateway := &stubGateway{result: &ChargeResult{Success: true, PaymentRef: "pay_z"}}
	checkout, carts, sessions, _, _ := newTestCheckout(gateway)
	ctx := context.Background()

	_, err := carts.AddItem(ctx, "sess-1", 1)
	require.NoError(t, err)

	req := checkoutRequest()
	req.IdempotencyKey = "order-key-1"

	first, err := checkout.Checkout(ctx, "sess-1", req)
	require.NoError(t, err)
	assert.Equal(t, models.CheckoutStatusPaid, first.Status)

	// Retry with the same key never reaches the gateway again, even though
	// the successful first attempt already cleared the cart.
	require.True(t, sessions.Get("sess-1").Cart.IsEmpty())
	gateway.lastReq = nil

	second, err := checkout.Checkout(ctx, "sess-1", req)
	require.NoError(t, err)
	assert.Equal(t, models.CheckoutStatusDuplicate, second.Status)
	assert.Nil(t, gateway.lastReq)
}

func TestCheckoutRetrySameKeyAfterFailure(t *testing.T) {
	gateway := &stubGateway{result: &ChargeResult{Success: false, Reason: "payment_cancelled"}}
	checkout, carts, sessions, _, _ := newTestCheckout(gateway)
	ctx := context.Background()

	_, err := carts.AddItem(ctx, "sess-1", 1)
	require.NoError(t, err)

	req := checkoutRequest()
	req.IdempotencyKey = "order-key-1"

	first, err := checkout.Checkout(ctx, "sess-1", req)
	require.NoError(t, err)
	assert.Equal(t, models.CheckoutStatusFailed, first.Status)
	assert.Equal(t, 1, sessions.Get("sess-1").Cart.ItemCount())

	// A failed attempt releases its key, so the customer can retry the
	// same order with the same key.
	gateway.result = &ChargeResult{Success: true, PaymentRef: "pay_retry"}

	second, err := checkout.Checkout(ctx, "sess-1", req)
	require.NoError(t, err)
	assert.Equal(t, models.CheckoutStatusPaid, second.Status)
	assert.Equal(t, "pay_retry", second.PaymentRef)
	assert.True(t, sessions.Get("sess-1").Cart.IsEmpty())
}

func TestCheckoutRetrySameKeyAfterGatewayError(t *testing.T) {
	gateway := &stubGateway{err: errors.New("widget failed to load")}
	checkout, carts, _, _, _ := newTestCheckout(gateway)
	ctx := context.Background()

	_, err := carts.AddItem(ctx, "sess-1", 1)
	require.NoError(t, err)

	req := checkoutRequest()
	req.IdempotencyKey = "order-key-2"

	_, err = checkout.Checkout(ctx, "sess-1", req)
	require.Error(t, err)

	gateway.err = nil
	gateway.result = &ChargeResult{Success: true, PaymentRef: "pay_after_error"}

	resp, err := checkout.Checkout(ctx, "sess-1", req)
	require.NoError(t, err)
	assert.Equal(t, models.CheckoutStatusPaid, resp.Status)
}
