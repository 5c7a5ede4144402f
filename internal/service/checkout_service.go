package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cart-service/internal/cart"
	"cart-service/internal/models"
	"cart-service/internal/notify"
	"cart-service/internal/pricing"
	"cart-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrEmptyCart is returned when checkout is attempted on an empty cart.
var ErrEmptyCart = errors.New("cart is empty")

// IdempotencyStore deduplicates checkout attempts across retries. A key is
// only kept once its attempt ends in a successful payment; attempts that fail
// release the key so the customer can retry with it.
type IdempotencyStore interface {
	SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	DeleteIdempotencyKey(ctx context.Context, key string) error
}

// CheckoutService drives the order placement flow: price the cart, hand the
// amount to the payment collaborator, and react to its single outcome. The
// cart is cleared only after a confirmed payment; failure and cancellation
// leave it untouched.
type CheckoutService struct {
	carts          *CartService
	sessions       *cart.Registry
	rules          pricing.Rules
	gateway        PaymentGateway
	idempotency    IdempotencyStore
	idempotencyTTL time.Duration
	currency       string
	events         EventSink
	notifier       notify.Notifier
	logger         *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	carts *CartService,
	sessions *cart.Registry,
	rules pricing.Rules,
	gateway PaymentGateway,
	idempotency IdempotencyStore,
	idempotencyTTL time.Duration,
	currency string,
	events EventSink,
	notifier notify.Notifier,
) *CheckoutService {
	return &CheckoutService{
		carts:          carts,
		sessions:       sessions,
		rules:          rules,
		gateway:        gateway,
		idempotency:    idempotency,
		idempotencyTTL: idempotencyTTL,
		currency:       currency,
		events:         events,
		notifier:       notifier,
		logger:         util.ComponentLogger("checkout"),
	}
}

// Checkout places an order for the session cart.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID string, req *models.CheckoutRequest) (*models.CheckoutResponse, error) {
	ctx, span := util.StartSessionSpan(ctx, "CheckoutService.Checkout", sessionID)
	defer span.End()

	util.CheckoutAttemptsTotal.Inc()

	// Duplicate detection runs before anything else so a retry after a
	// successful (cart-clearing) checkout reports the duplicate rather
	// than an empty cart.
	if req.IdempotencyKey != "" {
		fresh, err := s.idempotency.SetIdempotencyKey(ctx, req.IdempotencyKey, sessionID, s.idempotencyTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to check idempotency: %w", err)
		}
		if !fresh {
			s.logger.Info("Duplicate checkout request detected",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.String("session_id", sessionID))
			return &models.CheckoutResponse{Status: models.CheckoutStatusDuplicate}, nil
		}
	}

	sess := s.sessions.Get(sessionID)
	if sess.Cart.IsEmpty() {
		s.notifier.Push(ctx, sessionID, notify.Notification{
			Title:       "Empty Cart",
			Description: "Please add items to your cart before placing an order",
			StyleHint:   models.StyleDestructive,
		})
		util.CheckoutFailedTotal.WithLabelValues("empty_cart").Inc()
		s.releaseIdempotency(ctx, req.IdempotencyKey)
		return nil, ErrEmptyCart
	}

	if req.DeliveryMethod == "" {
		req.DeliveryMethod = models.DeliveryStandard
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentMethodCard
	}

	subtotal := sess.Cart.Subtotal()
	discount := sess.Promo().Discount(subtotal)
	shipping := s.rules.CheckoutShipping(subtotal, req.DeliveryMethod)
	total := pricing.Total(subtotal, discount, shipping)

	orderReference := fmt.Sprintf("SS%d", time.Now().UnixMilli())

	// The gateway bills in paise; everywhere else amounts stay in rupees.
	charge := &ChargeRequest{
		AmountPaise:    total * 100,
		Currency:       s.currency,
		OrderReference: orderReference,
		CustomerName:   fmt.Sprintf("%s %s", req.FirstName, req.LastName),
		CustomerEmail:  req.Email,
		CustomerPhone:  req.Phone,
	}

	start := time.Now()
	result, err := s.gateway.Charge(ctx, charge)
	util.PaymentProcessingLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		s.failCheckout(ctx, sessionID, orderReference, "gateway_error")
		s.releaseIdempotency(ctx, req.IdempotencyKey)
		return nil, fmt.Errorf("payment gateway error: %w", err)
	}

	if !result.Success {
		reason := result.Reason
		if reason == "" {
			reason = "payment_declined"
		}
		s.failCheckout(ctx, sessionID, orderReference, reason)
		s.releaseIdempotency(ctx, req.IdempotencyKey)
		return &models.CheckoutResponse{
			OrderReference: orderReference,
			Status:         models.CheckoutStatusFailed,
			AmountPaise:    charge.AmountPaise,
			Currency:       s.currency,
		}, nil
	}

	util.CheckoutSuccessTotal.Inc()
	s.logger.Info("Order placed",
		zap.String("order_reference", orderReference),
		zap.String("payment_ref", result.PaymentRef),
		zap.Int64("amount_paise", charge.AmountPaise))

	event := &models.CheckoutSucceededEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCheckoutSucceeded,
			Timestamp: time.Now(),
		},
		SessionID:      sessionID,
		OrderReference: orderReference,
		PaymentRef:     result.PaymentRef,
		AmountPaise:    charge.AmountPaise,
		Currency:       s.currency,
	}
	if err := s.events.PublishCheckoutSucceeded(ctx, event); err != nil {
		s.logger.Error("Failed to publish CheckoutSucceeded event", zap.Error(err))
	}

	s.notifier.Push(ctx, sessionID, notify.Notification{
		Title:       "Payment Successful!",
		Description: fmt.Sprintf("Payment ID: %s", result.PaymentRef),
	})

	// The single post-order clear.
	s.carts.ClearCart(ctx, sessionID, orderReference)

	return &models.CheckoutResponse{
		OrderReference: orderReference,
		PaymentRef:     result.PaymentRef,
		Status:         models.CheckoutStatusPaid,
		AmountPaise:    charge.AmountPaise,
		Currency:       s.currency,
	}, nil
}

// releaseIdempotency frees a claimed key after an attempt that did not end
// in a paid order, so the same key can drive a retry.
func (s *CheckoutService) releaseIdempotency(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.idempotency.DeleteIdempotencyKey(ctx, key); err != nil {
		s.logger.Warn("Failed to release idempotency key",
			zap.String("idempotency_key", key),
			zap.Error(err))
	}
}

func (s *CheckoutService) failCheckout(ctx context.Context, sessionID, orderReference, reason string) {
	util.CheckoutFailedTotal.WithLabelValues(reason).Inc()

	s.logger.Warn("Checkout failed",
		zap.String("order_reference", orderReference),
		zap.String("reason", reason))

	event := &models.CheckoutFailedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCheckoutFailed,
			Timestamp: time.Now(),
		},
		SessionID:      sessionID,
		OrderReference: orderReference,
		Reason:         reason,
	}
	if err := s.events.PublishCheckoutFailed(ctx, event); err != nil {
		s.logger.Error("Failed to publish CheckoutFailed event", zap.Error(err))
	}

	s.notifier.Push(ctx, sessionID, notify.Notification{
		Title:       "Payment failed",
		Description: "Payment was cancelled. Please try again.",
		StyleHint:   models.StyleDestructive,
	})
}
