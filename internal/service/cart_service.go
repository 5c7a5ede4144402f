package service

import (
	"context"
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

// ProductSource supplies read-only catalog records.
type ProductSource interface {
	GetProduct(ctx context.Context, productID int64) (*models.Product, error)
}

// EventSink receives cart domain events.
type EventSink interface {
	PublishItemAdded(ctx context.Context, event *models.ItemAddedEvent) error
	PublishCartCleared(ctx context.Context, event *models.CartClearedEvent) error
	PublishPromoApplied(ctx context.Context, event *models.PromoAppliedEvent) error
	PublishCheckoutSucceeded(ctx context.Context, event *models.CheckoutSucceededEvent) error
	PublishCheckoutFailed(ctx context.Context, event *models.CheckoutFailedEvent) error
}

// CartService is the sole mutation surface over the session carts. Every UI
// operation goes through here; the HTTP layer holds no cart logic.
type CartService struct {
	sessions *cart.Registry
	catalog  ProductSource
	rules    pricing.Rules
	promos   pricing.PromoTable
	events   EventSink
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(
	sessions *cart.Registry,
	catalog ProductSource,
	rules pricing.Rules,
	promos pricing.PromoTable,
	events EventSink,
	notifier notify.Notifier,
) *CartService {
	return &CartService{
		sessions: sessions,
		catalog:  catalog,
		rules:    rules,
		promos:   promos,
		events:   events,
		notifier: notifier,
		logger:   util.ComponentLogger("cart"),
	}
}

// AddItem adds one unit of a catalog product to the session cart. The
// catalog record's price is captured on first add; later adds of the same
// product only bump the quantity.
func (s *CartService) AddItem(ctx context.Context, sessionID string, productID int64) (models.LineItem, error) {
	ctx, span := util.StartSessionSpan(ctx, "CartService.AddItem", sessionID)
	defer span.End()

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return models.LineItem{}, fmt.Errorf("failed to look up product %d: %w", productID, err)
	}

	sess := s.sessions.Get(sessionID)
	line, existed := sess.Cart.AddItem(product)

	util.CartItemsAddedTotal.Inc()

	description := fmt.Sprintf("%s has been added to your cart", product.Name)
	if existed {
		description = fmt.Sprintf("%s quantity updated", product.Name)
	}
	s.notifier.Push(ctx, sessionID, notify.Notification{
		Title:        "Item added to cart",
		Description:  description,
		DurationHint: 2000,
	})

	event := &models.ItemAddedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeItemAdded,
			Timestamp: time.Now(),
		},
		SessionID:   sessionID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    line.Quantity,
	}
	if err := s.events.PublishItemAdded(ctx, event); err != nil {
		s.logger.Error("Failed to publish ItemAdded event", zap.Error(err))
	}

	return line, nil
}

// RemoveItem removes a product from the session cart. Unknown products are
// a no-op.
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, productID int64) {
	_, span := util.StartSessionSpan(ctx, "CartService.RemoveItem", sessionID)
	defer span.End()

	s.sessions.Get(sessionID).Cart.RemoveItem(productID)
	util.CartItemsRemovedTotal.Inc()
}

// UpdateQuantity sets an absolute quantity for a product in the session
// cart. Quantities at or below zero remove the item.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int) {
	_, span := util.StartSessionSpan(ctx, "CartService.UpdateQuantity", sessionID)
	defer span.End()

	s.sessions.Get(sessionID).Cart.UpdateQuantity(productID, quantity)
}

// ClearCart empties the session cart and resets its promo. Invoked once per
// completed order, after the payment collaborator confirms.
func (s *CartService) ClearCart(ctx context.Context, sessionID, orderReference string) {
	ctx, span := util.StartSessionSpan(ctx, "CartService.ClearCart", sessionID)
	defer span.End()

	sess := s.sessions.Get(sessionID)
	sess.Cart.Clear()
	sess.ResetPromo()

	util.CartsClearedTotal.Inc()

	event := &models.CartClearedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCartCleared,
			Timestamp: time.Now(),
		},
		SessionID:      sessionID,
		OrderReference: orderReference,
	}
	if err := s.events.PublishCartCleared(ctx, event); err != nil {
		s.logger.Error("Failed to publish CartCleared event", zap.Error(err))
	}
}

// ApplyPromo tries to activate a promo code for the session. Unrecognized
// codes are rejected silently: no error, no state change.
func (s *CartService) ApplyPromo(ctx context.Context, sessionID, code string) bool {
	ctx, span := util.StartSessionSpan(ctx, "CartService.ApplyPromo", sessionID)
	defer span.End()

	sess := s.sessions.Get(sessionID)
	active, newlyApplied := sess.ApplyPromo(s.promos, code)

	if !active {
		util.PromoAppliedTotal.WithLabelValues("rejected").Inc()
		return false
	}
	if !newlyApplied {
		return true
	}

	util.PromoAppliedTotal.WithLabelValues("applied").Inc()

	promo := sess.Promo()
	event := &models.PromoAppliedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePromoApplied,
			Timestamp: time.Now(),
		},
		SessionID: sessionID,
		Code:      promo.Code,
		Percent:   promo.Percent,
	}
	if err := s.events.PublishPromoApplied(ctx, event); err != nil {
		s.logger.Error("Failed to publish PromoApplied event", zap.Error(err))
	}

	return true
}

// CartSummary returns the cart-page view of the session: items, counts and
// totals under the cart-page shipping rule.
func (s *CartService) CartSummary(ctx context.Context, sessionID string) models.CartSummary {
	_, span := util.StartSessionSpan(ctx, "CartService.CartSummary", sessionID)
	defer span.End()

	sess := s.sessions.Get(sessionID)
	subtotal := sess.Cart.Subtotal()
	promo := sess.Promo()
	discount := promo.Discount(subtotal)
	shipping := s.rules.CartShipping(subtotal)

	return models.CartSummary{
		Items:     sess.Cart.Items(),
		ItemCount: sess.Cart.ItemCount(),
		Subtotal:  subtotal,
		Discount:  discount,
		Shipping:  shipping,
		Total:     pricing.Total(subtotal, discount, shipping),
		PromoCode: promo.Code,
	}
}

// CheckoutSummary returns the checkout-page view of the session, priced
// under the checkout shipping rule for the chosen delivery method.
func (s *CartService) CheckoutSummary(ctx context.Context, sessionID, deliveryMethod string) models.CartSummary {
	_, span := util.StartSessionSpan(ctx, "CartService.CheckoutSummary", sessionID)
	defer span.End()

	sess := s.sessions.Get(sessionID)
	subtotal := sess.Cart.Subtotal()
	promo := sess.Promo()
	discount := promo.Discount(subtotal)
	shipping := s.rules.CheckoutShipping(subtotal, deliveryMethod)

	return models.CartSummary{
		Items:     sess.Cart.Items(),
		ItemCount: sess.Cart.ItemCount(),
		Subtotal:  subtotal,
		Discount:  discount,
		Shipping:  shipping,
		Total:     pricing.Total(subtotal, discount, shipping),
		PromoCode: promo.Code,
	}
}
