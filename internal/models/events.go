package models

import "time"

// Event types
const (
	EventTypeItemAdded         = "ITEM_ADDED"
	EventTypeCartCleared       = "CART_CLEARED"
	EventTypePromoApplied      = "PROMO_APPLIED"
	EventTypeCheckoutSucceeded = "CHECKOUT_SUCCEEDED"
	EventTypeCheckoutFailed    = "CHECKOUT_FAILED"
	EventTypeNotification      = "NOTIFICATION"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ItemAddedEvent published when a product lands in a cart
type ItemAddedEvent struct {
	BaseEvent
	SessionID   string `json:"session_id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// CartClearedEvent published after the post-payment clear
type CartClearedEvent struct {
	BaseEvent
	SessionID      string `json:"session_id"`
	OrderReference string `json:"order_reference,omitempty"`
}

// PromoAppliedEvent published when a recognized promo code activates
type PromoAppliedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	Code      string `json:"code"`
	Percent   int    `json:"percent"`
}

// CheckoutSucceededEvent published when the payment collaborator confirms
type CheckoutSucceededEvent struct {
	BaseEvent
	SessionID      string `json:"session_id"`
	OrderReference string `json:"order_reference"`
	PaymentRef     string `json:"payment_ref"`
	AmountPaise    int64  `json:"amount_paise"`
	Currency       string `json:"currency"`
}

// CheckoutFailedEvent published on payment failure or cancellation
type CheckoutFailedEvent struct {
	BaseEvent
	SessionID      string `json:"session_id"`
	OrderReference string `json:"order_reference"`
	Reason         string `json:"reason"`
}

// NotificationEvent carries a human-readable message for the notification sink
type NotificationEvent struct {
	BaseEvent
	SessionID    string `json:"session_id,omitempty"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	DurationHint int    `json:"duration_hint_ms,omitempty"`
	StyleHint    string `json:"style_hint,omitempty"`
}

// Notification style hints
const (
	StyleDefault     = "default"
	StyleDestructive = "destructive"
)
