package models

import (
	"time"

	"github.com/lib/pq"
)

// Product represents a catalog product record. The catalog is read-only:
// the cart keeps its own copy of the fields it needs at add time.
type Product struct {
	ID            int64          `db:"id" json:"id"`
	SKU           string         `db:"sku" json:"sku"`
	Name          string         `db:"name" json:"name"`
	Category      string         `db:"category" json:"category"`
	Price         int64          `db:"price" json:"price"`
	OriginalPrice *int64         `db:"original_price" json:"original_price,omitempty"`
	Image         string         `db:"image" json:"image"`
	Sizes         pq.StringArray `db:"sizes" json:"sizes"`
	Colors        pq.StringArray `db:"colors" json:"colors"`
	IsNew         bool           `db:"is_new" json:"is_new"`
	IsBestseller  bool           `db:"is_bestseller" json:"is_bestseller"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// LineItem is one distinct product entry in a cart. Quantity is always >= 1;
// an item whose quantity would drop to zero is removed instead.
type LineItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Image     string `json:"image"`
	Category  string `json:"category,omitempty"`
	Quantity  int    `json:"quantity"`
}

// CartSummary holds the derived totals for a cart at a point in time.
type CartSummary struct {
	Items     []LineItem `json:"items"`
	ItemCount int        `json:"item_count"`
	Subtotal  int64      `json:"subtotal"`
	Discount  int64      `json:"discount"`
	Shipping  int64      `json:"shipping"`
	Total     int64      `json:"total"`
	PromoCode string     `json:"promo_code,omitempty"`
}

// Delivery methods
const (
	DeliveryStandard = "standard"
	DeliveryExpress  = "express"
)

// Payment methods accepted at checkout
const (
	PaymentMethodCard = "card"
	PaymentMethodUPI  = "upi"
	PaymentMethodCOD  = "cod"
)

// CheckoutRequest carries the customer details collected on the checkout page.
type CheckoutRequest struct {
	Email          string `json:"email" binding:"required,email"`
	FirstName      string `json:"first_name" binding:"required"`
	LastName       string `json:"last_name" binding:"required"`
	Phone          string `json:"phone" binding:"required"`
	Address        string `json:"address" binding:"required"`
	Apartment      string `json:"apartment,omitempty"`
	City           string `json:"city" binding:"required"`
	State          string `json:"state" binding:"required"`
	Pincode        string `json:"pincode" binding:"required"`
	DeliveryMethod string `json:"delivery_method,omitempty"`
	PaymentMethod  string `json:"payment_method,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// CheckoutResponse is returned once the payment collaborator reports an outcome.
type CheckoutResponse struct {
	OrderReference string `json:"order_reference"`
	PaymentRef     string `json:"payment_ref,omitempty"`
	Status         string `json:"status"`
	AmountPaise    int64  `json:"amount_paise"`
	Currency       string `json:"currency"`
}

// Checkout statuses
const (
	CheckoutStatusPaid      = "PAID"
	CheckoutStatusFailed    = "FAILED"
	CheckoutStatusDuplicate = "DUPLICATE"
)
