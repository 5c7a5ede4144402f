package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"cart-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChargeRequest is handed to the payment collaborator. Amount is in the
// smallest currency unit the gateway expects (paise).
type ChargeRequest struct {
	AmountPaise    int64
	Currency       string
	OrderReference string
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
}

// ChargeResult is the single outcome reported per charge attempt.
type ChargeResult struct {
	Success    bool
	PaymentRef string
	Reason     string
}

// PaymentGateway opens the hosted payment flow and reports exactly one
// outcome per attempt.
type PaymentGateway interface {
	Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error)
}

// HostedGateway stands in for the hosted checkout widget. The real widget
// runs client-side, so this simulates its callback with a configurable
// success rate.
type HostedGateway struct {
	keyID       string
	successRate float64
	logger      *zap.Logger
}

// NewHostedGateway creates a new hosted payment gateway
func NewHostedGateway(keyID string, successRate float64) *HostedGateway {
	return &HostedGateway{
		keyID:       keyID,
		successRate: successRate,
		logger:      util.ComponentLogger("payment"),
	}
}

// Charge runs the hosted payment flow for an order
func (g *HostedGateway) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	_, span := util.StartSpan(ctx, "HostedGateway.Charge")
	defer span.End()

	g.logger.Info("Opening hosted payment flow",
		zap.String("order_reference", req.OrderReference),
		zap.Int64("amount_paise", req.AmountPaise),
		zap.String("currency", req.Currency))

	time.Sleep(time.Duration(100+rand.Intn(400)) * time.Millisecond)

	if rand.Float64() >= g.successRate {
		g.logger.Warn("Payment cancelled by customer",
			zap.String("order_reference", req.OrderReference))
		return &ChargeResult{
			Success: false,
			Reason:  "payment_cancelled",
		}, nil
	}

	paymentRef := fmt.Sprintf("pay_%s", uuid.New().String()[:8])
	g.logger.Info("Payment succeeded",
		zap.String("order_reference", req.OrderReference),
		zap.String("payment_ref", paymentRef))

	return &ChargeResult{
		Success:    true,
		PaymentRef: paymentRef,
	}, nil
}
