package payment

import (
	"context"

	"birthdayclub/internal/domain"
)

type unconfigured struct{}

// Unconfigured returns a gateway that fails every call with ErrGatewayUnconfigured.
func Unconfigured() domain.PaymentGateway { return unconfigured{} }

func (unconfigured) Name() string { return "none" }

func (unconfigured) CreatePayment(context.Context, domain.PaymentRequest) (*domain.PaymentHandle, error) {
	return nil, domain.ErrGatewayUnconfigured
}

func (unconfigured) VerifyNotification(context.Context, map[string][]string, []byte) (*domain.PaymentOutcome, error) {
	return nil, domain.ErrGatewayUnconfigured
}
