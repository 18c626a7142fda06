//go:generate mockgen -source=payment_gateway_interface.go -destination=mocks/payment_gateway_interface_mock.go -package=mock_interfaces

package interfaces

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pix_checkout/internal/domain/entities"
)

// PixPaymentRequest is what the service asks the provider to charge.
type PixPaymentRequest struct {
	Description string
	// Amount is the transaction amount. Quantity travels as metadata only.
	Amount            float64
	Quantity          int
	Payer             entities.Payer
	ExternalReference string
	ExpiresAt         *time.Time
}

// IPaymentGateway abstracts the external payment provider (e.g. Mercado Pago).
//
// The provider is the only source of truth: nothing returned here is persisted.
type IPaymentGateway interface {
	CreatePixPayment(ctx context.Context, req PixPaymentRequest) (entities.PixCharge, error)
	GetPayment(ctx context.Context, providerPaymentID string) (entities.PaymentCheck, error)
}

// GatewayError is returned when the provider answered with a non-2xx status.
// Transport failures and malformed responses are plain errors instead.
type GatewayError struct {
	StatusCode int
	Details    json.RawMessage
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment provider responded with status %d", e.StatusCode)
}
