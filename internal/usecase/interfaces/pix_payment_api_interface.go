//go:generate mockgen -source=pix_payment_api_interface.go -destination=mocks/pix_payment_api_interface_mock.go -package=mock_interfaces

package interfaces

import (
	"context"

	"pix_checkout/internal/domain/entities"
)

// IPixPaymentAPI is the create/check pair a checkout needs. It is satisfied
// in-process by usecase.PixPaymentUseCase and remotely by the HTTP client.
type IPixPaymentAPI interface {
	CreatePixPayment(ctx context.Context, intent entities.PaymentIntent) (entities.PixCharge, error)
	CheckPayment(ctx context.Context, paymentID string) (entities.PaymentStatus, error)
}
