package request

import (
	"pix_checkout/internal/domain/entities"
)

// PixPaymentCreateRequest is the payload of the payment initiation route.
//
// The amount charged is always computed from price and quantity; clients
// cannot send a transaction_amount.
type PixPaymentCreateRequest struct {
	Title      string  `json:"title" binding:"required"`
	Price      float64 `json:"price" binding:"required,gt=0"`
	Quantity   int     `json:"quantity" binding:"omitempty,gte=1"`
	PayerEmail string  `json:"payer_email" binding:"omitempty,email"`
}

func (r PixPaymentCreateRequest) ToIntent() (entities.PaymentIntent, error) {
	return entities.NewPaymentIntent(r.Title, r.Price, r.Quantity)
}
