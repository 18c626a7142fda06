package entities

import (
	"errors"
	"math"
	"strings"
	"time"
)

var (
	ErrInvalidTitle    = errors.New("invalid title")
	ErrInvalidPrice    = errors.New("invalid price")
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// PaymentStatus is the local status vocabulary.
//
// Domain notes:
//   - The provider is authoritative; statuses are fetched fresh on every check
//     and never persisted.
//   - Only PaymentStatusApproved ends a confirmation poll.
type PaymentStatus string

const (
	PaymentStatusPending      PaymentStatus = "pending"
	PaymentStatusApproved     PaymentStatus = "approved"
	PaymentStatusRejected     PaymentStatus = "rejected"
	PaymentStatusUnknownError PaymentStatus = "unknown-error"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusApproved, PaymentStatusRejected, PaymentStatusUnknownError:
		return true
	}
	return false
}

// NormalizeProviderStatus maps Mercado Pago payment statuses onto PaymentStatus.
func NormalizeProviderStatus(providerStatus string) PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(providerStatus)) {
	case "pending", "in_process", "in_mediation", "authorized":
		return PaymentStatusPending
	case "approved":
		return PaymentStatusApproved
	case "rejected", "cancelled", "refunded", "charged_back":
		return PaymentStatusRejected
	default:
		return PaymentStatusUnknownError
	}
}

// PaymentIntent is a request to collect Amount from a payer. Quantity is
// informational and never multiplies the charged amount. It is immutable once built.
type PaymentIntent struct {
	Title    string  `json:"title"`
	Amount   float64 `json:"amount"`
	Quantity int     `json:"quantity"`
}

// NewPaymentIntent validates the inputs. A zero quantity defaults to 1.
func NewPaymentIntent(title string, price float64, quantity int) (PaymentIntent, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return PaymentIntent{}, ErrInvalidTitle
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return PaymentIntent{}, ErrInvalidPrice
	}
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return PaymentIntent{}, ErrInvalidQuantity
	}
	return PaymentIntent{Title: title, Amount: price, Quantity: quantity}, nil
}

// Payer identifies who pays a PIX charge on the provider side.
type Payer struct {
	Email                string `json:"email"`
	FirstName            string `json:"first_name,omitempty"`
	LastName             string `json:"last_name,omitempty"`
	IdentificationType   string `json:"identification_type,omitempty"`
	IdentificationNumber string `json:"identification_number,omitempty"`
}

// PixCharge is the normalized payment created by the provider.
//
// QRCode is the copy-paste PIX code and QRCodeBase64 its PNG rendering; both
// are produced by the provider and passed through untouched.
type PixCharge struct {
	ID                string        `json:"id"`
	Status            PaymentStatus `json:"status"`
	ProviderStatus    string        `json:"provider_status"`
	QRCode            string        `json:"qr_code,omitempty"`
	QRCodeBase64      string        `json:"qr_code_base64,omitempty"`
	TicketURL         string        `json:"ticket_url,omitempty"`
	PaymentMethodID   string        `json:"payment_method_id"`
	TransactionAmount float64       `json:"transaction_amount"`
	DateOfExpiration  *time.Time    `json:"date_of_expiration,omitempty"`
}

// PaymentCheck is the outcome of a single status lookup.
type PaymentCheck struct {
	ID             string        `json:"id"`
	Status         PaymentStatus `json:"status"`
	ProviderStatus string        `json:"provider_status"`
	StatusDetail   string        `json:"status_detail,omitempty"`
}
