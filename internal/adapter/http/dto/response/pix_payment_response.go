package response

import (
	"time"

	"pix_checkout/internal/domain/entities"
)

type PixPaymentResponse struct {
	ID                string     `json:"id"`
	Status            string     `json:"status"`
	QRCode            string     `json:"qr_code,omitempty"`
	QRCodeBase64      string     `json:"qr_code_base64,omitempty"`
	TicketURL         string     `json:"ticket_url,omitempty"`
	PaymentMethodID   string     `json:"payment_method_id"`
	TransactionAmount float64    `json:"transaction_amount"`
	DateOfExpiration  *time.Time `json:"date_of_expiration"`
}

func FromPixCharge(c entities.PixCharge) PixPaymentResponse {
	return PixPaymentResponse{
		ID:                c.ID,
		Status:            string(c.Status),
		QRCode:            c.QRCode,
		QRCodeBase64:      c.QRCodeBase64,
		TicketURL:         c.TicketURL,
		PaymentMethodID:   c.PaymentMethodID,
		TransactionAmount: c.TransactionAmount,
		DateOfExpiration:  c.DateOfExpiration,
	}
}

type PaymentCheckResponse struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	ProviderStatus string `json:"provider_status,omitempty"`
	StatusDetail   string `json:"status_detail,omitempty"`
}

func FromPaymentCheck(c entities.PaymentCheck) PaymentCheckResponse {
	return PaymentCheckResponse{
		ID:             c.ID,
		Status:         string(c.Status),
		ProviderStatus: c.ProviderStatus,
		StatusDetail:   c.StatusDetail,
	}
}

// CheckEvent is the data of a "check" server-sent event.
type CheckEvent struct {
	Attempt int    `json:"attempt"`
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SkippedEvent is the data of a "skipped" server-sent event.
type SkippedEvent struct {
	Attempt int `json:"attempt"`
}

// ResultEvent is the data of the final "result" server-sent event.
type ResultEvent struct {
	PaymentID string `json:"payment_id"`
	Outcome   string `json:"outcome"`
}
