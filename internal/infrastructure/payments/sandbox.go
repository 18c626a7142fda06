package payments

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"pix_checkout/internal/domain/entities"
	"pix_checkout/internal/usecase/interfaces"
)

// sandboxLedger stands in for Mercado Pago in mock mode. Payments start
// pending and turn approved on the approveAfter-th status check.
type sandboxLedger struct {
	mu           sync.Mutex
	approveAfter int
	payments     map[string]*sandboxPayment
	now          func() time.Time
}

type sandboxPayment struct {
	charge entities.PixCharge
	checks int
}

func newSandboxLedger(approveAfter int) *sandboxLedger {
	return &sandboxLedger{
		approveAfter: approveAfter,
		payments:     map[string]*sandboxPayment{},
		now:          time.Now,
	}
}

func (l *sandboxLedger) create(req interfaces.PixPaymentRequest) entities.PixCharge {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC()
	id := strconv.FormatInt(now.UnixNano(), 10)
	for l.payments[id] != nil {
		now = now.Add(time.Nanosecond)
		id = strconv.FormatInt(now.UnixNano(), 10)
	}

	expiresAt := now.Add(24 * time.Hour)
	if req.ExpiresAt != nil {
		expiresAt = *req.ExpiresAt
	}

	charge := entities.PixCharge{
		ID:                id,
		Status:            entities.PaymentStatusPending,
		ProviderStatus:    "pending",
		QRCode:            sandboxPixCode(id, req.Amount),
		TicketURL:         fmt.Sprintf("https://sandbox.pix.local/payments/%s/ticket", id),
		PaymentMethodID:   pixPaymentMethodID,
		TransactionAmount: req.Amount,
		DateOfExpiration:  &expiresAt,
	}
	l.payments[id] = &sandboxPayment{charge: charge}
	return charge
}

func (l *sandboxLedger) get(id string) (entities.PaymentCheck, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.payments[id]
	if !ok {
		return entities.PaymentCheck{}, &interfaces.GatewayError{
			StatusCode: http.StatusNotFound,
			Details:    []byte(`{"message":"Payment not found","error":"not_found","status":404}`),
		}
	}

	p.checks++
	providerStatus, detail := "pending", "pending_waiting_transfer"
	if p.checks >= l.approveAfter {
		providerStatus, detail = "approved", "accredited"
	}
	return entities.PaymentCheck{
		ID:             id,
		Status:         entities.NormalizeProviderStatus(providerStatus),
		ProviderStatus: providerStatus,
		StatusDetail:   detail,
	}, nil
}

// sandboxPixCode is a recognisable, non-payable placeholder for the copy-paste code.
func sandboxPixCode(id string, amount float64) string {
	return fmt.Sprintf("00020126360014br.gov.bcb.pix0114SANDBOX%s5204000053039865406%.2f5802BR5907SANDBOX6009SAO PAULO6304", id, amount)
}
