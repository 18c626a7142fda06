package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"pix_checkout/internal/domain/entities"
	"pix_checkout/internal/usecase/interfaces"

	"github.com/mercadopago/sdk-go/pkg/payment"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

type fakePaymentsAPI struct {
	createReq  payment.Request
	createResp string
	createErr  error
	getID      int
	getResp    string
	getErr     error
}

func (f *fakePaymentsAPI) Create(_ context.Context, req payment.Request) (*payment.Response, error) {
	f.createReq = req
	if f.createErr != nil {
		return nil, f.createErr
	}
	return decodeSDKResponse(f.createResp)
}

func (f *fakePaymentsAPI) Get(_ context.Context, id int) (*payment.Response, error) {
	f.getID = id
	if f.getErr != nil {
		return nil, f.getErr
	}
	return decodeSDKResponse(f.getResp)
}

func decodeSDKResponse(body string) (*payment.Response, error) {
	var resp payment.Response
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func newTestGateway(api paymentsAPI) *MercadoPagoGateway {
	return &MercadoPagoGateway{client: api, logger: zap.NewNop(), tracer: otel.Tracer("test")}
}

const createdPixPayment = `{
	"id": 123456789,
	"status": "pending",
	"status_detail": "pending_waiting_transfer",
	"payment_method_id": "pix",
	"transaction_amount": 19.9,
	"point_of_interaction": {
		"transaction_data": {
			"qr_code": "00020126-pix-code",
			"qr_code_base64": "iVBORw0KGgo=",
			"ticket_url": "https://www.mercadopago.com.br/payments/123456789/ticket"
		}
	}
}`

func TestNewMercadoPagoGateway(t *testing.T) {
	if _, err := NewMercadoPagoGateway(GatewayConfig{}, zap.NewNop()); !errors.Is(err, ErrMissingMercadoPagoAccessToken) {
		t.Fatalf("expected ErrMissingMercadoPagoAccessToken, got %v", err)
	}

	g, err := NewMercadoPagoGateway(GatewayConfig{Mock: true, MockApproveAfter: 2}, nil)
	if err != nil || g.sandbox == nil {
		t.Fatalf("expected mock gateway, got %+v err=%v", g, err)
	}

	g, err = NewMercadoPagoGateway(GatewayConfig{AccessToken: "TEST-123"}, zap.NewNop())
	if err != nil || g.client == nil {
		t.Fatalf("expected sdk-backed gateway, got %+v err=%v", g, err)
	}
}

func TestMercadoPagoGateway_CreatePixPayment(t *testing.T) {
	api := &fakePaymentsAPI{createResp: createdPixPayment}
	g := newTestGateway(api)

	charge, err := g.CreatePixPayment(context.Background(), interfaces.PixPaymentRequest{
		Description:       "Resultado",
		Amount:            19.9,
		ExternalReference: "ref-1",
		Payer: entities.Payer{
			Email:                "buyer@example.com",
			IdentificationType:   "CPF",
			IdentificationNumber: "12345678909",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if api.createReq.PaymentMethodID != "pix" || api.createReq.TransactionAmount != 19.9 || api.createReq.Description != "Resultado" {
		t.Fatalf("unexpected sdk request: %+v", api.createReq)
	}
	if charge.ID != "123456789" || charge.Status != entities.PaymentStatusPending || charge.ProviderStatus != "pending" {
		t.Fatalf("unexpected charge: %+v", charge)
	}
	if charge.QRCode != "00020126-pix-code" || charge.QRCodeBase64 != "iVBORw0KGgo=" || charge.TicketURL == "" {
		t.Fatalf("unexpected transaction data: %+v", charge)
	}
}

func TestMercadoPagoGateway_CreatePixPayment_ProviderRejection(t *testing.T) {
	body := `{"message":"Invalid transaction_amount","error":"bad_request","status":400,"cause":[{"code":4037}]}`
	api := &fakePaymentsAPI{createErr: errors.New(body)}
	g := newTestGateway(api)

	_, err := g.CreatePixPayment(context.Background(), interfaces.PixPaymentRequest{Description: "x", Amount: 1})
	var gwErr *interfaces.GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if gwErr.StatusCode != http.StatusBadRequest || string(gwErr.Details) != body {
		t.Fatalf("unexpected gateway error: %+v", gwErr)
	}
}

func TestMercadoPagoGateway_CreatePixPayment_Unreachable(t *testing.T) {
	api := &fakePaymentsAPI{createErr: errors.New("dial tcp: connection refused")}
	g := newTestGateway(api)

	_, err := g.CreatePixPayment(context.Background(), interfaces.PixPaymentRequest{Description: "x", Amount: 1})
	var gwErr *interfaces.GatewayError
	if err == nil || errors.As(err, &gwErr) {
		t.Fatalf("expected plain transport error, got %v", err)
	}
}

func TestMercadoPagoGateway_CreatePixPayment_Malformed(t *testing.T) {
	api := &fakePaymentsAPI{createResp: `{"status":"pending"}`}
	g := newTestGateway(api)

	_, err := g.CreatePixPayment(context.Background(), interfaces.PixPaymentRequest{Description: "x", Amount: 1})
	if !errors.Is(err, ErrMalformedProviderResponse) {
		t.Fatalf("expected ErrMalformedProviderResponse, got %v", err)
	}
}

func TestMercadoPagoGateway_GetPayment(t *testing.T) {
	api := &fakePaymentsAPI{getResp: `{"id":42,"status":"approved","status_detail":"accredited"}`}
	g := newTestGateway(api)

	check, err := g.GetPayment(context.Background(), "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.getID != 42 {
		t.Fatalf("expected sdk get with id 42, got %d", api.getID)
	}
	if check.Status != entities.PaymentStatusApproved || check.StatusDetail != "accredited" {
		t.Fatalf("unexpected check: %+v", check)
	}

	if _, err := g.GetPayment(context.Background(), "abc"); !errors.Is(err, ErrInvalidProviderPaymentID) {
		t.Fatalf("expected ErrInvalidProviderPaymentID, got %v", err)
	}
}

func TestMercadoPagoGateway_GetPayment_NotFound(t *testing.T) {
	api := &fakePaymentsAPI{getErr: errors.New(`{"message":"Payment not found","error":"not_found","status":404,"cause":[]}`)}
	g := newTestGateway(api)

	_, err := g.GetPayment(context.Background(), "42")
	var gwErr *interfaces.GatewayError
	if !errors.As(err, &gwErr) || gwErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 gateway error, got %v", err)
	}
}

func TestMercadoPagoGateway_NotConfigured(t *testing.T) {
	var g *MercadoPagoGateway
	if _, err := g.createPixPayment(context.Background(), interfaces.PixPaymentRequest{}); !errors.Is(err, ErrMercadoPagoGatewayNotConfigured) {
		t.Fatalf("expected ErrMercadoPagoGatewayNotConfigured, got %v", err)
	}
	if _, err := g.getPayment(context.Background(), "1"); !errors.Is(err, ErrMercadoPagoGatewayNotConfigured) {
		t.Fatalf("expected ErrMercadoPagoGatewayNotConfigured, got %v", err)
	}
}

func TestToMPRequest(t *testing.T) {
	expires := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	req := toMPRequest(interfaces.PixPaymentRequest{
		Description: "Resultado",
		Amount:      10,
		Quantity:    3,
		ExpiresAt:   &expires,
		Payer:       entities.Payer{Email: "a@b.com"},
	})
	if req.PaymentMethodID != "pix" || req.Payer.Identification != nil {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.DateOfExpiration == nil || !req.DateOfExpiration.Equal(expires) {
		t.Fatalf("expected expiration to be forwarded")
	}
	if req.TransactionAmount != 10 || req.Metadata.Quantity != 3 {
		t.Fatalf("expected unit price charged and quantity as metadata, got %+v", req)
	}
}

func TestProviderError(t *testing.T) {
	cases := []struct {
		msg        string
		wantStatus int
	}{
		{`{"status":401,"error":"unauthorized"}`, http.StatusUnauthorized},
		{`error response: {"status":400,"error":"bad_request"} trailing`, http.StatusBadRequest},
		{`{"status":200}`, 0},
		{`{"status":"400"}`, 0},
		{`timeout`, 0},
	}
	for _, tc := range cases {
		err := providerError(errors.New(tc.msg))
		var gwErr *interfaces.GatewayError
		got := 0
		if errors.As(err, &gwErr) {
			got = gwErr.StatusCode
		}
		if got != tc.wantStatus {
			t.Fatalf("for %q expected status %d, got %d (%v)", tc.msg, tc.wantStatus, got, err)
		}
	}
}
