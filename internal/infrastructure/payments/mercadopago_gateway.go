package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pix_checkout/internal/domain/entities"
	"pix_checkout/internal/infrastructure/logging"
	"pix_checkout/internal/usecase/interfaces"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const pixPaymentMethodID = "pix"

var (
	ErrMissingMercadoPagoAccessToken   = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")
	ErrMercadoPagoGatewayNotConfigured = errors.New("mercado pago gateway not configured")
	ErrInvalidProviderPaymentID        = errors.New("invalid provider payment id")
	ErrMalformedProviderResponse       = errors.New("malformed provider response")
)

// paymentsAPI is the part of payment.Client the gateway uses.
type paymentsAPI interface {
	Create(ctx context.Context, request payment.Request) (*payment.Response, error)
	Get(ctx context.Context, id int) (*payment.Response, error)
}

type GatewayConfig struct {
	AccessToken string
	// Mock replaces Mercado Pago with an in-memory sandbox that approves a
	// payment after MockApproveAfter status checks.
	Mock             bool
	MockApproveAfter int
}

type MercadoPagoGateway struct {
	client  paymentsAPI
	sandbox *sandboxLedger
	logger  *zap.Logger
	tracer  trace.Tracer
}

var _ interfaces.IPaymentGateway = (*MercadoPagoGateway)(nil)

func NewMercadoPagoGateway(cfg GatewayConfig, logger *zap.Logger) (*MercadoPagoGateway, error) {
	logger = logging.Component(logger, "payment.gateway")
	tracer := otel.Tracer("pix_checkout/payments")

	if cfg.Mock {
		logger.Info("mock mode enabled", zap.Int("approve_after", cfg.MockApproveAfter))
		return &MercadoPagoGateway{sandbox: newSandboxLedger(cfg.MockApproveAfter), logger: logger, tracer: tracer}, nil
	}

	if cfg.AccessToken == "" {
		logger.Error("missing MERCADOPAGO_ACCESS_TOKEN")
		return nil, ErrMissingMercadoPagoAccessToken
	}

	mpCfg, err := config.New(cfg.AccessToken)
	if err != nil {
		logger.Error("failed creating sdk config", zap.Error(err))
		return nil, err
	}
	logger.Info("Mercado Pago client initialized")

	return &MercadoPagoGateway{client: payment.NewClient(mpCfg), logger: logger, tracer: tracer}, nil
}

func (g *MercadoPagoGateway) CreatePixPayment(ctx context.Context, req interfaces.PixPaymentRequest) (entities.PixCharge, error) {
	ctx, span := g.tracer.Start(ctx, "mercadopago.payments.create")
	defer span.End()
	span.SetAttributes(
		attribute.Float64("payment.amount", req.Amount),
		attribute.String("payment.external_reference", req.ExternalReference),
	)

	charge, err := g.createPixPayment(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return entities.PixCharge{}, err
	}
	span.SetAttributes(attribute.String("payment.id", charge.ID))
	return charge, nil
}

func (g *MercadoPagoGateway) createPixPayment(ctx context.Context, req interfaces.PixPaymentRequest) (entities.PixCharge, error) {
	if g != nil && g.sandbox != nil {
		charge := g.sandbox.create(req)
		g.logger.Info("mock create success", zap.String("provider_payment_id", charge.ID), zap.String("provider_status", charge.ProviderStatus))
		return charge, nil
	}
	if g == nil || g.client == nil {
		return entities.PixCharge{}, ErrMercadoPagoGatewayNotConfigured
	}

	payload, err := json.Marshal(toMPRequest(req))
	if err != nil {
		return entities.PixCharge{}, err
	}
	g.logger.Info("create start", zap.Int("payload_len", len(payload)), zap.String("external_reference", req.ExternalReference))

	var mpReq payment.Request
	if err := json.Unmarshal(payload, &mpReq); err != nil {
		g.logger.Error("payload unmarshal failed", zap.Error(err))
		return entities.PixCharge{}, err
	}

	resp, err := g.client.Create(ctx, mpReq)
	if err != nil {
		g.logger.Error("sdk create failed", zap.Error(err))
		return entities.PixCharge{}, providerError(err)
	}

	view, err := decodeResponse(resp)
	if err != nil {
		g.logger.Error("response decode failed", zap.Error(err))
		return entities.PixCharge{}, err
	}
	charge := view.toCharge()
	g.logger.Info("create success", zap.String("provider_payment_id", charge.ID), zap.String("provider_status", charge.ProviderStatus))
	return charge, nil
}

func (g *MercadoPagoGateway) GetPayment(ctx context.Context, providerPaymentID string) (entities.PaymentCheck, error) {
	ctx, span := g.tracer.Start(ctx, "mercadopago.payments.get", trace.WithAttributes(attribute.String("payment.id", providerPaymentID)))
	defer span.End()

	check, err := g.getPayment(ctx, providerPaymentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return entities.PaymentCheck{}, err
	}
	span.SetAttributes(attribute.String("payment.status", string(check.Status)))
	return check, nil
}

func (g *MercadoPagoGateway) getPayment(ctx context.Context, providerPaymentID string) (entities.PaymentCheck, error) {
	if g != nil && g.sandbox != nil {
		return g.sandbox.get(providerPaymentID)
	}
	if g == nil || g.client == nil {
		return entities.PaymentCheck{}, ErrMercadoPagoGatewayNotConfigured
	}

	id, err := strconv.Atoi(strings.TrimSpace(providerPaymentID))
	if err != nil || id <= 0 {
		return entities.PaymentCheck{}, ErrInvalidProviderPaymentID
	}

	resp, err := g.client.Get(ctx, id)
	if err != nil {
		g.logger.Warn("sdk get failed", zap.String("provider_payment_id", providerPaymentID), zap.Error(err))
		return entities.PaymentCheck{}, providerError(err)
	}
	view, err := decodeResponse(resp)
	if err != nil {
		return entities.PaymentCheck{}, err
	}
	g.logger.Debug("get success", zap.String("provider_payment_id", providerPaymentID), zap.String("provider_status", view.Status))
	return view.toCheck(), nil
}

type mpIdentification struct {
	Type   string `json:"type,omitempty"`
	Number string `json:"number,omitempty"`
}

type mpPayer struct {
	Email          string            `json:"email,omitempty"`
	FirstName      string            `json:"first_name,omitempty"`
	LastName       string            `json:"last_name,omitempty"`
	Identification *mpIdentification `json:"identification,omitempty"`
}

type mpPaymentRequest struct {
	TransactionAmount float64    `json:"transaction_amount"`
	Description       string     `json:"description"`
	PaymentMethodID   string     `json:"payment_method_id"`
	ExternalReference string     `json:"external_reference,omitempty"`
	DateOfExpiration  *time.Time `json:"date_of_expiration,omitempty"`
	Payer             mpPayer    `json:"payer"`
	Metadata          mpMetadata `json:"metadata"`
}

type mpMetadata struct {
	Quantity int `json:"quantity"`
}

func toMPRequest(req interfaces.PixPaymentRequest) mpPaymentRequest {
	out := mpPaymentRequest{
		TransactionAmount: req.Amount,
		Description:       req.Description,
		PaymentMethodID:   pixPaymentMethodID,
		ExternalReference: req.ExternalReference,
		DateOfExpiration:  req.ExpiresAt,
		Metadata:          mpMetadata{Quantity: req.Quantity},
		Payer: mpPayer{
			Email:     req.Payer.Email,
			FirstName: req.Payer.FirstName,
			LastName:  req.Payer.LastName,
		},
	}
	if req.Payer.IdentificationNumber != "" {
		out.Payer.Identification = &mpIdentification{
			Type:   req.Payer.IdentificationType,
			Number: req.Payer.IdentificationNumber,
		}
	}
	return out
}

// mpPaymentView is the subset of the provider payment the service reads.
type mpPaymentView struct {
	ID                 json.Number `json:"id"`
	Status             string      `json:"status"`
	StatusDetail       string      `json:"status_detail"`
	PaymentMethodID    string      `json:"payment_method_id"`
	TransactionAmount  float64     `json:"transaction_amount"`
	DateOfExpiration   *time.Time  `json:"date_of_expiration"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
			TicketURL    string `json:"ticket_url"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

func decodeResponse(resp *payment.Response) (mpPaymentView, error) {
	if resp == nil {
		return mpPaymentView{}, ErrMalformedProviderResponse
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return mpPaymentView{}, fmt.Errorf("%w: %v", ErrMalformedProviderResponse, err)
	}
	return decodeView(raw)
}

func decodeView(raw []byte) (mpPaymentView, error) {
	var view mpPaymentView
	if err := json.Unmarshal(raw, &view); err != nil {
		return mpPaymentView{}, fmt.Errorf("%w: %v", ErrMalformedProviderResponse, err)
	}
	if view.ID == "" || view.ID == "0" {
		return mpPaymentView{}, fmt.Errorf("%w: missing id", ErrMalformedProviderResponse)
	}
	return view, nil
}

func (v mpPaymentView) toCharge() entities.PixCharge {
	expiresAt := v.DateOfExpiration
	if expiresAt != nil && expiresAt.IsZero() {
		expiresAt = nil
	}
	td := v.PointOfInteraction.TransactionData
	return entities.PixCharge{
		ID:                v.ID.String(),
		Status:            entities.NormalizeProviderStatus(v.Status),
		ProviderStatus:    v.Status,
		QRCode:            td.QRCode,
		QRCodeBase64:      td.QRCodeBase64,
		TicketURL:         td.TicketURL,
		PaymentMethodID:   v.PaymentMethodID,
		TransactionAmount: v.TransactionAmount,
		DateOfExpiration:  expiresAt,
	}
}

func (v mpPaymentView) toCheck() entities.PaymentCheck {
	return entities.PaymentCheck{
		ID:             v.ID.String(),
		Status:         entities.NormalizeProviderStatus(v.Status),
		ProviderStatus: v.Status,
		StatusDetail:   v.StatusDetail,
	}
}

// providerError turns an sdk error into a GatewayError when the message
// carries the provider's JSON error body, e.g.
// {"message":"...","error":"bad_request","status":400,"cause":[...]}.
func providerError(err error) error {
	msg := err.Error()
	if i := strings.Index(msg, "{"); i >= 0 {
		var raw json.RawMessage
		if decErr := json.NewDecoder(strings.NewReader(msg[i:])).Decode(&raw); decErr == nil {
			var body struct {
				Status int `json:"status"`
			}
			if json.Unmarshal(raw, &body) == nil && body.Status >= 400 && body.Status <= 599 {
				return &interfaces.GatewayError{StatusCode: body.Status, Details: raw}
			}
		}
	}
	return fmt.Errorf("mercado pago request failed: %w", err)
}
