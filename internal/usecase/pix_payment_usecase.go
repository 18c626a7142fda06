package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"pix_checkout/internal/domain/entities"
	"pix_checkout/internal/infrastructure/logging"
	"pix_checkout/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

var (
	ErrInvalidPaymentID            = errors.New("invalid payment id")
	ErrPaymentGatewayNotConfigured = errors.New("payment gateway not configured")
)

// IPixPaymentUseCase creates PIX charges on the provider and reads their status.
//
// Requested behavior:
//   - Amounts are always computed server-side from the intent.
//   - Nothing is persisted: every check goes to the provider.
type IPixPaymentUseCase interface {
	CreatePixPayment(ctx context.Context, intent entities.PaymentIntent) (entities.PixCharge, error)
	CreatePixPaymentForPayer(ctx context.Context, intent entities.PaymentIntent, payerEmail string) (entities.PixCharge, error)
	CheckPayment(ctx context.Context, paymentID string) (entities.PaymentStatus, error)
	GetPayment(ctx context.Context, paymentID string) (entities.PaymentCheck, error)
}

type PixPaymentConfig struct {
	// Payer is used when the caller does not name one.
	Payer entities.Payer
	// Expiration, when positive, sets date_of_expiration on new charges.
	Expiration time.Duration
	Clock      clockwork.Clock
}

type PixPaymentUseCase struct {
	gateway interfaces.IPaymentGateway
	cfg     PixPaymentConfig
	logger  *zap.Logger
}

var (
	_ IPixPaymentUseCase        = (*PixPaymentUseCase)(nil)
	_ interfaces.IPixPaymentAPI = (*PixPaymentUseCase)(nil)
)

func NewPixPaymentUseCase(gateway interfaces.IPaymentGateway, cfg PixPaymentConfig, logger *zap.Logger) *PixPaymentUseCase {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &PixPaymentUseCase{gateway: gateway, cfg: cfg, logger: logging.Component(logger, "payment.usecase")}
}

func (u *PixPaymentUseCase) CreatePixPayment(ctx context.Context, intent entities.PaymentIntent) (entities.PixCharge, error) {
	return u.CreatePixPaymentForPayer(ctx, intent, "")
}

// CreatePixPaymentForPayer is CreatePixPayment with the configured payer's
// email replaced by payerEmail when it is not blank.
func (u *PixPaymentUseCase) CreatePixPaymentForPayer(ctx context.Context, intent entities.PaymentIntent, payerEmail string) (entities.PixCharge, error) {
	// Re-validate: intents may be built as struct literals.
	intent, err := entities.NewPaymentIntent(intent.Title, intent.Amount, intent.Quantity)
	if err != nil {
		u.logger.Info("invalid intent", zap.Error(err))
		return entities.PixCharge{}, err
	}
	if u.gateway == nil {
		u.logger.Error("gateway not configured")
		return entities.PixCharge{}, ErrPaymentGatewayNotConfigured
	}

	req := interfaces.PixPaymentRequest{
		Description:       intent.Title,
		Amount:            intent.Amount,
		Quantity:          intent.Quantity,
		Payer:             u.cfg.Payer,
		ExternalReference: uuid.NewString(),
	}
	if email := strings.TrimSpace(payerEmail); email != "" {
		req.Payer.Email = email
	}
	if u.cfg.Expiration > 0 {
		expiresAt := u.cfg.Clock.Now().Add(u.cfg.Expiration).UTC()
		req.ExpiresAt = &expiresAt
	}

	log := u.logger.With(zap.String("external_reference", req.ExternalReference))
	log.Info("create start",
		zap.String("title", intent.Title),
		zap.Float64("amount", intent.Amount),
		zap.Int("quantity", intent.Quantity),
		zap.Float64("transaction_amount", req.Amount),
	)

	charge, err := u.gateway.CreatePixPayment(ctx, req)
	if err != nil {
		var gwErr *interfaces.GatewayError
		if errors.As(err, &gwErr) {
			log.Warn("provider rejected payment", zap.Int("provider_status_code", gwErr.StatusCode), zap.ByteString("details", gwErr.Details))
		} else {
			log.Error("payment gateway failed", zap.Error(err))
		}
		return entities.PixCharge{}, err
	}
	log.Info("create success", zap.String("payment_id", charge.ID), zap.String("status", string(charge.Status)))
	return charge, nil
}

func (u *PixPaymentUseCase) GetPayment(ctx context.Context, paymentID string) (entities.PaymentCheck, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return entities.PaymentCheck{}, ErrInvalidPaymentID
	}
	if u.gateway == nil {
		return entities.PaymentCheck{}, ErrPaymentGatewayNotConfigured
	}

	check, err := u.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		u.logger.Warn("check failed", zap.String("payment_id", paymentID), zap.Error(err))
		return entities.PaymentCheck{}, err
	}
	if !check.Status.IsValid() {
		check.Status = entities.NormalizeProviderStatus(check.ProviderStatus)
	}
	if check.ID == "" {
		check.ID = paymentID
	}
	return check, nil
}

// CheckPayment returns only the normalized status; it satisfies poller.StatusChecker.
func (u *PixPaymentUseCase) CheckPayment(ctx context.Context, paymentID string) (entities.PaymentStatus, error) {
	check, err := u.GetPayment(ctx, paymentID)
	if err != nil {
		return "", err
	}
	return check.Status, nil
}
