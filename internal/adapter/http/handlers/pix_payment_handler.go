package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	request "pix_checkout/internal/adapter/http/dto/request"
	response "pix_checkout/internal/adapter/http/dto/response"
	"pix_checkout/internal/domain/entities"
	"pix_checkout/internal/infrastructure/logging"
	"pix_checkout/internal/poller"
	"pix_checkout/internal/usecase"
	"pix_checkout/internal/usecase/interfaces"
	"pix_checkout/pkg"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	errInvalidPixPaymentPayload = pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
)

// PixPaymentHandler handles PIX payment initiation and confirmation.
type PixPaymentHandler struct {
	usecase  usecase.IPixPaymentUseCase
	observer poller.Observer
	pollOpts []poller.Option
	logger   *zap.Logger
}

// NewPixPaymentHandler builds the handler. observer (may be nil) and pollOpts
// apply to every session opened by the events stream.
func NewPixPaymentHandler(uc usecase.IPixPaymentUseCase, logger *zap.Logger, observer poller.Observer, pollOpts ...poller.Option) *PixPaymentHandler {
	return &PixPaymentHandler{
		usecase:  uc,
		observer: observer,
		pollOpts: pollOpts,
		logger:   logging.Component(logger, "payment.handler"),
	}
}

// CreatePixPayment godoc
// @Summary      Create a PIX payment
// @Description  Creates a PIX charge on the payment provider and returns the QR data.
// @Description  Answers 201 Created; clients treat any 2xx as success.
// @Tags         pix-payments
// @Accept       json
// @Produce      json
// @Param        payment  body      request.PixPaymentCreateRequest  true  "Payment intent"
// @Success      201      {object}  response.PixPaymentResponse
// @Failure      400      {object}  pkg.HTTPError
// @Failure      500      {object}  pkg.HTTPError
// @Router       /pix-payments [post]
func (h *PixPaymentHandler) CreatePixPayment(c *gin.Context) {
	var payload request.PixPaymentCreateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Info("invalid payload", zap.Error(err))
		c.JSON(errInvalidPixPaymentPayload.HTTPStatus, errInvalidPixPaymentPayload.ToHTTPError())
		return
	}
	intent, err := payload.ToIntent()
	if err != nil {
		h.logger.Info("invalid intent", zap.Error(err))
		c.JSON(errInvalidPixPaymentPayload.HTTPStatus, errInvalidPixPaymentPayload.ToHTTPError())
		return
	}

	charge, err := h.usecase.CreatePixPaymentForPayer(c.Request.Context(), intent, payload.PayerEmail)
	if err != nil {
		appErr := mapPixPaymentError(err)
		h.logger.Warn("create failed", zap.Int("http_status", appErr.HTTPStatus), zap.Error(err))
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	h.logger.Info("create success", zap.String("payment_id", charge.ID), zap.String("status", string(charge.Status)))

	c.JSON(http.StatusCreated, response.FromPixCharge(charge))
}

// CheckPayment godoc
// @Summary      Check a PIX payment
// @Description  Fetches the current status of a payment from the provider.
// @Tags         pix-payments
// @Produce      json
// @Param        id   path      string  true  "Provider payment id"
// @Success      200  {object}  response.PaymentCheckResponse
// @Failure      400  {object}  pkg.HTTPError
// @Failure      404  {object}  pkg.HTTPError
// @Failure      500  {object}  pkg.HTTPError
// @Router       /pix-payments/{id} [get]
func (h *PixPaymentHandler) CheckPayment(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	check, err := h.usecase.GetPayment(c.Request.Context(), id)
	if err != nil {
		appErr := mapPixPaymentError(err)
		h.logger.Warn("check failed", zap.String("payment_id", id), zap.Int("http_status", appErr.HTTPStatus), zap.Error(err))
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromPaymentCheck(check))
}

// WatchPayment godoc
// @Summary      Stream payment confirmation
// @Description  Polls the payment status and streams "check", "skipped" and a final "result" event.
// @Tags         pix-payments
// @Produce      text/event-stream
// @Param        id   path  string  true  "Provider payment id"
// @Success      200  {object}  response.ResultEvent
// @Failure      400  {object}  pkg.HTTPError
// @Router       /pix-payments/{id}/events [get]
func (h *PixPaymentHandler) WatchPayment(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(errInvalidPixPaymentPayload.HTTPStatus, errInvalidPixPaymentPayload.ToHTTPError())
		return
	}

	stream := newStreamObserver()
	opts := append([]poller.Option{}, h.pollOpts...)
	opts = append(opts, poller.WithLogger(h.logger), poller.WithObserver(poller.Observers(h.observer, stream)))

	session, err := poller.New(id, poller.CheckerFunc(h.usecase.CheckPayment), nil, opts...)
	if err != nil {
		c.JSON(errInvalidPixPaymentPayload.HTTPStatus, errInvalidPixPaymentPayload.ToHTTPError())
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	// The request context ends the session when the client goes away.
	if err := session.Start(c.Request.Context()); err != nil {
		h.logger.Error("session start failed", zap.String("payment_id", id), zap.Error(err))
		return
	}
	h.logger.Info("watch start", zap.String("payment_id", id), zap.String("session_id", session.ID()))

	for {
		select {
		case ev := <-stream.events:
			c.SSEvent(ev.name, ev.data)
			c.Writer.Flush()
		case <-session.Done():
			for drained := false; !drained; {
				select {
				case ev := <-stream.events:
					c.SSEvent(ev.name, ev.data)
				default:
					drained = true
				}
			}
			outcome, _ := session.Outcome()
			c.SSEvent("result", response.ResultEvent{PaymentID: id, Outcome: string(outcome)})
			c.Writer.Flush()
			h.logger.Info("watch finished", zap.String("payment_id", id), zap.String("outcome", string(outcome)))
			return
		}
	}
}

func mapPixPaymentError(err error) *pkg.AppError {
	var gwErr *interfaces.GatewayError
	switch {
	case errors.Is(err, entities.ErrInvalidTitle), errors.Is(err, entities.ErrInvalidPrice), errors.Is(err, entities.ErrInvalidQuantity),
		errors.Is(err, usecase.ErrInvalidPaymentID):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.As(err, &gwErr) && gwErr.StatusCode == http.StatusNotFound:
		return pkg.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found", err, http.StatusNotFound).WithDetails(gwErr.Details)
	case errors.As(err, &gwErr) && gwErr.StatusCode >= 400 && gwErr.StatusCode <= 599:
		return pkg.NewDomainError("PAYMENT_PROVIDER_REJECTED", "Payment provider rejected the request", err, gwErr.StatusCode).WithDetails(gwErr.Details)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}

type sseEvent struct {
	name string
	data any
}

// streamObserver forwards session events to the SSE loop. Events that do not
// fit in the buffer are dropped; the final result is always sent.
type streamObserver struct {
	events chan sseEvent
}

func newStreamObserver() *streamObserver {
	return &streamObserver{events: make(chan sseEvent, 64)}
}

func (o *streamObserver) CheckCompleted(_ string, attempt int, status entities.PaymentStatus, err error) {
	ev := response.CheckEvent{Attempt: attempt, Status: string(status)}
	if err != nil {
		// Upstream details stay in the server logs.
		ev.Status = ""
		ev.Error = "status check failed"
	}
	o.send(sseEvent{name: "check", data: ev})
}

func (o *streamObserver) CheckSkipped(_ string, attempt int) {
	o.send(sseEvent{name: "skipped", data: response.SkippedEvent{Attempt: attempt}})
}

func (o *streamObserver) SessionFinished(string, poller.Outcome, time.Duration) {}

func (o *streamObserver) send(ev sseEvent) {
	select {
	case o.events <- ev:
	default:
	}
}
