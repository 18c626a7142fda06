package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	request "pix_checkout/internal/adapter/http/dto/request"
	response "pix_checkout/internal/adapter/http/dto/response"
	"pix_checkout/internal/domain/entities"
	"pix_checkout/internal/poller"
	"pix_checkout/internal/usecase/interfaces"
	"pix_checkout/pkg"

	"github.com/go-resty/resty/v2"
)

const pixPaymentsPath = "/v1/pix-payments"

var (
	ErrEmptyPaymentID = errors.New("empty payment id")
	// ErrStreamClosed is returned when the events stream ends without a result.
	ErrStreamClosed = errors.New("events stream closed before a result")
)

// APIError is a non-2xx answer from the PIX checkout API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    json.RawMessage
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("pix api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("pix api: status %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

// Event is one server-sent event of a confirmation stream.
type Event struct {
	Name    string
	Check   response.CheckEvent
	Skipped response.SkippedEvent
}

// PixAPIClient talks to the PIX checkout HTTP API.
type PixAPIClient struct {
	rest *resty.Client
	// stream has no overall timeout; event streams live as long as the session.
	stream     *resty.Client
	payerEmail string
}

var _ interfaces.IPixPaymentAPI = (*PixAPIClient)(nil)

type Option func(*PixAPIClient)

// WithPayerEmail sends email as the payer of every created payment.
func WithPayerEmail(email string) Option {
	return func(c *PixAPIClient) { c.payerEmail = strings.TrimSpace(email) }
}

// WithTransport replaces the HTTP transport of both underlying clients.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *PixAPIClient) {
		c.rest.SetTransport(rt)
		c.stream.SetTransport(rt)
	}
}

func NewPixAPIClient(baseURL string, timeout time.Duration, opts ...Option) *PixAPIClient {
	baseURL = strings.TrimRight(baseURL, "/")
	c := &PixAPIClient{
		rest: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		stream: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Accept", "text/event-stream"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *PixAPIClient) CreatePixPayment(ctx context.Context, intent entities.PaymentIntent) (entities.PixCharge, error) {
	body := request.PixPaymentCreateRequest{
		Title:      intent.Title,
		Price:      intent.Amount,
		Quantity:   intent.Quantity,
		PayerEmail: c.payerEmail,
	}

	var out response.PixPaymentResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&out).
		Post(pixPaymentsPath)
	if err != nil {
		return entities.PixCharge{}, err
	}
	if resp.IsError() {
		return entities.PixCharge{}, apiError(resp)
	}

	return entities.PixCharge{
		ID:                out.ID,
		Status:            entities.PaymentStatus(out.Status),
		QRCode:            out.QRCode,
		QRCodeBase64:      out.QRCodeBase64,
		TicketURL:         out.TicketURL,
		PaymentMethodID:   out.PaymentMethodID,
		TransactionAmount: out.TransactionAmount,
		DateOfExpiration:  out.DateOfExpiration,
	}, nil
}

func (c *PixAPIClient) GetPayment(ctx context.Context, paymentID string) (entities.PaymentCheck, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return entities.PaymentCheck{}, ErrEmptyPaymentID
	}

	var out response.PaymentCheckResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&out).
		Get(pixPaymentsPath + "/" + url.PathEscape(paymentID))
	if err != nil {
		return entities.PaymentCheck{}, err
	}
	if resp.IsError() {
		return entities.PaymentCheck{}, apiError(resp)
	}

	status := entities.PaymentStatus(out.Status)
	if !status.IsValid() {
		status = entities.PaymentStatusUnknownError
	}
	return entities.PaymentCheck{
		ID:             out.ID,
		Status:         status,
		ProviderStatus: out.ProviderStatus,
		StatusDetail:   out.StatusDetail,
	}, nil
}

func (c *PixAPIClient) CheckPayment(ctx context.Context, paymentID string) (entities.PaymentStatus, error) {
	check, err := c.GetPayment(ctx, paymentID)
	if err != nil {
		return "", err
	}
	return check.Status, nil
}

// WatchPayment follows the server-side confirmation stream of paymentID,
// calling onEvent for every check and skipped tick, and returns the outcome
// of the final result event. Cancelling ctx closes the stream, which cancels
// the server session.
func (c *PixAPIClient) WatchPayment(ctx context.Context, paymentID string, onEvent func(Event)) (poller.Outcome, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return "", ErrEmptyPaymentID
	}

	resp, err := c.stream.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(pixPaymentsPath + "/" + url.PathEscape(paymentID) + "/events")
	if err != nil {
		return "", err
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		var httpErr pkg.HTTPError
		if err := json.NewDecoder(body).Decode(&httpErr); err != nil {
			return "", &APIError{StatusCode: resp.StatusCode()}
		}
		return "", &APIError{StatusCode: resp.StatusCode(), Code: httpErr.Code, Message: httpErr.Error, Details: httpErr.Details}
	}

	var name, data string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data += strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case line == "":
			if name == "" {
				continue
			}
			outcome, done, err := dispatch(name, data, onEvent)
			if err != nil || done {
				return outcome, err
			}
			name, data = "", ""
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return "", err
	}
	if ctx.Err() != nil {
		return poller.OutcomeCancelled, nil
	}
	return "", ErrStreamClosed
}

func dispatch(name, data string, onEvent func(Event)) (poller.Outcome, bool, error) {
	ev := Event{Name: name}
	switch name {
	case "check":
		if err := json.Unmarshal([]byte(data), &ev.Check); err != nil {
			return "", true, fmt.Errorf("decode check event: %w", err)
		}
	case "skipped":
		if err := json.Unmarshal([]byte(data), &ev.Skipped); err != nil {
			return "", true, fmt.Errorf("decode skipped event: %w", err)
		}
	case "result":
		var result response.ResultEvent
		if err := json.Unmarshal([]byte(data), &result); err != nil {
			return "", true, fmt.Errorf("decode result event: %w", err)
		}
		return poller.Outcome(result.Outcome), true, nil
	default:
		return "", false, nil
	}
	if onEvent != nil {
		onEvent(ev)
	}
	return "", false, nil
}

func apiError(resp *resty.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode()}
	var httpErr pkg.HTTPError
	if err := json.Unmarshal(resp.Body(), &httpErr); err == nil {
		apiErr.Code = httpErr.Code
		apiErr.Message = httpErr.Error
		apiErr.Details = httpErr.Details
	}
	return apiErr
}
