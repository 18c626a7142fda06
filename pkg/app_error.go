package pkg

import (
	"encoding/json"
	"fmt"
)

// AppError is the error shape rendered by HTTP handlers.
//
// Err is kept for logging only and is never serialized.
type AppError struct {
	Code       string
	Message    string
	Err        error
	HTTPStatus int
	Details    json.RawMessage
}

// HTTPError is the JSON body returned to clients.
type HTTPError struct {
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details json.RawMessage `json:"details,omitempty"`
}

func NewDomainError(code, message string, err error, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, Err: err, HTTPStatus: httpStatus}
}

func NewDomainErrorSimple(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// WithDetails attaches an upstream payload. Invalid JSON is dropped.
func (e *AppError) WithDetails(details json.RawMessage) *AppError {
	if len(details) > 0 && json.Valid(details) {
		e.Details = details
	}
	return e
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) ToHTTPError() HTTPError {
	return HTTPError{Error: e.Message, Code: e.Code, Details: e.Details}
}
