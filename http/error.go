package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/hlog"

	"github.com/quantonganh/newsletter"
)

const (
	messageValidation   = "Validation error"
	messageDatabase     = "Database connection error. Try again later."
	messageMalformed    = "Check the wrong request"
	payloadMalformed    = "Request malformed"
	messageInternal     = "An internal error has occurred."
	messageUnauthorized = "Unauthorized"
)

type appHandler func(w http.ResponseWriter, r *http.Request) error

// Error parse HTTP error and write to header and body
func (s *Server) Error(fn appHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		clientError, ok := err.(ClientError)
		if !ok {
			hlog.FromRequest(r).Error().Err(err).Msg("internal error")
			sentry.CaptureException(err)
			writeEnvelope(w, newsletter.Envelope{
				Code:    http.StatusInternalServerError,
				Message: messageInternal,
			})
			return
		}

		status, headers := clientError.Headers()
		logger := hlog.FromRequest(r)
		if status >= http.StatusInternalServerError {
			event := logger.Error().Err(err).Int("status", status)
			if e, ok := err.(*Error); ok {
				event = event.Str("cause", e.Message)
			}
			event.Msg("request failed")
			sentry.CaptureException(err)
		} else {
			logger.Info().Err(err).Int("status", status).Msg("request rejected")
		}

		body, err := clientError.Body()
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		for k, v := range headers {
			w.Header().Set(k, v)
		}

		w.WriteHeader(status)

		if len(body) > 0 {
			_, _ = w.Write(body)
		}
	}
}

// ClientError is the interface that wraps methods related to error on the client side
type ClientError interface {
	Error() string
	Body() ([]byte, error)
	Headers() (int, map[string]string)
}

// Error represents an error rendered to the client as a JSON document
type Error struct {
	Cause   error
	Message string
	Status  int
	Payload interface{}
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Body returns response body from error
func (e *Error) Body() ([]byte, error) {
	if e.Payload == nil {
		return nil, nil
	}

	body, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("error while parsing response body: %w", err)
	}
	return body, nil
}

// Headers returns status and header
func (e *Error) Headers() (int, map[string]string) {
	return e.Status, map[string]string{
		"Content-Type": "application/json; charset=utf-8",
	}
}

// NewError returns new error rendered with the given status and JSON payload
func NewError(err error, status int, message string, payload interface{}) error {
	return &Error{
		Cause:   err,
		Message: message,
		Status:  status,
		Payload: payload,
	}
}

func envelopeError(err error, env newsletter.Envelope) error {
	return NewError(err, env.Code, env.Message, env)
}

func malformedError(err error) error {
	return envelopeError(err, newsletter.Envelope{
		Code: http.StatusBadRequest,
		Payload: map[string]string{
			newsletter.PayloadErrorMessage: err.Error(),
			newsletter.PayloadMessage:      payloadMalformed,
		},
		Message: messageMalformed,
	})
}

func databaseError(err error) error {
	return envelopeError(err, newsletter.Envelope{
		Code: http.StatusInternalServerError,
		Payload: map[string]string{
			newsletter.PayloadErrorMessage: err.Error(),
			newsletter.PayloadMessage:      messageDatabase,
		},
		Message: messageDatabase,
	})
}

func methodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, newsletter.Envelope{
			Code:    http.StatusMethodNotAllowed,
			Message: "Unsupported method: " + r.Method,
		})
	})
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, newsletter.Envelope{
			Code:    http.StatusNotFound,
			Message: "No resource at " + r.URL.Path,
		})
	})
}
