package newsletter

import "net/http"

// Header names carried both in the envelope payload and in HTTP responses
const (
	HeaderIDCreated   = "Subscription-Id-Created"
	HeaderIDFound     = "Subscription-Id-Found"
	HeaderFoundAmount = "Subscriptions-Found-Amount"
)

// Payload keys of error envelopes
const (
	PayloadErrorMessage = "Error-Message"
	PayloadErrorValues  = "Error-Values"
	PayloadErrorCause   = "Error-Cause"
	PayloadMessage      = "Message"
	PayloadInfo         = "Info"
)

// Envelope is the response of every subscription operation
type Envelope struct {
	Code          int               `json:"code"`
	Subscriptions []Subscription    `json:"subscriptionData"`
	Payload       map[string]string `json:"payload,omitempty"`
	Message       string            `json:"message"`
}

// ErrorEnvelope is returned by the gateway when the subscription API fails
type ErrorEnvelope struct {
	Code    int               `json:"code"`
	Payload map[string]string `json:"payload,omitempty"`
	Message string            `json:"message"`
}

// Found reports whether the envelope carries the outcome of a successful lookup
func (e Envelope) Found() bool {
	return e.Code == http.StatusOK || e.Code == http.StatusFound
}

// First returns the first subscription of the envelope, if any
func (e Envelope) First() (Subscription, bool) {
	if len(e.Subscriptions) == 0 {
		return Subscription{}, false
	}
	return e.Subscriptions[0], true
}
