package http

import (
	"net/http"
	"strconv"

	"github.com/quantonganh/newsletter"
)

const (
	messageUpstream      = "Error contacting the API. Please, try again later."
	messageAlreadyExists = "Element already exists"
)

type gatewayHandler struct {
	api newsletter.SubscriptionAPI
}

// RegisterGatewayRoutes mounts the public subscription API that proxies to the subscription service
func (s *Server) RegisterGatewayRoutes(api newsletter.SubscriptionAPI) {
	h := &gatewayHandler{api: api}

	s.router.HandleFunc(SubscriptionsPath, s.Error(h.list)).Methods(http.MethodGet)
	s.router.HandleFunc(SubscriptionsPath, s.Error(h.create)).Methods(http.MethodPost)
	s.router.HandleFunc(SubscriptionsPath+"/{id}", s.Error(h.get)).Methods(http.MethodGet)
	s.router.HandleFunc(SubscriptionsPath+"/{id}", s.Error(h.delete)).Methods(http.MethodDelete)
}

func (h *gatewayHandler) list(w http.ResponseWriter, r *http.Request) error {
	resp, err := h.api.List(r.Context())
	if err != nil {
		return upstreamError(err)
	}

	writeSubscriptions(w, resp)
	return nil
}

func (h *gatewayHandler) get(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return malformedError(err)
	}

	resp, err := h.api.Get(r.Context(), id)
	if err != nil {
		return upstreamError(err)
	}

	writeSubscriptions(w, resp)
	return nil
}

func (h *gatewayHandler) create(w http.ResponseWriter, r *http.Request) error {
	req, err := decodeSubscription(r)
	if err != nil {
		return err
	}

	resp, err := h.api.Create(r.Context(), req.ToDomain())
	if err != nil {
		return upstreamError(err)
	}

	sub, _ := resp.Envelope.First()
	switch resp.StatusCode {
	case http.StatusCreated:
		writeJSONResponse(w, http.StatusCreated, map[string]string{
			"Created-Id": strconv.FormatInt(sub.ID, 10),
		})
	case http.StatusFound:
		writeJSONResponse(w, http.StatusExpectationFailed, map[string]string{
			"Message":      messageAlreadyExists,
			"Resource-Uri": h.api.ResourceURL(sub.ID),
		})
	default:
		w.WriteHeader(normalizeStatus(resp.StatusCode))
	}

	return nil
}

func (h *gatewayHandler) delete(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return malformedError(err)
	}

	resp, err := h.api.Delete(r.Context(), id)
	if err != nil {
		return upstreamError(err)
	}

	w.WriteHeader(normalizeStatus(resp.StatusCode))
	return nil
}

func writeSubscriptions(w http.ResponseWriter, resp *newsletter.APIResponse) {
	if resp.StatusCode != http.StatusOK {
		w.WriteHeader(normalizeStatus(resp.StatusCode))
		return
	}

	subs := resp.Envelope.Subscriptions
	if subs == nil {
		subs = []newsletter.Subscription{}
	}
	writeJSONResponse(w, http.StatusOK, subs)
}

// normalizeStatus keeps the statuses the gateway forwards and turns any other into 500
func normalizeStatus(status int) int {
	switch status {
	case http.StatusOK, http.StatusNotFound, http.StatusUnauthorized:
		return status
	default:
		return http.StatusInternalServerError
	}
}

// upstreamError tells a subscription API that cannot be reached apart from one answering nonsense.
// Both are 500 for the client; the cause is logged and sent in the payload.
func upstreamError(err error) error {
	cause, text := "UnexpectedError", "Api did not respond as expected"
	if newsletter.ErrorCode(err) == newsletter.ErrConnection {
		cause, text = "ConnectionError", "Api cannot be reached"
	}

	return NewError(err, http.StatusInternalServerError, cause, newsletter.ErrorEnvelope{
		Code:    http.StatusInternalServerError,
		Payload: map[string]string{newsletter.PayloadErrorCause: text},
		Message: messageUpstream,
	})
}
