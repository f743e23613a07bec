package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/quantonganh/newsletter"
	"github.com/quantonganh/newsletter/validate"
)

// SubscriptionsPath is the root of the subscription REST API
const SubscriptionsPath = "/rest/subscriptions"

type subscriptionHandler struct {
	service newsletter.SubscriptionService
}

// RegisterSubscriptionRoutes mounts the subscription API guarded by basic authentication
func (s *Server) RegisterSubscriptionRoutes(service newsletter.SubscriptionService, credentials newsletter.CredentialStore) {
	h := &subscriptionHandler{service: service}

	auth := basicAuth(credentials)
	handle := func(path string, fn appHandler, method string) {
		s.router.Handle(path, auth(s.Error(fn))).Methods(method)
	}

	handle(SubscriptionsPath, h.list, http.MethodGet)
	handle(SubscriptionsPath, h.create, http.MethodPost)
	handle(SubscriptionsPath, h.deleteByEmail, http.MethodDelete)
	handle(SubscriptionsPath+"/{id}", h.get, http.MethodGet)
	handle(SubscriptionsPath+"/{id}", h.delete, http.MethodDelete)
}

// list returns every subscription, or the one matching ?email=
func (h *subscriptionHandler) list(w http.ResponseWriter, r *http.Request) error {
	var (
		env newsletter.Envelope
		err error
	)
	if email, ok := r.URL.Query()["email"]; ok {
		env, err = h.service.FindByEmail(r.Context(), email[0])
	} else {
		env, err = h.service.FindAll(r.Context())
	}
	if err != nil {
		return databaseError(err)
	}

	writeEnvelope(w, env)
	return nil
}

func (h *subscriptionHandler) get(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return malformedError(err)
	}

	env, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		return databaseError(err)
	}

	writeEnvelope(w, env)
	return nil
}

func (h *subscriptionHandler) create(w http.ResponseWriter, r *http.Request) error {
	req, err := decodeSubscription(r)
	if err != nil {
		return err
	}

	env, err := h.service.Create(r.Context(), req.ToDomain())
	if err != nil {
		return databaseError(err)
	}

	writeEnvelope(w, env)
	return nil
}

func (h *subscriptionHandler) delete(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return malformedError(err)
	}

	env, err := h.service.DeleteByID(r.Context(), id)
	if err != nil {
		return databaseError(err)
	}

	writeEnvelope(w, env)
	return nil
}

func (h *subscriptionHandler) deleteByEmail(w http.ResponseWriter, r *http.Request) error {
	email, ok := r.URL.Query()["email"]
	if !ok {
		return malformedError(errors.New("email query parameter is required"))
	}

	env, err := h.service.DeleteByEmail(r.Context(), email[0])
	if err != nil {
		return databaseError(err)
	}

	writeEnvelope(w, env)
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("id must be a number, got " + strconv.Quote(raw))
	}
	return id, nil
}

// decodeSubscription reads and validates a subscription body.
// Rejections are returned as 400 envelopes.
func decodeSubscription(r *http.Request) (*newsletter.SubscriptionRequest, error) {
	var req *newsletter.SubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, envelopeError(err, newsletter.Envelope{
			Code: http.StatusBadRequest,
			Payload: map[string]string{
				newsletter.PayloadErrorMessage: "JSON parse error: " + err.Error(),
				newsletter.PayloadMessage:      messageValidation,
			},
			Message: messageValidation,
		})
	}

	if err := validate.Subscription(req); err != nil {
		payload := map[string]string{
			newsletter.PayloadErrorMessage: err.Error(),
			newsletter.PayloadMessage:      messageValidation,
		}
		var errs validate.Errors
		if errors.As(err, &errs) {
			payload[newsletter.PayloadErrorValues] = errs.Values()
		}
		return nil, envelopeError(err, newsletter.Envelope{
			Code:    http.StatusBadRequest,
			Payload: payload,
			Message: messageValidation,
		})
	}

	return req, nil
}
