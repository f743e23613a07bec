package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	testifymock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quantonganh/newsletter"
	"github.com/quantonganh/newsletter/mock"
	"github.com/quantonganh/newsletter/token"
)

const (
	testApplicationID = "gateway"
	testSecret        = "change-me"
)

var credentials *token.Store

func TestMain(m *testing.M) {
	var err error
	credentials, err = token.Parse([]byte(`[{
		"applicationId": "gateway",
		"token": "e2186dbdb1bb4193608605e84f33208765b5693b55edd4f730a719a100eeea6f",
		"role": "ADMIN"
	}]`))
	if err != nil {
		log.Fatal(err)
	}

	os.Exit(m.Run())
}

func newCoreServer(service newsletter.SubscriptionService) *Server {
	s := NewServer(zerolog.Nop())
	s.RegisterSubscriptionRoutes(service, credentials)
	return s
}

func serve(s *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	req.SetBasicAuth(testApplicationID, testSecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) newsletter.Envelope {
	t.Helper()

	var env newsletter.Envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	return env
}

const validBody = `{"email":"a@test.com","firstName":"Ann","consent":true,"birthdate":"1993-04-01","newsletterId":1}`

func TestCreateSubscriptionHandler(t *testing.T) {
	created := newsletter.Subscription{ID: 7, Email: "a@test.com", FirstName: "Ann", Consent: true, Birthdate: newsletter.NewDate(1993, 4, 1), NewsletterID: 1}

	t.Run("created", func(t *testing.T) {
		service := new(mock.SubscriptionService)
		service.On("Create", testifymock.Anything, testifymock.MatchedBy(func(s *newsletter.Subscription) bool {
			return s.Email == "a@test.com" && s.Consent && s.Birthdate.String() == "1993-04-01" && s.NewsletterID == 1
		})).Return(newsletter.Envelope{
			Code:          http.StatusCreated,
			Subscriptions: []newsletter.Subscription{created},
			Payload:       map[string]string{newsletter.HeaderIDCreated: "7"},
			Message:       "Created entry with email: a@test.com and id: 7",
		}, nil)

		w := serve(newCoreServer(service), http.MethodPost, SubscriptionsPath, strings.NewReader(validBody))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "7", w.Header().Get(newsletter.HeaderIDCreated))
		env := decodeEnvelope(t, w)
		assert.Equal(t, http.StatusCreated, env.Code)
		assert.Equal(t, []newsletter.Subscription{created}, env.Subscriptions)
	})

	t.Run("already exists", func(t *testing.T) {
		service := new(mock.SubscriptionService)
		service.On("Create", testifymock.Anything, testifymock.Anything).Return(newsletter.Envelope{
			Code:          http.StatusFound,
			Subscriptions: []newsletter.Subscription{created},
			Payload:       map[string]string{newsletter.HeaderIDFound: "7"},
		}, nil)

		w := serve(newCoreServer(service), http.MethodPost, SubscriptionsPath, strings.NewReader(validBody))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "7", w.Header().Get(newsletter.HeaderIDFound))
	})

	t.Run("validation error", func(t *testing.T) {
		service := new(mock.SubscriptionService)

		w := serve(newCoreServer(service), http.MethodPost, SubscriptionsPath,
			strings.NewReader(`{"firstName":"Ann","consent":true,"birthdate":"1993-04-01","newsletterId":1}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, "Validation error", env.Message)
		assert.Nil(t, env.Subscriptions)
		assert.Equal(t, "[email: Email must be specified]", env.Payload[newsletter.PayloadErrorValues])
		service.AssertNotCalled(t, "Create", testifymock.Anything, testifymock.Anything)
	})

	t.Run("malformed json", func(t *testing.T) {
		service := new(mock.SubscriptionService)

		w := serve(newCoreServer(service), http.MethodPost, SubscriptionsPath, strings.NewReader(`{"email":`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, "Validation error", env.Message)
		assert.Contains(t, env.Payload[newsletter.PayloadErrorMessage], "JSON parse error")
	})

	t.Run("bad birthdate format", func(t *testing.T) {
		service := new(mock.SubscriptionService)

		w := serve(newCoreServer(service), http.MethodPost, SubscriptionsPath,
			strings.NewReader(`{"email":"a@test.com","consent":true,"birthdate":"01/04/1993","newsletterId":1}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		service := new(mock.SubscriptionService)
		service.On("Create", testifymock.Anything, testifymock.Anything).
			Return(newsletter.Envelope{}, assert.AnError)

		w := serve(newCoreServer(service), http.MethodPost, SubscriptionsPath, strings.NewReader(validBody))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, messageDatabase, env.Message)
	})
}

func TestGetSubscriptionHandler(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		service := new(mock.SubscriptionService)
		service.On("FindByID", testifymock.Anything, int64(999)).Return(newsletter.Envelope{
			Code:    http.StatusNotFound,
			Message: "Entity of id: 999 was not found.",
		}, nil)

		w := serve(newCoreServer(service), http.MethodGet, SubscriptionsPath+"/999", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Empty(t, w.Header().Get(newsletter.HeaderIDFound))
		env := decodeEnvelope(t, w)
		assert.Nil(t, env.Subscriptions)
	})

	t.Run("found", func(t *testing.T) {
		service := new(mock.SubscriptionService)
		service.On("FindByID", testifymock.Anything, int64(4)).Return(newsletter.Envelope{
			Code:          http.StatusOK,
			Subscriptions: []newsletter.Subscription{{ID: 4, Email: "b@test.com"}},
			Payload:       map[string]string{newsletter.HeaderIDFound: "4"},
		}, nil)

		w := serve(newCoreServer(service), http.MethodGet, SubscriptionsPath+"/4", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "4", w.Header().Get(newsletter.HeaderIDFound))
	})

	t.Run("id is not a number", func(t *testing.T) {
		service := new(mock.SubscriptionService)

		w := serve(newCoreServer(service), http.MethodGet, SubscriptionsPath+"/abc", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, "Check the wrong request", env.Message)
		assert.Equal(t, "Request malformed", env.Payload[newsletter.PayloadMessage])
	})
}

func TestListSubscriptionsHandler(t *testing.T) {
	service := new(mock.SubscriptionService)
	service.On("FindAll", testifymock.Anything).Return(newsletter.Envelope{
		Code:          http.StatusOK,
		Subscriptions: []newsletter.Subscription{{ID: 1}, {ID: 2}},
		Payload:       map[string]string{newsletter.HeaderFoundAmount: "2"},
		Message:       "Amount of elements found: 2",
	}, nil)
	service.On("FindByEmail", testifymock.Anything, "c@test.com").Return(newsletter.Envelope{
		Code:          http.StatusOK,
		Subscriptions: []newsletter.Subscription{{ID: 3, Email: "c@test.com"}},
		Payload:       map[string]string{newsletter.HeaderIDFound: "3"},
	}, nil)
	s := newCoreServer(service)

	w := serve(s, http.MethodGet, SubscriptionsPath, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get(newsletter.HeaderFoundAmount))
	assert.Len(t, decodeEnvelope(t, w).Subscriptions, 2)

	w = serve(s, http.MethodGet, SubscriptionsPath+"?email=c@test.com", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3", w.Header().Get(newsletter.HeaderIDFound))
}

func TestDeleteSubscriptionHandler(t *testing.T) {
	service := new(mock.SubscriptionService)
	service.On("DeleteByID", testifymock.Anything, int64(5)).Return(newsletter.Envelope{
		Code:          http.StatusOK,
		Subscriptions: []newsletter.Subscription{{ID: 5}},
	}, nil)
	service.On("DeleteByEmail", testifymock.Anything, "d@test.com").Return(newsletter.Envelope{
		Code: http.StatusNotFound,
	}, nil)
	s := newCoreServer(service)

	w := serve(s, http.MethodDelete, SubscriptionsPath+"/5", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(s, http.MethodDelete, SubscriptionsPath+"?email=d@test.com", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(s, http.MethodDelete, SubscriptionsPath, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnsupportedMethod(t *testing.T) {
	w := serve(newCoreServer(new(mock.SubscriptionService)), http.MethodPut, SubscriptionsPath+"/1", bytes.NewReader([]byte(validBody)))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "Unsupported method: PUT", env.Message)
}

func TestBasicAuth(t *testing.T) {
	service := new(mock.SubscriptionService)
	s := newCoreServer(service)

	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"no credentials", func(r *http.Request) {}},
		{"wrong secret", func(r *http.Request) { r.SetBasicAuth(testApplicationID, "wrong") }},
		{"unknown application", func(r *http.Request) { r.SetBasicAuth("unknown", testSecret) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, SubscriptionsPath, nil)
			tt.setup(req)

			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
		})
	}

	service.AssertNotCalled(t, "FindAll", testifymock.Anything)
}

func TestOperationalEndpoints(t *testing.T) {
	s := newCoreServer(new(mock.SubscriptionService))

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "newsletter_http_request_duration_seconds")
}

func TestServerOpenClose(t *testing.T) {
	s := NewServer(zerolog.Nop())
	s.Addr = "127.0.0.1:0"
	require.NoError(t, s.Open())
	defer s.Close()

	assert.NotZero(t, s.Port())
	assert.Equal(t, "http", s.Scheme())

	resp, err := http.Get(s.URL() + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
