package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantonganh/newsletter"
)

func ptr[T any](v T) *T {
	return &v
}

func validRequest() *newsletter.SubscriptionRequest {
	return &newsletter.SubscriptionRequest{
		Email:        ptr("a@test.com"),
		FirstName:    "Ann",
		Consent:      ptr(true),
		Birthdate:    ptr(newsletter.NewDate(1993, 4, 1)),
		NewsletterID: ptr(int64(1)),
	}
}

func TestSubscription(t *testing.T) {
	now = func() time.Time {
		return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	}
	t.Cleanup(func() {
		now = time.Now
	})

	tests := []struct {
		name   string
		modify func(r *newsletter.SubscriptionRequest)
		want   []FieldError
	}{
		{
			name:   "valid",
			modify: func(r *newsletter.SubscriptionRequest) {},
		},
		{
			name:   "consent false is specified",
			modify: func(r *newsletter.SubscriptionRequest) { r.Consent = ptr(false) },
		},
		{
			name:   "upper case email",
			modify: func(r *newsletter.SubscriptionRequest) { r.Email = ptr("A.B+news@Example.COM") },
		},
		{
			name:   "missing email",
			modify: func(r *newsletter.SubscriptionRequest) { r.Email = nil },
			want:   []FieldError{{Field: "email", Message: "Email must be specified"}},
		},
		{
			name:   "invalid email",
			modify: func(r *newsletter.SubscriptionRequest) { r.Email = ptr("not-an-email") },
			want:   []FieldError{{Field: "email", Message: "Email must be valid"}},
		},
		{
			name:   "missing consent",
			modify: func(r *newsletter.SubscriptionRequest) { r.Consent = nil },
			want:   []FieldError{{Field: "consent", Message: "Consent must be specified"}},
		},
		{
			name:   "missing birthdate",
			modify: func(r *newsletter.SubscriptionRequest) { r.Birthdate = nil },
			want:   []FieldError{{Field: "birthdate", Message: "Birthdate must be specified"}},
		},
		{
			name:   "birthdate today",
			modify: func(r *newsletter.SubscriptionRequest) { r.Birthdate = ptr(newsletter.NewDate(2024, 6, 15)) },
			want:   []FieldError{{Field: "birthdate", Message: "Birthdate cannot be in the future"}},
		},
		{
			name:   "birthdate in the future",
			modify: func(r *newsletter.SubscriptionRequest) { r.Birthdate = ptr(newsletter.NewDate(2030, 1, 1)) },
			want:   []FieldError{{Field: "birthdate", Message: "Birthdate cannot be in the future"}},
		},
		{
			name:   "missing newsletter id",
			modify: func(r *newsletter.SubscriptionRequest) { r.NewsletterID = nil },
			want:   []FieldError{{Field: "newsletterId", Message: "Newsletter Id must be specified"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.modify(req)

			err := Subscription(req)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}

			var errs Errors
			require.ErrorAs(t, err, &errs)
			assert.Equal(t, Errors(tt.want), errs)
		})
	}
}

func TestErrorsFormatting(t *testing.T) {
	errs := Errors{
		{Field: "email", Message: "Email must be specified"},
		{Field: "consent", Message: "Consent must be specified"},
	}

	assert.Equal(t, "[email: Email must be specified, consent: Consent must be specified]", errs.Values())
	assert.Equal(t, "Validation failed for subscription: Email must be specified; Consent must be specified", errs.Error())
}

func TestNilRequest(t *testing.T) {
	assert.Error(t, Subscription(nil))
}
