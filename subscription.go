package newsletter

import (
	"bytes"
	"context"
	"time"
)

// DateLayout is the wire format of dates
const DateLayout = "2006-01-02"

// Subscription represents a subscriber of one of our newsletters
type Subscription struct {
	ID           int64  `json:"subscriptionId" storm:"id,increment"`
	Email        string `json:"email" storm:"unique"`
	FirstName    string `json:"firstName"`
	Gender       string `json:"gender"`
	Consent      bool   `json:"consent"`
	Birthdate    Date   `json:"birthdate"`
	NewsletterID int64  `json:"newsletterId"`
}

// SubscriptionStore persists subscriptions.
// Lookups return a nil subscription and a nil error when nothing matches.
// Insert returns an error with code ErrConflict when the email is already taken.
type SubscriptionStore interface {
	FindByID(ctx context.Context, id int64) (*Subscription, error)
	FindByEmail(ctx context.Context, email string) (*Subscription, error)
	FindAll(ctx context.Context) ([]Subscription, error)
	Insert(ctx context.Context, s *Subscription) error
	Delete(ctx context.Context, id int64) error
}

// SubscriptionService is the interface that wraps the subscription workflows.
// A returned error means the store could not be used; every business outcome,
// including "not found" and "already exists", is reported through the envelope.
type SubscriptionService interface {
	Create(ctx context.Context, s *Subscription) (Envelope, error)
	FindByID(ctx context.Context, id int64) (Envelope, error)
	FindByEmail(ctx context.Context, email string) (Envelope, error)
	FindAll(ctx context.Context) (Envelope, error)
	DeleteByID(ctx context.Context, id int64) (Envelope, error)
	DeleteByEmail(ctx context.Context, email string) (Envelope, error)
}

// SubscriptionRequest is the inbound representation of a subscription.
// Pointer fields distinguish a missing value from a zero value.
type SubscriptionRequest struct {
	Email        *string `json:"email" validate:"required,email_address"`
	FirstName    string  `json:"firstName"`
	Gender       string  `json:"gender"`
	Consent      *bool   `json:"consent" validate:"required"`
	Birthdate    *Date   `json:"birthdate" validate:"required,past"`
	NewsletterID *int64  `json:"newsletterId" validate:"required"`
}

// ToDomain converts a validated request into a subscription
func (r *SubscriptionRequest) ToDomain() *Subscription {
	s := &Subscription{
		FirstName: r.FirstName,
		Gender:    r.Gender,
	}
	if r.Email != nil {
		s.Email = *r.Email
	}
	if r.Consent != nil {
		s.Consent = *r.Consent
	}
	if r.Birthdate != nil {
		s.Birthdate = *r.Birthdate
	}
	if r.NewsletterID != nil {
		s.NewsletterID = *r.NewsletterID
	}
	return s
}

// Date is a calendar day without time of day
type Date struct {
	time.Time
}

// NewDate returns the date of the given day in UTC
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in DateLayout
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String implements fmt.Stringer
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// BeforeDay reports whether d is strictly before the calendar day of t
func (d Date) BeforeDay(t time.Time) bool {
	y, m, day := t.UTC().Date()
	return d.Time.Before(time.Date(y, m, day, 0, 0, 0, 0, time.UTC))
}

// MarshalJSON implements json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	t, err := time.Parse(`"`+DateLayout+`"`, string(data))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
