// Package validate checks inbound subscriptions before they reach the workflows.
package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/quantonganh/newsletter"
)

var emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,6}$`)

var now = time.Now

var messages = map[string]string{
	"email.required":        "Email must be specified",
	"email.email_address":   "Email must be valid",
	"consent.required":      "Consent must be specified",
	"birthdate.required":    "Birthdate must be specified",
	"birthdate.past":        "Birthdate cannot be in the future",
	"newsletterId.required": "Newsletter Id must be specified",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(newsletter.Date); ok {
			return d.Time
		}
		return nil
	}, newsletter.Date{})

	if err := v.RegisterValidation("email_address", emailAddress); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("past", past); err != nil {
		panic(err)
	}

	return v
}

func emailAddress(fl validator.FieldLevel) bool {
	return emailPattern.MatchString(fl.Field().String())
}

func past(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return newsletter.Date{Time: t}.BeforeDay(now())
}

// FieldError is a single rejected field
type FieldError struct {
	Field   string
	Message string
}

// Errors lists every rejected field of a subscription
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Message)
	}
	return "Validation failed for subscription: " + strings.Join(parts, "; ")
}

// Values renders the rejected fields as "[field: message, ...]"
func (e Errors) Values() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Subscription validates a subscription request and returns Errors when a field is rejected
func Subscription(req *newsletter.SubscriptionRequest) error {
	if req == nil {
		return Errors{{Field: "subscription", Message: "Subscription must be specified"}}
	}

	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	result := make(Errors, 0, len(validationErrors))
	for _, fe := range validationErrors {
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		result = append(result, FieldError{Field: fe.Field(), Message: msg})
	}

	return result
}
