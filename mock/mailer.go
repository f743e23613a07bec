package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/quantonganh/newsletter"
)

// Mailer is a mock of newsletter.Mailer
type Mailer struct {
	mock.Mock
}

func (m *Mailer) Send(ctx context.Context, msg *newsletter.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
