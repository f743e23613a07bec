package newsletter

import "context"

// APIResponse is what the subscription API answered to the gateway.
// StatusCode is already classified: upstream 404 and 401 are kept, other failures become 500.
type APIResponse struct {
	StatusCode int
	Envelope   Envelope
}

// SubscriptionAPI is the client side of the subscription service REST API
type SubscriptionAPI interface {
	List(ctx context.Context) (*APIResponse, error)
	Get(ctx context.Context, id int64) (*APIResponse, error)
	Create(ctx context.Context, s *Subscription) (*APIResponse, error)
	Delete(ctx context.Context, id int64) (*APIResponse, error)
	ResourceURL(id int64) string
}
