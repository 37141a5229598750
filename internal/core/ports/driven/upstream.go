package driven

import (
	"context"
	"time"
)

// UpstreamResponse is the result of a successful upstream HTTP call.
type UpstreamResponse struct {
	Status int
	Body   []byte
}

// UpstreamClient performs the raw HTTP call against a store endpoint.
// A non-2xx status or transport failure surfaces as *domain.UpstreamError;
// the error message is what the classifier pattern-matches on.
type UpstreamClient interface {
	Request(ctx context.Context, url, method string, timeout time.Duration) (*UpstreamResponse, error)
}
