package testutil

import (
	"context"
	"net/http"
	"time"

	"coldchain/pkg/requestcontext"
)

// WithRequestID tags the request the way the RequestID middleware would.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithRequestTime pins the request clock so settlement and delivery
// timestamps are deterministic.
func WithRequestTime(req *http.Request, at time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), at))
}

// FixedClock returns a context whose request time is at.
func FixedClock(at time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), at)
}
