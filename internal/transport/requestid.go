package transport

import (
	"net/http"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// RequestIDTransport tags every outbound request with a unique id so client
// logs can be correlated with backend logs. A retried request keeps the id
// of its original attempt: it is the same logical request.
type RequestIDTransport struct {
	Base http.RoundTripper
}

func (t *RequestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(requestIDHeader) == "" {
		req = req.Clone(req.Context())
		req.Header.Set(requestIDHeader, uuid.NewString())
	}
	return t.Base.RoundTrip(req)
}
