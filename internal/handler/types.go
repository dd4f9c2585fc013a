package handler

import (
	"context"
	"net/url"
)

// Request is the hosting-neutral view of an incoming request. The converter
// package builds it from net/http requests and API Gateway proxy events.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	Host      string
	RequestID string

	// Scheme is the client-facing scheme, already resolved from
	// X-Forwarded-Proto or the connection. Empty when unknown.
	Scheme string
}

// QueryParam returns the first value of the named query parameter.
func (r *Request) QueryParam(name string) string {
	if r.Query == nil {
		return ""
	}
	return r.Query.Get(name)
}

// Response is the hosting-neutral result of a handler.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// Func handles one request.
type Func func(ctx context.Context, req *Request) *Response

// GenerateResponse is the body of a successful generate call.
type GenerateResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// VisitResponse is the body of a successful visit call.
type VisitResponse struct {
	Count    int64  `json:"count"`
	NewVisit bool   `json:"newVisit"`
	ID       string `json:"id"`
}

// CountResponse is the body of a successful count call.
type CountResponse struct {
	Count int64 `json:"count"`
}

// HealthResponse is the liveness body.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
