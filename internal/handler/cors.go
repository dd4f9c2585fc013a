package handler

import (
	"context"
	"net/http"
)

// CORS header values sent on every response.
const (
	AllowOrigin  = "*"
	AllowHeaders = "Content-Type"
	AllowMethods = "GET,OPTIONS"
)

// CORSHeaders returns a fresh copy of the cross-origin headers.
func CORSHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  AllowOrigin,
		"Access-Control-Allow-Headers": AllowHeaders,
		"Access-Control-Allow-Methods": AllowMethods,
	}
}

// Preflight is the response to an OPTIONS request: 200 with an empty body.
func Preflight() *Response {
	return &Response{
		StatusCode: http.StatusOK,
		Headers:    CORSHeaders(),
	}
}

// WithCORS answers OPTIONS before next runs and adds the CORS headers to
// every other response.
func WithCORS(next Func) Func {
	return func(ctx context.Context, req *Request) *Response {
		if req.Method == http.MethodOptions {
			return Preflight()
		}

		resp := next(ctx, req)
		if resp.Headers == nil {
			resp.Headers = make(map[string]string)
		}
		for k, v := range CORSHeaders() {
			resp.Headers[k] = v
		}
		return resp
	}
}
