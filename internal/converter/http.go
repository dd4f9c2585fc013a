// Package converter translates between hosting-specific request types and the
// hosting-neutral handler.Request and handler.Response.
package converter

import (
	"net/http"
	"strings"

	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/handler"
	"go.uber.org/zap"
)

// FromHTTP builds a handler.Request from a net/http request. The scheme comes
// from X-Forwarded-Proto when a proxy set it, otherwise from the connection.
func FromHTTP(r *http.Request) *handler.Request {
	scheme := forwardedProto(r.Header.Get("X-Forwarded-Proto"))
	if scheme == "" {
		if r.TLS != nil {
			scheme = "https"
		} else {
			scheme = "http"
		}
	}

	return &handler.Request{
		Method:    r.Method,
		Path:      r.URL.Path,
		Query:     r.URL.Query(),
		Host:      r.Host,
		Scheme:    scheme,
		RequestID: r.Header.Get("X-Request-ID"),
	}
}

// WriteHTTP writes resp to w.
func WriteHTTP(w http.ResponseWriter, resp *handler.Response) error {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	if len(resp.Body) == 0 {
		return nil
	}
	_, err := w.Write(resp.Body)
	return err
}

// HTTPHandler adapts a handler.Func to net/http.
func HTTPHandler(fn handler.Func, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := FromHTTP(r)
		if err := WriteHTTP(w, fn(r.Context(), req)); err != nil {
			logger.Debug("failed to write response",
				zap.String("path", req.Path),
				zap.String("request_id", req.RequestID),
				zap.Error(err),
			)
		}
	}
}

// forwardedProto takes the first entry of a possibly comma-separated
// X-Forwarded-Proto value.
func forwardedProto(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.ToLower(strings.TrimSpace(v))
}
