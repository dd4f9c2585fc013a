package converter

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/bluecurio/didanyonereadmycoverletter.com/internal/handler"
)

// FromProxyRequest builds a handler.Request from an API Gateway proxy event.
// Header names are matched case-insensitively. The scheme is left empty when
// X-Forwarded-Proto is absent so the handler applies its default.
func FromProxyRequest(ev events.APIGatewayProxyRequest) *handler.Request {
	query := url.Values{}
	for k, vs := range ev.MultiValueQueryStringParameters {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	for k, v := range ev.QueryStringParameters {
		if _, ok := query[k]; !ok {
			query.Set(k, v)
		}
	}

	requestID := header(ev, "X-Request-ID")
	if requestID == "" {
		requestID = ev.RequestContext.RequestID
	}

	method := ev.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}

	return &handler.Request{
		Method:    strings.ToUpper(method),
		Path:      ev.Path,
		Query:     query,
		Host:      header(ev, "Host"),
		Scheme:    forwardedProto(header(ev, "X-Forwarded-Proto")),
		RequestID: requestID,
	}
}

// ToProxyResponse converts a handler.Response to an API Gateway proxy response.
func ToProxyResponse(resp *handler.Response) events.APIGatewayProxyResponse {
	headers := make(map[string]string, len(resp.Headers))
	for k, v := range resp.Headers {
		headers[k] = v
	}

	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       string(resp.Body),
	}
}

func header(ev events.APIGatewayProxyRequest, name string) string {
	if v, ok := ev.Headers[name]; ok {
		return v
	}
	for k, v := range ev.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	for k, vs := range ev.MultiValueHeaders {
		if strings.EqualFold(k, name) && len(vs) > 0 {
			return vs[0]
		}
	}
	return ""
}
