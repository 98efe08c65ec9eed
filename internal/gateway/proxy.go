package gateway

import (
	"context"
	"net/http"
)

// headers forwarded to downstream services; everything else is dropped at
// the edge.
var forwardedHeaders = []string{"Content-Type", "X-Customer-ID", "X-Request-ID"}

type ServiceProxy struct {
	baseURL string
	client  *http.Client
}

func NewServiceProxy(baseURL string, client *http.Client) *ServiceProxy {
	return &ServiceProxy{
		baseURL: baseURL,
		client:  client,
	}
}

func (p *ServiceProxy) ForwardRequest(ctx context.Context, r *http.Request, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, r.Method, p.baseURL+path, r.Body)
	if err != nil {
		return nil, err
	}

	if r.URL.RawQuery != "" {
		req.URL.RawQuery = r.URL.RawQuery
	}

	for _, header := range forwardedHeaders {
		if value := r.Header.Get(header); value != "" {
			req.Header.Set(header, value)
		}
	}

	return p.client.Do(req)
}
