package httputil

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/central-university-dev/go-tubecord/internal/config"
)

// RestyTransport позволяет клиентам, которые принимают *http.Client
// (например, SDK Google API), ходить через resty с повторами и circuit breaker.
type RestyTransport struct {
	restyClient *resty.Client
}

func NewRestyTransport(restyClient *resty.Client) *RestyTransport {
	return &RestyTransport{
		restyClient: restyClient,
	}
}

func (t *RestyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	restyReq := t.restyClient.R().SetContext(req.Context())

	for key, values := range req.Header {
		for _, value := range values {
			restyReq.Header.Add(key, value)
		}
	}

	if req.Body != nil && req.Body != http.NoBody {
		body, err := io.ReadAll(req.Body)
		req.Body.Close()

		if err != nil {
			return nil, err
		}

		restyReq.SetBody(body)
	}

	resp, err := restyReq.Execute(req.Method, req.URL.String())
	if err != nil {
		return nil, err
	}

	httpResp := resp.RawResponse
	if httpResp != nil {
		httpResp.Body = io.NopCloser(bytes.NewReader(resp.Body()))
		httpResp.Request = req
	}

	return httpResp, nil
}

func CreateResilientStdClient(cfg *config.Config, logger *slog.Logger, serviceName string, opts ...Option) *http.Client {
	restyClient := CreateResilientHTTPClient(cfg, logger, serviceName, opts...)

	return &http.Client{
		Transport: NewRestyTransport(restyClient),
	}
}
