package consentapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/clients/rest"
)

// Checker is the consent surface the orchestrator consumes. Lookups fail open
// to "not granted": an unreachable consent service re-prompts rather than
// letting an unconsented conversation proceed.
type Checker interface {
	HasConsent(ctx context.Context, phone string) (bool, error)
	RecordConsent(ctx context.Context, phone, policyVersion string) error
}

// HTTPClient talks to the external consent service
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a consent client for the service at baseURL
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: rest.NewHTTPClient(timeout),
	}
}

func (c *HTTPClient) HasConsent(ctx context.Context, phone string) (bool, error) {
	target := c.baseURL + "/consentimientos/telefono/" + url.PathEscape(phone)

	var out struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := rest.DoJSON(ctx, c.httpClient, http.MethodGet, target, nil, nil, &out); err != nil {
		return false, err
	}
	return len(out.Data) > 0, nil
}

func (c *HTTPClient) RecordConsent(ctx context.Context, phone, policyVersion string) error {
	body := map[string]interface{}{
		"telefono":        phone,
		"versionPolitica": policyVersion,
	}
	return rest.DoJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/consentimientos", nil, body, nil)
}
