package aiclient

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/clients/rest"
)

// Intent values produced by the classification backend and the local fallback
const (
	IntentGeneral = "general"
	IntentLegal   = "consulta_laboral"
	IntentSupport = "soporte"
)

// Entities holds optional values extracted from the user's text
type Entities struct {
	City string `json:"city,omitempty"`
	Age  int    `json:"age,omitempty"`
}

// ClassifyResult is the classification backend's verdict for one message
type ClassifyResult struct {
	Intent      string   `json:"intent"`
	Confidence  float64  `json:"confidence"`
	Entities    Entities `json:"entities"`
	ShouldReset bool     `json:"shouldReset"`
}

// Client calls the external text-classification backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a classification client for the AI service at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: rest.NewHTTPClient(timeout),
	}
}

// ClassifyExtract classifies a message and extracts entities. The caller is
// expected to fall back to local keyword classification on error.
func (c *Client) ClassifyExtract(ctx context.Context, text, correlationID string) (*ClassifyResult, error) {
	headers := map[string]string{
		"x-correlation-id": correlationID,
		"x-request-id":     correlationID,
	}
	body := map[string]interface{}{"text": text}

	var out ClassifyResult
	err := rest.DoJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/v1/ai/classify-extract", headers, body, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
