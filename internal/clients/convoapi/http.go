package convoapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/clients/rest"
)

// HTTPClient talks to the external conversation persistence service
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a client for the conversation service at baseURL
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: rest.NewHTTPClient(timeout),
	}
}

func correlationHeaders(correlationID string) map[string]string {
	return map[string]string{
		"x-correlation-id": correlationID,
		"x-request-id":     correlationID,
	}
}

func (c *HTTPClient) UpsertContact(ctx context.Context, in UpsertContactInput) (*Contact, error) {
	body := map[string]interface{}{
		"tenantId":    in.TenantID,
		"channel":     in.Channel,
		"externalId":  in.ExternalID,
		"displayName": in.DisplayName,
	}

	var out struct {
		Data Contact `json:"data"`
	}
	err := rest.DoJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/v1/contacts/upsert",
		correlationHeaders(in.CorrelationID), body, &out)
	if err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *HTTPClient) GetOrCreateConversation(ctx context.Context, in ConversationInput) (*Conversation, error) {
	body := map[string]interface{}{
		"tenantId":  in.TenantID,
		"contactId": in.ContactID,
		"channel":   in.Channel,
	}

	var out struct {
		Data Conversation `json:"data"`
	}
	err := rest.DoJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/v1/conversations/get-or-create",
		correlationHeaders(in.CorrelationID), body, &out)
	if err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *HTTPClient) AppendMessage(ctx context.Context, in AppendMessageInput) error {
	body := map[string]interface{}{
		"tenantId":          in.TenantID,
		"contactId":         in.ContactID,
		"direction":         in.Direction,
		"type":              in.Type,
		"text":              in.Text,
		"payload":           in.Payload,
		"providerMessageId": in.ProviderMessageID,
	}

	target := c.baseURL + "/v1/conversations/" + url.PathEscape(in.ConversationID) + "/messages"
	return rest.DoJSON(ctx, c.httpClient, http.MethodPost, target,
		correlationHeaders(in.CorrelationID), body, nil)
}

func (c *HTTPClient) GetLatestContext(ctx context.Context, tenantID, conversationID, correlationID string) (*ContextDocument, error) {
	target := c.baseURL + "/v1/conversations/" + url.PathEscape(conversationID) +
		"/context?tenantId=" + url.QueryEscape(tenantID)

	var out struct {
		Data ContextDocument `json:"data"`
	}
	err := rest.DoJSON(ctx, c.httpClient, http.MethodGet, target,
		correlationHeaders(correlationID), nil, &out)
	if err != nil {
		return nil, err
	}
	if out.Data.Data == nil {
		out.Data.Data = map[string]interface{}{}
	}
	return &out.Data, nil
}

func (c *HTTPClient) PatchContext(ctx context.Context, tenantID, conversationID string, patch map[string]interface{}, correlationID string) (*ContextDocument, error) {
	body := map[string]interface{}{
		"tenantId": tenantID,
		"patch":    patch,
	}

	target := c.baseURL + "/v1/conversations/" + url.PathEscape(conversationID) + "/context"
	var out struct {
		Data ContextDocument `json:"data"`
	}
	err := rest.DoJSON(ctx, c.httpClient, http.MethodPatch, target,
		correlationHeaders(correlationID), body, &out)
	if err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *HTTPClient) ListMessages(ctx context.Context, tenantID, conversationID string) ([]MessageRecord, error) {
	target := c.baseURL + "/v1/conversations/" + url.PathEscape(conversationID) +
		"/messages?tenantId=" + url.QueryEscape(tenantID)

	var out struct {
		Data []MessageRecord `json:"data"`
	}
	err := rest.DoJSON(ctx, c.httpClient, http.MethodGet, target, nil, nil, &out)
	if err != nil {
		return nil, err
	}
	return out.Data, nil
}
