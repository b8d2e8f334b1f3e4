package ragclient

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/clients/rest"
)

// Citation references one chunk the answering backend grounded its answer on
type Citation struct {
	Source     string `json:"source"`
	ChunkIndex int    `json:"chunkIndex"`
}

// UsedChunk is the full retrieval detail behind a citation
type UsedChunk struct {
	Source     string  `json:"source"`
	ChunkIndex int     `json:"chunkIndex"`
	ChunkText  string  `json:"chunkText"`
	Score      float64 `json:"score"`
	Title      string  `json:"title"`
}

// AskResult is the answering backend's reply plus call telemetry
type AskResult struct {
	AnswerText string
	Citations  []Citation
	UsedChunks []UsedChunk
	StatusCode int
	LatencyMs  int64
}

type answerResponse struct {
	Answer     string      `json:"answer"`
	Citations  []Citation  `json:"citations"`
	UsedChunks []UsedChunk `json:"usedChunks"`
}

// Client calls the retrieval-augmented answering backend for legal queries
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an answering client for the RAG service at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: rest.NewHTTPClient(timeout),
	}
}

// Ask sends a legal query to the answering backend. The context bounds the
// call; transport failures and non-2xx statuses are returned as errors.
func (c *Client) Ask(ctx context.Context, query, correlationID string) (*AskResult, error) {
	headers := map[string]string{
		"x-correlation-id": correlationID,
		"x-request-id":     correlationID,
	}
	body := map[string]interface{}{"query": query}

	started := time.Now()
	var out answerResponse
	err := rest.DoJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/v1/ai/rag-answer", headers, body, &out)
	if err != nil {
		return nil, err
	}

	return &AskResult{
		AnswerText: out.Answer,
		Citations:  out.Citations,
		UsedChunks: out.UsedChunks,
		StatusCode: http.StatusOK,
		LatencyMs:  time.Since(started).Milliseconds(),
	}, nil
}
