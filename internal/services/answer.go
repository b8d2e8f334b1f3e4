package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/clients/ragclient"
)

const (
	replyCharBudget = 1200
	maxCitationRefs = 3
	replyEllipsis   = "…"
)

// Phrases the knowledge base uses when it cannot ground an answer
var insufficientSupportPhrases = []string{
	"no tengo información suficiente",
	"no tengo informacion suficiente",
}

// RAGAsker is the retrieval-augmented answering backend
type RAGAsker interface {
	Ask(ctx context.Context, query, correlationID string) (*ragclient.AskResult, error)
}

// AnswerService turns a legal question into a channel-ready reply. Every
// failure mode, timeout, transport error, bad status, collapses into a fixed
// fallback text so callers never see an error from here.
type AnswerService struct {
	rag     RAGAsker
	timeout time.Duration
}

func NewAnswerService(rag RAGAsker, timeout time.Duration) *AnswerService {
	return &AnswerService{rag: rag, timeout: timeout}
}

func (s *AnswerService) AnswerLegalQuestion(ctx context.Context, query, correlationID string) string {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.rag.Ask(callCtx, query, correlationID)
	if err != nil {
		log.Printf("❌ Knowledge base call failed: correlationId=%s error=%v", correlationID, err)
		return KnowledgeBaseUnreachableText
	}

	log.Printf("📚 Knowledge base answered: correlationId=%s latencyMs=%d citations=%d chunks=%d",
		correlationID, result.LatencyMs, len(result.Citations), len(result.UsedChunks))

	if hasNoSupport(result) {
		return NoSupportText
	}
	return shapeReply(result)
}

// hasNoSupport detects an unsupported answer: either the knowledge base says
// so in prose, or it returned neither citations nor retrieved fragments
func hasNoSupport(result *ragclient.AskResult) bool {
	answer := strings.ToLower(result.AnswerText)
	for _, phrase := range insufficientSupportPhrases {
		if strings.Contains(answer, phrase) {
			return true
		}
	}
	return len(result.Citations) == 0 && len(result.UsedChunks) == 0
}

// shapeReply trims the answer to the channel budget and appends up to three
// citation references, re-trimming if the references push it over
func shapeReply(result *ragclient.AskResult) string {
	reply := truncateRunes(strings.TrimSpace(result.AnswerText), replyCharBudget)

	if len(result.Citations) > 0 {
		refs := result.Citations
		if len(refs) > maxCitationRefs {
			refs = refs[:maxCitationRefs]
		}
		var b strings.Builder
		b.WriteString(reply)
		b.WriteString("\n\n📎 Fuentes:")
		for i, c := range refs {
			b.WriteString(fmt.Sprintf("\n(%d) %s %d", i+1, c.Source, c.ChunkIndex))
		}
		reply = truncateRunes(b.String(), replyCharBudget)
	}
	return reply
}

// truncateRunes cuts at a rune boundary and marks the cut with an ellipsis
func truncateRunes(text string, budget int) string {
	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}
	return string(runes[:budget-1]) + replyEllipsis
}
