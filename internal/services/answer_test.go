package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/clients/ragclient"
)

type fakeRAG struct {
	result *ragclient.AskResult
	err    error
}

func (f *fakeRAG) Ask(_ context.Context, _, _ string) (*ragclient.AskResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestAnswerReturnsShapedText(t *testing.T) {
	svc := NewAnswerService(&fakeRAG{result: &ragclient.AskResult{
		AnswerText: "Las vacaciones son 15 días hábiles por año trabajado.",
		Citations: []ragclient.Citation{
			{Source: "cst.pdf", ChunkIndex: 4},
		},
		UsedChunks: []ragclient.UsedChunk{
			{Source: "cst.pdf", ChunkIndex: 4},
		},
	}}, time.Second)

	reply := svc.AnswerLegalQuestion(context.Background(), "¿cuántas vacaciones?", "corr-1")

	assert.Contains(t, reply, "15 días hábiles")
	assert.Contains(t, reply, "(1) cst.pdf 4")
}

func TestAnswerUnreachableBackend(t *testing.T) {
	svc := NewAnswerService(&fakeRAG{err: errors.New("connection refused")}, time.Second)

	reply := svc.AnswerLegalQuestion(context.Background(), "pregunta", "corr-1")

	assert.Equal(t, KnowledgeBaseUnreachableText, reply)
}

func TestAnswerNoSupportByPhrase(t *testing.T) {
	svc := NewAnswerService(&fakeRAG{result: &ragclient.AskResult{
		AnswerText: "Lo siento, no tengo información suficiente para responder eso.",
		Citations:  []ragclient.Citation{{Source: "cst.pdf", ChunkIndex: 1}},
		UsedChunks: []ragclient.UsedChunk{{Source: "cst.pdf", ChunkIndex: 1}},
	}}, time.Second)

	reply := svc.AnswerLegalQuestion(context.Background(), "pregunta", "corr-1")

	assert.Equal(t, NoSupportText, reply)
}

func TestAnswerNoSupportByEmptyEvidence(t *testing.T) {
	svc := NewAnswerService(&fakeRAG{result: &ragclient.AskResult{
		AnswerText: "Una respuesta inventada sin respaldo.",
	}}, time.Second)

	reply := svc.AnswerLegalQuestion(context.Background(), "pregunta", "corr-1")

	assert.Equal(t, NoSupportText, reply)
}

func TestAnswerChunksWithoutCitationsIsSupported(t *testing.T) {
	svc := NewAnswerService(&fakeRAG{result: &ragclient.AskResult{
		AnswerText: "El contrato a término fijo debe constar por escrito.",
		UsedChunks: []ragclient.UsedChunk{{Source: "cst.pdf", ChunkIndex: 2}},
	}}, time.Second)

	reply := svc.AnswerLegalQuestion(context.Background(), "pregunta", "corr-1")

	assert.Equal(t, "El contrato a término fijo debe constar por escrito.", reply)
}

func TestAnswerCitationsCappedAtThree(t *testing.T) {
	svc := NewAnswerService(&fakeRAG{result: &ragclient.AskResult{
		AnswerText: "Respuesta.",
		Citations: []ragclient.Citation{
			{Source: "a.pdf", ChunkIndex: 1},
			{Source: "b.pdf", ChunkIndex: 2},
			{Source: "c.pdf", ChunkIndex: 3},
			{Source: "d.pdf", ChunkIndex: 4},
		},
		UsedChunks: []ragclient.UsedChunk{{Source: "a.pdf", ChunkIndex: 1}},
	}}, time.Second)

	reply := svc.AnswerLegalQuestion(context.Background(), "pregunta", "corr-1")

	assert.Contains(t, reply, "(3) c.pdf 3")
	assert.NotContains(t, reply, "d.pdf")
}

func TestAnswerTruncation(t *testing.T) {
	long := strings.Repeat("derecho laboral colombiano ", 100)
	svc := NewAnswerService(&fakeRAG{result: &ragclient.AskResult{
		AnswerText: long,
		UsedChunks: []ragclient.UsedChunk{{Source: "cst.pdf", ChunkIndex: 1}},
	}}, time.Second)

	reply := svc.AnswerLegalQuestion(context.Background(), "pregunta", "corr-1")

	assert.LessOrEqual(t, len([]rune(reply)), replyCharBudget)
	assert.True(t, strings.HasSuffix(reply, replyEllipsis))
}

func TestAnswerTruncationRespectsBudgetWithCitations(t *testing.T) {
	long := strings.Repeat("x", replyCharBudget)
	svc := NewAnswerService(&fakeRAG{result: &ragclient.AskResult{
		AnswerText: long,
		Citations:  []ragclient.Citation{{Source: "cst.pdf", ChunkIndex: 9}},
		UsedChunks: []ragclient.UsedChunk{{Source: "cst.pdf", ChunkIndex: 9}},
	}}, time.Second)

	reply := svc.AnswerLegalQuestion(context.Background(), "pregunta", "corr-1")

	assert.LessOrEqual(t, len([]rune(reply)), replyCharBudget)
}
