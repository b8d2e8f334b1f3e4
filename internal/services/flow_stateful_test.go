package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnswerer struct {
	reply     string
	lastQuery string
	calls     int
}

func (f *fakeAnswerer) AnswerLegalQuestion(_ context.Context, query, _ string) string {
	f.calls++
	f.lastQuery = query
	return f.reply
}

func statefulInput(text string, data map[string]interface{}) *DecisionInput {
	return &DecisionInput{
		Key:           testKey("u1"),
		Text:          text,
		Normalized:    NormalizeText(text),
		Context:       data,
		CorrelationID: "corr-1",
	}
}

func TestStatefulFirstContactShowsMenu(t *testing.T) {
	s := NewStatefulStrategy(NewSessionManager(time.Minute), &fakeAnswerer{}, true)

	d, err := s.Decide(context.Background(), statefulInput("hola", nil))
	require.NoError(t, err)

	assert.Equal(t, MenuText, d.ReplyText)
	assert.Equal(t, StageAwaitingCategory, d.Patch["stage"])
}

func TestStatefulMenuOptionOneEntersQuestionLoop(t *testing.T) {
	sm := NewSessionManager(time.Minute)
	s := NewStatefulStrategy(sm, &fakeAnswerer{}, true)

	d, err := s.Decide(context.Background(), statefulInput("1", nil))
	require.NoError(t, err)

	assert.Equal(t, AskQuestionText, d.ReplyText)
	assert.Equal(t, StageAwaitingQuestion, d.Patch["stage"])
	assert.Equal(t, CategoryLaboral, d.Patch["category"])

	state := sm.Get(testKey("u1"))
	require.NotNil(t, state)
	assert.Equal(t, StageAwaitingQuestion, state.Stage)
}

func TestStatefulKeywordSelectsCategory(t *testing.T) {
	s := NewStatefulStrategy(NewSessionManager(time.Minute), &fakeAnswerer{}, true)

	d, err := s.Decide(context.Background(), statefulInput("tengo un problema de trabajo", nil))
	require.NoError(t, err)

	assert.Equal(t, AskQuestionText, d.ReplyText)
	assert.Equal(t, CategoryLaboral, d.Patch["category"])
}

func TestStatefulQuestionInvokesAnswerer(t *testing.T) {
	sm := NewSessionManager(time.Minute)
	answerer := &fakeAnswerer{reply: "Según el Código Sustantivo del Trabajo..."}
	s := NewStatefulStrategy(sm, answerer, true)

	_, err := s.Decide(context.Background(), statefulInput("1", nil))
	require.NoError(t, err)

	d, err := s.Decide(context.Background(), statefulInput("¿Cuántos días de vacaciones tengo?", nil))
	require.NoError(t, err)

	assert.Equal(t, answerer.reply, d.ReplyText)
	assert.Equal(t, "¿Cuántos días de vacaciones tengo?", answerer.lastQuery)
	// The question loop stays open for follow-ups
	assert.Equal(t, StageAwaitingQuestion, d.Patch["stage"])
}

func TestStatefulAnsweringDisabled(t *testing.T) {
	sm := NewSessionManager(time.Minute)
	answerer := &fakeAnswerer{reply: "should not appear"}
	s := NewStatefulStrategy(sm, answerer, false)

	_, err := s.Decide(context.Background(), statefulInput("laboral", nil))
	require.NoError(t, err)

	d, err := s.Decide(context.Background(), statefulInput("¿me pueden despedir?", nil))
	require.NoError(t, err)

	assert.Equal(t, AnsweringDisabledText, d.ReplyText)
	assert.Equal(t, 0, answerer.calls)
}

func TestStatefulEmptyQuestionReprompts(t *testing.T) {
	sm := NewSessionManager(time.Minute)
	answerer := &fakeAnswerer{reply: "should not appear"}
	s := NewStatefulStrategy(sm, answerer, true)

	_, err := s.Decide(context.Background(), statefulInput("1", nil))
	require.NoError(t, err)

	d, err := s.Decide(context.Background(), statefulInput("   ", nil))
	require.NoError(t, err)

	assert.Equal(t, AskQuestionText, d.ReplyText)
	assert.Equal(t, 0, answerer.calls)
	assert.Equal(t, StageAwaitingQuestion, d.Patch["stage"])
}

func TestStatefulSupportFlowRecordsIssue(t *testing.T) {
	sm := NewSessionManager(time.Minute)
	s := NewStatefulStrategy(sm, &fakeAnswerer{}, true)

	d, err := s.Decide(context.Background(), statefulInput("2", nil))
	require.NoError(t, err)
	assert.Equal(t, SupportIntroText, d.ReplyText)

	d, err = s.Decide(context.Background(), statefulInput("la página no carga", nil))
	require.NoError(t, err)

	assert.Equal(t, SupportAckText, d.ReplyText)
	profile, ok := d.Patch["profile"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "la página no carga", profile["issue"])
}

func TestStatefulResetClearsStateAndShowsMenu(t *testing.T) {
	sm := NewSessionManager(time.Minute)
	s := NewStatefulStrategy(sm, &fakeAnswerer{}, true)

	_, err := s.Decide(context.Background(), statefulInput("1", nil))
	require.NoError(t, err)

	d, err := s.Decide(context.Background(), statefulInput("reset", nil))
	require.NoError(t, err)

	assert.Equal(t, MenuText, d.ReplyText)
	assert.Equal(t, StageAwaitingCategory, d.Patch["stage"])

	state := sm.Get(testKey("u1"))
	require.NotNil(t, state)
	assert.Equal(t, StageAwaitingCategory, state.Stage)
}

func TestStatefulRehydratesFromPersistedContext(t *testing.T) {
	sm := NewSessionManager(time.Minute)
	answerer := &fakeAnswerer{reply: "respuesta"}
	s := NewStatefulStrategy(sm, answerer, true)

	// Cache is empty (as after a restart) but the persisted context says the
	// user was already in the question loop
	data := map[string]interface{}{
		"stage":    StageAwaitingQuestion,
		"category": CategoryLaboral,
		"profile":  map[string]interface{}{},
	}

	d, err := s.Decide(context.Background(), statefulInput("¿qué es una liquidación?", data))
	require.NoError(t, err)

	assert.Equal(t, "respuesta", d.ReplyText)
	assert.Equal(t, 1, answerer.calls)
}

func TestStatefulUnknownContextStageFallsBackToMenu(t *testing.T) {
	s := NewStatefulStrategy(NewSessionManager(time.Minute), &fakeAnswerer{}, true)

	data := map[string]interface{}{"stage": "algo_raro"}
	d, err := s.Decide(context.Background(), statefulInput("qué tal", data))
	require.NoError(t, err)

	assert.Equal(t, MenuText, d.ReplyText)
}
