package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/clients/aiclient"
)

type fakeClassifier struct {
	result *aiclient.ClassifyResult
	err    error
}

func (f *fakeClassifier) ClassifyExtract(_ context.Context, _, _ string) (*aiclient.ClassifyResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func classifyInput(text string, data map[string]interface{}) *DecisionInput {
	return &DecisionInput{
		Key:           testKey("u1"),
		Text:          text,
		Normalized:    NormalizeText(text),
		Context:       data,
		CorrelationID: "corr-1",
	}
}

func legalContext(step string, profile map[string]interface{}) map[string]interface{} {
	if profile == nil {
		profile = map[string]interface{}{}
	}
	return map[string]interface{}{
		"intent":  aiclient.IntentLegal,
		"step":    step,
		"profile": profile,
	}
}

func TestClassifyLegalIntentAsksForCity(t *testing.T) {
	classifier := &fakeClassifier{result: &aiclient.ClassifyResult{
		Intent:     aiclient.IntentLegal,
		Confidence: 0.9,
	}}
	s := NewClassifyStrategy(classifier, &fakeAnswerer{}, false)

	d, err := s.Decide(context.Background(), classifyInput("me despidieron sin justa causa", nil))
	require.NoError(t, err)

	assert.Equal(t, AskCityText, d.ReplyText)
	assert.Equal(t, StepAskCity, d.Patch["step"])
	assert.Equal(t, aiclient.IntentLegal, d.Patch["intent"])
}

func TestClassifyCityAnswerAdvancesToAge(t *testing.T) {
	classifier := &fakeClassifier{result: &aiclient.ClassifyResult{
		Intent: aiclient.IntentGeneral,
	}}
	s := NewClassifyStrategy(classifier, &fakeAnswerer{}, false)

	d, err := s.Decide(context.Background(), classifyInput("Bogotá", legalContext(StepAskCity, nil)))
	require.NoError(t, err)

	assert.Equal(t, AskAgeText, d.ReplyText)
	assert.Equal(t, StepAskAge, d.Patch["step"])

	profile := d.Patch["profile"].(map[string]interface{})
	assert.Equal(t, "Bogotá", profile["city"])
}

func TestClassifyAgeCompletesProfile(t *testing.T) {
	classifier := &fakeClassifier{result: &aiclient.ClassifyResult{
		Intent: aiclient.IntentGeneral,
	}}
	s := NewClassifyStrategy(classifier, &fakeAnswerer{}, false)

	data := legalContext(StepAskAge, map[string]interface{}{"city": "Bogotá"})
	d, err := s.Decide(context.Background(), classifyInput("tengo 25 años", data))
	require.NoError(t, err)

	assert.Equal(t, HandoffText, d.ReplyText)
	assert.Equal(t, StepReadyForHandoff, d.Patch["step"])

	profile := d.Patch["profile"].(map[string]interface{})
	assert.Equal(t, 25, profile["age"])
}

func TestClassifyNonNumericAgeReasks(t *testing.T) {
	classifier := &fakeClassifier{result: &aiclient.ClassifyResult{
		Intent: aiclient.IntentGeneral,
	}}
	s := NewClassifyStrategy(classifier, &fakeAnswerer{}, false)

	data := legalContext(StepAskAge, map[string]interface{}{"city": "Bogotá"})
	d, err := s.Decide(context.Background(), classifyInput("soy mayor de edad", data))
	require.NoError(t, err)

	assert.Equal(t, ConfirmAgeText, d.ReplyText)
	assert.Equal(t, StepAskAge, d.Patch["step"])
}

func TestClassifyExtractedEntitiesSkipSteps(t *testing.T) {
	classifier := &fakeClassifier{result: &aiclient.ClassifyResult{
		Intent:   aiclient.IntentLegal,
		Entities: aiclient.Entities{City: "Cali", Age: 31},
	}}
	s := NewClassifyStrategy(classifier, &fakeAnswerer{}, false)

	d, err := s.Decide(context.Background(), classifyInput("soy de Cali, tengo 31", nil))
	require.NoError(t, err)

	assert.Equal(t, StepReadyForHandoff, d.Patch["step"])
	assert.Equal(t, HandoffText, d.ReplyText)
}

func TestClassifySupportCollectsIssue(t *testing.T) {
	classifier := &fakeClassifier{result: &aiclient.ClassifyResult{
		Intent: aiclient.IntentSupport,
	}}
	s := NewClassifyStrategy(classifier, &fakeAnswerer{}, false)

	d, err := s.Decide(context.Background(), classifyInput("tengo un problema con la app", nil))
	require.NoError(t, err)
	assert.Equal(t, SupportIntroText, d.ReplyText)
	assert.Equal(t, StepCollectingIssue, d.Patch["step"])

	data := map[string]interface{}{
		"intent":  aiclient.IntentSupport,
		"step":    StepCollectingIssue,
		"profile": map[string]interface{}{},
	}
	d, err = s.Decide(context.Background(), classifyInput("no puedo entrar a mi cuenta", data))
	require.NoError(t, err)

	assert.Equal(t, SupportAckText, d.ReplyText)
	assert.Equal(t, StepReadyForHandoff, d.Patch["step"])
	profile := d.Patch["profile"].(map[string]interface{})
	assert.Equal(t, "no puedo entrar a mi cuenta", profile["issue"])
}

func TestClassifyResetVerdictRestarts(t *testing.T) {
	classifier := &fakeClassifier{result: &aiclient.ClassifyResult{
		ShouldReset: true,
	}}
	s := NewClassifyStrategy(classifier, &fakeAnswerer{}, false)

	data := legalContext(StepAskAge, map[string]interface{}{"city": "Bogotá"})
	d, err := s.Decide(context.Background(), classifyInput("cambiar de tema", data))
	require.NoError(t, err)

	assert.Equal(t, ResetText, d.ReplyText)
	assert.Equal(t, StepAskIntent, d.Patch["step"])
	assert.Equal(t, aiclient.IntentGeneral, d.Patch["intent"])
	assert.Empty(t, d.Patch["profile"])
}

func TestClassifyGreetingAfterHandoffRestarts(t *testing.T) {
	classifier := &fakeClassifier{result: &aiclient.ClassifyResult{
		Intent: aiclient.IntentGeneral,
	}}
	s := NewClassifyStrategy(classifier, &fakeAnswerer{}, false)

	data := legalContext(StepReadyForHandoff, map[string]interface{}{"city": "Bogotá", "age": 25})
	d, err := s.Decide(context.Background(), classifyInput("hola", data))
	require.NoError(t, err)

	assert.Equal(t, ResetText, d.ReplyText)
	assert.Equal(t, StepAskIntent, d.Patch["step"])
}

func TestClassifyFallsBackToKeywordsOnError(t *testing.T) {
	classifier := &fakeClassifier{err: errors.New("service down")}
	s := NewClassifyStrategy(classifier, &fakeAnswerer{}, false)

	d, err := s.Decide(context.Background(), classifyInput("necesito ayuda laboral", nil))
	require.NoError(t, err)

	assert.Equal(t, aiclient.IntentLegal, d.Patch["intent"])
	assert.Equal(t, StepAskCity, d.Patch["step"])
}

func TestClassifyGeneralIntentKeepsPreviousIntent(t *testing.T) {
	classifier := &fakeClassifier{result: &aiclient.ClassifyResult{
		Intent: aiclient.IntentGeneral,
	}}
	s := NewClassifyStrategy(classifier, &fakeAnswerer{}, false)

	d, err := s.Decide(context.Background(), classifyInput("Medellín", legalContext(StepAskCity, nil)))
	require.NoError(t, err)

	assert.Equal(t, aiclient.IntentLegal, d.Patch["intent"])
}

func TestClassifyLegalAnswerOverridesStepReply(t *testing.T) {
	classifier := &fakeClassifier{result: &aiclient.ClassifyResult{
		Intent: aiclient.IntentLegal,
	}}
	answerer := &fakeAnswerer{reply: "Tienes derecho a indemnización."}
	s := NewClassifyStrategy(classifier, answerer, true)

	d, err := s.Decide(context.Background(), classifyInput("me despidieron estando embarazada", nil))
	require.NoError(t, err)

	assert.Equal(t, answerer.reply, d.ReplyText)
	// The profile ladder still advances underneath the answer
	assert.Equal(t, StepAskCity, d.Patch["step"])
}
