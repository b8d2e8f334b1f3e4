package services

import (
	"context"
	"log"
	"strings"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/clients/aiclient"
)

// IntentClassifier resolves intent and entities for one message
type IntentClassifier interface {
	ClassifyExtract(ctx context.Context, text, correlationID string) (*aiclient.ClassifyResult, error)
}

// ClassifyStrategy is the classification-driven flow: an AI service labels
// each message with an intent and extracted entities, and the engine walks a
// profile-completion ladder (city, age) toward advisor handoff. It keeps no
// in-process state; the persisted context document is the only memory.
type ClassifyStrategy struct {
	classifier       IntentClassifier
	answerer         LegalAnswerer
	answeringEnabled bool
}

func NewClassifyStrategy(classifier IntentClassifier, answerer LegalAnswerer, answeringEnabled bool) *ClassifyStrategy {
	return &ClassifyStrategy{
		classifier:       classifier,
		answerer:         answerer,
		answeringEnabled: answeringEnabled,
	}
}

func (s *ClassifyStrategy) Name() string {
	return "classify"
}

func (s *ClassifyStrategy) Decide(ctx context.Context, in *DecisionInput) (*Decision, error) {
	prevIntent := contextString(in.Context, "intent")
	prevStep := contextString(in.Context, "step")
	profile := map[string]interface{}{}
	for k, v := range contextProfile(in.Context) {
		profile[k] = v
	}

	ai, err := s.classifier.ClassifyExtract(ctx, in.Text, in.CorrelationID)
	if err != nil {
		log.Printf("⚠️ Classification unavailable, using keyword fallback: %v", err)
		ai = fallbackClassify(in.Normalized)
	}

	// A completed dialogue restarts on a reset token or a fresh greeting
	if ai.ShouldReset || isResetToken(in.Normalized) ||
		(prevStep == StepReadyForHandoff && isGreeting(in.Normalized)) {
		return &Decision{
			ReplyText: ResetText,
			Patch: map[string]interface{}{
				"intent":  aiclient.IntentGeneral,
				"step":    StepAskIntent,
				"profile": map[string]interface{}{},
			},
		}, nil
	}

	intent := resolveIntent(prevIntent, ai.Intent)

	city := strings.TrimSpace(ai.Entities.City)
	if city == "" && prevStep == StepAskCity {
		city = strings.TrimSpace(in.Text)
	}
	if city != "" {
		profile["city"] = city
	}

	age := ai.Entities.Age
	if age < 1 || age > 120 {
		age = 0
	}
	if age == 0 && prevStep == StepAskAge {
		age = parseAge(in.Text)
	}
	if age != 0 {
		profile["age"] = age
	}

	if intent == aiclient.IntentSupport && prevStep == StepCollectingIssue {
		profile["issue"] = strings.TrimSpace(in.Text)
	}

	step, reply := s.nextStep(intent, prevStep, profile)

	if intent == aiclient.IntentLegal && s.answeringEnabled && strings.TrimSpace(in.Text) != "" {
		reply = s.answerer.AnswerLegalQuestion(ctx, in.Text, in.CorrelationID)
	}

	return &Decision{
		ReplyText: reply,
		Patch: map[string]interface{}{
			"intent":  intent,
			"step":    step,
			"profile": profile,
		},
	}, nil
}

// nextStep walks the profile ladder for the resolved intent
func (s *ClassifyStrategy) nextStep(intent, prevStep string, profile map[string]interface{}) (string, string) {
	switch intent {
	case aiclient.IntentLegal:
		_, hasCity := profile["city"]
		_, hasAge := profile["age"]
		switch {
		case hasCity && hasAge:
			return StepReadyForHandoff, HandoffText
		case !hasCity:
			return StepAskCity, AskCityText
		case prevStep == StepAskAge:
			return StepAskAge, ConfirmAgeText
		default:
			return StepAskAge, AskAgeText
		}
	case aiclient.IntentSupport:
		if prevStep == StepCollectingIssue {
			return StepReadyForHandoff, SupportAckText
		}
		return StepCollectingIssue, SupportIntroText
	default:
		return StepAskIntent, AskIntentText
	}
}

// resolveIntent keeps a previously established specific intent when the new
// classification comes back general, so mid-dialogue answers like a city
// name do not drop the thread
func resolveIntent(prev, next string) string {
	if next == "" || next == aiclient.IntentGeneral {
		if prev == aiclient.IntentLegal || prev == aiclient.IntentSupport {
			return prev
		}
		return aiclient.IntentGeneral
	}
	return next
}

// fallbackClassify is the keyword classifier used when the AI service is
// unreachable. It mirrors the service's labels closely enough to keep the
// dialogue moving.
func fallbackClassify(normalized string) *aiclient.ClassifyResult {
	result := &aiclient.ClassifyResult{
		Intent:     aiclient.IntentGeneral,
		Confidence: 0.3,
	}
	if strings.Contains(normalized, "menu") || strings.Contains(normalized, "cambiar") {
		result.ShouldReset = true
		return result
	}
	switch {
	case matchesLaboral(normalized):
		result.Intent = aiclient.IntentLegal
		result.Confidence = 0.6
	case matchesSupport(normalized):
		result.Intent = aiclient.IntentSupport
		result.Confidence = 0.6
	}
	return result
}
