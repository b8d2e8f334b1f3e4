package services

import (
	"context"
	"log"
	"strings"
)

// StatefulStrategy is the explicit-stage flow: a short menu drives the user
// into either the legal question loop or the support collection loop. The
// in-memory session cache is authoritative within its TTL; a persisted
// context seeds the cache after a restart or expiry so an ongoing dialogue
// does not bounce back to the menu.
type StatefulStrategy struct {
	sessions         *SessionManager
	answerer         LegalAnswerer
	answeringEnabled bool
}

func NewStatefulStrategy(sessions *SessionManager, answerer LegalAnswerer, answeringEnabled bool) *StatefulStrategy {
	return &StatefulStrategy{
		sessions:         sessions,
		answerer:         answerer,
		answeringEnabled: answeringEnabled,
	}
}

func (s *StatefulStrategy) Name() string {
	return "stateful"
}

func (s *StatefulStrategy) Decide(ctx context.Context, in *DecisionInput) (*Decision, error) {
	if isResetToken(in.Normalized) {
		s.sessions.Clear(in.Key)
		s.sessions.Set(in.Key, StageAwaitingCategory, "", nil)
		return &Decision{
			ReplyText: MenuText,
			Patch:     patchFor(StageAwaitingCategory, "", nil),
		}, nil
	}

	state := s.sessions.Get(in.Key)
	if state == nil {
		state = s.seedFromContext(in)
	}

	switch state.Stage {
	case StageAwaitingQuestion:
		if state.Category == CategoryLaboral {
			return s.answerTurn(ctx, in, state), nil
		}
	case StageSupport:
		return s.supportTurn(in, state), nil
	}

	// Awaiting category, or an unknown stage from a foreign context document
	switch {
	case matchesLaboral(in.Normalized):
		s.sessions.Set(in.Key, StageAwaitingQuestion, CategoryLaboral, state.Profile)
		return &Decision{
			ReplyText: AskQuestionText,
			Patch:     patchFor(StageAwaitingQuestion, CategoryLaboral, state.Profile),
		}, nil
	case matchesSupport(in.Normalized):
		s.sessions.Set(in.Key, StageSupport, CategorySoporte, state.Profile)
		return &Decision{
			ReplyText: SupportIntroText,
			Patch:     patchFor(StageSupport, CategorySoporte, state.Profile),
		}, nil
	default:
		s.sessions.Set(in.Key, StageAwaitingCategory, "", state.Profile)
		return &Decision{
			ReplyText: MenuText,
			Patch:     patchFor(StageAwaitingCategory, "", state.Profile),
		}, nil
	}
}

// answerTurn resolves a legal question and keeps the dialogue in the
// question loop so the user can follow up
func (s *StatefulStrategy) answerTurn(ctx context.Context, in *DecisionInput, state *ConversationState) *Decision {
	var reply string
	switch {
	case strings.TrimSpace(in.Text) == "":
		reply = AskQuestionText
	case !s.answeringEnabled:
		reply = AnsweringDisabledText
	default:
		reply = s.answerer.AnswerLegalQuestion(ctx, in.Text, in.CorrelationID)
	}
	s.sessions.Set(in.Key, StageAwaitingQuestion, CategoryLaboral, state.Profile)
	return &Decision{
		ReplyText: reply,
		Patch:     patchFor(StageAwaitingQuestion, CategoryLaboral, state.Profile),
	}
}

// supportTurn records the raw description in the profile and acknowledges.
// The stage stays put so later details land on the same case.
func (s *StatefulStrategy) supportTurn(in *DecisionInput, state *ConversationState) *Decision {
	profile := map[string]interface{}{}
	for k, v := range state.Profile {
		profile[k] = v
	}
	profile["issue"] = strings.TrimSpace(in.Text)

	s.sessions.Set(in.Key, StageSupport, CategorySoporte, profile)
	return &Decision{
		ReplyText: SupportAckText,
		Patch:     patchFor(StageSupport, CategorySoporte, profile),
	}
}

// seedFromContext rebuilds a session from the persisted context document
// after a cache miss. Anything unrecognizable degrades to the menu stage.
func (s *StatefulStrategy) seedFromContext(in *DecisionInput) *ConversationState {
	stage := contextString(in.Context, "stage")
	switch stage {
	case StageAwaitingQuestion, StageSupport:
		state := &ConversationState{
			Stage:    stage,
			Category: contextString(in.Context, "category"),
			Profile:  contextProfile(in.Context),
		}
		log.Printf("🔁 Session rehydrated from context: key=%s stage=%s", in.Key.String(), stage)
		s.sessions.Set(in.Key, state.Stage, state.Category, state.Profile)
		return state
	default:
		return &ConversationState{Stage: StageAwaitingCategory}
	}
}

func patchFor(stage, category string, profile map[string]interface{}) map[string]interface{} {
	if profile == nil {
		profile = map[string]interface{}{}
	}
	return map[string]interface{}{
		"stage":    stage,
		"category": category,
		"profile":  profile,
	}
}
