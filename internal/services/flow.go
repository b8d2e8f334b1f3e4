package services

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// Decision strategy steps used by the classification-driven strategy
const (
	StepAskIntent       = "ask_intent"
	StepAskCity         = "ask_city"
	StepAskAge          = "ask_age"
	StepCollectingIssue = "collecting_issue"
	StepReadyForHandoff = "ready_for_handoff"
)

// Fixed user-facing reply texts
const (
	MenuText = "Hola 👋 Soy SOFIA, asistente virtual del Consultorio Jurídico.\n\n" +
		"Responde con el número de la opción que necesitas:\n" +
		"1️⃣ Consulta laboral\n" +
		"2️⃣ Soporte"
	AskQuestionText       = "Perfecto ✅ Escribe tu pregunta laboral y la consultaré en la base de conocimiento jurídica."
	SupportIntroText      = "Entendido. Cuéntame cuál es el problema."
	SupportAckText        = "Perfecto ✅ Ya registré tu caso. Te paso con un asesor."
	AnsweringDisabledText = "La consulta jurídica automática está temporalmente deshabilitada. " +
		"Un asesor revisará tu pregunta y te responderá pronto."
	KnowledgeBaseUnreachableText = "No pude consultar la base de conocimiento jurídica en este momento. " +
		"Intenta de nuevo en unos minutos."
	NoSupportText = "No encontré información suficiente para responderte con certeza. " +
		"¿Puedes darme más detalles de tu situación?"

	ResetText      = "Listo 👋 ¿En qué te puedo ayudar? Responde: laboral o soporte."
	AskIntentText  = "Para ayudarte mejor, responde: laboral o soporte."
	AskCityText    = "Perfecto. ¿En qué ciudad estás?"
	AskAgeText     = "Gracias. ¿Cuál es tu edad?"
	ConfirmAgeText = "¿Me confirmas tu edad en números?"
	HandoffText    = "Listo ✅ Ya tengo tu información. Te paso con un asesor."
)

// DecisionInput is everything a strategy may consult for one turn
type DecisionInput struct {
	Key           SessionKey
	Text          string // raw message text
	Normalized    string // trimmed, lowercased
	Context       map[string]interface{} // latest persisted context data
	CorrelationID string
}

// Decision is a strategy's verdict: exactly one reply plus the context patch
// to persist. The patch mirrors the schema of the local state cache so the
// two stores can diverge only in freshness, never in shape.
type Decision struct {
	ReplyText string
	Patch     map[string]interface{}
}

// DecisionStrategy routes one inbound message to one reply. Upstream failures
// (answering, classification) are absorbed inside Decide and turned into
// fixed fallback replies; an error return means a programming-level fault.
type DecisionStrategy interface {
	Name() string
	Decide(ctx context.Context, in *DecisionInput) (*Decision, error)
}

// LegalAnswerer produces the shaped reply text for a legal question. All
// failure modes collapse into fixed fallback texts, never errors.
type LegalAnswerer interface {
	AnswerLegalQuestion(ctx context.Context, query, correlationID string) string
}

var (
	resetTokens = map[string]bool{
		"reset":     true,
		"menu":      true,
		"menú":      true,
		"inicio":    true,
		"reiniciar": true,
		"cambiar":   true,
	}

	laboralKeywords = []string{"laboral", "trabajo", "empleo", "despido", "contrato"}
	supportKeywords = []string{"soporte", "error", "problema", "falla"}
	greetingTokens  = []string{"hola", "buenos", "buenas", "hi"}

	agePattern = regexp.MustCompile(`\d{1,3}`)
)

// NormalizeText trims and lowercases message text for matching
func NormalizeText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func isResetToken(normalized string) bool {
	return resetTokens[normalized]
}

func isGreeting(normalized string) bool {
	for _, token := range greetingTokens {
		if strings.Contains(normalized, token) {
			return true
		}
	}
	return false
}

func matchesLaboral(normalized string) bool {
	if normalized == "1" {
		return true
	}
	for _, kw := range laboralKeywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

func matchesSupport(normalized string) bool {
	if normalized == "2" {
		return true
	}
	for _, kw := range supportKeywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

// parseAge extracts the first 1-3 digit run and accepts it only in [1,120]
func parseAge(text string) int {
	match := agePattern.FindString(text)
	if match == "" {
		return 0
	}
	age, err := strconv.Atoi(match)
	if err != nil || age < 1 || age > 120 {
		return 0
	}
	return age
}

// Context field readers. Persisted context with an unexpected shape is
// treated as empty rather than fatal.

func contextString(data map[string]interface{}, key string) string {
	if data == nil {
		return ""
	}
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func contextProfile(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return nil
	}
	if v, ok := data["profile"].(map[string]interface{}); ok {
		return v
	}
	return nil
}
