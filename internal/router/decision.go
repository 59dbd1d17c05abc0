package router

import (
	"regexp"
	"strings"

	"github.com/povarna/generative-ai-agents/classroom-agent/internal/models"
)

const (
	SourceFallback = "fallback"
	SourceModel    = "model"
)

var whitespace = regexp.MustCompile(`\s+`)

// ActionFor maps an intent and its target to the recommended action.
func ActionFor(intent models.Intent, target models.Target) models.Action {
	switch intent {
	case models.IntentAskClassmate:
		return models.ActionPeerReply
	case models.IntentClarification:
		if target.IsPeer() {
			return models.ActionPeerReply
		}
		return models.ActionTeacherClarify
	case models.IntentAskTeacher, models.IntentRepeat:
		return models.ActionTeacherClarify
	case models.IntentMeta, models.IntentEnd:
		return models.ActionHandleMeta
	case models.IntentOffTopic:
		return models.ActionTeacherRedirect
	case models.IntentAnswer:
		return models.ActionContinueInterview
	default:
		return models.ActionAskUserToAnswer
	}
}

func normalizeMessage(text string) string {
	text = strings.NewReplacer("’", "'", "‘", "'").Replace(text)
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

func lastNonUserSpeaker(turns []models.HistoryEntry) models.Role {
	for i := len(turns) - 1; i >= 0; i-- {
		if role := turns[i].Role; role != "" && role != models.RoleUser {
			return role
		}
	}
	return ""
}

func lastTeacherQuestion(turns []models.HistoryEntry, fallback string) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == models.RoleTeacher && turns[i].Text != "" {
			return turns[i].Text
		}
	}
	return fallback
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// buildDecision derives the action and advance flag from the intent so
// every strategy produces the same shape.
func buildDecision(intent models.Intent, target models.Target, confidence float64, normalized, reason, source string, input models.RouteInput) models.RoutingDecision {
	return models.RoutingDecision{
		Intent:                intent,
		TargetAgent:           target,
		Confidence:            clampConfidence(confidence),
		NormalizedUserMessage: normalized,
		RecommendedAction:     ActionFor(intent, target),
		ShouldAdvanceState:    intent == models.IntentAnswer,
		Reason:                reason,
		LastSpeaker:           lastNonUserSpeaker(input.RecentTurns),
		LastTeacherQuestion:   lastTeacherQuestion(input.RecentTurns, input.CurrentQuestion),
		Source:                source,
	}
}
