package router

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/povarna/generative-ai-agents/classroom-agent/internal/models"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/stages"
)

const (
	fallbackConfidence = 0.74
	minAnswerLength    = 6
)

var (
	endPattern      = regexp.MustCompile(`(?i)\b(end the (interview|session)|finish the (interview|session)|stop the (interview|session)|i am done|i'm done|let's stop|that's all for today|goodbye)\b`)
	metaPattern     = regexp.MustCompile(`(?i)\b(how does this work|what is this app|what should i do|is 1 sentence ok|one sentence ok|can i do one sentence|help me)\b`)
	repeatPattern   = regexp.MustCompile(`(?i)\b(can you repeat|could you repeat|please repeat|repeat the question|repeat that|say that again|say it again|come again|ismeteld meg)\b`)
	clarifyPattern  = regexp.MustCompile(`(?i)\b(i do not understand|i don't understand|what do you mean|can you explain|could you explain|nem ertem|nem ertem a kerdest|magyarazd el|hogy erted)\b`)
	questionStart   = regexp.MustCompile(`(?i)^(what|why|how|when|where|can|could|would|is|are|do|does)\b`)
	refusePattern   = regexp.MustCompile(`(?i)\b(i don't want to|i do not want to|i won't answer|i will not answer|i refuse|no comment|skip this|pass on this|rather not)\b`)
	offTopicHint    = regexp.MustCompile(`(?i)\b(color|pizza|movie|music|cat|dog)\b`)
	impactPattern   = regexp.MustCompile(`(?i)\b(improved|reduced|increased|faster|impact|result|outcome|saved|boosted)\b`)
	digitPattern    = regexp.MustCompile(`\d`)
	keywordSplitter = regexp.MustCompile(`[^a-z0-9]+`)
)

// Checked in order, the first match wins.
var targetPatterns = []struct {
	target  models.Target
	pattern *regexp.Regexp
}{
	{models.TargetAlex, regexp.MustCompile(`(?i)\balex\b`)},
	{models.TargetSofia, regexp.MustCompile(`(?i)\bsofia\b`)},
	{models.TargetJamal, regexp.MustCompile(`(?i)\bjamal\b`)},
	{models.TargetTeacher, regexp.MustCompile(`(?i)\bteacher\b`)},
	{models.TargetClass, regexp.MustCompile(`(?i)\bclass\b`)},
}

var keywordStopWords = map[string]bool{
	"what": true, "why": true, "how": true, "the": true, "and": true, "for": true,
	"your": true, "this": true, "that": true, "with": true, "from": true, "about": true,
	"into": true, "give": true, "short": true, "through": true, "walk": true, "share": true,
	"describe": true, "should": true, "hire": true, "internship": true, "question": true,
}

// FallbackClassifier is the deterministic rule-based router. It never fails.
type FallbackClassifier struct{}

func NewFallbackClassifier() *FallbackClassifier {
	return &FallbackClassifier{}
}

func (f *FallbackClassifier) Classify(_ context.Context, input models.RouteInput) (models.RoutingDecision, error) {
	return f.Decide(input), nil
}

func (f *FallbackClassifier) Decide(input models.RouteInput) models.RoutingDecision {
	normalized := normalizeMessage(input.UserText)
	lower := strings.ToLower(normalized)
	target := explicitTarget(lower)
	lastSpeaker := lastNonUserSpeaker(input.RecentTurns)

	intent := models.IntentAnswer
	var reason string

	switch {
	case endPattern.MatchString(lower):
		intent = models.IntentEnd
		target = orTeacher(target)
		reason = "Detected request to end the session."

	case metaPattern.MatchString(lower):
		intent = models.IntentMeta
		target = orTeacher(target)
		reason = "Detected process/meta style question."

	case repeatPattern.MatchString(lower):
		intent = models.IntentRepeat
		target = orTeacher(target)
		reason = "Detected request to repeat the question."

	case clarifyPattern.MatchString(lower) || isQuestion(lower):
		intent = models.IntentClarification
		reason = "Detected clarification/question form."
		switch {
		case target == models.TargetUnknown && lastSpeaker.IsPeer():
			target = models.Target(lastSpeaker)
			intent = models.IntentAskClassmate
			reason = "Clarification routed to last peer speaker."
		case target.IsPeer():
			intent = models.IntentAskClassmate
			reason = "Explicit peer target with question intent."
		case target == models.TargetTeacher:
			intent = models.IntentAskTeacher
			reason = "Explicit teacher target with question intent."
		case target == models.TargetUnknown:
			target = models.TargetTeacher
			reason = "Clarification without peer context routed to teacher."
		}

	case refusePattern.MatchString(lower):
		intent = models.IntentOffTopic
		target = models.TargetTeacher
		reason = "Detected refusal to answer."

	case utf8.RuneCountInString(normalized) < minAnswerLength:
		intent = models.IntentOffTopic
		target = models.TargetTeacher
		reason = "Message too short for a meaningful answer."

	case input.StageID == string(stages.Achievement) && offTopicHint.MatchString(lower) &&
		!digitPattern.MatchString(lower) && !impactPattern.MatchString(lower):
		intent = models.IntentOffTopic
		target = models.TargetTeacher
		reason = "Achievement stage mismatch (no metric/impact and off-topic keyword)."

	default:
		target = orTeacher(target)
		if hasTopicalOverlap(lower, input.CurrentQuestion) {
			reason = "Topical statement treated as answer."
		} else {
			reason = "Defaulted to answer; detailed grading will handle relevance."
		}
	}

	return buildDecision(intent, target, fallbackConfidence, normalized, reason, SourceFallback, input)
}

func explicitTarget(lower string) models.Target {
	for _, tp := range targetPatterns {
		if tp.pattern.MatchString(lower) {
			return tp.target
		}
	}
	return models.TargetUnknown
}

func orTeacher(t models.Target) models.Target {
	if t == models.TargetUnknown {
		return models.TargetTeacher
	}
	return t
}

func isQuestion(lower string) bool {
	return strings.HasSuffix(lower, "?") || questionStart.MatchString(lower)
}

func questionKeywords(question string) []string {
	var keys []string
	for _, w := range keywordSplitter.Split(strings.ToLower(question), -1) {
		if len(w) > 3 && !keywordStopWords[w] {
			keys = append(keys, w)
		}
	}
	return keys
}

func hasTopicalOverlap(lower, question string) bool {
	keys := questionKeywords(question)
	if len(keys) == 0 {
		return true
	}
	for _, k := range keys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
