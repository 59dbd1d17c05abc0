package coach

import "github.com/povarna/generative-ai-agents/classroom-agent/internal/models"

const (
	MinScore     = 35
	MaxScore     = 98
	MaxDelta     = 5
	B2Vocabulary = 76

	LevelB1 = "B1"
	LevelB2 = "B2"

	standingTip = "Keep one idea per sentence to sound natural and precise."
)

// Baseline is the snapshot every new session starts from.
func Baseline() models.CoachFeedback {
	return models.CoachFeedback{
		Confidence:    62,
		Vocabulary:    58,
		Clarity:       60,
		Level:         LevelB1,
		Tips:          []string{"Use one concrete example to support your claim."},
		GrammarIssues: []string{"Article usage", "Sentence variety"},
	}
}

func Clamp(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

func clampDelta(d int) int {
	if d < -MaxDelta {
		return -MaxDelta
	}
	if d > MaxDelta {
		return MaxDelta
	}
	return d
}

func LevelFor(vocabulary int) string {
	if vocabulary >= B2Vocabulary {
		return LevelB2
	}
	return LevelB1
}

// Apply folds one turn's deltas into the snapshot. An empty issue list keeps
// the previous grammar issues.
func Apply(prev models.CoachFeedback, deltas models.ScoreDeltas, tip string, issues []string) models.CoachFeedback {
	next := models.CoachFeedback{
		Confidence: Clamp(prev.Confidence + clampDelta(deltas.Confidence)),
		Vocabulary: Clamp(prev.Vocabulary + clampDelta(deltas.Vocabulary)),
		Clarity:    Clamp(prev.Clarity + clampDelta(deltas.Clarity)),
		Tips:       []string{tip, standingTip},
	}
	next.Level = LevelFor(next.Vocabulary)

	if len(issues) > 0 {
		next.GrammarIssues = append([]string(nil), issues...)
	} else {
		next.GrammarIssues = append([]string{}, prev.GrammarIssues...)
	}
	return next
}

// WithTip replaces only the tips, scores are untouched.
func WithTip(prev models.CoachFeedback, tip string) models.CoachFeedback {
	next := prev
	next.Tips = []string{tip, standingTip}
	next.GrammarIssues = append([]string{}, prev.GrammarIssues...)
	return next
}

// Normalize repairs a snapshot supplied by a caller.
func Normalize(c models.CoachFeedback) models.CoachFeedback {
	c.Confidence = Clamp(c.Confidence)
	c.Vocabulary = Clamp(c.Vocabulary)
	c.Clarity = Clamp(c.Clarity)
	c.Level = LevelFor(c.Vocabulary)
	if c.Tips == nil {
		c.Tips = []string{}
	}
	if c.GrammarIssues == nil {
		c.GrammarIssues = []string{}
	}
	return c
}
