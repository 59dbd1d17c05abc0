package prechecks

import (
	"fmt"
	"strings"

	"github.com/povarna/generative-ai-agents/classroom-agent/internal/models"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/stages"
)

// Evaluator runs the local relevance rules for the current stage. It is the
// ground truth for whether an answer satisfied the stage requirement.
type Evaluator struct {
	checkers map[stages.ID]Checker
}

func NewEvaluator() *Evaluator {
	return &Evaluator{
		checkers: map[stages.ID]Checker{
			stages.Intro:       &IntroChecker{},
			stages.Achievement: &AchievementChecker{},
			stages.Project:     &ProjectChecker{},
			stages.Challenge:   &ChallengeChecker{},
			stages.Why:         &WhyChecker{},
			stages.Closing:     &ClosingChecker{},
		},
	}
}

func (e *Evaluator) Evaluate(stage stages.Stage, userText string) models.RelevanceEvaluation {
	text := strings.ToLower(strings.TrimSpace(userText))

	var issues []string
	var checkerName string
	if checker, ok := e.checkers[stage.ID]; ok {
		checkerName = checker.Name()
		issues = checker.Check(text)
	}

	if len(issues) > 0 {
		return models.RelevanceEvaluation{
			IsRelevant:         false,
			Issues:             issues,
			ScoreDeltas:        models.ScoreDeltas{Confidence: -1, Vocabulary: 0, Clarity: -2},
			Tip:                fmt.Sprintf("Stay on topic. Include %s.", stage.RequirementHint),
			NextQuestionAction: models.NextQuestionRetry,
			Checker:            checkerName,
		}
	}

	vocabulary := 1
	if stage.ID == stages.Achievement && hasNumber(text) {
		vocabulary = 2
	}

	return models.RelevanceEvaluation{
		IsRelevant:         true,
		Issues:             []string{},
		ScoreDeltas:        models.ScoreDeltas{Confidence: 2, Vocabulary: vocabulary, Clarity: 2},
		Tip:                fmt.Sprintf("Strong direction. Next, keep focus on %s.", stage.RequirementHint),
		NextQuestionAction: models.NextQuestionAdvance,
		Checker:            checkerName,
	}
}
