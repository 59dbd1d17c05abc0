package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/classroom-agent/internal/coach"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/controller"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/models"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/stages"
	"github.com/rs/zerolog"
)

const defaultRecentTurns = 6

// TurnRouter classifies a user utterance. Implementations must always return.
type TurnRouter interface {
	Route(ctx context.Context, input models.RouteInput) models.RoutingDecision
}

// EvaluationPublisher ships per-turn telemetry somewhere durable.
type EvaluationPublisher interface {
	Publish(ctx context.Context, event models.TurnEvent) error
}

type Executor struct {
	controller  *controller.Controller
	router      TurnRouter
	publisher   EvaluationPublisher
	recentTurns int
	logger      *zerolog.Logger
}

func NewExecutor(
	ctrl *controller.Controller,
	router TurnRouter,
	publisher EvaluationPublisher,
	recentTurns int,
	logger *zerolog.Logger,
) *Executor {
	if recentTurns <= 0 {
		recentTurns = defaultRecentTurns
	}
	return &Executor{
		controller:  ctrl,
		router:      router,
		publisher:   publisher,
		recentTurns: recentTurns,
		logger:      logger,
	}
}

// Execute runs one turn. It never fails: malformed sessions are normalized,
// router problems fall back to rules, and publish errors are only logged.
func (e *Executor) Execute(ctx context.Context, req models.TurnRequest) models.TurnResult {
	mode := NormalizeMode(req.Mode)
	scenario := NormalizeScenario(req.Scenario)
	session := controller.NormalizeSession(req.Session)
	action := resolveAction(req.Action, session)

	e.logger.Info().
		Str("sessionID", session.ID).
		Str("action", action).
		Str("mode", mode).
		Int("stageIndex", session.StageIndex).
		Msg("running turn")

	var result models.TurnResult
	switch action {
	case models.TurnActionStart:
		result = e.controller.Start(&session, scenario)
	case models.TurnActionUserTurn:
		text := req.UserText
		if strings.TrimSpace(text) == "" {
			text = req.UserInput
		}
		if mode == models.ModeTeacher {
			result = e.controller.ModeratorTurn(&session, text)
			break
		}
		decision := e.route(ctx, session, text, mode, scenario, req.RecentTurns)
		result = e.controller.UserTurn(&session, text, decision)
	case models.TurnActionNextTurn:
		result = e.controller.NextTurn(&session)
	default:
		result = e.controller.Unknown(&session, action)
	}

	result.Feedback = coach.Project(mode, result.Session.Coach)

	e.logger.Info().
		Str("sessionID", result.Session.ID).
		Str("branch", result.Evaluation.Branch).
		Int("turnIndex", result.Session.TurnIndex).
		Int("stageIndex", result.Session.StageIndex).
		Msg("turn complete")

	e.publish(ctx, action, mode, scenario, result)
	return result
}

func (e *Executor) route(ctx context.Context, s models.Session, text, mode, scenario string, recent []models.HistoryEntry) models.RoutingDecision {
	if len(recent) == 0 {
		recent = s.History.Last(e.recentTurns)
	}
	lastSpeaker, _ := s.History.LastSpeaker()
	stage := stages.At(s.StageIndex)

	return e.router.Route(ctx, models.RouteInput{
		UserText:        text,
		RecentTurns:     recent,
		StageID:         string(stage.ID),
		CurrentQuestion: stage.Question,
		Mode:            mode,
		Scenario:        scenario,
		LastSpeaker:     lastSpeaker,
	})
}

func (e *Executor) publish(ctx context.Context, action, mode, scenario string, result models.TurnResult) {
	if e.publisher == nil {
		return
	}
	event := models.TurnEvent{
		SessionID:  result.Session.ID,
		TurnIndex:  result.Session.TurnIndex,
		StageIndex: result.Session.StageIndex,
		Action:     action,
		Mode:       mode,
		Scenario:   scenario,
		Evaluation: result.Evaluation,
		Feedback:   result.Feedback,
		CreatedAt:  time.Now().UTC(),
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.Warn().Err(err).Str("sessionID", event.SessionID).Msg("failed to publish turn event")
	}
}

// SafeResult is the degraded answer returned when a turn could not be run
// at all. It keeps the caller's session identity when it can.
func SafeResult(req models.TurnRequest) models.TurnResult {
	session := controller.NormalizeSession(req.Session)
	stage := stages.At(session.StageIndex)
	text := fmt.Sprintf("Sorry, something went wrong on my side. Let's continue: %s", stage.Question)

	return models.TurnResult{
		Session:  session,
		Turns:    []models.Turn{{Speaker: models.RoleTeacher.DisplayName(), Role: models.RoleTeacher, Text: text}},
		Feedback: coach.Project(NormalizeMode(req.Mode), coach.Baseline()),
		LiveTip:  "Retry the turn action.",
		Evaluation: models.Evaluation{
			Stage:  string(stage.ID),
			Issues: []string{"Turn failed and was recovered."},
			Branch: "safe_fallback",
		},
	}
}

func NormalizeMode(mode string) string {
	if strings.EqualFold(strings.TrimSpace(mode), models.ModeTeacher) {
		return models.ModeTeacher
	}
	return models.ModeLearner
}

var scenarioAliases = map[string]string{
	models.ScenarioTechInterview: models.ScenarioTechInterview,
	"interview":                  models.ScenarioTechInterview,
	models.ScenarioLanguageClass: models.ScenarioLanguageClass,
	"language":                   models.ScenarioLanguageClass,
}

func NormalizeScenario(scenario string) string {
	if s, ok := scenarioAliases[strings.ToLower(strings.TrimSpace(scenario))]; ok {
		return s
	}
	return models.ScenarioTechInterview
}

// resolveAction defaults an empty action from the session position.
func resolveAction(action string, s models.Session) string {
	action = strings.ToLower(strings.TrimSpace(action))
	if action != "" {
		return action
	}
	if s.TurnIndex > 0 {
		return models.TurnActionUserTurn
	}
	return models.TurnActionStart
}
