package controller

import (
	"fmt"
	"strings"

	"github.com/povarna/generative-ai-agents/classroom-agent/internal/coach"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/models"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/prechecks"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/stages"
	"github.com/rs/zerolog"
)

// Branch names recorded on the evaluation.
const (
	BranchStart          = "start"
	BranchPeerClarify    = "peer_clarify"
	BranchTeacherClarify = "teacher_clarify"
	BranchRedirect       = "redirect"
	BranchMeta           = "meta"
	BranchAdvance        = "advance"
	BranchFallback       = "fallback"
	BranchNextTurn       = "next_turn"
	BranchModerator      = "moderator"
	BranchUnknown        = "unknown_action"
)

const (
	startTip           = "Stay on topic: background, role/study, and internship intent."
	moderatorTip       = "Watch how each student responds and adapt your next prompt."
	unknownTip         = "Retry the turn action."
	clarifyIssue       = "User asked for clarification."
	repeatIssue        = "User asked to hear the question again."
	offTopicIssue      = "Answer did not address the current question."
	awaitingIssue      = "Awaiting user answer."
	missingFocusIssue  = "Answer needs a clearer focus on the question."
	defaultPeerReplyTo = models.RoleAlex
)

// Controller is the session state machine. It is stateless between calls:
// everything lives in the session passed in.
type Controller struct {
	evaluator *prechecks.Evaluator
	logger    *zerolog.Logger
}

func NewController(evaluator *prechecks.Evaluator, logger *zerolog.Logger) *Controller {
	if evaluator == nil {
		evaluator = prechecks.NewEvaluator()
	}
	return &Controller{evaluator: evaluator, logger: logger}
}

// Start resets the session and opens the interview at the first stage.
func (c *Controller) Start(s *models.Session, scenario string) models.TurnResult {
	s.StageIndex = 0
	s.TurnIndex = 0
	s.SpeakerRotationIndex = 0
	s.Completed = false
	s.History.Reset()
	s.Coach = coach.WithTip(coach.Baseline(), startTip)

	opening := turnFor(models.RoleTeacher, openingLine(scenario))
	c.record(s, opening)
	s.TurnIndex = 1

	c.logger.Debug().Str("sessionID", s.ID).Str("scenario", scenario).Msg("session started")

	return c.result(s, []models.Turn{opening}, startTip, models.Evaluation{
		Stage:      string(stages.At(0).ID),
		IsRelevant: true,
		Issues:     []string{},
		Branch:     BranchStart,
	})
}

// branchOutcome is what a UserTurn branch decided before bookkeeping.
type branchOutcome struct {
	name       string
	turns      []models.Turn
	deltas     models.ScoreDeltas
	tip        string
	issues     []string
	isRelevant bool
	advanced   bool
}

// UserTurn folds one user utterance into the session. The router decision
// says what kind of utterance it was; the local evaluator says whether its
// content satisfied the stage.
func (c *Controller) UserTurn(s *models.Session, userText string, decision models.RoutingDecision) models.TurnResult {
	text := strings.TrimSpace(userText)
	if text == "" {
		text = emptyAnswerPlaceholder
	}
	s.History.Append(models.HistoryEntry{Role: models.RoleUser, Text: text})

	stage := stages.At(s.StageIndex)
	rel := c.evaluator.Evaluate(stage, userText)

	var out branchOutcome
	switch {
	case decision.RecommendedAction == models.ActionPeerReply && decision.TargetAgent.IsPeer():
		out = c.peerClarify(stage, decision.TargetAgent)
	case decision.RecommendedAction == models.ActionTeacherClarify || decision.RecommendedAction == models.ActionPeerReply:
		out = c.teacherClarify(stage, decision.Intent)
	case decision.Intent == models.IntentOffTopic || decision.RecommendedAction == models.ActionTeacherRedirect:
		out = c.redirect(stage, rel)
	case decision.Intent == models.IntentMeta || decision.Intent == models.IntentEnd || decision.RecommendedAction == models.ActionHandleMeta:
		out = c.meta(stage, decision.Intent)
	case decision.Intent == models.IntentAnswer && rel.IsRelevant && decision.ShouldAdvanceState:
		out = c.advance(s, userText, rel)
	default:
		out = c.fallback(s, stage, rel)
	}

	c.record(s, out.turns...)
	s.TurnIndex++
	s.Coach = coach.Apply(s.Coach, out.deltas, out.tip, out.issues)

	issues := out.issues
	if issues == nil {
		issues = []string{}
	}

	c.logger.Debug().
		Str("sessionID", s.ID).
		Str("stage", string(stage.ID)).
		Str("intent", string(decision.Intent)).
		Str("branch", out.name).
		Str("checker", rel.Checker).
		Bool("relevant", rel.IsRelevant).
		Bool("advanced", out.advanced).
		Msg("user turn handled")

	return c.result(s, out.turns, out.tip, models.Evaluation{
		Stage:              string(stage.ID),
		Intent:             decision.Intent,
		AddressedTo:        decision.TargetAgent,
		RecommendedAction:  decision.RecommendedAction,
		ShouldAdvanceState: decision.ShouldAdvanceState,
		Advanced:           out.advanced,
		IsRelevant:         out.isRelevant,
		Issues:             issues,
		Branch:             out.name,
		RouterReason:       decision.Reason,
		RouterConfidence:   decision.Confidence,
		RouterSource:       decision.Source,
	})
}

func (c *Controller) peerClarify(stage stages.Stage, target models.Target) branchOutcome {
	peer := models.Role(target)
	if !peer.IsPeer() {
		peer = defaultPeerReplyTo
	}
	return branchOutcome{
		name: BranchPeerClarify,
		turns: []models.Turn{
			turnFor(peer, peerClarifyLine(peer, stage)),
			turnFor(models.RoleTeacher, bridgeLine(peer, stage)),
		},
		deltas: models.ScoreDeltas{Clarity: 1},
		tip:    fmt.Sprintf("Use %s's hint, then answer with %s.", peer.DisplayName(), stage.RequirementHint),
		issues: []string{},
	}
}

func (c *Controller) teacherClarify(stage stages.Stage, intent models.Intent) branchOutcome {
	line, issue := clarifyLine(stage), clarifyIssue
	if intent == models.IntentRepeat {
		line, issue = repeatLine(stage), repeatIssue
	}
	return branchOutcome{
		name:   BranchTeacherClarify,
		turns:  []models.Turn{turnFor(models.RoleTeacher, line)},
		deltas: models.ScoreDeltas{Confidence: -1, Clarity: -1},
		tip:    fmt.Sprintf("Clarify first, then answer with %s.", stage.RequirementHint),
		issues: []string{issue},
	}
}

func (c *Controller) redirect(stage stages.Stage, rel models.RelevanceEvaluation) branchOutcome {
	issues := rel.Issues
	if rel.IsRelevant || len(issues) == 0 {
		issues = []string{offTopicIssue}
	}
	return branchOutcome{
		name:   BranchRedirect,
		turns:  []models.Turn{turnFor(models.RoleTeacher, redirectLine(stage))},
		deltas: models.ScoreDeltas{Confidence: -1, Clarity: -2},
		tip:    fmt.Sprintf("Stay on topic. Include %s.", stage.RequirementHint),
		issues: issues,
	}
}

func (c *Controller) meta(stage stages.Stage, intent models.Intent) branchOutcome {
	line := metaLine(stage)
	if intent == models.IntentEnd {
		line = endLine(stage)
	}
	return branchOutcome{
		name:  BranchMeta,
		turns: []models.Turn{turnFor(models.RoleTeacher, line)},
		tip:   fmt.Sprintf("When ready, answer with %s.", stage.RequirementHint),
	}
}

// advance accepts the answer. At the closing stage the session plateaus and
// is marked completed instead of moving past the last stage.
func (c *Controller) advance(s *models.Session, userText string, rel models.RelevanceEvaluation) branchOutcome {
	peer := stages.NextPeer(s.SpeakerRotationIndex)
	s.SpeakerRotationIndex = stages.NormalizeRotation(s.SpeakerRotationIndex + 1)

	var teacher string
	switch state := StateOf(*s); {
	case state.Phase == Finished, state.OnLastStage():
		s.StageIndex = stages.LastIndex()
		s.Completed = true
		teacher = wrapUpLine()
	default:
		s.StageIndex = stages.Clamp(s.StageIndex + 1)
		teacher = advanceLine(userText, stages.At(s.StageIndex))
	}

	return branchOutcome{
		name: BranchAdvance,
		turns: []models.Turn{
			turnFor(peer, supportiveLine(peer)),
			turnFor(models.RoleTeacher, teacher),
		},
		deltas:     rel.ScoreDeltas,
		tip:        rel.Tip,
		isRelevant: true,
		advanced:   true,
	}
}

func (c *Controller) fallback(s *models.Session, stage stages.Stage, rel models.RelevanceEvaluation) branchOutcome {
	peer := stages.NextPeer(s.SpeakerRotationIndex)
	s.SpeakerRotationIndex = stages.NormalizeRotation(s.SpeakerRotationIndex + 1)

	issues := rel.Issues
	if len(issues) == 0 {
		issues = []string{missingFocusIssue}
	}
	return branchOutcome{
		name: BranchFallback,
		turns: []models.Turn{
			turnFor(peer, lukewarmLine(peer)),
			turnFor(models.RoleTeacher, missingLine(stage, issues)),
		},
		deltas:     models.ScoreDeltas{Confidence: -1, Clarity: -2},
		tip:        fmt.Sprintf("Stay on topic. Include %s.", stage.RequirementHint),
		issues:     issues,
		isRelevant: rel.IsRelevant,
	}
}

// NextTurn nudges a stalled user. Only the tip and turn index change.
func (c *Controller) NextTurn(s *models.Session) models.TurnResult {
	stage := stages.At(s.StageIndex)
	tip := fmt.Sprintf("Stay on topic. Include %s.", stage.RequirementHint)

	nudge := turnFor(models.RoleTeacher, nudgeLine(stage))
	c.record(s, nudge)
	s.TurnIndex++
	s.Coach = coach.WithTip(s.Coach, tip)

	return c.result(s, []models.Turn{nudge}, tip, models.Evaluation{
		Stage:  string(stage.ID),
		Issues: []string{awaitingIssue},
		Branch: BranchNextTurn,
	})
}

// ModeratorTurn is the instructor-mode turn: the user poses a prompt and the
// whole class answers in rotation order. Scores are not touched.
func (c *Controller) ModeratorTurn(s *models.Session, prompt string) models.TurnResult {
	text := strings.TrimSpace(prompt)
	if text == "" {
		text = emptyAnswerPlaceholder
	}
	s.History.Append(models.HistoryEntry{Role: models.RoleUser, Text: text})

	turns := make([]models.Turn, 0, len(stages.Peers()))
	for i := range stages.Peers() {
		peer := stages.NextPeer(s.SpeakerRotationIndex + i)
		turns = append(turns, turnFor(peer, classLine(peer, text)))
	}
	s.SpeakerRotationIndex = stages.NormalizeRotation(s.SpeakerRotationIndex + 1)

	c.record(s, turns...)
	s.TurnIndex++
	s.Coach = coach.WithTip(s.Coach, moderatorTip)

	return c.result(s, turns, moderatorTip, models.Evaluation{
		Stage:       string(stages.At(s.StageIndex).ID),
		AddressedTo: models.TargetClass,
		IsRelevant:  true,
		Issues:      []string{},
		Branch:      BranchModerator,
	})
}

// Unknown answers an unrecognized action with a generic retry line.
func (c *Controller) Unknown(s *models.Session, action string) models.TurnResult {
	c.logger.Warn().Str("sessionID", s.ID).Str("action", action).Msg("unknown turn action")

	line := turnFor(models.RoleTeacher, unknownActionLine)
	c.record(s, line)
	s.TurnIndex++

	return c.result(s, []models.Turn{line}, unknownTip, models.Evaluation{
		Stage:  string(stages.At(s.StageIndex).ID),
		Intent: models.IntentOffTopic,
		Issues: []string{fmt.Sprintf("Unknown action: %s", action)},
		Branch: BranchUnknown,
	})
}

func (c *Controller) record(s *models.Session, turns ...models.Turn) {
	for _, t := range turns {
		s.History.Append(models.HistoryEntry{Role: t.Role, Text: t.Text})
	}
}

func (c *Controller) result(s *models.Session, turns []models.Turn, liveTip string, eval models.Evaluation) models.TurnResult {
	if turns == nil {
		turns = []models.Turn{}
	}
	return models.TurnResult{
		Session:    *s,
		Turns:      turns,
		Feedback:   models.Feedback{CoachFeedback: s.Coach},
		LiveTip:    liveTip,
		Evaluation: eval,
	}
}
