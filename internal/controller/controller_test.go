package controller

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/povarna/generative-ai-agents/classroom-agent/internal/coach"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/models"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/router"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/stages"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func newTestController() *Controller {
	return NewController(nil, newTestLogger())
}

func startedSession(t *testing.T, c *Controller, stageIndex int) *models.Session {
	t.Helper()
	s := &models.Session{ID: "session_test"}
	c.Start(s, models.ScenarioTechInterview)
	s.StageIndex = stageIndex
	return s
}

func answerDecision() models.RoutingDecision {
	return models.RoutingDecision{
		Intent:             models.IntentAnswer,
		TargetAgent:        models.TargetTeacher,
		Confidence:         0.9,
		RecommendedAction:  models.ActionContinueInterview,
		ShouldAdvanceState: true,
		Source:             router.SourceModel,
	}
}

var stageAnswers = []string{
	"I am a computer science student and I want this internship to grow.",
	"I improved onboarding time by 25% after redesigning the setup flow.",
	"I built a campus app and the result was more weekly users.",
	"We had a conflict about scope and I resolved it with a short call.",
	"My skills and experience fit this role and I can contribute value.",
	"Thank you for the opportunity, I am excited to contribute.",
}

func TestController_Start_Idempotent(t *testing.T) {
	c := newTestController()

	dirty := &models.Session{
		ID:                   "session_dirty",
		StageIndex:           4,
		TurnIndex:            17,
		SpeakerRotationIndex: 2,
		Completed:            true,
		History:              models.NewHistory(models.HistoryEntry{Role: models.RoleUser, Text: "old"}),
		Coach:                models.CoachFeedback{Confidence: 90, Vocabulary: 90, Clarity: 90},
	}
	fresh := &models.Session{ID: "session_fresh"}

	dirtyResult := c.Start(dirty, models.ScenarioTechInterview)
	freshResult := c.Start(fresh, models.ScenarioTechInterview)

	for name, r := range map[string]models.TurnResult{"dirty": dirtyResult, "fresh": freshResult} {
		t.Run(name, func(t *testing.T) {
			if r.Session.StageIndex != 0 || r.Session.TurnIndex != 1 {
				t.Errorf("expected stage 0 turn 1, got stage %d turn %d", r.Session.StageIndex, r.Session.TurnIndex)
			}
			if r.Session.History.Len() != 1 {
				t.Errorf("expected 1 history entry, got %d", r.Session.History.Len())
			}
			if r.Session.Completed {
				t.Error("expected completed flag cleared")
			}
			if len(r.Turns) != 1 || r.Turns[0].Role != models.RoleTeacher {
				t.Fatalf("expected a single teacher turn, got %+v", r.Turns)
			}
			if !strings.Contains(r.Turns[0].Text, stages.At(0).Question) {
				t.Errorf("opening line should contain the first question, got %q", r.Turns[0].Text)
			}
			if r.Session.Coach.Confidence != coach.Baseline().Confidence {
				t.Errorf("expected baseline confidence, got %d", r.Session.Coach.Confidence)
			}
			if r.Evaluation.Branch != BranchStart {
				t.Errorf("expected start branch, got %s", r.Evaluation.Branch)
			}
		})
	}

	if dirtyResult.Turns[0].Text != freshResult.Turns[0].Text {
		t.Error("opening line should not depend on prior session state")
	}
	if dirtyResult.Session.ID != "session_dirty" {
		t.Errorf("session id should survive start, got %s", dirtyResult.Session.ID)
	}
}

func TestController_Start_LanguageClassOpening(t *testing.T) {
	c := newTestController()
	interview := c.Start(&models.Session{}, models.ScenarioTechInterview)
	language := c.Start(&models.Session{}, models.ScenarioLanguageClass)

	if interview.Turns[0].Text == language.Turns[0].Text {
		t.Error("expected scenario specific opening lines")
	}
	if !strings.Contains(language.Turns[0].Text, stages.At(0).Question) {
		t.Errorf("language opening should still ask the first question, got %q", language.Turns[0].Text)
	}
}

func TestController_UserTurn_HappyPathAdvance(t *testing.T) {
	c := newTestController()
	s := startedSession(t, c, 1)
	before := s.Coach

	result := c.UserTurn(s, "I improved onboarding time by 25% after redesigning the setup flow.", answerDecision())

	if result.Session.StageIndex != 2 {
		t.Errorf("expected stage 2, got %d", result.Session.StageIndex)
	}
	if result.Session.SpeakerRotationIndex != 1 {
		t.Errorf("expected rotation 1, got %d", result.Session.SpeakerRotationIndex)
	}
	if got := result.Session.Coach.Vocabulary - before.Vocabulary; got != 2 {
		t.Errorf("expected vocabulary +2, got %+d", got)
	}
	if got := result.Session.Coach.Confidence - before.Confidence; got != 2 {
		t.Errorf("expected confidence +2, got %+d", got)
	}
	if !result.Evaluation.IsRelevant || !result.Evaluation.Advanced {
		t.Errorf("expected relevant and advanced, got %+v", result.Evaluation)
	}
	if result.Evaluation.Branch != BranchAdvance {
		t.Errorf("expected advance branch, got %s", result.Evaluation.Branch)
	}

	if len(result.Turns) != 2 {
		t.Fatalf("expected peer and teacher turns, got %d", len(result.Turns))
	}
	if result.Turns[0].Role != models.RoleAlex {
		t.Errorf("expected alex first, got %s", result.Turns[0].Role)
	}
	if result.Turns[1].Role != models.RoleTeacher {
		t.Errorf("expected teacher last, got %s", result.Turns[1].Role)
	}
	if !strings.Contains(result.Turns[1].Text, stages.At(2).Question) {
		t.Errorf("teacher should ask the next question, got %q", result.Turns[1].Text)
	}
}

func TestController_UserTurn_IrrelevantAnswerDoesNotAdvance(t *testing.T) {
	c := newTestController()
	s := startedSession(t, c, 1)
	before := s.Coach

	result := c.UserTurn(s, "My favorite color is blue.", answerDecision())

	if result.Session.StageIndex != 1 {
		t.Errorf("stage should not change, got %d", result.Session.StageIndex)
	}
	if result.Evaluation.IsRelevant {
		t.Error("expected irrelevant answer")
	}
	if len(result.Evaluation.Issues) != 2 {
		t.Errorf("expected missing metric and impact issues, got %v", result.Evaluation.Issues)
	}
	if got := result.Session.Coach.Confidence - before.Confidence; got != -1 {
		t.Errorf("expected confidence -1, got %+d", got)
	}
	if got := result.Session.Coach.Clarity - before.Clarity; got != -2 {
		t.Errorf("expected clarity -2, got %+d", got)
	}
	if result.Evaluation.Branch != BranchFallback {
		t.Errorf("expected fallback branch, got %s", result.Evaluation.Branch)
	}
	if result.Session.SpeakerRotationIndex != 1 {
		t.Errorf("peers still rotate on a resolved exchange, got %d", result.Session.SpeakerRotationIndex)
	}
	if result.Turns[len(result.Turns)-1].Role != models.RoleTeacher {
		t.Error("teacher should speak last")
	}
}

func TestController_UserTurn_PeerClarification(t *testing.T) {
	c := newTestController()
	s := startedSession(t, c, 1)
	s.History.Append(models.HistoryEntry{Role: models.RoleAlex, Text: "Nice answer. Add one concrete metric."})
	rotation := s.SpeakerRotationIndex

	text := "What do you mean, Alex?"
	decision := router.NewFallbackClassifier().Decide(models.RouteInput{
		UserText:        text,
		RecentTurns:     s.History.Last(6),
		StageID:         string(stages.Achievement),
		CurrentQuestion: stages.At(1).Question,
	})

	result := c.UserTurn(s, text, decision)

	if result.Evaluation.Branch != BranchPeerClarify {
		t.Fatalf("expected peer clarification, got %s", result.Evaluation.Branch)
	}
	if len(result.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(result.Turns))
	}
	if result.Turns[0].Role != models.RoleAlex {
		t.Errorf("expected alex to clarify, got %s", result.Turns[0].Role)
	}
	if result.Turns[1].Role != models.RoleTeacher || !strings.Contains(result.Turns[1].Text, "Thanks, Alex") {
		t.Errorf("expected teacher bridge back, got %+v", result.Turns[1])
	}
	if result.Session.StageIndex != 1 {
		t.Errorf("stage should not change, got %d", result.Session.StageIndex)
	}
	if result.Session.SpeakerRotationIndex != rotation {
		t.Errorf("rotation should not change, got %d", result.Session.SpeakerRotationIndex)
	}
	if len(result.Evaluation.Issues) != 0 {
		t.Errorf("expected no issues, got %v", result.Evaluation.Issues)
	}
	if result.Evaluation.AddressedTo != models.TargetAlex {
		t.Errorf("expected addressed to alex, got %s", result.Evaluation.AddressedTo)
	}
}

func TestController_UserTurn_Branches(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		decision       models.RoutingDecision
		wantBranch     string
		wantTurns      int
		wantConfidence int
		wantClarity    int
	}{
		{
			name: "short message redirected",
			text: "hi",
			decision: models.RoutingDecision{
				Intent:            models.IntentOffTopic,
				TargetAgent:       models.TargetTeacher,
				RecommendedAction: models.ActionTeacherRedirect,
			},
			wantBranch:     BranchRedirect,
			wantTurns:      1,
			wantConfidence: -1,
			wantClarity:    -2,
		},
		{
			name: "teacher clarification",
			text: "Can you explain the question?",
			decision: models.RoutingDecision{
				Intent:            models.IntentClarification,
				TargetAgent:       models.TargetTeacher,
				RecommendedAction: models.ActionTeacherClarify,
			},
			wantBranch:     BranchTeacherClarify,
			wantTurns:      1,
			wantConfidence: -1,
			wantClarity:    -1,
		},
		{
			name: "peer reply without peer target goes to teacher",
			text: "Can someone explain?",
			decision: models.RoutingDecision{
				Intent:            models.IntentClarification,
				TargetAgent:       models.TargetClass,
				RecommendedAction: models.ActionPeerReply,
			},
			wantBranch:     BranchTeacherClarify,
			wantTurns:      1,
			wantConfidence: -1,
			wantClarity:    -1,
		},
		{
			name: "meta question",
			text: "How does this scoring work?",
			decision: models.RoutingDecision{
				Intent:            models.IntentMeta,
				TargetAgent:       models.TargetTeacher,
				RecommendedAction: models.ActionHandleMeta,
			},
			wantBranch: BranchMeta,
			wantTurns:  1,
		},
		{
			name: "end request",
			text: "Can we stop now?",
			decision: models.RoutingDecision{
				Intent:            models.IntentEnd,
				TargetAgent:       models.TargetTeacher,
				RecommendedAction: models.ActionHandleMeta,
			},
			wantBranch: BranchMeta,
			wantTurns:  1,
		},
		{
			name: "relevant answer without advance falls back",
			text: "I improved onboarding time by 25% after redesigning the setup flow.",
			decision: models.RoutingDecision{
				Intent:            models.IntentAnswer,
				TargetAgent:       models.TargetTeacher,
				RecommendedAction: models.ActionContinueInterview,
			},
			wantBranch:     BranchFallback,
			wantTurns:      2,
			wantConfidence: -1,
			wantClarity:    -2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController()
			s := startedSession(t, c, 1)
			before := s.Coach

			result := c.UserTurn(s, tt.text, tt.decision)

			if result.Evaluation.Branch != tt.wantBranch {
				t.Errorf("expected branch %s, got %s", tt.wantBranch, result.Evaluation.Branch)
			}
			if len(result.Turns) != tt.wantTurns {
				t.Errorf("expected %d turns, got %d", tt.wantTurns, len(result.Turns))
			}
			if result.Session.StageIndex != 1 {
				t.Errorf("stage should not change, got %d", result.Session.StageIndex)
			}
			if got := result.Session.Coach.Confidence - before.Confidence; got != tt.wantConfidence {
				t.Errorf("expected confidence %+d, got %+d", tt.wantConfidence, got)
			}
			if got := result.Session.Coach.Clarity - before.Clarity; got != tt.wantClarity {
				t.Errorf("expected clarity %+d, got %+d", tt.wantClarity, got)
			}
			if result.Turns[len(result.Turns)-1].Role != models.RoleTeacher {
				t.Error("teacher should speak last")
			}
		})
	}
}

func TestController_UserTurn_EmptyTextUsesPlaceholder(t *testing.T) {
	c := newTestController()
	s := startedSession(t, c, 0)

	c.UserTurn(s, "   ", answerDecision())

	entries := s.History.Entries()
	if entries[1].Role != models.RoleUser || entries[1].Text != emptyAnswerPlaceholder {
		t.Errorf("expected placeholder user entry, got %+v", entries[1])
	}
}

func TestController_FullInterviewReachesPlateau(t *testing.T) {
	c := newTestController()
	s := &models.Session{ID: "session_full"}
	c.Start(s, models.ScenarioTechInterview)

	for i, answer := range stageAnswers {
		result := c.UserTurn(s, answer, answerDecision())
		if result.Evaluation.Branch != BranchAdvance {
			t.Fatalf("stage %d: expected advance, got %s (issues %v)", i, result.Evaluation.Branch, result.Evaluation.Issues)
		}
	}

	if s.StageIndex != stages.LastIndex() {
		t.Errorf("expected last stage, got %d", s.StageIndex)
	}
	if !s.Completed {
		t.Error("expected session completed")
	}
	if StateOf(*s).Phase != Finished {
		t.Errorf("expected finished phase, got %s", StateOf(*s).Phase)
	}

	result := c.UserTurn(s, stageAnswers[len(stageAnswers)-1], answerDecision())
	if result.Session.StageIndex != stages.LastIndex() {
		t.Errorf("advancing from the last stage must not overflow, got %d", result.Session.StageIndex)
	}
}

func TestStateOf(t *testing.T) {
	started := models.NewHistory(models.HistoryEntry{Role: models.RoleTeacher, Text: "hello"})

	tests := []struct {
		name      string
		session   models.Session
		wantPhase Phase
		wantLast  bool
	}{
		{name: "fresh", session: models.Session{}, wantPhase: NotStarted},
		{name: "mid interview", session: models.Session{StageIndex: 2, TurnIndex: 3, History: started}, wantPhase: AwaitingAnswer},
		{name: "closing stage", session: models.Session{StageIndex: stages.LastIndex(), TurnIndex: 9, History: started}, wantPhase: AwaitingAnswer, wantLast: true},
		{name: "overflowed stage", session: models.Session{StageIndex: 99, TurnIndex: 9, History: started}, wantPhase: AwaitingAnswer, wantLast: true},
		{name: "finished", session: models.Session{StageIndex: stages.LastIndex(), TurnIndex: 12, Completed: true, History: started}, wantPhase: Finished, wantLast: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := StateOf(tt.session)
			if state.Phase != tt.wantPhase {
				t.Errorf("phase = %s, want %s", state.Phase, tt.wantPhase)
			}
			if state.OnLastStage() != tt.wantLast {
				t.Errorf("OnLastStage() = %v, want %v", state.OnLastStage(), tt.wantLast)
			}
		})
	}
}

func TestController_UserTurn_ClosingStageCompletes(t *testing.T) {
	c := newTestController()
	s := startedSession(t, c, stages.LastIndex())

	result := c.UserTurn(s, stageAnswers[len(stageAnswers)-1], answerDecision())

	if !result.Session.Completed || StateOf(result.Session).Phase != Finished {
		t.Fatalf("expected finished session, got completed=%v", result.Session.Completed)
	}
	if last := result.Turns[len(result.Turns)-1]; last.Text != wrapUpLine() {
		t.Errorf("expected wrap-up line, got %q", last.Text)
	}
}

func TestController_TurnIndexMonotonic(t *testing.T) {
	c := newTestController()
	s := &models.Session{}
	c.Start(s, models.ScenarioTechInterview)

	steps := []func() models.TurnResult{
		func() models.TurnResult { return c.UserTurn(s, "hi", models.RoutingDecision{Intent: models.IntentOffTopic}) },
		func() models.TurnResult { return c.NextTurn(s) },
		func() models.TurnResult { return c.UserTurn(s, stageAnswers[0], answerDecision()) },
		func() models.TurnResult { return c.Unknown(s, "dance") },
		func() models.TurnResult { return c.ModeratorTurn(s, "Tell me about teamwork.") },
	}

	last := s.TurnIndex
	for i, step := range steps {
		result := step()
		if result.Session.TurnIndex <= last {
			t.Fatalf("step %d: turn index %d not greater than %d", i, result.Session.TurnIndex, last)
		}
		last = result.Session.TurnIndex
	}
}

func TestController_HistoryBound(t *testing.T) {
	c := newTestController()
	s := &models.Session{}
	c.Start(s, models.ScenarioTechInterview)

	for i := 0; i < 40; i++ {
		c.UserTurn(s, fmt.Sprintf("answer number %d", i), answerDecision())
		if s.History.Len() > models.HistoryCapacity {
			t.Fatalf("history grew past capacity: %d", s.History.Len())
		}
	}

	// 1 opening line plus 40 turns of 3 entries each.
	total := 1 + 40*3
	entries := s.History.Entries()
	if len(entries) != models.HistoryCapacity {
		t.Fatalf("expected full history, got %d", len(entries))
	}
	// 121 entries minus 60 evicts the opening line and the first 20 turns.
	if total-models.HistoryCapacity != 1+20*3 {
		t.Fatalf("unexpected eviction count %d", total-models.HistoryCapacity)
	}
	if want := "answer number 20"; entries[0].Text != want {
		t.Errorf("expected oldest surviving entry %q, got %q", want, entries[0].Text)
	}
	if entries[0].Role != models.RoleUser {
		t.Errorf("expected oldest surviving entry from user, got %s", entries[0].Role)
	}
	if entries[len(entries)-1].Role != models.RoleTeacher {
		t.Errorf("expected newest entry from teacher, got %s", entries[len(entries)-1].Role)
	}
}

func TestController_NextTurn(t *testing.T) {
	c := newTestController()
	s := startedSession(t, c, 2)
	before := s.Coach
	rotation := s.SpeakerRotationIndex

	result := c.NextTurn(s)

	if len(result.Turns) != 1 || !strings.Contains(result.Turns[0].Text, stages.At(2).Question) {
		t.Fatalf("expected nudge with current question, got %+v", result.Turns)
	}
	if result.Session.Coach.Confidence != before.Confidence || result.Session.Coach.Clarity != before.Clarity {
		t.Error("next turn must not change scores")
	}
	if result.Session.StageIndex != 2 || result.Session.SpeakerRotationIndex != rotation {
		t.Error("next turn must not change stage or rotation")
	}
	if len(result.Evaluation.Issues) != 1 || result.Evaluation.Issues[0] != awaitingIssue {
		t.Errorf("unexpected issues %v", result.Evaluation.Issues)
	}
}

func TestController_ModeratorTurn(t *testing.T) {
	c := newTestController()
	s := startedSession(t, c, 0)
	s.SpeakerRotationIndex = 1
	before := s.Coach

	result := c.ModeratorTurn(s, "Who can describe a recent project?")

	want := []models.Role{models.RoleSofia, models.RoleJamal, models.RoleAlex}
	if len(result.Turns) != len(want) {
		t.Fatalf("expected %d turns, got %d", len(want), len(result.Turns))
	}
	for i, role := range want {
		if result.Turns[i].Role != role {
			t.Errorf("turn %d: expected %s, got %s", i, role, result.Turns[i].Role)
		}
	}
	if result.Session.SpeakerRotationIndex != 2 {
		t.Errorf("expected rotation 2, got %d", result.Session.SpeakerRotationIndex)
	}
	if result.Session.Coach.Confidence != before.Confidence {
		t.Error("moderator turn must not score")
	}
}

func TestController_Unknown(t *testing.T) {
	c := newTestController()
	s := startedSession(t, c, 3)

	result := c.Unknown(s, "dance")

	if result.Evaluation.Intent != models.IntentOffTopic {
		t.Errorf("expected off-topic marker, got %s", result.Evaluation.Intent)
	}
	if len(result.Turns) != 1 || result.Turns[0].Text != unknownActionLine {
		t.Errorf("unexpected turns %+v", result.Turns)
	}
	if result.Evaluation.Issues[0] != "Unknown action: dance" {
		t.Errorf("unexpected issue %v", result.Evaluation.Issues)
	}
	if result.Session.StageIndex != 3 {
		t.Errorf("stage should not change, got %d", result.Session.StageIndex)
	}
}

func TestNormalizeSession(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, s models.Session)
	}{
		{
			name: "empty session",
			raw:  `{}`,
			check: func(t *testing.T, s models.Session) {
				if !strings.HasPrefix(s.ID, "session_") {
					t.Errorf("expected generated id, got %q", s.ID)
				}
				if s.Coach.Confidence != coach.Baseline().Confidence {
					t.Errorf("expected baseline coach, got %+v", s.Coach)
				}
				if StateOf(s).Phase != NotStarted {
					t.Errorf("expected not started, got %s", StateOf(s).Phase)
				}
			},
		},
		{
			name: "garbage indices",
			raw:  `{"id":"session_x","stageIndex":"two","turnIndex":1.5,"speakerRotationIndex":null}`,
			check: func(t *testing.T, s models.Session) {
				if s.ID != "session_x" {
					t.Errorf("expected id kept, got %q", s.ID)
				}
				if s.StageIndex != 0 || s.TurnIndex != 0 || s.SpeakerRotationIndex != 0 {
					t.Errorf("expected zeroed indices, got %+v", s)
				}
			},
		},
		{
			name: "integral floats accepted",
			raw:  `{"stageIndex":2.0,"turnIndex":1e1,"speakerRotationIndex":2.00}`,
			check: func(t *testing.T, s models.Session) {
				if s.StageIndex != 2 || s.TurnIndex != 10 || s.SpeakerRotationIndex != 2 {
					t.Errorf("expected 2/10/2, got %d/%d/%d", s.StageIndex, s.TurnIndex, s.SpeakerRotationIndex)
				}
			},
		},
		{
			name: "out of range values",
			raw:  `{"stageIndex":99,"turnIndex":-4,"speakerRotationIndex":7}`,
			check: func(t *testing.T, s models.Session) {
				if s.StageIndex != stages.LastIndex() {
					t.Errorf("expected clamped stage, got %d", s.StageIndex)
				}
				if s.TurnIndex != 0 {
					t.Errorf("expected turn 0, got %d", s.TurnIndex)
				}
				if s.SpeakerRotationIndex != 1 {
					t.Errorf("expected rotation 1, got %d", s.SpeakerRotationIndex)
				}
			},
		},
		{
			name: "coach clamped",
			raw:  `{"coach":{"confidence":500,"vocabulary":10,"clarity":60}}`,
			check: func(t *testing.T, s models.Session) {
				if s.Coach.Confidence != coach.MaxScore || s.Coach.Vocabulary != coach.MinScore {
					t.Errorf("expected clamped coach, got %+v", s.Coach)
				}
			},
		},
		{
			name: "empty coach keeps baseline",
			raw:  `{"coach":{}}`,
			check: func(t *testing.T, s models.Session) {
				base := coach.Baseline()
				if s.Coach.Confidence != base.Confidence || s.Coach.Vocabulary != base.Vocabulary || s.Coach.Clarity != base.Clarity {
					t.Errorf("expected baseline scores, got %+v", s.Coach)
				}
				if len(s.Coach.Tips) == 0 || len(s.Coach.GrammarIssues) == 0 {
					t.Errorf("expected baseline tips and issues, got %+v", s.Coach)
				}
			},
		},
		{
			name: "partial coach fills missing scores",
			raw:  `{"coach":{"confidence":80,"vocabulary":null,"clarity":"high","tips":["Slow down."]}}`,
			check: func(t *testing.T, s models.Session) {
				base := coach.Baseline()
				if s.Coach.Confidence != 80 {
					t.Errorf("expected confidence 80, got %d", s.Coach.Confidence)
				}
				if s.Coach.Vocabulary != base.Vocabulary || s.Coach.Clarity != base.Clarity {
					t.Errorf("expected baseline vocabulary and clarity, got %+v", s.Coach)
				}
				if len(s.Coach.Tips) != 1 || s.Coach.Tips[0] != "Slow down." {
					t.Errorf("expected caller tips kept, got %v", s.Coach.Tips)
				}
			},
		},
		{
			name: "garbage coach",
			raw:  `{"coach":"strong"}`,
			check: func(t *testing.T, s models.Session) {
				if s.Coach.Vocabulary != coach.Baseline().Vocabulary {
					t.Errorf("expected baseline coach, got %+v", s.Coach)
				}
			},
		},
		{
			name: "completed only at last stage",
			raw:  `{"stageIndex":2,"completed":true}`,
			check: func(t *testing.T, s models.Session) {
				if s.Completed {
					t.Error("completed must be dropped before the last stage")
				}
			},
		},
		{
			name: "garbage history",
			raw:  `{"history":{"role":"user"}}`,
			check: func(t *testing.T, s models.Session) {
				if s.History.Len() != 0 {
					t.Errorf("expected empty history, got %d", s.History.Len())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw models.RawSession
			if err := json.Unmarshal([]byte(tt.raw), &raw); err != nil {
				t.Fatalf("unmarshal raw: %v", err)
			}
			tt.check(t, NormalizeSession(raw))
		})
	}
}

func TestNormalizeSession_OversizedHistory(t *testing.T) {
	entries := make([]models.HistoryEntry, 75)
	for i := range entries {
		entries[i] = models.HistoryEntry{Role: models.RoleUser, Text: fmt.Sprintf("line-%d", i)}
	}
	history, err := json.Marshal(entries)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	s := NormalizeSession(models.RawSession{History: history})

	if s.History.Len() != models.HistoryCapacity {
		t.Fatalf("expected %d entries, got %d", models.HistoryCapacity, s.History.Len())
	}
	if s.History.Entries()[0].Text != "line-15" {
		t.Errorf("expected line-15 first, got %s", s.History.Entries()[0].Text)
	}
}
