package controller

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/coach"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/models"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/stages"
)

// Phase is the explicit state of a session.
type Phase int

const (
	NotStarted Phase = iota
	AwaitingAnswer
	Finished
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not_started"
	case AwaitingAnswer:
		return "awaiting_answer"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State pairs a phase with the stage the session is on.
type State struct {
	Phase Phase
	Stage stages.Stage
}

// OnLastStage reports whether accepting an answer would finish the session.
func (st State) OnLastStage() bool {
	idx, ok := stages.IndexOf(st.Stage.ID)
	return ok && idx == stages.LastIndex()
}

func StateOf(s models.Session) State {
	stage := stages.At(s.StageIndex)
	switch {
	case s.TurnIndex == 0 && s.History.Len() == 0:
		return State{Phase: NotStarted, Stage: stage}
	case s.Completed:
		return State{Phase: Finished, Stage: stage}
	default:
		return State{Phase: AwaitingAnswer, Stage: stage}
	}
}

func NewSessionID() string {
	return "session_" + uuid.NewString()
}

// NormalizeSession coerces whatever the caller sent into a valid session.
// It never fails: every malformed field falls back to its default.
func NormalizeSession(raw models.RawSession) models.Session {
	s := models.Session{
		ID:                   decodeString(raw.ID),
		StageIndex:           stages.Clamp(decodeInt(raw.StageIndex)),
		TurnIndex:            decodeInt(raw.TurnIndex),
		SpeakerRotationIndex: stages.NormalizeRotation(decodeInt(raw.SpeakerRotationIndex)),
	}

	if s.ID == "" {
		s.ID = NewSessionID()
	}
	if s.TurnIndex < 0 {
		s.TurnIndex = 0
	}

	if len(raw.History) > 0 {
		var h models.History
		if err := json.Unmarshal(raw.History, &h); err == nil {
			s.History = h
		}
	}

	s.Coach = decodeCoach(raw.Coach)

	var completed bool
	if len(raw.Completed) > 0 {
		_ = json.Unmarshal(raw.Completed, &completed)
	}
	s.Completed = completed && s.StageIndex == stages.LastIndex()

	return s
}

// decodeCoach starts from the baseline and overlays every well-formed field
// the caller sent, so a partial snapshot keeps baseline scores for the rest.
func decodeCoach(raw json.RawMessage) models.CoachFeedback {
	c := coach.Baseline()

	var fields map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &fields) != nil || fields == nil {
		return c
	}

	if n, ok := parseInt(fields["confidence"]); ok {
		c.Confidence = n
	}
	if n, ok := parseInt(fields["vocabulary"]); ok {
		c.Vocabulary = n
	}
	if n, ok := parseInt(fields["clarity"]); ok {
		c.Clarity = n
	}

	var tips []string
	if v, ok := fields["tips"]; ok && json.Unmarshal(v, &tips) == nil && tips != nil {
		c.Tips = tips
	}
	var issues []string
	if v, ok := fields["grammarIssues"]; ok && json.Unmarshal(v, &issues) == nil && issues != nil {
		c.GrammarIssues = issues
	}

	return coach.Normalize(c)
}

// decodeInt accepts any integral JSON number, so 2, 2.0 and 2e0 all decode
// to 2. Anything else yields 0.
func decodeInt(raw json.RawMessage) int {
	n, _ := parseInt(raw)
	return n
}

func parseInt(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func decodeString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
