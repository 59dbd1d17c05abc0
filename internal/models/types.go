package models

import (
	"encoding/json"
	"time"
)

type Role string

const (
	RoleTeacher Role = "teacher"
	RoleAlex    Role = "alex"
	RoleSofia   Role = "sofia"
	RoleJamal   Role = "jamal"
	RoleUser    Role = "user"
)

// DisplayName returns the speaker label shown next to an utterance.
func (r Role) DisplayName() string {
	switch r {
	case RoleTeacher:
		return "Teacher"
	case RoleAlex:
		return "Alex"
	case RoleSofia:
		return "Sofia"
	case RoleJamal:
		return "Jamal"
	case RoleUser:
		return "You"
	default:
		return string(r)
	}
}

func (r Role) IsPeer() bool {
	return r == RoleAlex || r == RoleSofia || r == RoleJamal
}

// Target is who the user is addressing.
type Target string

const (
	TargetTeacher Target = "teacher"
	TargetAlex    Target = "alex"
	TargetSofia   Target = "sofia"
	TargetJamal   Target = "jamal"
	TargetClass   Target = "class"
	TargetUnknown Target = "unknown"
)

func (t Target) IsPeer() bool {
	return t == TargetAlex || t == TargetSofia || t == TargetJamal
}

func (t Target) Valid() bool {
	switch t {
	case TargetTeacher, TargetAlex, TargetSofia, TargetJamal, TargetClass, TargetUnknown:
		return true
	}
	return false
}

type Intent string

const (
	IntentAnswer        Intent = "ANSWER"
	IntentClarification Intent = "CLARIFICATION"
	IntentAskClassmate  Intent = "ASK_CLASSMATE"
	IntentAskTeacher    Intent = "ASK_TEACHER"
	IntentMeta          Intent = "META"
	IntentRepeat        Intent = "REPEAT"
	IntentEnd           Intent = "END"
	IntentOffTopic      Intent = "OFFTOPIC"
)

func (i Intent) Valid() bool {
	switch i {
	case IntentAnswer, IntentClarification, IntentAskClassmate, IntentAskTeacher,
		IntentMeta, IntentRepeat, IntentEnd, IntentOffTopic:
		return true
	}
	return false
}

// Action is the router's recommendation for the turn controller.
type Action string

const (
	ActionContinueInterview Action = "continue_interview"
	ActionTeacherClarify    Action = "teacher_clarify_question"
	ActionPeerReply         Action = "peer_reply"
	ActionTeacherRedirect   Action = "teacher_redirect"
	ActionAskUserToAnswer   Action = "ask_user_to_answer"
	ActionHandleMeta        Action = "handle_meta"
)

// Turn actions accepted by runTurn.
const (
	TurnActionStart    = "start"
	TurnActionUserTurn = "user_turn"
	TurnActionNextTurn = "next_turn"
)

const (
	ModeLearner = "learner"
	ModeTeacher = "teacher"

	ScenarioTechInterview = "tech_interview"
	ScenarioLanguageClass = "language_class"
)

type HistoryEntry struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Turn is a single utterance produced during one runTurn call.
type Turn struct {
	Speaker string `json:"speaker"`
	Role    Role   `json:"role"`
	Text    string `json:"text"`
}

type ScoreDeltas struct {
	Confidence int `json:"confidence"`
	Vocabulary int `json:"vocabulary"`
	Clarity    int `json:"clarity"`
}

type CoachFeedback struct {
	Confidence    int      `json:"confidence"`
	Vocabulary    int      `json:"vocabulary"`
	Clarity       int      `json:"clarity"`
	Level         string   `json:"level"`
	Tips          []string `json:"tips"`
	GrammarIssues []string `json:"grammarIssues"`
}

// TeacherMetrics is the instructor view of the same coaching snapshot.
type TeacherMetrics struct {
	StudentGrowth int      `json:"studentGrowth"`
	Engagement    int      `json:"engagement"`
	ClarityTrend  int      `json:"clarityTrend"`
	CommonErrors  []string `json:"commonErrors"`
}

type Feedback struct {
	CoachFeedback
	TeacherMetrics *TeacherMetrics `json:"teacherMetrics,omitempty"`
}

type RoutingDecision struct {
	Intent                Intent  `json:"intent"`
	TargetAgent           Target  `json:"targetAgent"`
	Confidence            float64 `json:"confidence"`
	NormalizedUserMessage string  `json:"normalizedUserMessage"`
	RecommendedAction     Action  `json:"recommendedAction"`
	ShouldAdvanceState    bool    `json:"shouldAdvanceState"`
	Reason                string  `json:"reason"`
	LastSpeaker           Role    `json:"lastSpeaker,omitempty"`
	LastTeacherQuestion   string  `json:"lastTeacherQuestion,omitempty"`
	Source                string  `json:"source"`
}

type NextQuestionAction string

const (
	NextQuestionAdvance NextQuestionAction = "advance"
	NextQuestionRetry   NextQuestionAction = "retry"
)

type RelevanceEvaluation struct {
	IsRelevant         bool               `json:"isRelevant"`
	Issues             []string           `json:"issues"`
	ScoreDeltas        ScoreDeltas        `json:"scoreDeltas"`
	Tip                string             `json:"tip"`
	NextQuestionAction NextQuestionAction `json:"nextQuestionAction"`
	Checker            string             `json:"checker,omitempty"`
}

// Session is owned by the caller and replayed on every request.
type Session struct {
	ID                   string        `json:"id"`
	StageIndex           int           `json:"stageIndex"`
	TurnIndex            int           `json:"turnIndex"`
	SpeakerRotationIndex int           `json:"speakerRotationIndex"`
	Completed            bool          `json:"completed,omitempty"`
	History              History       `json:"history"`
	Coach                CoachFeedback `json:"coach"`
}

// RawSession is the session exactly as the caller sent it. Every field is
// decoded lazily so malformed values never fail the request.
type RawSession struct {
	ID                   json.RawMessage `json:"id,omitempty"`
	StageIndex           json.RawMessage `json:"stageIndex,omitempty"`
	TurnIndex            json.RawMessage `json:"turnIndex,omitempty"`
	SpeakerRotationIndex json.RawMessage `json:"speakerRotationIndex,omitempty"`
	Completed            json.RawMessage `json:"completed,omitempty"`
	History              json.RawMessage `json:"history,omitempty"`
	Coach                json.RawMessage `json:"coach,omitempty"`
}

// RouteInput is everything a classifier may look at.
type RouteInput struct {
	UserText        string         `json:"userText"`
	RecentTurns     []HistoryEntry `json:"recentTurns"`
	StageID         string         `json:"stageId"`
	CurrentQuestion string         `json:"currentQuestion"`
	Mode            string         `json:"mode"`
	Scenario        string         `json:"scenario"`
	LastSpeaker     Role           `json:"lastSpeaker,omitempty"`
}

type TurnRequest struct {
	Mode        string         `json:"mode,omitempty"`
	Scenario    string         `json:"scenario,omitempty"`
	Action      string         `json:"action,omitempty"`
	Session     RawSession     `json:"session"`
	UserText    string         `json:"userText,omitempty"`
	UserInput   string         `json:"userInput,omitempty"`
	RecentTurns []HistoryEntry `json:"recentTurns,omitempty"`
}

type Evaluation struct {
	Stage              string   `json:"stage"`
	Intent             Intent   `json:"intent,omitempty"`
	AddressedTo        Target   `json:"addressedTo,omitempty"`
	RecommendedAction  Action   `json:"recommendedAction,omitempty"`
	ShouldAdvanceState bool     `json:"shouldAdvanceState"`
	Advanced           bool     `json:"advanced"`
	IsRelevant         bool     `json:"isRelevant"`
	Issues             []string `json:"issues"`
	Branch             string   `json:"branch"`
	RouterReason       string   `json:"routerReason,omitempty"`
	RouterConfidence   float64  `json:"routerConfidence,omitempty"`
	RouterSource       string   `json:"routerSource,omitempty"`
}

type TurnResult struct {
	Session    Session    `json:"session"`
	Turns      []Turn     `json:"turns"`
	Feedback   Feedback   `json:"feedback"`
	LiveTip    string     `json:"liveTip"`
	Evaluation Evaluation `json:"evaluation"`
}

// TurnEvent is the telemetry record emitted after every turn.
type TurnEvent struct {
	SessionID  string     `json:"sessionId"`
	TurnIndex  int        `json:"turnIndex"`
	StageIndex int        `json:"stageIndex"`
	Action     string     `json:"action"`
	Mode       string     `json:"mode"`
	Scenario   string     `json:"scenario"`
	Evaluation Evaluation `json:"evaluation"`
	Feedback   Feedback   `json:"feedback"`
	CreatedAt  time.Time  `json:"createdAt"`
}
