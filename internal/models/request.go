package models

import "encoding/json"

type turnRequestEnvelope struct {
	Mode        json.RawMessage `json:"mode"`
	Scenario    json.RawMessage `json:"scenario"`
	Action      json.RawMessage `json:"action"`
	Session     json.RawMessage `json:"session"`
	UserText    json.RawMessage `json:"userText"`
	UserInput   json.RawMessage `json:"userInput"`
	RecentTurns json.RawMessage `json:"recentTurns"`
}

// UnmarshalJSON only fails when the payload is not a JSON object. A field
// with the wrong type decodes to its zero value: a non-object session is an
// empty session, non-string text is "" and malformed recent turns are nil.
func (r *TurnRequest) UnmarshalJSON(data []byte) error {
	var env turnRequestEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	*r = TurnRequest{
		Mode:      looseString(env.Mode),
		Scenario:  looseString(env.Scenario),
		Action:    looseString(env.Action),
		UserText:  looseString(env.UserText),
		UserInput: looseString(env.UserInput),
	}

	var session RawSession
	if len(env.Session) > 0 && json.Unmarshal(env.Session, &session) == nil {
		r.Session = session
	}

	var recent []HistoryEntry
	if len(env.RecentTurns) > 0 && json.Unmarshal(env.RecentTurns, &recent) == nil {
		r.RecentTurns = recent
	}
	return nil
}

func looseString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
