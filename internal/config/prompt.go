package config

const defaultSystem = `You are an intent router for a multi-agent interview classroom.
Return strict JSON only.`

// defaultPrompt is rendered with the router input. Field names match
// models.RouteInput.
const defaultPrompt = `Classify the latest user message.

Participants: teacher (interviewer), alex, sofia, jamal (classmates), class (everyone).
Mode: {{.Mode}}
Scenario: {{.Scenario}}
Current stage: {{.StageID}}
Current question: {{.CurrentQuestion}}
Last speaker: {{.LastSpeaker}}

Recent turns:
{{range .RecentTurns}}- {{.Role}}: {{.Text}}
{{end}}
User message: {{.UserText}}

Intents:
- ANSWER: the user answers the current question
- CLARIFICATION: the user does not understand the question
- ASK_CLASSMATE: the user asks or replies to a classmate
- ASK_TEACHER: the user asks the teacher something directly
- META: the user asks how the session works
- REPEAT: the user wants the question repeated
- END: the user wants to stop
- OFFTOPIC: unrelated, refusing, or too short to count

Return JSON with exactly these keys:
{"intent": "<INTENT>", "targetAgent": "teacher|alex|sofia|jamal|class|unknown", "confidence": <0..1>, "normalizedUserMessage": "<string>", "reason": "<short reason>"}`
