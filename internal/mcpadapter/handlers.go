package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/models"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/stages"
)

// TurnRunner runs one classroom turn.
type TurnRunner interface {
	Execute(ctx context.Context, req models.TurnRequest) models.TurnResult
}

// RunTurnInput is the MCP tool input schema (matches HTTP API field names).
type RunTurnInput struct {
	Mode        string                `json:"mode,omitempty" jsonschema:"learner or teacher, default learner"`
	Scenario    string                `json:"scenario,omitempty" jsonschema:"tech_interview or language_class"`
	Action      string                `json:"action,omitempty" jsonschema:"start, user_turn or next_turn"`
	Session     map[string]any        `json:"session,omitempty" jsonschema:"session returned by the previous call, omit to begin"`
	UserText    string                `json:"userText,omitempty" jsonschema:"what the user said this turn"`
	RecentTurns []models.HistoryEntry `json:"recentTurns,omitempty" jsonschema:"optional recent conversation for routing"`
}

type ListStagesInput struct{}

type ListStagesOutput struct {
	Stages []stages.Stage `json:"stages" jsonschema:"interview stages in order"`
}

// NewRunTurnHandler returns a tool handler that uses the given runner.
// Pass the returned function to mcp.AddTool.
func NewRunTurnHandler(runner TurnRunner) func(context.Context, *mcp.CallToolRequest, RunTurnInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RunTurnInput) (*mcp.CallToolResult, any, error) {
		return RunTurn(ctx, runner, req, input)
	}
}

// RunTurn executes one turn and returns the full turn result as JSON text,
// so the caller can replay the session on the next call.
func RunTurn(
	ctx context.Context,
	runner TurnRunner,
	req *mcp.CallToolRequest,
	input RunTurnInput,
) (*mcp.CallToolResult, any, error) {
	session, err := toRawSession(input.Session)
	if err != nil {
		return nil, nil, err
	}

	result := runner.Execute(ctx, models.TurnRequest{
		Mode:        input.Mode,
		Scenario:    input.Scenario,
		Action:      input.Action,
		Session:     session,
		UserText:    input.UserText,
		RecentTurns: input.RecentTurns,
	})

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode turn result: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(payload)}},
	}, nil, nil
}

func ListStages(_ context.Context, _ *mcp.CallToolRequest, _ ListStagesInput) (*mcp.CallToolResult, ListStagesOutput, error) {
	return nil, ListStagesOutput{Stages: stages.All()}, nil
}

func toRawSession(session map[string]any) (models.RawSession, error) {
	var raw models.RawSession
	if len(session) == 0 {
		return raw, nil
	}
	data, err := json.Marshal(session)
	if err != nil {
		return raw, fmt.Errorf("failed to encode session: %w", err)
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return raw, fmt.Errorf("failed to decode session: %w", err)
	}
	return raw, nil
}
