package batch

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/povarna/generative-ai-agents/classroom-agent/internal/models"
	"github.com/rs/zerolog"
)

// TurnRunner runs one classroom turn.
type TurnRunner interface {
	Execute(ctx context.Context, req models.TurnRequest) models.TurnResult
}

type StepResult struct {
	Script     string            `json:"script"`
	LineNumber int               `json:"line"`
	Action     string            `json:"action,omitempty"`
	UserText   string            `json:"userText,omitempty"`
	StageIndex int               `json:"stageIndex"`
	TurnIndex  int               `json:"turnIndex"`
	Completed  bool              `json:"completed"`
	Turns      []models.Turn     `json:"turns,omitempty"`
	Evaluation models.Evaluation `json:"evaluation"`
	Feedback   models.Feedback   `json:"feedback"`
	Error      string            `json:"error,omitempty"`
}

type Processor struct {
	runner  TurnRunner
	workers int
	logger  *zerolog.Logger
}

func NewProcessor(runner TurnRunner, workers int, logger *zerolog.Logger) *Processor {
	if workers <= 0 {
		workers = 1
	}
	return &Processor{runner: runner, workers: workers, logger: logger}
}

// Process replays every script. Scripts run concurrently on the worker pool
// while the steps of one script stay strictly sequential.
func (p *Processor) Process(ctx context.Context, records []InputRecord) <-chan StepResult {
	scripts, order := groupByScript(records)

	jobs := make(chan []InputRecord)
	results := make(chan StepResult)

	var wg sync.WaitGroup
	for range p.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for steps := range jobs {
				p.replay(ctx, steps, results)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, id := range order {
			select {
			case <-ctx.Done():
				return
			case jobs <- scripts[id]:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

func (p *Processor) replay(ctx context.Context, steps []InputRecord, out chan<- StepResult) {
	var session models.RawSession

	for _, record := range steps {
		if ctx.Err() != nil {
			return
		}

		if record.Error != nil {
			out <- StepResult{Script: record.Step.Script, LineNumber: record.LineNumber, Error: record.Error.Error()}
			continue
		}

		step := record.Step
		result := p.runner.Execute(ctx, models.TurnRequest{
			Mode:     step.Mode,
			Scenario: step.Scenario,
			Action:   step.Action,
			Session:  session,
			UserText: step.UserText,
		})

		next, err := toRawSession(result.Session)
		if err != nil {
			p.logger.Error().Err(err).Str("script", step.Script).Msg("Failed to carry session forward")
		} else {
			session = next
		}

		out <- StepResult{
			Script:     step.Script,
			LineNumber: record.LineNumber,
			Action:     step.Action,
			UserText:   step.UserText,
			StageIndex: result.Session.StageIndex,
			TurnIndex:  result.Session.TurnIndex,
			Completed:  result.Session.Completed,
			Turns:      result.Turns,
			Evaluation: result.Evaluation,
			Feedback:   result.Feedback,
		}
	}
}

// groupByScript keeps first-seen script order. Records that failed to parse
// are kept under an empty script id so they still produce an error result.
func groupByScript(records []InputRecord) (map[string][]InputRecord, []string) {
	scripts := make(map[string][]InputRecord)
	var order []string
	for _, r := range records {
		id := r.Step.Script
		if _, ok := scripts[id]; !ok {
			order = append(order, id)
		}
		scripts[id] = append(scripts[id], r)
	}
	return scripts, order
}

func toRawSession(s models.Session) (models.RawSession, error) {
	var raw models.RawSession
	data, err := json.Marshal(s)
	if err != nil {
		return raw, err
	}
	err = json.Unmarshal(data, &raw)
	return raw, err
}
