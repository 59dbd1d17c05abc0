package batch

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/rs/zerolog"
)

const (
	FormatJSONL   = "jsonl"
	FormatSummary = "summary"
)

// ScriptSummary is the end state of one replayed script.
type ScriptSummary struct {
	Script     string         `json:"script"`
	Steps      int            `json:"steps"`
	Errors     int            `json:"errors"`
	StageIndex int            `json:"stageIndex"`
	Completed  bool           `json:"completed"`
	Confidence int            `json:"confidence"`
	Vocabulary int            `json:"vocabulary"`
	Clarity    int            `json:"clarity"`
	Level      string         `json:"level"`
	Branches   map[string]int `json:"branches"`
}

type Summary struct {
	TotalSteps int             `json:"totalSteps"`
	Errors     int             `json:"errors"`
	Scripts    []ScriptSummary `json:"scripts"`
}

type Writer struct {
	out     io.Writer
	format  string
	encoder *json.Encoder
	scripts map[string]*ScriptSummary
	summary Summary
	logger  *zerolog.Logger
}

func NewWriter(out io.Writer, format string, logger *zerolog.Logger) (*Writer, error) {
	switch format {
	case FormatJSONL, FormatSummary:
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	return &Writer{
		out:     out,
		format:  format,
		encoder: json.NewEncoder(out),
		scripts: make(map[string]*ScriptSummary),
		logger:  logger,
	}, nil
}

// Write emits one step result in jsonl mode and always folds it into the summary.
func (w *Writer) Write(result StepResult) error {
	w.track(result)

	if w.format != FormatJSONL {
		return nil
	}
	if err := w.encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to write result for line %d: %w", result.LineNumber, err)
	}
	return nil
}

func (w *Writer) track(result StepResult) {
	w.summary.TotalSteps++

	s, ok := w.scripts[result.Script]
	if !ok {
		s = &ScriptSummary{Script: result.Script, Branches: map[string]int{}}
		w.scripts[result.Script] = s
	}
	s.Steps++

	if result.Error != "" {
		s.Errors++
		w.summary.Errors++
		return
	}

	// Steps of one script arrive in order, so the latest step is the end state.
	s.StageIndex = result.StageIndex
	s.Completed = result.Completed
	s.Confidence = result.Feedback.Confidence
	s.Vocabulary = result.Feedback.Vocabulary
	s.Clarity = result.Feedback.Clarity
	s.Level = result.Feedback.Level
	s.Branches[result.Evaluation.Branch]++
}

func (w *Writer) Summary() Summary {
	out := w.summary
	out.Scripts = make([]ScriptSummary, 0, len(w.scripts))
	for _, s := range w.scripts {
		out.Scripts = append(out.Scripts, *s)
	}
	sort.Slice(out.Scripts, func(i, j int) bool { return out.Scripts[i].Script < out.Scripts[j].Script })
	return out
}

// Close writes the summary document in summary mode.
func (w *Writer) Close() error {
	if w.format != FormatSummary {
		return nil
	}
	summary := w.Summary()
	w.logger.Info().Int("steps", summary.TotalSteps).Int("scripts", len(summary.Scripts)).Msg("Writing summary")

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if _, err := w.out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
