package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

const maxLineBytes = 1024 * 1024

// ScriptStep is one line of a replay script. Steps sharing a script id are
// replayed in order through the same session.
type ScriptStep struct {
	Script   string `json:"script"`
	Mode     string `json:"mode,omitempty"`
	Scenario string `json:"scenario,omitempty"`
	Action   string `json:"action"`
	UserText string `json:"userText,omitempty"`
}

type InputRecord struct {
	LineNumber int
	Step       ScriptStep
	Error      error
}

type Reader struct {
	source io.Reader
	logger *zerolog.Logger
}

func NewReader(source io.Reader, logger *zerolog.Logger) *Reader {
	return &Reader{source: source, logger: logger}
}

// ReadAll streams parsed lines until the input ends or ctx is cancelled.
// Blank lines are skipped but still counted for line numbers.
func (r *Reader) ReadAll(ctx context.Context) <-chan InputRecord {
	out := make(chan InputRecord)

	go func() {
		defer close(out)

		scanner := bufio.NewScanner(r.source)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

		line := 0
		for scanner.Scan() {
			line++
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}

			record := InputRecord{LineNumber: line}
			if err := json.Unmarshal([]byte(text), &record.Step); err != nil {
				record.Error = fmt.Errorf("line %d: invalid JSON: %w", line, err)
			} else if record.Step.Script == "" {
				record.Error = fmt.Errorf("line %d: missing script id", line)
			}

			select {
			case <-ctx.Done():
				return
			case out <- record:
			}
		}

		if err := scanner.Err(); err != nil {
			r.logger.Error().Err(err).Int("line", line).Msg("Failed to read input")
		}
	}()

	return out
}
