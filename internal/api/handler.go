package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/executor"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/models"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/stages"
	"github.com/rs/zerolog"
)

type Handler struct {
	executor *executor.Executor
	logger   *zerolog.Logger
}

func NewHandler(executor *executor.Executor, logger *zerolog.Logger) *Handler {
	return &Handler{
		executor: executor,
		logger:   logger,
	}
}

// POST /api/v1/classroom/turn
// Body: TurnRequest
// Returns: TurnResult
func (h *Handler) Turn(req *restful.Request, resp *restful.Response) {
	// Mistyped fields are coerced while decoding; only a body that is not a
	// JSON object is rejected.
	var turnRequest models.TurnRequest
	if err := req.ReadEntity(&turnRequest); err != nil {
		if errors.Is(err, io.EOF) {
			err = middleware.ErrEmptyBody
		}
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	// A live session must never hard-stop, so a failing turn degrades to a
	// single safe teacher line instead of a 500.
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error().Interface("panic", r).Str("action", turnRequest.Action).Msg("Turn failed, returning safe fallback")
			_ = resp.WriteHeaderAndEntity(http.StatusOK, executor.SafeResult(turnRequest))
		}
	}()

	result := h.executor.Execute(req.Request.Context(), turnRequest)

	h.logger.Info().
		Str("session_id", result.Session.ID).
		Str("branch", result.Evaluation.Branch).
		Int("turns", len(result.Turns)).
		Msg("Turn complete")

	_ = resp.WriteHeaderAndEntity(http.StatusOK, result)
}

// GET /api/v1/classroom/stages
func (h *Handler) Stages(req *restful.Request, resp *restful.Response) {
	_ = resp.WriteHeaderAndEntity(http.StatusOK, StagesResponse{Stages: stages.All()})
}

// Health handler GET API /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	healthResponse := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}

	_ = resp.WriteHeaderAndEntity(http.StatusOK, healthResponse)
}
