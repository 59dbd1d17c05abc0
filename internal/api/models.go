package api

import "github.com/povarna/generative-ai-agents/classroom-agent/internal/stages"

type HealthResponse struct {
	Status  string `json:"status" description:"Service status"`
	Version string `json:"version" description:"Service version"`
}

type StagesResponse struct {
	Stages []stages.Stage `json:"stages" description:"Interview stages in order"`
}
