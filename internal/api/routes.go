package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/classroom-agent/internal/models"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.POST("/classroom/turn").
			To(handler.Turn).
			Doc("Run one classroom turn").
			Metadata(restfulspec.KeyOpenAPITags, []string{"classroom"}).
			Reads(models.TurnRequest{}).
			Writes(models.TurnResult{}).
			Returns(200, "OK", models.TurnResult{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("/classroom/stages").
			To(handler.Stages).
			Doc("List interview stages").
			Metadata(restfulspec.KeyOpenAPITags, []string{"classroom"}).
			Writes(StagesResponse{}).
			Returns(200, "OK", StagesResponse{}))

	container.Add(ws)
}
