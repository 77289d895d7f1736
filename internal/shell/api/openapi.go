package api

import (
	"net/http"

	"github.com/artpar/retention/internal/shell/api/openapi"
)

// NewOpenAPIGenerator describes the endpoints served by Handler.Routes.
func NewOpenAPIGenerator(version string) *openapi.Generator {
	if version == "" || version == "dev" {
		version = "0.0.0-dev"
	}
	minKeep := 1.0

	g := openapi.NewGenerator(openapi.WithVersion(version))
	g.RegisterEndpoint(openapi.EndpointInfo{
		Path:        "/api/v1/retention",
		OperationID: "computeRetention",
		Summary:     "Compute the releases to retain per project and environment",
		Tag:         "Retention",
		Response:    RetentionResponse{},
		Query: []openapi.QueryParam{{
			Name:        "keep",
			Description: "Releases to keep per environment; defaults to the configured keep count",
			Type:        "integer",
			Minimum:     &minKeep,
		}},
		Errors: map[int]string{
			http.StatusBadRequest:          "Keep count is not a positive integer",
			http.StatusUnprocessableEntity: "A record collection is empty",
			http.StatusBadGateway:          "The record source failed",
			http.StatusInternalServerError: "Unexpected error",
		},
	})
	g.RegisterEndpoint(openapi.EndpointInfo{
		Path:        "/health",
		OperationID: "health",
		Summary:     "Liveness probe",
		Tag:         "Health",
		Response:    HealthResponse{},
	})
	g.RegisterEndpoint(openapi.EndpointInfo{
		Path:        "/ready",
		OperationID: "ready",
		Summary:     "Readiness probe; answers 503 with the same body when the record source is unreachable",
		Tag:         "Health",
		Response:    ReadyResponse{},
	})
	return g
}
