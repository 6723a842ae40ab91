package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"canvas/internal/domain"
	"canvas/internal/generate"
	"canvas/internal/infra"
)

// Generator runs one modality request and always yields an envelope.
type Generator interface {
	Generate(ctx context.Context, kind generate.Kind, req generate.Request) generate.Response
}

// NodeMerger writes a completed result into one node of a project document.
type NodeMerger interface {
	Apply(ctx context.Context, projectID, nodeID string, patch map[string]any) error
}

// App carries the handler dependencies.
type App struct {
	Cfg       *infra.Config
	Logger    infra.Logger
	Generator Generator
	Merger    NodeMerger
}

func NewApp(cfg *infra.Config, logger infra.Logger, gen Generator, merger NodeMerger) *App {
	return &App{Cfg: cfg, Logger: logger, Generator: gen, Merger: merger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps the public error taxonomy onto HTTP status codes.
func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeBadRequest:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
