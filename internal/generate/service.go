// Package generate runs one modality request end to end: validate input,
// resolve the model, drive the remote job, shape the result into the
// shared response envelope.
package generate

import (
	"context"
	"strings"
	"time"

	"canvas/internal/domain"
	"canvas/internal/infra"
	"canvas/internal/models"
	"canvas/internal/providers/replicate"
)

// Runner drives one remote job to a terminal state. Satisfied by
// *replicate.Client.
type Runner interface {
	Run(ctx context.Context, model string, input map[string]any, opts replicate.RunOptions) (*replicate.Prediction, error)
}

// Service is the shared orchestration path behind every modality endpoint.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	registry   *models.Registry
	jobs       Runner
	logger     infra.Logger
	modalities map[Kind]modality
}

// NewService wires the modality table from the configured defaults.
func NewService(cfg *infra.Config, registry *models.Registry, jobs Runner, logger infra.Logger) *Service {
	table := map[Kind]modality{
		KindText: {
			kind:         KindText,
			defaultModel: cfg.TextModel,
			pollInterval: cfg.PollInterval,
			timeout:      cfg.RunTimeout,
			buildInput:   buildTextInput,
			shapeOutput:  shapeText,
		},
		KindImage: {
			kind:         KindImage,
			defaultModel: cfg.ImageModel,
			pollInterval: cfg.PollInterval,
			timeout:      cfg.RunTimeout,
			buildInput:   buildPromptInput(func(req Request) map[string]any { return req.Options }),
			shapeOutput:  shapeURLs,
		},
		KindVideo: {
			kind:         KindVideo,
			defaultModel: cfg.VideoModel,
			pollInterval: cfg.PollInterval,
			timeout:      cfg.VideoTimeout,
			buildInput:   buildPromptInput(func(req Request) map[string]any { return req.Input }),
			shapeOutput:  shapeURLs,
		},
		KindAudioTTS: {
			kind:         KindAudioTTS,
			defaultModel: cfg.TTSModel,
			pollInterval: cfg.PollInterval,
			timeout:      cfg.RunTimeout,
			buildInput:   buildTTSInput,
			shapeOutput:  shapeURLs,
		},
		KindAudioSTT: {
			kind:         KindAudioSTT,
			defaultModel: cfg.STTModel,
			pollInterval: cfg.PollInterval,
			timeout:      cfg.RunTimeout,
			buildInput:   buildSTTInput,
			shapeOutput:  shapeText,
		},
	}
	return &Service{registry: registry, jobs: jobs, logger: logger, modalities: table}
}

// Generate validates req for the given modality, resolves the model and
// runs the job. It always returns a well-formed envelope; no error from
// the provider path escapes as a raw error.
func (s *Service) Generate(ctx context.Context, kind Kind, req Request) Response {
	start := time.Now()

	m, ok := s.modalities[kind]
	if !ok {
		return Failure(domain.Errorf(domain.CodeBadRequest, "unsupported modality %q", kind), time.Since(start))
	}

	input, derr := m.buildInput(req)
	if derr != nil {
		return Failure(derr, time.Since(start))
	}

	slug := s.registry.Resolve(strings.TrimSpace(req.ModelKey), m.defaultModel)
	if slug == "" {
		return Failure(domain.NewError(domain.CodeBadRequest, "Invalid model key"), time.Since(start))
	}

	pred, err := s.jobs.Run(ctx, slug, input, replicate.RunOptions{
		PollInterval: m.pollInterval,
		Timeout:      m.timeout,
	})
	if err != nil {
		coded := domain.AsError(err)
		s.logger.Warn().
			Str("kind", string(kind)).
			Str("model", slug).
			Str("code", string(coded.Code)).
			Msg("generation failed")
		return Failure(coded, time.Since(start))
	}

	var meta map[string]any
	if pred.Logs != "" {
		meta = map[string]any{"logs": pred.Logs}
	}
	return Success(kind, slug, m.shapeOutput(pred.Output), meta, time.Since(start))
}
