package generate

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"canvas/internal/domain"
	"canvas/internal/infra"
	"canvas/internal/models"
	"canvas/internal/providers/replicate"
)

type stubRunner struct {
	pred *replicate.Prediction
	err  error

	calls    int
	gotModel string
	gotInput map[string]any
	gotOpts  replicate.RunOptions
}

func (s *stubRunner) Run(ctx context.Context, model string, input map[string]any, opts replicate.RunOptions) (*replicate.Prediction, error) {
	s.calls++
	s.gotModel = model
	s.gotInput = input
	s.gotOpts = opts
	if s.err != nil {
		return nil, s.err
	}
	return s.pred, nil
}

func testConfig() *infra.Config {
	return &infra.Config{
		TextModel:    "openai/gpt-4o-mini",
		ImageModel:   "black-forest-labs/flux-schnell",
		VideoModel:   "bytedance/seedance-1-lite",
		TTSModel:     "minimax/speech-02-turbo",
		STTModel:     "openai/whisper",
		PollInterval: 1500 * time.Millisecond,
		RunTimeout:   2 * time.Minute,
		VideoTimeout: 5 * time.Minute,
	}
}

func newTestService(runner Runner) *Service {
	return NewService(testConfig(), models.NewRegistry(), runner, zerolog.New(io.Discard))
}

func TestGenerateTextSuccess(t *testing.T) {
	runner := &stubRunner{pred: &replicate.Prediction{
		ID:     "pred-1",
		Status: replicate.StatusSucceeded,
		Output: "Hi there friend!",
	}}
	svc := newTestService(runner)

	resp := svc.Generate(context.Background(), KindText, Request{
		Prompt:   "Say hi in five words",
		ModelKey: "openai:gpt-4o-mini",
	})

	if !resp.OK {
		t.Fatalf("resp not ok: %+v", resp.Error)
	}
	if resp.Kind != KindText {
		t.Fatalf("kind = %q", resp.Kind)
	}
	if resp.Model != "openai/gpt-4o-mini" {
		t.Fatalf("model = %q", resp.Model)
	}
	if data, ok := resp.Data.(TextData); !ok || data.Text != "Hi there friend!" {
		t.Fatalf("data = %#v", resp.Data)
	}
	if runner.gotInput["prompt"] != "Say hi in five words" {
		t.Fatalf("input = %#v", runner.gotInput)
	}
}

func TestGenerateTextJoinsMessages(t *testing.T) {
	runner := &stubRunner{pred: &replicate.Prediction{Status: replicate.StatusSucceeded, Output: []any{"Hello", "there"}}}
	svc := newTestService(runner)

	resp := svc.Generate(context.Background(), KindText, Request{
		Messages: []Message{
			{Role: "system", Content: "be brief"},
			{Role: "user", Content: "say hello"},
		},
	})

	if !resp.OK {
		t.Fatalf("resp not ok: %+v", resp.Error)
	}
	if runner.gotInput["prompt"] != "system: be brief\nuser: say hello" {
		t.Fatalf("prompt = %q", runner.gotInput["prompt"])
	}
	if data := resp.Data.(TextData); data.Text != "Hello\nthere" {
		t.Fatalf("text = %q", data.Text)
	}
}

func TestGenerateValidationFailsBeforeAnyRemoteCall(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		req     Request
		message string
	}{
		{"text without prompt or messages", KindText, Request{}, "Missing prompt or messages"},
		{"image without prompt", KindImage, Request{ModelKey: "bfl:flux-dev"}, "Missing prompt"},
		{"video without prompt", KindVideo, Request{}, "Missing prompt"},
		{"tts without text", KindAudioTTS, Request{}, "Missing text"},
		{"stt without audio url", KindAudioSTT, Request{}, "Missing audio_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &stubRunner{}
			svc := newTestService(runner)
			resp := svc.Generate(context.Background(), tt.kind, tt.req)
			if resp.OK {
				t.Fatal("resp ok, want validation failure")
			}
			if resp.Error.Code != domain.CodeBadRequest {
				t.Fatalf("code = %q", resp.Error.Code)
			}
			if resp.Error.Message != tt.message {
				t.Fatalf("message = %q, want %q", resp.Error.Message, tt.message)
			}
			if runner.calls != 0 {
				t.Fatalf("runner called %d times before validation", runner.calls)
			}
		})
	}
}

func TestGenerateImageWrapsLoneURL(t *testing.T) {
	runner := &stubRunner{pred: &replicate.Prediction{
		Status: replicate.StatusSucceeded,
		Output: "https://cdn.example.com/out.png",
	}}
	svc := newTestService(runner)

	resp := svc.Generate(context.Background(), KindImage, Request{Prompt: "a cat"})

	if !resp.OK {
		t.Fatalf("resp not ok: %+v", resp.Error)
	}
	want := URLData{URLs: []string{"https://cdn.example.com/out.png"}}
	if !reflect.DeepEqual(resp.Data, want) {
		t.Fatalf("data = %#v", resp.Data)
	}
	if resp.Model != "black-forest-labs/flux-schnell" {
		t.Fatalf("model = %q, want image default", resp.Model)
	}
}

func TestGenerateSTTJoinsSegments(t *testing.T) {
	runner := &stubRunner{pred: &replicate.Prediction{
		Status: replicate.StatusSucceeded,
		Output: []any{"first segment", "second segment"},
	}}
	svc := newTestService(runner)

	resp := svc.Generate(context.Background(), KindAudioSTT, Request{AudioURL: "https://cdn.example.com/a.wav"})

	if !resp.OK {
		t.Fatalf("resp not ok: %+v", resp.Error)
	}
	if data := resp.Data.(TextData); data.Text != "first segment\nsecond segment" {
		t.Fatalf("text = %q", data.Text)
	}
	if runner.gotInput["audio"] != "https://cdn.example.com/a.wav" {
		t.Fatalf("input = %#v", runner.gotInput)
	}
}

func TestGenerateVideoUsesLongerBudget(t *testing.T) {
	runner := &stubRunner{pred: &replicate.Prediction{Status: replicate.StatusSucceeded, Output: []any{"https://cdn.example.com/v.mp4"}}}
	svc := newTestService(runner)

	resp := svc.Generate(context.Background(), KindVideo, Request{Prompt: "a storm over the sea"})

	if !resp.OK {
		t.Fatalf("resp not ok: %+v", resp.Error)
	}
	if runner.gotOpts.Timeout != 5*time.Minute {
		t.Fatalf("timeout = %s, want video budget", runner.gotOpts.Timeout)
	}
	if runner.gotModel != "bytedance/seedance-1-lite" {
		t.Fatalf("model = %q", runner.gotModel)
	}
}

func TestGenerateInputExtrasOverrideBase(t *testing.T) {
	runner := &stubRunner{pred: &replicate.Prediction{Status: replicate.StatusSucceeded, Output: "ok"}}
	svc := newTestService(runner)

	resp := svc.Generate(context.Background(), KindText, Request{
		Prompt: "base prompt",
		Input:  map[string]any{"temperature": 0.2, "prompt": "override"},
	})

	if !resp.OK {
		t.Fatalf("resp not ok: %+v", resp.Error)
	}
	if runner.gotInput["prompt"] != "override" {
		t.Fatalf("prompt = %v", runner.gotInput["prompt"])
	}
	if runner.gotInput["temperature"] != 0.2 {
		t.Fatalf("temperature = %v", runner.gotInput["temperature"])
	}
}

func TestGeneratePropagatesTimeoutCode(t *testing.T) {
	runner := &stubRunner{err: domain.NewError(domain.CodeTimeout, "job timed out")}
	svc := newTestService(runner)

	resp := svc.Generate(context.Background(), KindImage, Request{Prompt: "slow"})

	if resp.OK {
		t.Fatal("resp ok, want timeout failure")
	}
	if resp.Error.Code != domain.CodeTimeout {
		t.Fatalf("code = %q, want TIMEOUT", resp.Error.Code)
	}
}

func TestGenerateWrapsUncodedErrors(t *testing.T) {
	runner := &stubRunner{err: errors.New("connection reset")}
	svc := newTestService(runner)

	resp := svc.Generate(context.Background(), KindText, Request{Prompt: "hi"})

	if resp.OK {
		t.Fatal("resp ok, want failure")
	}
	if resp.Error.Code != domain.CodeProviderError {
		t.Fatalf("code = %q, want PROVIDER_ERROR", resp.Error.Code)
	}
}

func TestGenerateCarriesLogsInMeta(t *testing.T) {
	runner := &stubRunner{pred: &replicate.Prediction{
		Status: replicate.StatusSucceeded,
		Output: "done",
		Logs:   "step 1/4\nstep 2/4",
	}}
	svc := newTestService(runner)

	resp := svc.Generate(context.Background(), KindText, Request{Prompt: "hi"})

	if !resp.OK {
		t.Fatalf("resp not ok: %+v", resp.Error)
	}
	if resp.Meta["logs"] != "step 1/4\nstep 2/4" {
		t.Fatalf("meta = %#v", resp.Meta)
	}
}
