package generate

import (
	"fmt"
	"strings"
	"time"

	"canvas/internal/domain"
)

// Message is one turn of a chat-style text request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the union of the fields the modality endpoints accept. Each
// modality validates its own required field; the rest pass through.
type Request struct {
	Prompt   string         `json:"prompt,omitempty"`
	Messages []Message      `json:"messages,omitempty"`
	Text     string         `json:"text,omitempty"`
	AudioURL string         `json:"audio_url,omitempty"`
	ModelKey string         `json:"modelKey,omitempty"`
	Input    map[string]any `json:"input,omitempty"`
	Options  map[string]any `json:"options,omitempty"`

	// Optional write-back target: when both are set the completed result
	// is merged into that node of the project document.
	ProjectID string `json:"projectId,omitempty"`
	NodeID    string `json:"nodeId,omitempty"`
}

// modality bundles everything that differs between the five generation
// endpoints so one orchestration function can serve them all.
type modality struct {
	kind         Kind
	defaultModel string
	pollInterval time.Duration
	timeout      time.Duration
	buildInput   func(req Request) (map[string]any, *domain.Error)
	shapeOutput  func(output any) any
}

func buildTextInput(req Request) (map[string]any, *domain.Error) {
	prompt := req.Prompt
	if prompt == "" && len(req.Messages) > 0 {
		lines := make([]string, 0, len(req.Messages))
		for _, m := range req.Messages {
			lines = append(lines, m.Role+": "+m.Content)
		}
		prompt = strings.Join(lines, "\n")
	}
	if prompt == "" {
		return nil, domain.NewError(domain.CodeBadRequest, "Missing prompt or messages")
	}
	return withExtras(map[string]any{"prompt": prompt}, req.Input), nil
}

func buildPromptInput(extras func(Request) map[string]any) func(Request) (map[string]any, *domain.Error) {
	return func(req Request) (map[string]any, *domain.Error) {
		if req.Prompt == "" {
			return nil, domain.NewError(domain.CodeBadRequest, "Missing prompt")
		}
		return withExtras(map[string]any{"prompt": req.Prompt}, extras(req)), nil
	}
}

func buildTTSInput(req Request) (map[string]any, *domain.Error) {
	if req.Text == "" {
		return nil, domain.NewError(domain.CodeBadRequest, "Missing text")
	}
	return withExtras(map[string]any{"text": req.Text}, req.Input), nil
}

func buildSTTInput(req Request) (map[string]any, *domain.Error) {
	if req.AudioURL == "" {
		return nil, domain.NewError(domain.CodeBadRequest, "Missing audio_url")
	}
	return withExtras(map[string]any{"audio": req.AudioURL}, req.Input), nil
}

// withExtras lays caller-supplied fields over the base input; callers may
// override the required field on purpose.
func withExtras(base, extras map[string]any) map[string]any {
	for k, v := range extras {
		base[k] = v
	}
	return base
}

// shapeText joins string sequences with newlines; anything else passes
// through stringified. Text models stream chunked output as arrays.
func shapeText(output any) any {
	return TextData{Text: joinOutput(output)}
}

func joinOutput(output any) string {
	switch v := output.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, "\n")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, "\n")
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// shapeURLs normalizes output to a URL slice, wrapping a lone value.
func shapeURLs(output any) any {
	switch v := output.(type) {
	case []string:
		return URLData{URLs: v}
	case []any:
		urls := make([]string, 0, len(v))
		for _, item := range v {
			urls = append(urls, fmt.Sprint(item))
		}
		return URLData{URLs: urls}
	case nil:
		return URLData{URLs: []string{}}
	default:
		return URLData{URLs: []string{fmt.Sprint(v)}}
	}
}
