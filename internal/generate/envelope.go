package generate

import (
	"time"

	"canvas/internal/domain"
)

// Kind names a generation modality.
type Kind string

const (
	KindText     Kind = "text"
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindAudioTTS Kind = "audio-tts"
	KindAudioSTT Kind = "audio-stt"
)

// Response is the uniform envelope every modality returns. OK is the sole
// discriminant: a success carries Kind/Model/Data, a failure carries Error,
// never both.
type Response struct {
	OK        bool           `json:"ok"`
	Kind      Kind           `json:"kind,omitempty"`
	Model     string         `json:"model,omitempty"`
	Data      any            `json:"data,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
	Error     *domain.Error  `json:"error,omitempty"`
	ElapsedMS int64          `json:"elapsed_ms,omitempty"`
}

// TextData is the payload shape for text and speech-to-text results.
type TextData struct {
	Text string `json:"text"`
}

// URLData is the payload shape for image, video and speech-synthesis results.
type URLData struct {
	URLs []string `json:"urls"`
}

// Success wraps a completed generation.
func Success(kind Kind, model string, data any, meta map[string]any, elapsed time.Duration) Response {
	return Response{
		OK:        true,
		Kind:      kind,
		Model:     model,
		Data:      data,
		Meta:      meta,
		ElapsedMS: elapsed.Milliseconds(),
	}
}

// Failure wraps a coded error.
func Failure(err *domain.Error, elapsed time.Duration) Response {
	return Response{
		OK:        false,
		Error:     err,
		ElapsedMS: elapsed.Milliseconds(),
	}
}
