package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"canvas/internal/http/handlers"
	"canvas/internal/infra"
	"canvas/internal/middleware"
)

func NewRouter(cfg *infra.Config, logger infra.Logger, app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
		middleware.CORS(cfg.AllowedOrigins),
	)

	r.Get("/healthz", app.Health)

	limit := middleware.RateLimit(cfg.RateLimitPerMin, time.Minute)

	r.Route("/generate", func(r chi.Router) {
		r.Use(limit)
		r.Post("/text", app.GenerateText)
		r.Post("/image", app.GenerateImage)
		r.Post("/video", app.GenerateVideo)
	})

	r.Route("/audio", func(r chi.Router) {
		r.Use(limit)
		r.Post("/tts", app.AudioTTS)
		r.Post("/stt", app.AudioSTT)
	})

	return r
}
