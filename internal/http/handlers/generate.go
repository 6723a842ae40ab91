package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"canvas/internal/domain"
	"canvas/internal/generate"
)

func (a *App) GenerateText(w http.ResponseWriter, r *http.Request) {
	a.generate(w, r, generate.KindText)
}

func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	a.generate(w, r, generate.KindImage)
}

func (a *App) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	a.generate(w, r, generate.KindVideo)
}

func (a *App) AudioTTS(w http.ResponseWriter, r *http.Request) {
	a.generate(w, r, generate.KindAudioTTS)
}

func (a *App) AudioSTT(w http.ResponseWriter, r *http.Request) {
	a.generate(w, r, generate.KindAudioSTT)
}

// generate is the single path behind every modality endpoint. When the
// request addresses a project node, the completed result is merged into
// that node before the envelope goes out, so a client that sees ok:true
// knows the document was updated.
func (a *App) generate(w http.ResponseWriter, r *http.Request, kind generate.Kind) {
	var req generate.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		coded := domain.NewError(domain.CodeBadRequest, "invalid payload")
		a.json(w, http.StatusBadRequest, generate.Failure(coded, 0))
		return
	}

	resp := a.Generator.Generate(r.Context(), kind, req)
	if !resp.OK {
		a.json(w, statusFor(resp.Error.Code), resp)
		return
	}

	if req.ProjectID != "" && req.NodeID != "" && a.Merger != nil {
		patch := map[string]any{
			"updatedAt": time.Now().UTC().Format(time.RFC3339),
			"generated": resp.Data,
			"model":     resp.Model,
		}
		if err := a.Merger.Apply(r.Context(), req.ProjectID, req.NodeID, patch); err != nil {
			coded := domain.AsError(err)
			a.Logger.Error().
				Str("project_id", req.ProjectID).
				Str("node_id", req.NodeID).
				Str("code", string(coded.Code)).
				Msg("result merge failed")
			a.json(w, statusFor(coded.Code), generate.Failure(coded, time.Duration(resp.ElapsedMS)*time.Millisecond))
			return
		}
	}

	a.json(w, http.StatusOK, resp)
}
