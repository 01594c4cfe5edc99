package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lefilcompany/creator-leap-studio-sub000/internal/domain"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/middleware"
)

type referencePayload struct {
	Role string `json:"role"`
	URL  string `json:"url"`
	Data []byte `json:"data"`
	MIME string `json:"mime"`
}

type textOverlayPayload struct {
	Content  string `json:"content"`
	Position string `json:"position"`
}

type videoGenerateRequest struct {
	JobID           string              `json:"job_id"`
	Mode            string              `json:"mode"`
	Prompt          string              `json:"prompt"`
	References      []referencePayload  `json:"references"`
	Style           string              `json:"style"`
	AspectRatio     string              `json:"aspect_ratio"`
	Resolution      string              `json:"resolution"`
	DurationSeconds int                 `json:"duration_seconds"`
	TextOverlay     *textOverlayPayload `json:"text_overlay"`
	NegativePrompt  string              `json:"negative_prompt"`
	Brand           string              `json:"brand"`
	Theme           string              `json:"theme"`
	Audience        string              `json:"audience"`
}

type videoGenerateResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// VideosGenerate accepts a generation request, debits the organization and
// answers 202 while the job runs in the background.
func (a *App) VideosGenerate(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.OrgIDFromContext(r.Context())
	if orgID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing organization context")
		return
	}
	var req videoGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	gen := domain.GenerationRequest{
		JobID:           req.JobID,
		OrganizationID:  orgID,
		RequesterID:     middleware.UserIDFromContext(r.Context()),
		Mode:            domain.GenerationMode(req.Mode),
		Prompt:          req.Prompt,
		Style:           domain.VisualStyle(req.Style),
		AspectRatio:     req.AspectRatio,
		Resolution:      req.Resolution,
		DurationSeconds: req.DurationSeconds,
		NegativePrompt:  req.NegativePrompt,
		Brand:           req.Brand,
		Theme:           req.Theme,
		Audience:        req.Audience,
		Locale:          middleware.LocaleFromContext(r.Context()),
	}
	for _, ref := range req.References {
		gen.References = append(gen.References, domain.ReferenceAsset{
			Role: domain.ReferenceRole(ref.Role),
			URL:  ref.URL,
			Data: ref.Data,
			MIME: ref.MIME,
		})
	}
	if req.TextOverlay != nil {
		gen.TextOverlay = &domain.TextOverlay{
			Content:  req.TextOverlay.Content,
			Position: req.TextOverlay.Position,
		}
	}

	resp, err := a.Videos.Submit(r.Context(), gen)
	if err != nil {
		var insufficient *domain.InsufficientCreditsError
		switch {
		case errors.As(err, &insufficient):
			a.json(w, http.StatusPaymentRequired, map[string]any{
				"error":     "insufficient_credits",
				"message":   insufficient.Error(),
				"required":  insufficient.Required,
				"available": insufficient.Available,
			})
		case errors.Is(err, domain.ErrDuplicateJob):
			a.error(w, http.StatusConflict, "duplicate_job", "job id already used")
		case errors.Is(err, domain.ErrInvalidRequest):
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		default:
			a.Logger.Error().Err(err).Msg("handlers: video submission failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to accept video job")
		}
		return
	}
	a.json(w, http.StatusAccepted, videoGenerateResponse{JobID: resp.JobID, Status: string(resp.Status)})
}

// VideoStatus returns the job record, including the terminal result payload
// once the job has finished.
func (a *App) VideoStatus(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.OrgIDFromContext(r.Context())
	if orgID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing organization context")
		return
	}
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}
	job, err := a.Jobs.GetByID(r.Context(), jobID)
	if err != nil || job.OrganizationID != orgID {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}

	body := map[string]any{
		"job_id":     job.ID,
		"status":     job.Status,
		"created_at": job.CreatedAt,
		"updated_at": job.UpdatedAt,
	}
	if job.Result != nil {
		body["result"] = job.Result
	}
	a.json(w, http.StatusOK, body)
}
