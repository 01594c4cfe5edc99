package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lefilcompany/creator-leap-studio-sub000/internal/domain"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/infra"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/videogen"
)

// VideoService accepts generation submissions.
type VideoService interface {
	Submit(ctx context.Context, req domain.GenerationRequest) (*videogen.SubmitResponse, error)
}

type App struct {
	Videos VideoService
	Jobs   domain.JobRepository
	Ledger domain.CreditLedger
	Logger infra.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}
