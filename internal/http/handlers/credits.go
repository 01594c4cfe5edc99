package handlers

import (
	"net/http"

	"github.com/lefilcompany/creator-leap-studio-sub000/internal/middleware"
)

func (a *App) CreditBalance(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.OrgIDFromContext(r.Context())
	if orgID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing organization context")
		return
	}
	balance, err := a.Ledger.Balance(r.Context(), orgID)
	if err != nil {
		a.Logger.Error().Err(err).Str("org_id", orgID).Msg("handlers: balance lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to fetch balance")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"organization_id": orgID,
		"balance":         balance,
	})
}
