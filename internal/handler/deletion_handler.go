package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"contractdesk/internal/auth"
	"contractdesk/internal/wizard"
)

// DeletionHandler обслуживает двухфазное удаление разделов и пунктов.
type DeletionHandler struct {
	deleteWizard *wizard.ConfirmDeleteWizard
}

func NewDeletionHandler(deleteWizard *wizard.ConfirmDeleteWizard) *DeletionHandler {
	return &DeletionHandler{deleteWizard: deleteWizard}
}

type requestDeletionRequest struct {
	Target   string `json:"target"`
	TargetID int64  `json:"target_id"`
}

// RequestDeletion выдает токен подтверждения удаления.
func (h *DeletionHandler) RequestDeletion(w http.ResponseWriter, r *http.Request) {
	_, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req requestDeletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ticket, err := h.deleteWizard.Request(r.Context(), req.Target, req.TargetID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(ticket)
}

// ConfirmDeletion выполняет удаление по предъявленному токену.
func (h *DeletionHandler) ConfirmDeletion(w http.ResponseWriter, r *http.Request) {
	_, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token := chi.URLParam(r, "token")
	if token == "" {
		http.Error(w, "Token is required", http.StatusBadRequest)
		return
	}

	if err := h.deleteWizard.Confirm(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
