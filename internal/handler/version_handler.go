package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"contractdesk/internal/auth"
	"contractdesk/internal/service"
	"contractdesk/internal/wizard"
)

type VersionHandler struct {
	versionService *service.VersionService
	publishWizard  *wizard.PublishWizard
	versionWizard  *wizard.VersionWizard
}

func NewVersionHandler(versionService *service.VersionService, publishWizard *wizard.PublishWizard, versionWizard *wizard.VersionWizard) *VersionHandler {
	return &VersionHandler{
		versionService: versionService,
		publishWizard:  publishWizard,
		versionWizard:  versionWizard,
	}
}

func (h *VersionHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	_, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := contractID(r)
	if err != nil {
		http.Error(w, "Invalid contract ID", http.StatusBadRequest)
		return
	}

	versions, err := h.versionService.ListForDisplay(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	response := struct {
		Versions []service.VersionView `json:"versions"`
	}{Versions: versions}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// PublishOptions отдает версии договора, разложенные на черновые
// и опубликованные, для формы публикации.
func (h *VersionHandler) PublishOptions(w http.ResponseWriter, r *http.Request) {
	_, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := contractID(r)
	if err != nil {
		http.Error(w, "Invalid contract ID", http.StatusBadRequest)
		return
	}

	options, err := h.publishWizard.Options(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(options)
}

type publishVersionRequest struct {
	VersionID int64 `json:"version_id"`
}

func (h *VersionHandler) PublishVersion(w http.ResponseWriter, r *http.Request) {
	_, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := contractID(r)
	if err != nil {
		http.Error(w, "Invalid contract ID", http.StatusBadRequest)
		return
	}

	var req publishVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.publishWizard.Publish(r.Context(), id, req.VersionID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RollbackVersion снимает публикацию версии.
func (h *VersionHandler) RollbackVersion(w http.ResponseWriter, r *http.Request) {
	_, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	versionID, err := strconv.ParseInt(chi.URLParam(r, "versionID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid version ID", http.StatusBadRequest)
		return
	}

	if err := h.versionService.RollbackUnpublish(r.Context(), versionID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type newVersionRequest struct {
	BaseVersionID int64 `json:"base_version_id"`
}

func (h *VersionHandler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	_, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := contractID(r)
	if err != nil {
		http.Error(w, "Invalid contract ID", http.StatusBadRequest)
		return
	}

	var req newVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	version, err := h.versionWizard.Create(r.Context(), id, req.BaseVersionID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(version)
}
