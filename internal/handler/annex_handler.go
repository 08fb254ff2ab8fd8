package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"contractdesk/internal/auth"
	"contractdesk/internal/domain"
	"contractdesk/internal/service"
)

type AnnexHandler struct {
	annexService *service.AnnexService
}

func NewAnnexHandler(annexService *service.AnnexService) *AnnexHandler {
	return &AnnexHandler{annexService: annexService}
}

type createAnnexRequest struct {
	ContractID     int64      `json:"contract_id"`
	Name           string     `json:"name"`
	DateConclusion *time.Time `json:"date_conclusion,omitempty"`
	Cost           float64    `json:"cost"`
}

func (h *AnnexHandler) CreateAnnex(w http.ResponseWriter, r *http.Request) {
	_, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createAnnexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	annex := &domain.ContractAnnex{
		ContractID: req.ContractID,
		Name:       req.Name,
		Cost:       req.Cost,
	}
	if req.DateConclusion != nil {
		annex.DateConclusion = *req.DateConclusion
	}

	if err := h.annexService.Create(r.Context(), annex); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(annex)
}

func (h *AnnexHandler) GetAnnex(w http.ResponseWriter, r *http.Request) {
	_, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := annexID(r)
	if err != nil {
		http.Error(w, "Invalid annex ID", http.StatusBadRequest)
		return
	}

	annex, err := h.annexService.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(annex)
}

func (h *AnnexHandler) ListAnnexes(w http.ResponseWriter, r *http.Request) {
	_, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	contractID, err := strconv.ParseInt(r.URL.Query().Get("contract_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid contract ID", http.StatusBadRequest)
		return
	}

	annexes, err := h.annexService.ListByContract(r.Context(), contractID)
	if err != nil {
		writeError(w, err)
		return
	}

	response := struct {
		Annexes []domain.ContractAnnex `json:"annexes"`
	}{Annexes: annexes}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *AnnexHandler) DeleteAnnex(w http.ResponseWriter, r *http.Request) {
	_, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := annexID(r)
	if err != nil {
		http.Error(w, "Invalid annex ID", http.StatusBadRequest)
		return
	}

	if err := h.annexService.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func annexID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
