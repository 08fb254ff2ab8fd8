package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"contractdesk/internal/auth"
	"contractdesk/internal/domain"
	"contractdesk/internal/repository"
)

type PartnerHandler struct {
	partnerRepo *repository.PartnerRepository
}

func NewPartnerHandler(partnerRepo *repository.PartnerRepository) *PartnerHandler {
	return &PartnerHandler{partnerRepo: partnerRepo}
}

func (h *PartnerHandler) CreatePartner(w http.ResponseWriter, r *http.Request) {
	_, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var partner domain.Partner
	if err := json.NewDecoder(r.Body).Decode(&partner); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if partner.Name == "" {
		http.Error(w, "Partner name is required", http.StatusBadRequest)
		return
	}

	if err := h.partnerRepo.Create(r.Context(), &partner); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(partner)
}

func (h *PartnerHandler) GetPartner(w http.ResponseWriter, r *http.Request) {
	_, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid partner ID", http.StatusBadRequest)
		return
	}

	partner, err := h.partnerRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(partner)
}

func (h *PartnerHandler) ListPartners(w http.ResponseWriter, r *http.Request) {
	_, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	partners, err := h.partnerRepo.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response := struct {
		Partners []domain.Partner `json:"partners"`
	}{Partners: partners}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
