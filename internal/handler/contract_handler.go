package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"contractdesk/internal/auth"
	"contractdesk/internal/domain"
	"contractdesk/internal/service"
	"contractdesk/internal/wizard"
)

type ContractHandler struct {
	contractService *service.ContractService
	signWizard      *wizard.SignWizard
}

func NewContractHandler(contractService *service.ContractService, signWizard *wizard.SignWizard) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
		signWizard:      signWizard,
	}
}

type createContractRequest struct {
	PartnerID                    int64      `json:"partner_id"`
	Company                      string     `json:"company"`
	Currency                     string     `json:"currency"`
	Type                         string     `json:"type"`
	CommencementDate             *time.Time `json:"commencement_date,omitempty"`
	ExpirationDate               *time.Time `json:"expiration_date,omitempty"`
	RenewAutomatically           bool       `json:"renew_automatically"`
	RenewPeriod                  int        `json:"renew_period"`
	RenewPeriodType              string     `json:"renew_period_type"`
	NotificationExpiration       bool       `json:"notification_expiration"`
	NotificationExpirationPeriod int        `json:"notification_expiration_period"`
	ResponsibleEmployee          *string    `json:"responsible_employee,omitempty"`
}

func (h *ContractHandler) CreateContract(w http.ResponseWriter, r *http.Request) {
	_, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	contract := &domain.Contract{
		PartnerID:                    req.PartnerID,
		Company:                      req.Company,
		Currency:                     req.Currency,
		Type:                         req.Type,
		CommencementDate:             req.CommencementDate,
		ExpirationDate:               req.ExpirationDate,
		RenewAutomatically:           req.RenewAutomatically,
		RenewPeriod:                  req.RenewPeriod,
		RenewPeriodType:              req.RenewPeriodType,
		NotificationExpiration:       req.NotificationExpiration,
		NotificationExpirationPeriod: req.NotificationExpirationPeriod,
		ResponsibleEmployee:          req.ResponsibleEmployee,
	}

	firstVersion, err := h.contractService.Create(r.Context(), contract)
	if err != nil {
		writeError(w, err)
		return
	}

	response := struct {
		Contract *domain.Contract        `json:"contract"`
		Version  *domain.ContractVersion `json:"version"`
	}{
		Contract: contract,
		Version:  firstVersion,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

func (h *ContractHandler) GetContract(w http.ResponseWriter, r *http.Request) {
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

	contract, err := h.contractService.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(contract)
}

func (h *ContractHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	_, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var contracts []domain.Contract

	if partnerIDStr := r.URL.Query().Get("partner_id"); partnerIDStr != "" {
		partnerID, err := strconv.ParseInt(partnerIDStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid partner ID", http.StatusBadRequest)
			return
		}
		contracts, err = h.contractService.ListByPartner(r.Context(), partnerID)
		if err != nil {
			writeError(w, err)
			return
		}
	} else {
		state := r.URL.Query().Get("state")
		if state == "" {
			state = domain.StateDraft
		}
		var err error
		contracts, err = h.contractService.ListByState(r.Context(), state)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	response := struct {
		Contracts []domain.Contract `json:"contracts"`
	}{Contracts: contracts}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *ContractHandler) UpdateContract(w http.ResponseWriter, r *http.Request) {
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

	contract, err := h.contractService.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	var req createContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	contract.PartnerID = req.PartnerID
	contract.Company = req.Company
	contract.Currency = req.Currency
	contract.Type = req.Type
	contract.CommencementDate = req.CommencementDate
	contract.ExpirationDate = req.ExpirationDate
	contract.RenewAutomatically = req.RenewAutomatically
	contract.RenewPeriod = req.RenewPeriod
	contract.RenewPeriodType = req.RenewPeriodType
	contract.NotificationExpiration = req.NotificationExpiration
	contract.NotificationExpirationPeriod = req.NotificationExpirationPeriod
	contract.ResponsibleEmployee = req.ResponsibleEmployee

	if err := h.contractService.Update(r.Context(), contract); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(contract)
}

type signContractRequest struct {
	VersionSelection string `json:"version_selection"`
}

func (h *ContractHandler) SignContract(w http.ResponseWriter, r *http.Request) {
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

	req := signContractRequest{VersionSelection: wizard.SelectionPublished}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	if err := h.signWizard.Sign(r.Context(), id, req.VersionSelection); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ContractHandler) UnsignContract(w http.ResponseWriter, r *http.Request) {
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

	if err := h.contractService.Unsign(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ContractHandler) CloseContract(w http.ResponseWriter, r *http.Request) {
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

	if err := h.contractService.Close(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ContractHandler) RenewContract(w http.ResponseWriter, r *http.Request) {
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

	if err := h.contractService.Renew(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RenewContractPeriod сдвигает дату окончания на период продления.
func (h *ContractHandler) RenewContractPeriod(w http.ResponseWriter, r *http.Request) {
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

	if err := h.contractService.RenewContract(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ContractHandler) CopyContract(w http.ResponseWriter, r *http.Request) {
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

	copied, err := h.contractService.Copy(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(copied)
}

func (h *ContractHandler) DeleteContract(w http.ResponseWriter, r *http.Request) {
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

	if err := h.contractService.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ContractHandler) UploadScan(w http.ResponseWriter, r *http.Request) {
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

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read file", http.StatusInternalServerError)
		return
	}

	key, err := h.contractService.UploadScan(r.Context(), id, header.Filename, data)
	if err != nil {
		writeError(w, err)
		return
	}

	response := struct {
		ScanKey string `json:"scan_key"`
	}{ScanKey: key}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

func (h *ContractHandler) DownloadScan(w http.ResponseWriter, r *http.Request) {
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

	object, err := h.contractService.DownloadScan(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"contract_scan_%d\"", id))

	if _, err := io.Copy(w, object); err != nil {
		log.Printf("Error streaming scan: %v", err)
	}
}

func contractID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
