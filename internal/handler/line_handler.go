package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"contractdesk/internal/auth"
	"contractdesk/internal/domain"
	"contractdesk/internal/service"
)

type LineHandler struct {
	lineService *service.LineService
}

func NewLineHandler(lineService *service.LineService) *LineHandler {
	return &LineHandler{lineService: lineService}
}

func (h *LineHandler) GetLine(w http.ResponseWriter, r *http.Request) {
	_, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := lineID(r)
	if err != nil {
		http.Error(w, "Invalid line ID", http.StatusBadRequest)
		return
	}

	line, err := h.lineService.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	text, err := h.lineService.CurrentText(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	response := struct {
		Line    *domain.ContractLine `json:"line"`
		Content string               `json:"content"`
	}{Line: line, Content: text}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *LineHandler) ListLines(w http.ResponseWriter, r *http.Request) {
	_, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sectionID, err := strconv.ParseInt(r.URL.Query().Get("section_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid section ID", http.StatusBadRequest)
		return
	}

	lines, err := h.lineService.ListBySection(r.Context(), sectionID)
	if err != nil {
		writeError(w, err)
		return
	}

	response := struct {
		Lines []domain.ContractLine `json:"lines"`
	}{Lines: lines}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

type editContentRequest struct {
	Content string `json:"content"`
}

// EditContent записывает новую ревизию текста пункта.
func (h *LineHandler) EditContent(w http.ResponseWriter, r *http.Request) {
	_, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := lineID(r)
	if err != nil {
		http.Error(w, "Invalid line ID", http.StatusBadRequest)
		return
	}

	var req editContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	content, err := h.lineService.EditContent(r.Context(), id, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(content)
}

// GetHistory отдает все ревизии пункта в порядке добавления.
func (h *LineHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	_, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := lineID(r)
	if err != nil {
		http.Error(w, "Invalid line ID", http.StatusBadRequest)
		return
	}

	history, err := h.lineService.History(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	response := struct {
		History []domain.ContractContent `json:"history"`
	}{History: history}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

type makeCurrentRequest struct {
	ContentID int64 `json:"content_id"`
}

// MakeCurrent делает историческую ревизию актуальной.
func (h *LineHandler) MakeCurrent(w http.ResponseWriter, r *http.Request) {
	_, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := lineID(r)
	if err != nil {
		http.Error(w, "Invalid line ID", http.StatusBadRequest)
		return
	}

	var req makeCurrentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.lineService.MakeCurrent(r.Context(), id, req.ContentID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func lineID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
