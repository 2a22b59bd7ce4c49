package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/ChoisMath/edutech/pkg/core/domain"
	"github.com/ChoisMath/edutech/pkg/ports"
)

type HTTPHandler struct {
	service ports.CardService
}

func NewHTTPHandler(service ports.CardService) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// UpdateCardRequest payload
type UpdateCardRequest struct {
	domain.CardInput
	Password string `json:"password"`
}

// PasswordRequest payload for delete and export
type PasswordRequest struct {
	Password string `json:"password"`
}

// ReorderRequest payload
type ReorderRequest struct {
	Password   string             `json:"password"`
	CardOrders []domain.CardOrder `json:"card_orders"`
}

// DuplicateCheckRequest payload
type DuplicateCheckRequest struct {
	URL string `json:"url"`
}

// List Cards
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.CardFilter{
		Search:        q.Get("search"),
		Category:      q.Get("category"),
		Subject:       q.Get("subject"),
		IncludeHidden: q.Get("admin") == "true",
	}

	cards, err := h.service.ListCards(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, cards)
}

// Get Card
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	card, err := h.service.GetCard(r.Context(), id, r.URL.Query().Get("admin") == "true")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, card)
}

// Create Card
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CardInput
	if !decodeBody(w, r, &req) {
		return
	}

	card, err := h.service.CreateCard(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, card)
}

// Update Card
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateCardRequest
	if !decodeBody(w, r, &req) {
		return
	}

	card, err := h.service.UpdateCard(r.Context(), id, req.CardInput, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, card)
}

// Delete Card (hides it from the public listing)
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req PasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.service.DeleteCard(r.Context(), id, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Card deleted successfully"})
}

// Reorder Cards
func (h *HTTPHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.service.ReorderCards(r.Context(), req.Password, req.CardOrders); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Card order updated successfully"})
}

// Check Duplicates by host
func (h *HTTPHandler) CheckDuplicates(w http.ResponseWriter, r *http.Request) {
	var req DuplicateCheckRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cards, err := h.service.FindDuplicates(r.Context(), req.URL)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"duplicates": cards})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service errors to an HTTP status and the message shown to users.
// Unknown errors are 500s.
func statusFor(err error) (int, string) {
	var verr domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, domain.ErrWrongPassword):
		return http.StatusUnauthorized, "Password does not match"
	case errors.Is(err, domain.ErrCardNotFound):
		return http.StatusNotFound, "Card not found"
	case errors.Is(err, domain.ErrNoCards):
		return http.StatusNotFound, "No cards to export"
	case errors.Is(err, domain.ErrURLExists):
		return http.StatusConflict, "URL already exists"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("request failed method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
	writeError(w, status, message)
}
