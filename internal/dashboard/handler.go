package dashboard

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/error-autopsy/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the dashboard read endpoints on the protected
// subrouter.
func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/dashboard/summary", h.GetSummary).Methods("GET")
	protected.HandleFunc("/dashboard/distributions", h.GetDistributions).Methods("GET")
	protected.HandleFunc("/dashboard/timeline", h.GetTimeline).Methods("GET")
	protected.HandleFunc("/dashboard/sessions", h.GetSessions).Methods("GET")
	protected.HandleFunc("/dashboard/heatmap", h.GetHeatmap).Methods("GET")
	protected.HandleFunc("/dashboard/exams", h.GetExams).Methods("GET")
	protected.HandleFunc("/dashboard/exams/sections", h.GetExamSections).Methods("GET")
	protected.HandleFunc("/dashboard/exams/{id}/errors", h.GetExamErrors).Methods("GET")
}

// getUserID extracts the authenticated user ID from the request context.
func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	resp, err := h.service.Summary(r.Context(), userID, monthsParam(r.URL.Query()))
	if err != nil {
		log.Printf("[handler] GetSummary error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to build summary"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetDistributions(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	query := r.URL.Query()
	resp, err := h.service.Distributions(userID, monthsParam(query), query.Get("exam_type"))
	if err != nil {
		log.Printf("[handler] GetDistributions error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to build distributions"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	series, err := h.service.Timeline(userID, monthsParam(r.URL.Query()))
	if err != nil {
		log.Printf("[handler] GetTimeline error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to build timeline"})
		return
	}

	writeJSON(w, http.StatusOK, series)
}

func (h *Handler) GetSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	resp, err := h.service.Sessions(userID, monthsParam(r.URL.Query()))
	if err != nil {
		log.Printf("[handler] GetSessions error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to build session analytics"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	days := intQueryParam(r.URL.Query(), "days", 90)
	if days < 1 {
		days = 1
	}
	if days > 365 {
		days = 365
	}

	resp, err := h.service.Heatmap(r.Context(), userID, days)
	if err != nil {
		log.Printf("[handler] GetHeatmap error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to build heatmap"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetExams(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	resp, err := h.service.Exams(userID, r.URL.Query().Get("exam_type"))
	if err != nil {
		log.Printf("[handler] GetExams error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to build exam analytics"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetExamSections(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	examType := r.URL.Query().Get("exam_type")
	if examType == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "exam_type is required"})
		return
	}

	resp, err := h.service.ExamSections(userID, examType)
	if err != nil {
		log.Printf("[handler] GetExamSections error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to build section analysis"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetExamErrors(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	examID := mux.Vars(r)["id"]

	resp, err := h.service.ExamErrors(userID, examID)
	if err != nil {
		log.Printf("[handler] GetExamErrors error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load exam errors"})
		return
	}
	if resp == nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Mock exam not found"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// monthsParam reads the optional time-window query parameter. Absent or
// malformed means no window; zero means the current calendar month.
func monthsParam(query url.Values) *int {
	s := query.Get("months")
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	s := query.Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
