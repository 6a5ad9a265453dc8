package telemetry

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/error-autopsy/backend/internal/config"
	"github.com/error-autopsy/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers record CRUD, filters, and CSV import/export on
// the protected subrouter.
func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/errors", h.LogError).Methods("POST")
	protected.HandleFunc("/errors", h.ListErrors).Methods("GET")
	protected.HandleFunc("/errors/filters", h.GetFilterOptions).Methods("GET")
	protected.HandleFunc("/errors/{id}", h.UpdateError).Methods("PUT")
	protected.HandleFunc("/errors/{id}", h.DeleteError).Methods("DELETE")

	protected.HandleFunc("/sessions", h.LogSession).Methods("POST")
	protected.HandleFunc("/sessions", h.ListSessions).Methods("GET")
	protected.HandleFunc("/sessions/{id}", h.DeleteSession).Methods("DELETE")

	protected.HandleFunc("/exams", h.LogMockExam).Methods("POST")
	protected.HandleFunc("/exams", h.ListMockExams).Methods("GET")
	protected.HandleFunc("/exams/{id}", h.DeleteMockExam).Methods("DELETE")

	protected.HandleFunc("/export/{kind}", h.ExportCSV).Methods("GET")
	protected.HandleFunc("/import/{kind}", h.ImportCSV).Methods("POST")

	protected.HandleFunc("/config/exam-types", h.GetExamTypeConfig).Methods("GET")
}

// getUserID extracts the authenticated user ID from the request context.
func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

// ── Error Logs ──────────────────────────────────────────

func (h *Handler) LogError(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.LogErrorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := validateErrorRequest(&req, time.Now()); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	errorLog, err := h.service.LogError(r.Context(), userID, req)
	if err != nil {
		log.Printf("[handler] LogError error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to save error log"})
		return
	}

	writeJSON(w, http.StatusCreated, errorLog)
}

func (h *Handler) ListErrors(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	query := r.URL.Query()
	filter := filterFromQuery(query)

	errorLogs, err := h.service.ListErrors(userID, filter, monthsParam(query))
	if err != nil {
		log.Printf("[handler] ListErrors error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list error logs"})
		return
	}

	writeJSON(w, http.StatusOK, models.ErrorListResponse{Errors: errorLogs, Total: len(errorLogs)})
}

func (h *Handler) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	values, err := h.service.FilterOptions(userID)
	if err != nil {
		log.Printf("[handler] GetFilterOptions error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load filter options"})
		return
	}

	writeJSON(w, http.StatusOK, values)
}

func (h *Handler) UpdateError(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	id := mux.Vars(r)["id"]

	var req models.LogErrorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := validateErrorRequest(&req, time.Now()); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	errorLog, err := h.service.UpdateError(r.Context(), userID, id, req)
	if err != nil {
		if err.Error() == "error log not found" {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Error log not found"})
			return
		}
		log.Printf("[handler] UpdateError error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update error log"})
		return
	}

	writeJSON(w, http.StatusOK, errorLog)
}

func (h *Handler) DeleteError(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	id := mux.Vars(r)["id"]

	if err := h.service.DeleteError(r.Context(), userID, id); err != nil {
		if err.Error() == "error log not found" {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Error log not found"})
			return
		}
		log.Printf("[handler] DeleteError error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete error log"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Error log deleted"})
}

// ── Study Sessions ──────────────────────────────────────

func (h *Handler) LogSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.LogSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := validateSessionRequest(&req, time.Now()); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	session, err := h.service.LogSession(r.Context(), userID, req)
	if err != nil {
		log.Printf("[handler] LogSession error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to save session"})
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	sessions, err := h.service.ListSessions(userID)
	if err != nil {
		log.Printf("[handler] ListSessions error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list sessions"})
		return
	}

	writeJSON(w, http.StatusOK, models.SessionListResponse{Sessions: sessions, Total: len(sessions)})
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	id := mux.Vars(r)["id"]

	if err := h.service.DeleteSession(r.Context(), userID, id); err != nil {
		if err.Error() == "session not found" {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Session not found"})
			return
		}
		log.Printf("[handler] DeleteSession error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete session"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Session deleted"})
}

// ── Mock Exams ──────────────────────────────────────────

func (h *Handler) LogMockExam(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.LogMockExamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := validateMockExamRequest(&req, time.Now()); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	exam, err := h.service.LogMockExam(r.Context(), userID, req)
	if err != nil {
		log.Printf("[handler] LogMockExam error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to save mock exam"})
		return
	}

	writeJSON(w, http.StatusCreated, exam)
}

func (h *Handler) ListMockExams(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	exams, err := h.service.ListMockExams(userID)
	if err != nil {
		log.Printf("[handler] ListMockExams error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list mock exams"})
		return
	}

	writeJSON(w, http.StatusOK, models.MockExamListResponse{Exams: exams, Total: len(exams)})
}

func (h *Handler) DeleteMockExam(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	id := mux.Vars(r)["id"]

	if err := h.service.DeleteMockExam(r.Context(), userID, id); err != nil {
		if err.Error() == "mock exam not found" {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Mock exam not found"})
			return
		}
		log.Printf("[handler] DeleteMockExam error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete mock exam"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Mock exam deleted"})
}

// ── CSV Import / Export ─────────────────────────────────

var validKinds = map[string]bool{"errors": true, "sessions": true, "exams": true}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	kind := mux.Vars(r)["kind"]
	if !validKinds[kind] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "kind must be 'errors', 'sessions', or 'exams'"})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+kind+".csv\"")
	if err := h.service.ExportCSV(w, userID, kind); err != nil {
		// Headers are gone at this point; the truncated body is the best
		// signal the client gets.
		log.Printf("[handler] ExportCSV error: %v", err)
	}
}

func (h *Handler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	kind := mux.Vars(r)["kind"]
	if !validKinds[kind] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "kind must be 'errors', 'sessions', or 'exams'"})
		return
	}

	result, err := h.service.ImportCSV(r.Context(), userID, kind, r.Body)
	if err != nil {
		if errors.Is(err, ErrImportAborted) {
			writeJSON(w, http.StatusBadRequest, result)
			return
		}
		log.Printf("[handler] ImportCSV error: %v", err)
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Import failed: " + err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ── Config ──────────────────────────────────────────────

type examConfigResponse struct {
	ExamTypes    []config.ExamType `json:"exam_types"`
	ErrorTypes   []string          `json:"error_types"`
	Difficulties []string          `json:"difficulties"`
}

// GetExamTypeConfig serves the static configuration the logging forms are
// built from: exam formats with benchmarks and section tables, plus the
// enum option lists.
func (h *Handler) GetExamTypeConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, examConfigResponse{
		ExamTypes:    config.ExamTypes(),
		ErrorTypes:   config.ErrorTypes(),
		Difficulties: config.Difficulties(),
	})
}

// ── Helpers ─────────────────────────────────────────────

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

func filterFromQuery(query url.Values) models.ErrorFilter {
	return models.ErrorFilter{
		Subjects:     splitParam(query.Get("subjects")),
		Topics:       splitParam(query.Get("topics")),
		ExamTypes:    splitParam(query.Get("exam_types")),
		ErrorTypes:   splitParam(query.Get("error_types")),
		Difficulties: splitParam(query.Get("difficulties")),
		DateFrom:     query.Get("date_from"),
		DateTo:       query.Get("date_to"),
	}
}

func splitParam(s string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
