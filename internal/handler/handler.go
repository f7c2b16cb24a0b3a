package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/recurring-service/internal/middleware"
	"github.com/Dan9191/recurring-service/internal/models"
	"github.com/Dan9191/recurring-service/internal/repository"
	"github.com/Dan9191/recurring-service/internal/service"
)

// DefaultHorizonMonths is used when a projection request names no horizon
const DefaultHorizonMonths = 12

// ScheduleService is the business logic behind the HTTP API
type ScheduleService interface {
	CreateSchedule(ctx context.Context, ownerID string, input models.ScheduleInput) (*models.RecurringSchedule, error)
	UpdateSchedule(ctx context.Context, ownerID, id string, input models.ScheduleInput) (*models.RecurringSchedule, error)
	SetActive(ctx context.Context, ownerID, id string, active bool) (*models.RecurringSchedule, error)
	DeleteSchedule(ctx context.Context, ownerID, id string) error
	GetSchedule(ctx context.Context, ownerID, id string) (*models.RecurringSchedule, error)
	ListSchedules(ctx context.Context, ownerID string) ([]models.RecurringSchedule, error)
	ListLedgerEntries(ctx context.Context, ownerID, id string) ([]models.LedgerEntry, error)
	PendingExecutions(ctx context.Context, ownerID string) ([]models.RecurringSchedule, error)
	Projection(ctx context.Context, ownerID string, months int) (models.ProjectionResult, error)
	Summary(ctx context.Context, ownerID string) (models.PortfolioSummary, error)
	Conflicts(ctx context.Context, ownerID string) ([]models.ConflictReport, error)
	Validate(input models.ScheduleInput) []string
}

type Handler struct {
	svc ScheduleService
	log *logrus.Logger
}

func NewHandler(svc ScheduleService, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Routes registers the schedule API on r. Static paths go first so they are
// not captured by {id}.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/schedules", h.CreateSchedule).Methods(http.MethodPost)
	r.HandleFunc("/schedules", h.ListSchedules).Methods(http.MethodGet)
	r.HandleFunc("/schedules/pending", h.Pending).Methods(http.MethodGet)
	r.HandleFunc("/schedules/projection", h.Projection).Methods(http.MethodGet)
	r.HandleFunc("/schedules/summary", h.Summary).Methods(http.MethodGet)
	r.HandleFunc("/schedules/conflicts", h.Conflicts).Methods(http.MethodGet)
	r.HandleFunc("/schedules/validate", h.Validate).Methods(http.MethodPost)
	r.HandleFunc("/schedules/{id}", h.GetSchedule).Methods(http.MethodGet)
	r.HandleFunc("/schedules/{id}", h.UpdateSchedule).Methods(http.MethodPut)
	r.HandleFunc("/schedules/{id}", h.DeleteSchedule).Methods(http.MethodDelete)
	r.HandleFunc("/schedules/{id}/activate", h.setActive(true)).Methods(http.MethodPost)
	r.HandleFunc("/schedules/{id}/deactivate", h.setActive(false)).Methods(http.MethodPost)
	r.HandleFunc("/schedules/{id}/entries", h.Entries).Methods(http.MethodGet)
}

// Health reports liveness
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateSchedule handles schedule creation
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	var input models.ScheduleInput
	if !decode(w, r, &input) {
		return
	}
	schedule, err := h.svc.CreateSchedule(r.Context(), ownerID, input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, schedule)
}

// ListSchedules returns every schedule of the caller
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	schedules, err := h.svc.ListSchedules(r.Context(), ownerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(schedules))
}

// GetSchedule returns one schedule
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	schedule, err := h.svc.GetSchedule(r.Context(), ownerID, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

// UpdateSchedule replaces the editable fields of a schedule
func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	var input models.ScheduleInput
	if !decode(w, r, &input) {
		return
	}
	schedule, err := h.svc.UpdateSchedule(r.Context(), ownerID, mux.Vars(r)["id"], input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

// DeleteSchedule removes a schedule
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteSchedule(r.Context(), ownerID, mux.Vars(r)["id"]); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := h.owner(w, r)
		if !ok {
			return
		}
		schedule, err := h.svc.SetActive(r.Context(), ownerID, mux.Vars(r)["id"], active)
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, schedule)
	}
}

// Entries lists the ledger entries a schedule has produced
func (h *Handler) Entries(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	entries, err := h.svc.ListLedgerEntries(r.Context(), ownerID, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(entries))
}

// Pending lists the caller's schedules that are due now
func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	schedules, err := h.svc.PendingExecutions(r.Context(), ownerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(schedules))
}

// Projection returns the projected impact over ?months=N
func (h *Handler) Projection(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	months := DefaultHorizonMonths
	if raw := r.URL.Query().Get("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "months must be an integer"})
			return
		}
		months = n
	}
	result, err := h.svc.Projection(r.Context(), ownerID, months)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Summary returns portfolio statistics
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	summary, err := h.svc.Summary(r.Context(), ownerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Conflicts audits the caller's schedules
func (h *Handler) Conflicts(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	conflicts, err := h.svc.Conflicts(r.Context(), ownerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(conflicts))
}

// Validate checks a configuration without storing it
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.owner(w, r); !ok {
		return
	}
	var input models.ScheduleInput
	if !decode(w, r, &input) {
		return
	}
	problems := h.svc.Validate(input)
	writeJSON(w, http.StatusOK, validationBody{Valid: len(problems) == 0, Problems: nonNil(problems)})
}

type errorBody struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

type validationBody struct {
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems"`
}

func (h *Handler) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID, ok := middleware.OwnerIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthenticated"})
	}
	return ownerID, ok
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid schedule", Problems: ve.Problems})
	case errors.Is(err, repository.ErrScheduleNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "schedule not found"})
	case errors.Is(err, repository.ErrScheduleModified):
		writeJSON(w, http.StatusConflict, errorBody{Error: "schedule changed while editing, reload and retry"})
	default:
		h.log.Errorf("Request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
