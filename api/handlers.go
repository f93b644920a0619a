/*
handlers.go - HTTP API handlers for the absence consolidation system

PURPOSE:
  Exposes the consolidation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Days:
    GET    /api/days/{date}             Consolidated daily view
    GET    /api/days/{date}/duplicates  Duplicate groups for the day
    GET    /api/days/{date}/lock        Lock state
    POST   /api/days/{date}/reports     Submit an absence report
    POST   /api/days/{date}/resolve     Resolve one duplicate group
    POST   /api/days/{date}/approve     Approve (lock) the day
    POST   /api/days/{date}/unapprove   Reopen the day

  Reports and absences:
    GET    /api/reports/{id}            Get one report
    POST   /api/reports/{id}/absences   Add an absence to a report
    DELETE /api/absences/{id}           Cancel an absence

  Directory:
    GET    /api/officers                List officers
    POST   /api/officers                Create or update an officer
    GET    /api/employees               List employees
    POST   /api/employees               Create or update an employee

  Admin:
    GET    /api/audit                   Recent audit events
    POST   /api/seed                    Load a demo data set

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (go-playground/validator)
  3. Call domain logic (workflow)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, nothing to approve
  - 403: Actor lacks approval capability
  - 404: Resource not found
  - 409: Locked day, unresolved duplicates, write conflict
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication. Actor identity is taken from the request
  body and trusted; authorization is capability-checked by the workflow.

SEE ALSO:
  - dto.go: Request/response data structures
  - seed.go: Demo data loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/warp/absence-engine/consolidation"
	"github.com/warp/absence-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Workflow *consolidation.Workflow

	validate *validator.Validate
	log      *logrus.Logger
}

// NewHandler creates a handler over the given store. The store serves as
// ledger, directory, authorizer and audit sink for the workflow.
func NewHandler(store *sqlite.Store, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		Store:    store,
		Workflow: consolidation.NewWorkflow(store, store, store, store),
		validate: validator.New(),
		log:      log,
	}
}

// =============================================================================
// DAY HANDLERS
// =============================================================================

// GetDailyView returns the consolidated view for one day.
// GET /api/days/{date}
func (h *Handler) GetDailyView(w http.ResponseWriter, r *http.Request) {
	day, ok := h.dayParam(w, r)
	if !ok {
		return
	}

	view, err := h.Workflow.DailyView(r.Context(), day)
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDailyViewDTO(view))
}

// GetDuplicates returns the unresolved duplicate groups for one day.
// GET /api/days/{date}/duplicates
func (h *Handler) GetDuplicates(w http.ResponseWriter, r *http.Request) {
	day, ok := h.dayParam(w, r)
	if !ok {
		return
	}

	groups, err := h.Workflow.FindDuplicates(r.Context(), day)
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDuplicateGroupDTOs(groups))
}

// GetLockState returns OPEN or LOCKED for one day.
// GET /api/days/{date}/lock
func (h *Handler) GetLockState(w http.ResponseWriter, r *http.Request) {
	day, ok := h.dayParam(w, r)
	if !ok {
		return
	}

	locked, err := h.Workflow.IsLocked(r.Context(), day)
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LockStateDTO{
		Day:    day.String(),
		State:  string(consolidation.GateStateOf(locked)),
		Locked: locked,
	})
}

// SubmitReport files an officer's absence report for one day.
// POST /api/days/{date}/reports
func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	day, ok := h.dayParam(w, r)
	if !ok {
		return
	}

	var req SubmitReportRequest
	if !h.decode(w, r, &req) {
		return
	}

	entries := make([]consolidation.ReportEntry, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, consolidation.ReportEntry{
			EmployeeID: consolidation.EmployeeID(e.EmployeeID),
			Reason:     e.Reason,
		})
	}

	report, err := h.Workflow.SubmitReport(r.Context(), day, consolidation.OfficerID(req.OfficerID), entries)
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toReportDTO(*report))
}

// ResolveDuplicate collapses the duplicate group for one employee, keeping
// the earliest-created entry.
// POST /api/days/{date}/resolve
func (h *Handler) ResolveDuplicate(w http.ResponseWriter, r *http.Request) {
	day, ok := h.dayParam(w, r)
	if !ok {
		return
	}

	var req ResolveDuplicateRequest
	if !h.decode(w, r, &req) {
		return
	}

	removed, err := h.Workflow.ResolveDuplicate(r.Context(), day, consolidation.EmployeeID(req.EmployeeID), consolidation.OfficerID(req.ActorID))
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ResolveResultDTO{
		Day:        day.String(),
		EmployeeID: req.EmployeeID,
		Removed:    removed,
	})
}

// ApproveDay locks the day for further edits.
// POST /api/days/{date}/approve
func (h *Handler) ApproveDay(w http.ResponseWriter, r *http.Request) {
	day, ok := h.dayParam(w, r)
	if !ok {
		return
	}

	var req ActorRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.Workflow.Approve(r.Context(), day, consolidation.OfficerID(req.ActorID)); err != nil {
		h.writeWorkflowError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LockStateDTO{
		Day:    day.String(),
		State:  string(consolidation.GateLocked),
		Locked: true,
	})
}

// UnapproveDay reopens a locked day.
// POST /api/days/{date}/unapprove
func (h *Handler) UnapproveDay(w http.ResponseWriter, r *http.Request) {
	day, ok := h.dayParam(w, r)
	if !ok {
		return
	}

	var req ActorRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.Workflow.Unapprove(r.Context(), day, consolidation.OfficerID(req.ActorID)); err != nil {
		h.writeWorkflowError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LockStateDTO{
		Day:    day.String(),
		State:  string(consolidation.GateOpen),
		Locked: false,
	})
}

// =============================================================================
// REPORT AND ABSENCE HANDLERS
// =============================================================================

// GetReport returns one report with its absences.
// GET /api/reports/{id}
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := consolidation.ReportID(chi.URLParam(r, "id"))

	report, err := h.Store.GetReport(r.Context(), id)
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}
	if report == nil {
		writeError(w, http.StatusNotFound, "Report not found", nil)
		return
	}

	// GetReport returns the bare row; attach its absences, all statuses.
	all, err := h.Store.AbsencesForDay(r.Context(), report.Day)
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}
	for _, a := range all {
		if a.ReportID == report.ID {
			report.Absences = append(report.Absences, a)
		}
	}

	writeJSON(w, http.StatusOK, toReportDTO(*report))
}

// AddAbsence records one more employee under an existing report.
// POST /api/reports/{id}/absences
func (h *Handler) AddAbsence(w http.ResponseWriter, r *http.Request) {
	id := consolidation.ReportID(chi.URLParam(r, "id"))

	var req AddAbsenceRequest
	if !h.decode(w, r, &req) {
		return
	}

	absence, err := h.Workflow.AddAbsence(r.Context(), id, consolidation.EmployeeID(req.EmployeeID), req.Reason)
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAbsenceDTO(*absence))
}

// CancelAbsence soft-deletes an absence entry.
// DELETE /api/absences/{id}
func (h *Handler) CancelAbsence(w http.ResponseWriter, r *http.Request) {
	id := consolidation.AbsenceID(chi.URLParam(r, "id"))

	if err := h.Workflow.CancelAbsence(r.Context(), id); err != nil {
		h.writeWorkflowError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// DIRECTORY HANDLERS
// =============================================================================

// ListOfficers returns all registered officers.
// GET /api/officers
func (h *Handler) ListOfficers(w http.ResponseWriter, r *http.Request) {
	officers, err := h.Store.ListOfficers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list officers", err)
		return
	}

	dtos := make([]OfficerDTO, len(officers))
	for i, o := range officers {
		dtos[i] = toOfficerDTO(o)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateOfficer registers or updates an officer.
// POST /api/officers
func (h *Handler) CreateOfficer(w http.ResponseWriter, r *http.Request) {
	var req CreateOfficerRequest
	if !h.decode(w, r, &req) {
		return
	}

	o := sqlite.Officer{
		ID:         req.ID,
		Name:       req.Name,
		Department: req.Department,
		CanApprove: req.CanApprove,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.Store.SaveOfficer(r.Context(), o); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save officer", err)
		return
	}

	writeJSON(w, http.StatusCreated, toOfficerDTO(o))
}

// ListEmployees returns the roster.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee registers or updates a roster entry.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	e := sqlite.Employee{
		ID:         req.ID,
		Name:       req.Name,
		Department: req.Department,
		Active:     active,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.Store.SaveEmployee(r.Context(), e); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(e))
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ListAuditEvents returns the most recent audit trail entries.
// GET /api/audit?limit=N
func (h *Handler) ListAuditEvents(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	events, err := h.Store.AuditEvents(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list audit events", err)
		return
	}

	dtos := make([]AuditEventDTO, len(events))
	for i, ev := range events {
		dtos[i] = toAuditEventDTO(ev)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

// dayParam parses the {date} URL parameter. Writes a 400 and returns
// ok=false when the value is not a YYYY-MM-DD date.
func (h *Handler) dayParam(w http.ResponseWriter, r *http.Request) (consolidation.Day, bool) {
	raw := chi.URLParam(r, "date")
	day, err := consolidation.ParseDay(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", err)
		return consolidation.Day{}, false
	}
	return day, true
}

// decode parses and validates a JSON request body. Writes a 400 and
// returns false on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

// writeWorkflowError maps domain errors onto HTTP statuses. A blocked
// approval carries its duplicate groups in the payload.
func (h *Handler) writeWorkflowError(w http.ResponseWriter, err error) {
	var dup *consolidation.DuplicatesPresentError
	if errors.As(err, &dup) {
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error:      "Unresolved duplicates block approval",
			Details:    dup.Error(),
			Duplicates: toDuplicateGroupDTOs(dup.Groups),
		})
		return
	}

	switch {
	case errors.Is(err, consolidation.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, consolidation.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "Actor cannot approve", err)
	case errors.Is(err, consolidation.ErrDateLocked):
		writeError(w, http.StatusConflict, "Day is locked", err)
	case errors.Is(err, consolidation.ErrNothingToApprove):
		writeError(w, http.StatusBadRequest, "No submitted reports for this day", err)
	case errors.Is(err, consolidation.ErrConflict):
		writeError(w, http.StatusConflict, "Write conflict, retry", err)
	default:
		h.log.WithError(err).Error("unhandled workflow error")
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
