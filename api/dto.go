/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry go-playground/validator tags. Handlers run the shared
  validator instance before touching the workflow.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/absence-engine/consolidation"
	"github.com/warp/absence-engine/store/sqlite"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// SubmitReportRequest files one officer's absence list for the day in the
// URL. An empty entry list is a valid "nobody absent" submission.
type SubmitReportRequest struct {
	OfficerID string               `json:"officer_id" validate:"required"`
	Entries   []ReportEntryRequest `json:"entries" validate:"dive"`
}

// ReportEntryRequest is one line of a submission.
type ReportEntryRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Reason     string `json:"reason"`
}

// AddAbsenceRequest records one more employee under an existing report.
type AddAbsenceRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Reason     string `json:"reason"`
}

// ResolveDuplicateRequest collapses the duplicate group for one employee.
// ActorID identifies who triggered the remediation for the audit trail.
type ResolveDuplicateRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	ActorID    string `json:"actor_id" validate:"required"`
}

// ActorRequest identifies the manager triggering an approve or unapprove.
type ActorRequest struct {
	ActorID string `json:"actor_id" validate:"required"`
}

// CreateOfficerRequest registers a submitting user.
type CreateOfficerRequest struct {
	ID         string `json:"id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Department string `json:"department"`
	CanApprove bool   `json:"can_approve"`
}

// CreateEmployeeRequest registers a roster entry. Active defaults to true
// when omitted.
type CreateEmployeeRequest struct {
	ID         string `json:"id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Department string `json:"department" validate:"required"`
	Active     *bool  `json:"active"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ErrorResponse is the uniform error payload. Duplicates is populated only
// when an approval was blocked by unresolved duplicates, so the client can
// render the remediation list directly.
type ErrorResponse struct {
	Error      string              `json:"error"`
	Details    string              `json:"details,omitempty"`
	Duplicates []DuplicateGroupDTO `json:"duplicates,omitempty"`
}

// AbsenceDTO represents one absence entry.
type AbsenceDTO struct {
	ID           string `json:"id"`
	ReportID     string `json:"report_id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty"`
	Department   string `json:"department,omitempty"`
	Day          string `json:"day"`
	Status       string `json:"status"`
	Reason       string `json:"reason,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// ReportDTO represents one submitted report with its absences.
type ReportDTO struct {
	ID          string       `json:"id"`
	Day         string       `json:"day"`
	Status      string       `json:"status"`
	OfficerID   string       `json:"officer_id"`
	OfficerName string       `json:"officer_name,omitempty"`
	CreatedAt   string       `json:"created_at"`
	Absences    []AbsenceDTO `json:"absences"`
}

// DuplicateMemberDTO is one conflicting entry inside a duplicate group.
type DuplicateMemberDTO struct {
	AbsenceID   string `json:"absence_id"`
	ReportID    string `json:"report_id"`
	OfficerID   string `json:"officer_id"`
	OfficerName string `json:"officer_name,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// DuplicateGroupDTO is one duplicated employee with all conflicting entries.
type DuplicateGroupDTO struct {
	EmployeeID   string               `json:"employee_id"`
	EmployeeName string               `json:"employee_name,omitempty"`
	Members      []DuplicateMemberDTO `json:"members"`
}

// OfficerTallyDTO is one officer's RECORDED count, keyed by officer id in
// the parent map with the display name carried alongside.
type OfficerTallyDTO struct {
	Name     string `json:"name,omitempty"`
	Recorded int    `json:"recorded"`
}

// KPIsDTO carries the daily figures. AbsenceRate is a decimal string, a
// fraction in [0, 1].
type KPIsDTO struct {
	TotalRecorded     int                        `json:"total_recorded"`
	TotalCancelled    int                        `json:"total_cancelled"`
	UniqueEmployees   int                        `json:"unique_employees"`
	UniqueDepartments int                        `json:"unique_departments"`
	PerOfficer        map[string]OfficerTallyDTO `json:"per_officer"`
	PerDepartment     map[string]int             `json:"per_department"`
	AbsenceRate       string                     `json:"absence_rate"`
}

// DailyViewDTO is the consolidated read model for one day.
type DailyViewDTO struct {
	Day        string              `json:"day"`
	State      string              `json:"state"`
	Reports    []ReportDTO         `json:"reports"`
	Duplicates []DuplicateGroupDTO `json:"duplicates"`
	KPIs       KPIsDTO             `json:"kpis"`
}

// LockStateDTO answers the lock-state query.
type LockStateDTO struct {
	Day    string `json:"day"`
	State  string `json:"state"`
	Locked bool   `json:"locked"`
}

// ResolveResultDTO reports how many entries a resolution cancelled.
type ResolveResultDTO struct {
	Day        string `json:"day"`
	EmployeeID string `json:"employee_id"`
	Removed    int    `json:"removed"`
}

// OfficerDTO represents an officer record.
type OfficerDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
	CanApprove bool   `json:"can_approve"`
}

// EmployeeDTO represents a roster entry.
type EmployeeDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Active     bool   `json:"active"`
}

// AuditEventDTO represents one trail entry.
type AuditEventDTO struct {
	ID       string `json:"id"`
	Action   string `json:"action"`
	Entity   string `json:"entity"`
	EntityID string `json:"entity_id"`
	ActorID  string `json:"actor_id,omitempty"`
	At       string `json:"at"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toAbsenceDTO(a consolidation.Absence) AbsenceDTO {
	return AbsenceDTO{
		ID:         string(a.ID),
		ReportID:   string(a.ReportID),
		EmployeeID: string(a.EmployeeID),
		Day:        a.Day.String(),
		Status:     string(a.Status),
		Reason:     a.Reason,
		CreatedAt:  a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toReportDTO(r consolidation.Report) ReportDTO {
	dto := ReportDTO{
		ID:        string(r.ID),
		Day:       r.Day.String(),
		Status:    string(r.Status),
		OfficerID: string(r.CreatedBy),
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		Absences:  []AbsenceDTO{},
	}
	for _, a := range r.Absences {
		dto.Absences = append(dto.Absences, toAbsenceDTO(a))
	}
	return dto
}

func toDuplicateGroupDTOs(groups []consolidation.DuplicateGroup) []DuplicateGroupDTO {
	dtos := []DuplicateGroupDTO{}
	for _, g := range groups {
		dto := DuplicateGroupDTO{
			EmployeeID:   string(g.EmployeeID),
			EmployeeName: g.EmployeeName,
		}
		for _, m := range g.Members {
			dto.Members = append(dto.Members, DuplicateMemberDTO{
				AbsenceID:   string(m.AbsenceID),
				ReportID:    string(m.ReportID),
				OfficerID:   string(m.OfficerID),
				OfficerName: m.OfficerName,
				CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		dtos = append(dtos, dto)
	}
	return dtos
}

func toDailyViewDTO(v *consolidation.DailyView) DailyViewDTO {
	perOfficer := make(map[string]OfficerTallyDTO, len(v.KPIs.PerOfficer))
	for id, tally := range v.KPIs.PerOfficer {
		perOfficer[string(id)] = OfficerTallyDTO{Name: tally.Name, Recorded: tally.Recorded}
	}
	dto := DailyViewDTO{
		Day:        v.Day.String(),
		State:      string(v.State),
		Reports:    []ReportDTO{},
		Duplicates: toDuplicateGroupDTOs(v.Duplicates),
		KPIs: KPIsDTO{
			TotalRecorded:     v.KPIs.TotalRecorded,
			TotalCancelled:    v.KPIs.TotalCancelled,
			UniqueEmployees:   v.KPIs.UniqueEmployees,
			UniqueDepartments: v.KPIs.UniqueDepartments,
			PerOfficer:        perOfficer,
			PerDepartment:     v.KPIs.PerDepartment,
			AbsenceRate:       v.KPIs.AbsenceRate.String(),
		},
	}
	for _, rv := range v.Reports {
		r := toReportDTO(rv.Report)
		r.OfficerName = rv.OfficerName
		r.Absences = []AbsenceDTO{}
		for _, av := range rv.Entries {
			a := toAbsenceDTO(av.Absence)
			a.EmployeeName = av.EmployeeName
			a.Department = av.Department
			r.Absences = append(r.Absences, a)
		}
		dto.Reports = append(dto.Reports, r)
	}
	return dto
}

func toOfficerDTO(o sqlite.Officer) OfficerDTO {
	return OfficerDTO{ID: o.ID, Name: o.Name, Department: o.Department, CanApprove: o.CanApprove}
}

func toEmployeeDTO(e sqlite.Employee) EmployeeDTO {
	return EmployeeDTO{ID: e.ID, Name: e.Name, Department: e.Department, Active: e.Active}
}

func toAuditEventDTO(ev consolidation.AuditEvent) AuditEventDTO {
	return AuditEventDTO{
		ID:       ev.ID,
		Action:   ev.Action,
		Entity:   ev.Entity,
		EntityID: ev.EntityID,
		ActorID:  string(ev.ActorID),
		At:       ev.At.UTC().Format(time.RFC3339),
	}
}
