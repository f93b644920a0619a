/*
seed.go - Demo data loaders for testing and demonstrations

PURPOSE:

	Populates the database with a realistic roster and a day of absence
	reports so the consolidation flow can be exercised end to end. The
	duplicate seed intentionally files the same employee on two reports.

AVAILABLE SEEDS:

	clean-day:      Two officers, disjoint absence lists, approvable as-is
	duplicate-day:  Overlapping reports that block approval until resolved

HOW SEEDS WORK:
 1. Reset database (clear all data)
 2. Create officers and employees
 3. Submit reports through the workflow (not raw inserts), so all
    invariants and audit entries apply

USAGE VIA API:

	POST /api/seed
	{"seed_id": "duplicate-day", "date": "2026-09-01"}

NOTE:

	Seeds reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Shared helpers
  - server.go: Route wiring
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/absence-engine/consolidation"
	"github.com/warp/absence-engine/store/sqlite"
)

// LoadSeedRequest selects a seed and the day it populates. Date defaults
// to today when omitted.
type LoadSeedRequest struct {
	SeedID string `json:"seed_id" validate:"required,oneof=clean-day duplicate-day"`
	Date   string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// SeedResultDTO summarizes what a seed created.
type SeedResultDTO struct {
	SeedID    string `json:"seed_id"`
	Day       string `json:"day"`
	Officers  int    `json:"officers"`
	Employees int    `json:"employees"`
	Reports   int    `json:"reports"`
}

// LoadSeed resets the database and loads the requested seed.
// POST /api/seed
func (h *Handler) LoadSeed(w http.ResponseWriter, r *http.Request) {
	var req LoadSeedRequest
	if !h.decode(w, r, &req) {
		return
	}

	day := consolidation.Today()
	if req.Date != "" {
		day, _ = consolidation.ParseDay(req.Date)
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var result SeedResultDTO
	var err error
	switch req.SeedID {
	case "clean-day":
		result, err = h.loadCleanDay(ctx, day)
	case "duplicate-day":
		result, err = h.loadDuplicateDay(ctx, day)
	default:
		writeError(w, http.StatusBadRequest, "Unknown seed", fmt.Errorf("seed %q", req.SeedID))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load seed", err)
		return
	}

	result.SeedID = req.SeedID
	result.Day = day.String()
	writeJSON(w, http.StatusOK, result)
}

// ResetDatabase clears all data.
// POST /api/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SEED LOADERS
// =============================================================================

type seedOfficer struct {
	id, name, department string
	canApprove           bool
}

type seedEmployee struct {
	id, name, department string
}

var seedOfficers = []seedOfficer{
	{"off-eng", "Marta Kovacs", "Engineering", false},
	{"off-ops", "Daniel Reyes", "Operations", false},
	{"mgr-hr", "Priya Shah", "HR", true},
}

var seedEmployees = []seedEmployee{
	{"emp-001", "Alice Nguyen", "Engineering"},
	{"emp-002", "Bogdan Ilic", "Engineering"},
	{"emp-003", "Carla Mendes", "Operations"},
	{"emp-004", "Derek Osei", "Operations"},
	{"emp-005", "Elif Demir", "Finance"},
}

func (h *Handler) seedDirectory(ctx context.Context) error {
	now := time.Now().UTC()
	for _, o := range seedOfficers {
		err := h.Store.SaveOfficer(ctx, sqlite.Officer{
			ID: o.id, Name: o.name, Department: o.department,
			CanApprove: o.canApprove, CreatedAt: now,
		})
		if err != nil {
			return err
		}
	}
	for _, e := range seedEmployees {
		err := h.Store.SaveEmployee(ctx, sqlite.Employee{
			ID: e.id, Name: e.name, Department: e.department,
			Active: true, CreatedAt: now,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// loadCleanDay files two reports with disjoint employees. The day can be
// approved immediately.
func (h *Handler) loadCleanDay(ctx context.Context, day consolidation.Day) (SeedResultDTO, error) {
	if err := h.seedDirectory(ctx); err != nil {
		return SeedResultDTO{}, err
	}

	_, err := h.Workflow.SubmitReport(ctx, day, "off-eng", []consolidation.ReportEntry{
		{EmployeeID: "emp-001", Reason: "sick"},
		{EmployeeID: "emp-002", Reason: "family emergency"},
	})
	if err != nil {
		return SeedResultDTO{}, err
	}

	_, err = h.Workflow.SubmitReport(ctx, day, "off-ops", []consolidation.ReportEntry{
		{EmployeeID: "emp-003", Reason: "sick"},
	})
	if err != nil {
		return SeedResultDTO{}, err
	}

	return SeedResultDTO{
		Officers:  len(seedOfficers),
		Employees: len(seedEmployees),
		Reports:   2,
	}, nil
}

// loadDuplicateDay files overlapping reports: emp-003 appears on both, so
// approval is blocked until the group is resolved.
func (h *Handler) loadDuplicateDay(ctx context.Context, day consolidation.Day) (SeedResultDTO, error) {
	if err := h.seedDirectory(ctx); err != nil {
		return SeedResultDTO{}, err
	}

	_, err := h.Workflow.SubmitReport(ctx, day, "off-eng", []consolidation.ReportEntry{
		{EmployeeID: "emp-001", Reason: "sick"},
		{EmployeeID: "emp-003", Reason: "offsite"},
	})
	if err != nil {
		return SeedResultDTO{}, err
	}

	_, err = h.Workflow.SubmitReport(ctx, day, "off-ops", []consolidation.ReportEntry{
		{EmployeeID: "emp-003", Reason: "sick"},
		{EmployeeID: "emp-004", Reason: "sick"},
	})
	if err != nil {
		return SeedResultDTO{}, err
	}

	return SeedResultDTO{
		Officers:  len(seedOfficers),
		Employees: len(seedEmployees),
		Reports:   2,
	}, nil
}
