// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/absence-engine/consolidation"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements consolidation.Store plus the Directory, Authorizer and
// AuditSink collaborators, all in process memory. WithTx holds the store
// lock for the whole closure, which satisfies the serialization contract,
// and rolls back via snapshot on error.
type Memory struct {
	mu       sync.RWMutex
	reports  map[consolidation.ReportID]consolidation.Report
	absences map[consolidation.AbsenceID]consolidation.Absence
	locks    map[string]bool // keyed by Day.String()
	seq      int64

	officers  map[consolidation.OfficerID]officerRecord
	employees map[consolidation.EmployeeID]employeeRecord
	events    []consolidation.AuditEvent
}

type officerRecord struct {
	Name       string
	CanApprove bool
}

type employeeRecord struct {
	Name       string
	Department string
}

func NewMemory() *Memory {
	return &Memory{
		reports:   make(map[consolidation.ReportID]consolidation.Report),
		absences:  make(map[consolidation.AbsenceID]consolidation.Absence),
		locks:     make(map[string]bool),
		officers:  make(map[consolidation.OfficerID]officerRecord),
		employees: make(map[consolidation.EmployeeID]employeeRecord),
	}
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

func (m *Memory) CreateReport(_ context.Context, r consolidation.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createReportLocked(r)
	return nil
}

func (m *Memory) createReportLocked(r consolidation.Report) {
	r.Absences = nil // absences live in their own map
	m.reports[r.ID] = r
}

func (m *Memory) GetReport(_ context.Context, id consolidation.ReportID) (*consolidation.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getReportLocked(id), nil
}

func (m *Memory) getReportLocked(id consolidation.ReportID) *consolidation.Report {
	r, ok := m.reports[id]
	if !ok {
		return nil
	}
	return &r
}

func (m *Memory) ReportsForDay(_ context.Context, day consolidation.Day) ([]consolidation.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reportsForDayLocked(day), nil
}

func (m *Memory) reportsForDayLocked(day consolidation.Day) []consolidation.Report {
	var result []consolidation.Report
	for _, r := range m.reports {
		if !r.Day.Equal(day) || r.Status != consolidation.ReportSubmitted {
			continue
		}
		for _, a := range m.absences {
			if a.ReportID == r.ID && a.Status == consolidation.AbsenceRecorded {
				r.Absences = append(r.Absences, a)
			}
		}
		sort.Slice(r.Absences, func(i, j int) bool { return r.Absences[i].Seq < r.Absences[j].Seq })
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result
}

func (m *Memory) InsertAbsence(_ context.Context, a consolidation.Absence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertAbsenceLocked(a)
	return nil
}

func (m *Memory) insertAbsenceLocked(a consolidation.Absence) {
	m.seq++
	a.Seq = m.seq
	m.absences[a.ID] = a
}

func (m *Memory) GetAbsence(_ context.Context, id consolidation.AbsenceID) (*consolidation.Absence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getAbsenceLocked(id), nil
}

func (m *Memory) getAbsenceLocked(id consolidation.AbsenceID) *consolidation.Absence {
	a, ok := m.absences[id]
	if !ok {
		return nil
	}
	return &a
}

func (m *Memory) AbsencesForDay(_ context.Context, day consolidation.Day) ([]consolidation.Absence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.absencesForDayLocked(day), nil
}

func (m *Memory) absencesForDayLocked(day consolidation.Day) []consolidation.Absence {
	var result []consolidation.Absence
	for _, a := range m.absences {
		if a.Day.Equal(day) {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Seq < result[j].Seq })
	return result
}

func (m *Memory) RecordedAbsences(_ context.Context, day consolidation.Day, employeeID consolidation.EmployeeID) ([]consolidation.Absence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.recordedAbsencesLocked(day, employeeID), nil
}

func (m *Memory) recordedAbsencesLocked(day consolidation.Day, employeeID consolidation.EmployeeID) []consolidation.Absence {
	var result []consolidation.Absence
	for _, a := range m.absences {
		if a.Day.Equal(day) && a.EmployeeID == employeeID && a.Status == consolidation.AbsenceRecorded {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Seq < result[j].Seq })
	return result
}

func (m *Memory) SetAbsenceStatus(_ context.Context, id consolidation.AbsenceID, status consolidation.AbsenceStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setAbsenceStatusLocked(id, status)
}

func (m *Memory) setAbsenceStatusLocked(id consolidation.AbsenceID, status consolidation.AbsenceStatus) error {
	a, ok := m.absences[id]
	if !ok {
		return &consolidation.NotFoundError{Kind: "absence", ID: string(id)}
	}
	a.Status = status
	m.absences[id] = a
	return nil
}

func (m *Memory) IsLocked(_ context.Context, day consolidation.Day) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.locks[day.String()], nil
}

func (m *Memory) SetLocked(_ context.Context, day consolidation.Day, locked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks[day.String()] = locked
	return nil
}

// =============================================================================
// TRANSACTIONS - snapshot + rollback under the store lock
// =============================================================================

func (m *Memory) WithTx(_ context.Context, fn func(tx consolidation.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshot()
	if err := fn(&txView{parent: m}); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	reports  map[consolidation.ReportID]consolidation.Report
	absences map[consolidation.AbsenceID]consolidation.Absence
	locks    map[string]bool
	seq      int64
}

func (m *Memory) snapshot() memorySnapshot {
	s := memorySnapshot{
		reports:  make(map[consolidation.ReportID]consolidation.Report, len(m.reports)),
		absences: make(map[consolidation.AbsenceID]consolidation.Absence, len(m.absences)),
		locks:    make(map[string]bool, len(m.locks)),
		seq:      m.seq,
	}
	for k, v := range m.reports {
		s.reports[k] = v
	}
	for k, v := range m.absences {
		s.absences[k] = v
	}
	for k, v := range m.locks {
		s.locks[k] = v
	}
	return s
}

func (m *Memory) restore(s memorySnapshot) {
	m.reports = s.reports
	m.absences = s.absences
	m.locks = s.locks
	m.seq = s.seq
}

// txView runs against the parent while the parent's lock is held by WithTx.
type txView struct {
	parent *Memory
}

func (tv *txView) CreateReport(_ context.Context, r consolidation.Report) error {
	tv.parent.createReportLocked(r)
	return nil
}

func (tv *txView) GetReport(_ context.Context, id consolidation.ReportID) (*consolidation.Report, error) {
	return tv.parent.getReportLocked(id), nil
}

func (tv *txView) ReportsForDay(_ context.Context, day consolidation.Day) ([]consolidation.Report, error) {
	return tv.parent.reportsForDayLocked(day), nil
}

func (tv *txView) InsertAbsence(_ context.Context, a consolidation.Absence) error {
	tv.parent.insertAbsenceLocked(a)
	return nil
}

func (tv *txView) GetAbsence(_ context.Context, id consolidation.AbsenceID) (*consolidation.Absence, error) {
	return tv.parent.getAbsenceLocked(id), nil
}

func (tv *txView) AbsencesForDay(_ context.Context, day consolidation.Day) ([]consolidation.Absence, error) {
	return tv.parent.absencesForDayLocked(day), nil
}

func (tv *txView) RecordedAbsences(_ context.Context, day consolidation.Day, employeeID consolidation.EmployeeID) ([]consolidation.Absence, error) {
	return tv.parent.recordedAbsencesLocked(day, employeeID), nil
}

func (tv *txView) SetAbsenceStatus(_ context.Context, id consolidation.AbsenceID, status consolidation.AbsenceStatus) error {
	return tv.parent.setAbsenceStatusLocked(id, status)
}

func (tv *txView) IsLocked(_ context.Context, day consolidation.Day) (bool, error) {
	return tv.parent.locks[day.String()], nil
}

func (tv *txView) SetLocked(_ context.Context, day consolidation.Day, locked bool) error {
	tv.parent.locks[day.String()] = locked
	return nil
}

func (tv *txView) WithTx(ctx context.Context, fn func(tx consolidation.Store) error) error {
	// Already inside the transaction; run against the same view.
	return fn(tv)
}

// =============================================================================
// DIRECTORY / AUTHORIZER / AUDIT SINK
// =============================================================================

// AddOfficer registers an officer for display lookup and capability checks.
func (m *Memory) AddOfficer(id consolidation.OfficerID, name string, canApprove bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.officers[id] = officerRecord{Name: name, CanApprove: canApprove}
}

// AddEmployee registers an employee for display lookup and headcount.
func (m *Memory) AddEmployee(id consolidation.EmployeeID, name, department string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[id] = employeeRecord{Name: name, Department: department}
}

func (m *Memory) OfficerName(_ context.Context, id consolidation.OfficerID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.officers[id].Name, nil
}

func (m *Memory) EmployeeName(_ context.Context, id consolidation.EmployeeID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.employees[id].Name, nil
}

func (m *Memory) EmployeeDepartment(_ context.Context, id consolidation.EmployeeID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.employees[id].Department, nil
}

func (m *Memory) ActiveHeadcount(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.employees), nil
}

func (m *Memory) HasApprovalCapability(_ context.Context, actorID consolidation.OfficerID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.officers[actorID].CanApprove, nil
}

func (m *Memory) Record(_ context.Context, ev consolidation.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

// Events returns a copy of the recorded audit trail.
func (m *Memory) Events() []consolidation.AuditEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]consolidation.AuditEvent{}, m.events...)
}
