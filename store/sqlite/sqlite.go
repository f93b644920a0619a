/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements consolidation.Store plus the Directory, Authorizer and
  AuditSink collaborators using SQLite. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  reports:       One row per officer submission (append-only)
  absences:      One row per recorded absence; status flips, rows never die
  day_locks:     One row per day that has ever been locked
  officers:      Submitting users, with the approval capability bit
  employees:     Roster for display names, departments and headcount
  audit_events:  Trail of gate transitions and resolutions

SOFT DELETE:
  absences are cancelled via the status column, never deleted. Operators
  need to see the history of who reported what; the trail survives
  consolidation.

CONCURRENCY:
  A sync.RWMutex serializes writers, and WithTx holds the write lock for
  the whole closure while running a single SQL transaction. That satisfies
  the contract that an approval's duplicate check cannot interleave with a
  racing submission for the same day. SQLITE_BUSY surfaces as
  consolidation.ErrConflict so callers can retry.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers don't block,
  single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/absence.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  wf := consolidation.NewWorkflow(store, store, store, store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - consolidation/store.go: interface definitions and the WithTx contract
  - consolidation/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/absence-engine/consolidation"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Reports (append-only submissions)
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		day TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'SUBMITTED',
		created_by TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_day
		ON reports(day);
	CREATE INDEX IF NOT EXISTS idx_reports_created_by
		ON reports(created_by);

	-- Absences. seq is the resolver's "earliest created" tie-break: wall
	-- clocks can collide inside one submission, rowids cannot.
	CREATE TABLE IF NOT EXISTS absences (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		report_id TEXT NOT NULL REFERENCES reports(id),
		employee_id TEXT NOT NULL,
		day TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'RECORDED',
		reason TEXT,
		created_at TEXT NOT NULL
	);

	-- Duplicate detection hot path: RECORDED entries per (day, employee)
	CREATE INDEX IF NOT EXISTS idx_absences_day_employee
		ON absences(day, employee_id) WHERE status = 'RECORDED';
	CREATE INDEX IF NOT EXISTS idx_absences_report
		ON absences(report_id);
	CREATE INDEX IF NOT EXISTS idx_absences_day
		ON absences(day);

	-- Per-day gate state. Days with no row are OPEN.
	CREATE TABLE IF NOT EXISTS day_locks (
		day TEXT PRIMARY KEY,
		locked INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL
	);

	-- Officers (submitters; can_approve is the manager capability bit)
	CREATE TABLE IF NOT EXISTS officers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		department TEXT,
		can_approve INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	-- Employees (roster for names, departments, headcount)
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		department TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_department
		ON employees(department);

	-- Audit trail
	CREATE TABLE IF NOT EXISTS audit_events (
		id TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		entity TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		actor_id TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_entity
		ON audit_events(entity, entity_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// queryer abstracts *sql.DB and *sql.Tx so the row-level helpers serve both.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// STORE INTERFACE (consolidation.Store)
// =============================================================================

func (s *Store) CreateReport(ctx context.Context, r consolidation.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return createReport(ctx, s.db, r)
}

func createReport(ctx context.Context, q queryer, r consolidation.Report) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO reports (id, day, status, created_by, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Day.String(), r.Status, r.CreatedBy, r.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", mapBusy(err))
	}
	return nil
}

func (s *Store) GetReport(ctx context.Context, id consolidation.ReportID) (*consolidation.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getReport(ctx, s.db, id)
}

func getReport(ctx context.Context, q queryer, id consolidation.ReportID) (*consolidation.Report, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, day, status, created_by, created_at FROM reports WHERE id = ?`, id)

	var r consolidation.Report
	var day, createdAt string
	err := row.Scan(&r.ID, &day, &r.Status, &r.CreatedBy, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	r.Day, _ = consolidation.ParseDay(day)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &r, nil
}

func (s *Store) ReportsForDay(ctx context.Context, day consolidation.Day) ([]consolidation.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return reportsForDay(ctx, s.db, day)
}

func reportsForDay(ctx context.Context, q queryer, day consolidation.Day) ([]consolidation.Report, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, day, status, created_by, created_at
		 FROM reports
		 WHERE day = ? AND status = ?
		 ORDER BY created_at ASC, rowid ASC`,
		day.String(), consolidation.ReportSubmitted)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []consolidation.Report
	index := make(map[consolidation.ReportID]int)
	for rows.Next() {
		var r consolidation.Report
		var d, createdAt string
		if err := rows.Scan(&r.ID, &d, &r.Status, &r.CreatedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		r.Day, _ = consolidation.ParseDay(d)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		index[r.ID] = len(reports)
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	absences, err := queryAbsences(ctx, q,
		`SELECT seq, id, report_id, employee_id, day, status, reason, created_at
		 FROM absences
		 WHERE day = ? AND status = ?
		 ORDER BY seq ASC`,
		day.String(), consolidation.AbsenceRecorded)
	if err != nil {
		return nil, err
	}
	for _, a := range absences {
		if i, ok := index[a.ReportID]; ok {
			reports[i].Absences = append(reports[i].Absences, a)
		}
	}
	return reports, nil
}

func (s *Store) InsertAbsence(ctx context.Context, a consolidation.Absence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertAbsence(ctx, s.db, a)
}

func insertAbsence(ctx context.Context, q queryer, a consolidation.Absence) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO absences (id, report_id, employee_id, day, status, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ReportID, a.EmployeeID, a.Day.String(), a.Status,
		nullString(a.Reason), a.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert absence: %w", mapBusy(err))
	}
	return nil
}

func (s *Store) GetAbsence(ctx context.Context, id consolidation.AbsenceID) (*consolidation.Absence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getAbsence(ctx, s.db, id)
}

func getAbsence(ctx context.Context, q queryer, id consolidation.AbsenceID) (*consolidation.Absence, error) {
	absences, err := queryAbsences(ctx, q,
		`SELECT seq, id, report_id, employee_id, day, status, reason, created_at
		 FROM absences WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(absences) == 0 {
		return nil, nil
	}
	return &absences[0], nil
}

func (s *Store) AbsencesForDay(ctx context.Context, day consolidation.Day) ([]consolidation.Absence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryAbsences(ctx, s.db,
		`SELECT seq, id, report_id, employee_id, day, status, reason, created_at
		 FROM absences WHERE day = ? ORDER BY seq ASC`, day.String())
}

func (s *Store) RecordedAbsences(ctx context.Context, day consolidation.Day, employeeID consolidation.EmployeeID) ([]consolidation.Absence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return recordedAbsences(ctx, s.db, day, employeeID)
}

func recordedAbsences(ctx context.Context, q queryer, day consolidation.Day, employeeID consolidation.EmployeeID) ([]consolidation.Absence, error) {
	return queryAbsences(ctx, q,
		`SELECT seq, id, report_id, employee_id, day, status, reason, created_at
		 FROM absences
		 WHERE day = ? AND employee_id = ? AND status = ?
		 ORDER BY seq ASC`,
		day.String(), employeeID, consolidation.AbsenceRecorded)
}

func (s *Store) SetAbsenceStatus(ctx context.Context, id consolidation.AbsenceID, status consolidation.AbsenceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return setAbsenceStatus(ctx, s.db, id, status)
}

func setAbsenceStatus(ctx context.Context, q queryer, id consolidation.AbsenceID, status consolidation.AbsenceStatus) error {
	res, err := q.ExecContext(ctx,
		`UPDATE absences SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update absence status: %w", mapBusy(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &consolidation.NotFoundError{Kind: "absence", ID: string(id)}
	}
	return nil
}

func (s *Store) IsLocked(ctx context.Context, day consolidation.Day) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return isLocked(ctx, s.db, day)
}

func isLocked(ctx context.Context, q queryer, day consolidation.Day) (bool, error) {
	var locked bool
	err := q.QueryRowContext(ctx,
		`SELECT locked FROM day_locks WHERE day = ?`, day.String()).Scan(&locked)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read lock state: %w", err)
	}
	return locked, nil
}

func (s *Store) SetLocked(ctx context.Context, day consolidation.Day, locked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return setLocked(ctx, s.db, day, locked)
}

func setLocked(ctx context.Context, q queryer, day consolidation.Day, locked bool) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO day_locks (day, locked, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(day) DO UPDATE SET
			locked = excluded.locked,
			updated_at = excluded.updated_at`,
		day.String(), locked, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to set lock state: %w", mapBusy(err))
	}
	return nil
}

func queryAbsences(ctx context.Context, q queryer, query string, args ...any) ([]consolidation.Absence, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query absences: %w", err)
	}
	defer rows.Close()

	var absences []consolidation.Absence
	for rows.Next() {
		var a consolidation.Absence
		var day, createdAt string
		var reason sql.NullString
		if err := rows.Scan(&a.Seq, &a.ID, &a.ReportID, &a.EmployeeID, &day, &a.Status, &reason, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan absence: %w", err)
		}
		a.Day, _ = consolidation.ParseDay(day)
		a.Reason = reason.String
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		absences = append(absences, a)
	}
	return absences, rows.Err()
}

// =============================================================================
// TRANSACTIONS (consolidation.Store WithTx)
// =============================================================================

// WithTx executes fn within one SQL transaction, holding the store's write
// lock for the duration. Mutations and the lock check a workflow performs
// inside fn are therefore serialized against every other writer.
func (s *Store) WithTx(ctx context.Context, fn func(tx consolidation.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", mapBusy(err))
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapBusy(err))
	}
	return nil
}

// txStore is the transactional view handed to WithTx closures. No locking:
// the parent holds the write lock for the whole transaction.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) CreateReport(ctx context.Context, r consolidation.Report) error {
	return createReport(ctx, ts.tx, r)
}

func (ts *txStore) GetReport(ctx context.Context, id consolidation.ReportID) (*consolidation.Report, error) {
	return getReport(ctx, ts.tx, id)
}

func (ts *txStore) ReportsForDay(ctx context.Context, day consolidation.Day) ([]consolidation.Report, error) {
	return reportsForDay(ctx, ts.tx, day)
}

func (ts *txStore) InsertAbsence(ctx context.Context, a consolidation.Absence) error {
	return insertAbsence(ctx, ts.tx, a)
}

func (ts *txStore) GetAbsence(ctx context.Context, id consolidation.AbsenceID) (*consolidation.Absence, error) {
	return getAbsence(ctx, ts.tx, id)
}

func (ts *txStore) AbsencesForDay(ctx context.Context, day consolidation.Day) ([]consolidation.Absence, error) {
	return queryAbsences(ctx, ts.tx,
		`SELECT seq, id, report_id, employee_id, day, status, reason, created_at
		 FROM absences WHERE day = ? ORDER BY seq ASC`, day.String())
}

func (ts *txStore) RecordedAbsences(ctx context.Context, day consolidation.Day, employeeID consolidation.EmployeeID) ([]consolidation.Absence, error) {
	return recordedAbsences(ctx, ts.tx, day, employeeID)
}

func (ts *txStore) SetAbsenceStatus(ctx context.Context, id consolidation.AbsenceID, status consolidation.AbsenceStatus) error {
	return setAbsenceStatus(ctx, ts.tx, id, status)
}

func (ts *txStore) IsLocked(ctx context.Context, day consolidation.Day) (bool, error) {
	return isLocked(ctx, ts.tx, day)
}

func (ts *txStore) SetLocked(ctx context.Context, day consolidation.Day, locked bool) error {
	return setLocked(ctx, ts.tx, day, locked)
}

func (ts *txStore) WithTx(ctx context.Context, fn func(tx consolidation.Store) error) error {
	// Already inside a transaction; run against the same one.
	return fn(ts)
}

// =============================================================================
// OFFICER / EMPLOYEE DIRECTORY
// =============================================================================

// Officer is a stored submitting user. CanApprove marks the manager
// capability; how it is granted is outside this core.
type Officer struct {
	ID         string
	Name       string
	Department string
	CanApprove bool
	CreatedAt  time.Time
}

// Employee is a stored roster entry.
type Employee struct {
	ID         string
	Name       string
	Department string
	Active     bool
	CreatedAt  time.Time
}

// SaveOfficer inserts or updates an officer.
func (s *Store) SaveOfficer(ctx context.Context, o Officer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO officers (id, name, department, can_approve, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			department = excluded.department,
			can_approve = excluded.can_approve`,
		o.ID, o.Name, nullString(o.Department), o.CanApprove,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ListOfficers returns all officers ordered by name.
func (s *Store) ListOfficers(ctx context.Context) ([]Officer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, department, can_approve, created_at FROM officers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var officers []Officer
	for rows.Next() {
		var o Officer
		var dept sql.NullString
		var createdAt string
		if err := rows.Scan(&o.ID, &o.Name, &dept, &o.CanApprove, &createdAt); err != nil {
			return nil, err
		}
		o.Department = dept.String
		o.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		officers = append(officers, o)
	}
	return officers, rows.Err()
}

// SaveEmployee inserts or updates an employee.
func (s *Store) SaveEmployee(ctx context.Context, e Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO employees (id, name, department, active, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			department = excluded.department,
			active = excluded.active`,
		e.ID, e.Name, e.Department, e.Active,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, department, active, created_at FROM employees ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Name, &e.Department, &e.Active, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// =============================================================================
// DIRECTORY INTERFACE (consolidation.Directory)
// =============================================================================

func (s *Store) OfficerName(ctx context.Context, id consolidation.OfficerID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM officers WHERE id = ?`, id).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return name, err
}

func (s *Store) EmployeeName(ctx context.Context, id consolidation.EmployeeID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM employees WHERE id = ?`, id).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return name, err
}

func (s *Store) EmployeeDepartment(ctx context.Context, id consolidation.EmployeeID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var dept string
	err := s.db.QueryRowContext(ctx,
		`SELECT department FROM employees WHERE id = ?`, id).Scan(&dept)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return dept, err
}

func (s *Store) ActiveHeadcount(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM employees WHERE active = 1`).Scan(&count)
	return count, err
}

// =============================================================================
// AUTHORIZER INTERFACE (consolidation.Authorizer)
// =============================================================================

func (s *Store) HasApprovalCapability(ctx context.Context, actorID consolidation.OfficerID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var can bool
	err := s.db.QueryRowContext(ctx,
		`SELECT can_approve FROM officers WHERE id = ?`, actorID).Scan(&can)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return can, err
}

// =============================================================================
// AUDIT SINK (consolidation.AuditSink)
// =============================================================================

func (s *Store) Record(ctx context.Context, ev consolidation.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_events (id, action, entity, entity_id, actor_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.Action, ev.Entity, ev.EntityID,
		nullString(string(ev.ActorID)), ev.At.UTC().Format(time.RFC3339),
	)
	return err
}

// AuditEvents returns the most recent events, newest first.
func (s *Store) AuditEvents(ctx context.Context, limit int) ([]consolidation.AuditEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, action, entity, entity_id, actor_id, created_at
		 FROM audit_events ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []consolidation.AuditEvent
	for rows.Next() {
		var ev consolidation.AuditEvent
		var actor sql.NullString
		var createdAt string
		if err := rows.Scan(&ev.ID, &ev.Action, &ev.Entity, &ev.EntityID, &actor, &createdAt); err != nil {
			return nil, err
		}
		ev.ActorID = consolidation.OfficerID(actor.String)
		ev.At, _ = time.Parse(time.RFC3339, createdAt)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"absences", "reports", "day_locks", "audit_events", "officers", "employees"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// mapBusy converts SQLITE_BUSY into the workflow's retryable conflict error.
func mapBusy(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked") {
		return fmt.Errorf("%w: %v", consolidation.ErrConflict, err)
	}
	return err
}
