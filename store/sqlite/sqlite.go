/*
Package sqlite provides a SQLite-backed snapshot store for the work-time engine.

PURPOSE:
  Holds the inputs the engine computes over: users with their work
  schedules, time entries, absence requests and company-defined holidays.
  Derived values (buckets, balances, anomalies) are never stored; every
  read endpoint recomputes them from these tables.

INTERFACES IMPLEMENTED:
  generic.HolidayCalendar: Custom holidays, merged with the statutory
                           calendar by the API

KEY TABLES:
  users:            People and their schedule JSON
  time_entries:     Tracked intervals (end_time NULL while running)
  absence_requests: Vacation, sick leave and other absences
  holidays:         Company holidays, optionally per region and recurring

DATA QUALITY:
  A row with an unparsable date is skipped and logged at warn level. One
  bad record never fails a whole load.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety and a single connection, so an
  in-memory database is shared by every caller.

USAGE:
  store, err := sqlite.New("./data/worktime.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - factory/schedule.go: Schedule JSON format
  - calendar/calendar.go: Composite calendar over statutory + store
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/warp/worktime-engine/factory"
	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/timeoff"
)

const dateLayout = "2006-01-02"

// Store implements snapshot persistence using SQLite.
type Store struct {
	db        *sql.DB
	mu        sync.RWMutex
	log       logrus.FieldLogger
	schedules *factory.ScheduleFactory
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for skipped rows.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, log: logrus.StandardLogger(), schedules: factory.NewScheduleFactory()}
	for _, opt := range opts {
		opt(store)
	}
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

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		schedule_json TEXT,
		employment_start TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS time_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		start_time TEXT NOT NULL,
		end_time TEXT,
		duration INTEGER NOT NULL DEFAULT 0,
		task_id TEXT,
		task_title TEXT,
		list_title TEXT,
		project_id TEXT,
		project_name TEXT,
		note TEXT,
		billable INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_time_entries_user_start
		ON time_entries(user_id, start_time);

	CREATE TABLE IF NOT EXISTS absence_requests (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		half_day TEXT,
		reason TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_absence_requests_user
		ON absence_requests(user_id, start_date);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		regions TEXT NOT NULL DEFAULT '',
		recurring INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		UNIQUE(date, name, regions)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Reset deletes all rows. Used by tests and the demo seed.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"time_entries", "absence_requests", "holidays", "users"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// USERS
// =============================================================================

// SaveUser inserts or updates a user. An empty ID is assigned.
func (s *Store) SaveUser(ctx context.Context, u timeoff.User) (timeoff.User, error) {
	if u.ID == "" {
		u.ID = generic.EntityID(uuid.NewString())
	}
	if u.Status == "" {
		u.Status = timeoff.UserActive
	}

	var scheduleJSON sql.NullString
	if u.WorkSchedule != nil {
		js, err := s.schedules.Marshal(*u.WorkSchedule)
		if err != nil {
			return u, fmt.Errorf("encode schedule: %w", err)
		}
		scheduleJSON = sql.NullString{String: js, Valid: true}
	}
	var employmentStart sql.NullString
	if u.EmploymentStartDate != nil {
		employmentStart = sql.NullString{String: u.EmploymentStartDate.String(), Valid: true}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO users (id, name, email, status, schedule_json, employment_start, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			status = excluded.status,
			schedule_json = excluded.schedule_json,
			employment_start = excluded.employment_start
	`
	_, err := s.db.ExecContext(ctx, query,
		string(u.ID), u.Name, u.Email, string(u.Status), scheduleJSON, employmentStart,
		time.Now().UTC().Format(time.RFC3339),
	)
	return u, err
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id generic.EntityID) (*timeoff.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, status, schedule_json, employment_start FROM users WHERE id = ?", string(id))
	u, err := s.scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", generic.ErrUserNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns all users ordered by name.
func (s *Store) ListUsers(ctx context.Context) ([]timeoff.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, status, schedule_json, employment_start FROM users ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []timeoff.User
	for rows.Next() {
		u, err := s.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// DeleteUser removes a user with all entries and absences.
func (s *Store) DeleteUser(ctx context.Context, id generic.EntityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", string(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrUserNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanUser(row scanner) (timeoff.User, error) {
	var u timeoff.User
	var id, status string
	var email, scheduleJSON, employmentStart sql.NullString
	if err := row.Scan(&id, &u.Name, &email, &status, &scheduleJSON, &employmentStart); err != nil {
		return u, err
	}
	u.ID = generic.EntityID(id)
	u.Email = email.String
	u.Status = timeoff.UserStatus(status)

	if scheduleJSON.Valid && scheduleJSON.String != "" {
		schedule, err := s.schedules.ParseSchedule(scheduleJSON.String)
		if err != nil {
			s.log.WithFields(logrus.Fields{"user_id": id, "error": err}).Warn("invalid work schedule, using default")
		} else {
			u.WorkSchedule = schedule
		}
	}
	if employmentStart.Valid && employmentStart.String != "" {
		d, err := generic.ParseDate(employmentStart.String)
		if err != nil {
			s.log.WithFields(logrus.Fields{"user_id": id, "error": err}).Warn("invalid employment start, ignoring")
		} else {
			u.EmploymentStartDate = &d
		}
	}
	return u, nil
}

// =============================================================================
// TIME ENTRIES
// =============================================================================

// SaveEntries upserts entries in one transaction. Empty IDs are assigned.
func (s *Store) SaveEntries(ctx context.Context, entries []timeoff.TimeEntry) ([]timeoff.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO time_entries (id, user_id, start_time, end_time, duration,
			task_id, task_title, list_title, project_id, project_name, note, billable)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			duration = excluded.duration,
			task_id = excluded.task_id,
			task_title = excluded.task_title,
			list_title = excluded.list_title,
			project_id = excluded.project_id,
			project_name = excluded.project_name,
			note = excluded.note,
			billable = excluded.billable
	`
	out := make([]timeoff.TimeEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		var end sql.NullString
		if e.End != nil {
			end = sql.NullString{String: e.End.UTC().Format(time.RFC3339Nano), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, query,
			e.ID, string(e.UserID), e.Start.UTC().Format(time.RFC3339Nano), end, e.Duration,
			nullString(e.TaskID), nullString(e.TaskTitle), nullString(e.ListTitle),
			nullString(e.ProjectID), nullString(e.ProjectName), nullString(e.Note), e.Billable,
		); err != nil {
			return nil, fmt.Errorf("save entry %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEntries returns the entries of userID ("" = all users) ordered by start.
func (s *Store) ListEntries(ctx context.Context, userID generic.EntityID) ([]timeoff.TimeEntry, error) {
	query := `SELECT id, user_id, start_time, end_time, duration, task_id, task_title,
		list_title, project_id, project_name, note, billable FROM time_entries`
	var args []any
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, string(userID))
	}
	query += " ORDER BY start_time"
	return s.queryEntries(ctx, query, args...)
}

// EntriesBetween returns entries of all users starting in [from, to).
func (s *Store) EntriesBetween(ctx context.Context, from, to time.Time) ([]timeoff.TimeEntry, error) {
	// RFC3339Nano UTC strings do not sort lexically, so the range is applied after parsing.
	all, err := s.ListEntries(ctx, "")
	if err != nil {
		return nil, err
	}
	var out []timeoff.TimeEntry
	for _, e := range all {
		if !e.Start.Before(from) && e.Start.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

// DeleteEntry removes one entry of userID.
func (s *Store) DeleteEntry(ctx context.Context, userID generic.EntityID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM time_entries WHERE id = ? AND user_id = ?", id, string(userID))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrEntryNotFound, id)
	}
	return nil
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]timeoff.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []timeoff.TimeEntry
	for rows.Next() {
		var e timeoff.TimeEntry
		var userID, start string
		var end, taskID, taskTitle, listTitle, projectID, projectName, note sql.NullString
		if err := rows.Scan(&e.ID, &userID, &start, &end, &e.Duration, &taskID, &taskTitle,
			&listTitle, &projectID, &projectName, &note, &e.Billable); err != nil {
			return nil, err
		}
		e.UserID = generic.EntityID(userID)
		e.TaskID, e.TaskTitle, e.ListTitle = taskID.String, taskTitle.String, listTitle.String
		e.ProjectID, e.ProjectName, e.Note = projectID.String, projectName.String, note.String

		e.Start, err = time.Parse(time.RFC3339Nano, start)
		if err != nil {
			s.skipped("time_entries", e.ID, err)
			continue
		}
		if end.Valid {
			t, err := time.Parse(time.RFC3339Nano, end.String)
			if err != nil {
				s.skipped("time_entries", e.ID, err)
				continue
			}
			e.End = &t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// ABSENCE REQUESTS
// =============================================================================

// SaveAbsence inserts or updates an absence request. An empty ID is assigned.
func (s *Store) SaveAbsence(ctx context.Context, a timeoff.AbsenceRequest) (timeoff.AbsenceRequest, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO absence_requests (id, user_id, type, status, start_date, end_date, half_day, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			status = excluded.status,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			half_day = excluded.half_day,
			reason = excluded.reason
	`
	_, err := s.db.ExecContext(ctx, query,
		a.ID, string(a.UserID), string(a.Type), string(a.Status),
		a.StartDate.String(), a.EndDate.String(), nullString(string(a.HalfDay)), nullString(a.Reason),
	)
	return a, err
}

// ListAbsences returns the requests of userID ("" = all users) ordered by start date.
func (s *Store) ListAbsences(ctx context.Context, userID generic.EntityID) ([]timeoff.AbsenceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, user_id, type, status, start_date, end_date, half_day, reason FROM absence_requests"
	var args []any
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, string(userID))
	}
	query += " ORDER BY start_date, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timeoff.AbsenceRequest
	for rows.Next() {
		var a timeoff.AbsenceRequest
		var user, typ, status, start, end string
		var halfDay, reason sql.NullString
		if err := rows.Scan(&a.ID, &user, &typ, &status, &start, &end, &halfDay, &reason); err != nil {
			return nil, err
		}
		a.UserID = generic.EntityID(user)
		a.Type = timeoff.AbsenceType(typ)
		a.Status = timeoff.AbsenceStatus(status)
		a.HalfDay = timeoff.HalfDay(halfDay.String)
		a.Reason = reason.String

		if a.StartDate, err = generic.ParseDate(start); err != nil {
			s.skipped("absence_requests", a.ID, err)
			continue
		}
		if a.EndDate, err = generic.ParseDate(end); err != nil {
			s.skipped("absence_requests", a.ID, err)
			continue
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteAbsence removes one request of userID.
func (s *Store) DeleteAbsence(ctx context.Context, userID generic.EntityID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM absence_requests WHERE id = ? AND user_id = ?", id, string(userID))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrAbsenceNotFound, id)
	}
	return nil
}

// =============================================================================
// HOLIDAY CALENDAR IMPLEMENTATION
// =============================================================================

// SaveHoliday saves a custom holiday. An empty ID is assigned. Saving the same
// date, name and regions again updates the stored row and returns its ID.
func (s *Store) SaveHoliday(ctx context.Context, h generic.Holiday) (generic.Holiday, error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO holidays (id, date, name, regions, recurring, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(date, name, regions) DO UPDATE SET
			recurring = excluded.recurring
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		h.ID, h.Date.String(), h.Name, joinRegions(h.Regions), h.Recurring,
		time.Now().UTC().Format(time.RFC3339),
	).Scan(&h.ID)
	return h, err
}

// DeleteHoliday deletes a holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrHolidayNotFound, id)
	}
	return nil
}

// ListHolidays returns every stored holiday (for admin UI).
func (s *Store) ListHolidays(ctx context.Context) ([]generic.Holiday, error) {
	return s.queryHolidays(ctx, "SELECT id, date, name, regions, recurring FROM holidays ORDER BY date, name")
}

// GetHolidays returns the custom holidays observed in region during year.
// Recurring holidays are moved into year.
func (s *Store) GetHolidays(region generic.Region, year int) []generic.Holiday {
	all, err := s.queryHolidays(context.Background(), `
		SELECT id, date, name, regions, recurring FROM holidays
		WHERE recurring = 1 OR strftime('%Y', date) = ?
		ORDER BY date, name`, fmt.Sprintf("%04d", year))
	if err != nil {
		s.log.WithError(err).Warn("load custom holidays")
		return nil
	}

	var out []generic.Holiday
	for _, h := range all {
		if !h.AppliesTo(region) {
			continue
		}
		if h.Recurring {
			h.Date = generic.NewTimePoint(year, h.Date.Month(), h.Date.Day())
			if h.Date.Year() != year {
				continue // Feb 29 in a common year
			}
		}
		out = append(out, h)
	}
	generic.SortHolidays(out)
	return out
}

// IsHoliday checks if a date is a custom holiday in region.
func (s *Store) IsHoliday(region generic.Region, date generic.TimePoint) bool {
	for _, h := range s.GetHolidays(region, date.Year()) {
		if h.Date.Equal(date) {
			return true
		}
	}
	return false
}

var _ generic.HolidayCalendar = (*Store)(nil)

func (s *Store) queryHolidays(ctx context.Context, query string, args ...any) ([]generic.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []generic.Holiday
	for rows.Next() {
		var h generic.Holiday
		var dateStr, regions string
		if err := rows.Scan(&h.ID, &dateStr, &h.Name, &regions, &h.Recurring); err != nil {
			return nil, err
		}
		if h.Date, err = generic.ParseDate(dateStr); err != nil {
			s.skipped("holidays", h.ID, err)
			continue
		}
		h.Regions = splitRegions(regions)
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) skipped(table, id string, err error) {
	s.log.WithFields(logrus.Fields{"table": table, "id": id, "error": err}).Warn("skipping unparsable row")
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func joinRegions(rs []generic.Region) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

func splitRegions(s string) []generic.Region {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]generic.Region, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, generic.Region(p))
		}
	}
	return out
}
