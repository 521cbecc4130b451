/*
handlers.go - HTTP API handlers for the work-time engine

PURPOSE:
  Exposes the accounting engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the pure engine packages. Every read
  endpoint loads a fresh snapshot from the store and recomputes; nothing
  derived is persisted.

ENDPOINTS:
  Users:
    GET    /api/users                          List all users
    POST   /api/users                          Create or update user
    GET    /api/users/{id}                     Get user details
    DELETE /api/users/{id}                     Delete user with entries and absences
    POST   /api/users/{id}/entries             Store time entries
    DELETE /api/users/{id}/entries/{entryID}
    POST   /api/users/{id}/absences            Store absence requests
    DELETE /api/users/{id}/absences/{absenceID}

  Statistics:
    GET    /api/users/{id}/statistics/year     ?year=
    GET    /api/users/{id}/statistics/month    ?year=&month=
    GET    /api/users/{id}/statistics/week     ?start=YYYY-MM-DD

  Accounts:
    GET    /api/users/{id}/balance             ?year=
    GET    /api/users/{id}/anomalies           ?from=&to=
    GET    /api/anomalies                      ?from=&to= (all active users)

  Holidays:
    GET    /api/holidays                       ?year=&region=
    GET    /api/holidays/custom                Stored company holidays
    POST   /api/holidays                       Company holiday
    DELETE /api/holidays/{id}
    GET    /api/regions                        State codes and names

  All read endpoints accept region= and fall back to the configured default.
  Anomaly ranges end today at the latest and span at most 366 days.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Unparsable dates, schedules, entries, regions or ranges
  - 404: Unknown user, entry, absence or holiday
  - 500: Store failures

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/warp/worktime-engine/calendar"
	"github.com/warp/worktime-engine/config"
	"github.com/warp/worktime-engine/factory"
	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/store/sqlite"
	"github.com/warp/worktime-engine/timeoff"
	"github.com/warp/worktime-engine/tracking"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Schedules *factory.ScheduleFactory
	Holidays  *calendar.Cached

	Aggregator *tracking.Aggregator
	Detector   *tracking.Detector
	Balances   *timeoff.BalanceEngine

	DefaultRegion generic.Region
	LookbackDays  int
	Location      *time.Location
	Log           logrus.FieldLogger
	Now           func() time.Time

	// Optional; reported on /api/health
	Scanner *AnomalyScanner

	// Track currently loaded scenario
	scenarioMu      sync.RWMutex
	currentScenario string
}

// maxRangeDays bounds an anomaly scan request.
const maxRangeDays = 366

// NewHandler wires the engine over store using cfg.
func NewHandler(store *sqlite.Store, cfg *config.Config, logger logrus.FieldLogger) *Handler {
	holidays := calendar.NewCached(calendar.Composite{calendar.Statutory{}, store}, cfg.Cache.HolidayTTL)
	loc := cfg.Engine.Location

	return &Handler{
		Store:      store,
		Schedules:  factory.NewScheduleFactory(),
		Holidays:   holidays,
		Aggregator: tracking.NewAggregator(holidays, loc),
		Detector: &tracking.Detector{
			Holidays:   holidays,
			Classifier: tracking.KeywordClassifier(cfg.Engine.ShootKeywords...),
			Thresholds: cfg.Engine.Detection,
			Location:   loc,
		},
		Balances:      &timeoff.BalanceEngine{Location: loc},
		DefaultRegion: cfg.DefaultRegion(),
		LookbackDays:  cfg.Scanner.LookbackDays,
		Location:      loc,
		Log:           logger,
		Now:           time.Now,
	}
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// ListUsers returns all users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		h.fail(w, "Failed to list users", err)
		return
	}

	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u, h.Schedules)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetUser returns a single user.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(*user, h.Schedules))
}

// CreateUser creates or updates a user.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	status, err := timeoff.ParseUserStatus(req.Status)
	if err != nil {
		h.fail(w, "Invalid status", err)
		return
	}
	user := timeoff.User{ID: generic.EntityID(req.ID), Name: req.Name, Email: req.Email, Status: status}

	if req.WorkSchedule != nil {
		schedule, err := h.Schedules.FromJSON(*req.WorkSchedule)
		if err != nil {
			h.fail(w, "Invalid work_schedule", err)
			return
		}
		user.WorkSchedule = schedule
	}
	if req.EmploymentStartDate != "" {
		start, err := generic.ParseDate(req.EmploymentStartDate)
		if err != nil {
			h.fail(w, "Invalid employment_start_date (use YYYY-MM-DD)", err)
			return
		}
		user.EmploymentStartDate = &start
	}

	saved, err := h.Store.SaveUser(r.Context(), user)
	if err != nil {
		h.fail(w, "Failed to save user", err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(saved, h.Schedules))
}

// DeleteUser removes a user together with their entries and absences.
// DELETE /api/users/{id}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteUser(r.Context(), generic.EntityID(chi.URLParam(r, "id"))); err != nil {
		h.fail(w, "Failed to delete user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// SNAPSHOT INPUT HANDLERS
// =============================================================================

// SaveEntries stores time entries for a user.
// POST /api/users/{id}/entries
func (h *Handler) SaveEntries(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}

	var req []TimeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body (expected an array)", err)
		return
	}

	entries := make([]timeoff.TimeEntry, 0, len(req))
	for i, e := range req {
		if e.Start.IsZero() {
			h.fail(w, "Invalid entry", &generic.ParseError{Field: fmt.Sprintf("entries[%d].start", i), Err: generic.ErrInvalidEntry})
			return
		}
		entries = append(entries, toTimeEntry(user.ID, e))
	}

	saved, err := h.Store.SaveEntries(r.Context(), entries)
	if err != nil {
		h.fail(w, "Failed to save entries", err)
		return
	}
	ids := make([]string, len(saved))
	for i, e := range saved {
		ids[i] = e.ID
	}
	writeJSON(w, http.StatusCreated, SavedResponse{Saved: len(saved), IDs: ids})
}

// DeleteEntry removes one time entry of the user.
// DELETE /api/users/{id}/entries/{entryID}
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID := generic.EntityID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteEntry(r.Context(), userID, chi.URLParam(r, "entryID")); err != nil {
		h.fail(w, "Failed to delete entry", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// toTimeEntry derives the duration from start and end when not given.
// An end before start yields a zero duration.
func toTimeEntry(userID generic.EntityID, e TimeEntryRequest) timeoff.TimeEntry {
	entry := timeoff.TimeEntry{
		ID:          e.ID,
		UserID:      userID,
		Start:       e.Start,
		End:         e.End,
		TaskID:      e.TaskID,
		TaskTitle:   e.TaskTitle,
		ListTitle:   e.ListTitle,
		ProjectID:   e.ProjectID,
		ProjectName: e.ProjectName,
		Note:        e.Note,
		Billable:    e.Billable,
	}
	switch {
	case e.Duration != nil:
		entry.Duration = max(*e.Duration, 0)
	case e.End != nil:
		entry.Duration = max(int64(e.End.Sub(e.Start).Seconds()), 0)
	}
	return entry
}

// SaveAbsences stores absence requests for a user.
// POST /api/users/{id}/absences
func (h *Handler) SaveAbsences(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}

	var req []AbsenceRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body (expected an array)", err)
		return
	}

	absences := make([]timeoff.AbsenceRequest, 0, len(req))
	for _, dto := range req {
		a, err := parseAbsence(user.ID, dto)
		if err != nil {
			h.fail(w, "Invalid absence", err)
			return
		}
		absences = append(absences, a)
	}

	ids := make([]string, 0, len(absences))
	for _, a := range absences {
		saved, err := h.Store.SaveAbsence(r.Context(), a)
		if err != nil {
			h.fail(w, "Failed to save absence", err)
			return
		}
		ids = append(ids, saved.ID)
	}
	writeJSON(w, http.StatusCreated, SavedResponse{Saved: len(ids), IDs: ids})
}

// DeleteAbsence removes one absence request of the user.
// DELETE /api/users/{id}/absences/{absenceID}
func (h *Handler) DeleteAbsence(w http.ResponseWriter, r *http.Request) {
	userID := generic.EntityID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteAbsence(r.Context(), userID, chi.URLParam(r, "absenceID")); err != nil {
		h.fail(w, "Failed to delete absence", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

func parseAbsence(userID generic.EntityID, dto AbsenceRequestDTO) (timeoff.AbsenceRequest, error) {
	a := timeoff.AbsenceRequest{ID: dto.ID, UserID: userID, Reason: dto.Reason}
	var err error
	if a.Type, err = timeoff.ParseAbsenceType(dto.Type); err != nil {
		return a, err
	}
	if a.Status, err = timeoff.ParseAbsenceStatus(dto.Status); err != nil {
		return a, err
	}
	if a.HalfDay, err = timeoff.ParseHalfDay(dto.HalfDay); err != nil {
		return a, err
	}
	if a.StartDate, err = generic.ParseDate(dto.StartDate); err != nil {
		return a, err
	}
	a.EndDate = a.StartDate
	if dto.EndDate != "" {
		if a.EndDate, err = generic.ParseDate(dto.EndDate); err != nil {
			return a, err
		}
	}
	return a, nil
}

// =============================================================================
// STATISTICS HANDLERS
// =============================================================================

// YearStatistics returns twelve monthly buckets.
// GET /api/users/{id}/statistics/year?year=2025
func (h *Handler) YearStatistics(w http.ResponseWriter, r *http.Request) {
	year, err := h.yearParam(r)
	if err != nil {
		h.fail(w, "Invalid year", err)
		return
	}
	h.statistics(w, r, generic.YearPeriod(year), func(s snapshot, region generic.Region) []tracking.Bucket {
		return h.Aggregator.ByYear(s.entries, s.absences, s.user, year, region)
	})
}

// MonthStatistics returns 7-day chunks of a month.
// GET /api/users/{id}/statistics/month?year=2025&month=3
func (h *Handler) MonthStatistics(w http.ResponseWriter, r *http.Request) {
	year, err := h.yearParam(r)
	if err != nil {
		h.fail(w, "Invalid year", err)
		return
	}
	month := h.today().Month()
	if m := r.URL.Query().Get("month"); m != "" {
		n, err := strconv.Atoi(m)
		if err != nil || n < 1 || n > 12 {
			h.fail(w, "Invalid month", &generic.ParseError{Field: "month", Value: m, Err: generic.ErrInvalidDate})
			return
		}
		month = time.Month(n)
	}
	h.statistics(w, r, generic.MonthPeriod(year, month), func(s snapshot, region generic.Region) []tracking.Bucket {
		return h.Aggregator.ByMonth(s.entries, s.absences, s.user, year, month, region)
	})
}

// WeekStatistics returns seven daily buckets, Monday first.
// GET /api/users/{id}/statistics/week?start=2025-03-03
func (h *Handler) WeekStatistics(w http.ResponseWriter, r *http.Request) {
	start := h.today()
	if s := r.URL.Query().Get("start"); s != "" {
		d, err := generic.ParseDate(s)
		if err != nil {
			h.fail(w, "Invalid start (use YYYY-MM-DD)", err)
			return
		}
		start = d
	}
	h.statistics(w, r, generic.WeekPeriod(start), func(s snapshot, region generic.Region) []tracking.Bucket {
		return h.Aggregator.ByWeek(s.entries, s.absences, s.user, start, region)
	})
}

func (h *Handler) statistics(w http.ResponseWriter, r *http.Request, period generic.Period,
	aggregate func(snapshot, generic.Region) []tracking.Bucket) {
	region, err := h.region(r)
	if err != nil {
		h.fail(w, "Invalid region", err)
		return
	}
	snap, ok := h.loadSnapshot(w, r)
	if !ok {
		return
	}
	buckets := aggregate(snap, region)

	dtos := toBucketDTOs(buckets)
	names := h.holidayNames(period, region)
	for i, b := range buckets {
		if b.Period.Len() == 1 {
			dtos[i].Holiday = names[b.Period.Start]
		}
	}

	writeJSON(w, http.StatusOK, StatisticsDTO{
		UserID:                string(snap.user.ID),
		Range:                 tracking.FormatRange(period),
		Region:                string(region),
		Buckets:               dtos,
		TotalHours:            tracking.TotalHours(buckets),
		TotalTarget:           tracking.TotalTarget(buckets),
		Average:               tracking.Average(buckets),
		AverageWorkDays:       tracking.AverageForWorkDays(buckets, snap.user),
		AverageTargetWorkDays: tracking.AverageTargetForWorkDays(buckets, snap.user),
	})
}

// =============================================================================
// BALANCE AND ANOMALY HANDLERS
// =============================================================================

// GetBalance returns the vacation and overtime balance.
// GET /api/users/{id}/balance?year=2025
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	year, err := h.yearParam(r)
	if err != nil {
		h.fail(w, "Invalid year", err)
		return
	}
	snap, ok := h.loadSnapshot(w, r)
	if !ok {
		return
	}

	balance := h.Balances.Calculate(snap.user, snap.absences, snap.entries, year)
	writeJSON(w, http.StatusOK, toBalanceDTO(balance))
}

// UserAnomalies scans one user.
// GET /api/users/{id}/anomalies?from=2025-03-01&to=2025-03-31
func (h *Handler) UserAnomalies(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodParam(r)
	if err != nil {
		h.fail(w, "Invalid range", err)
		return
	}
	region, err := h.region(r)
	if err != nil {
		h.fail(w, "Invalid region", err)
		return
	}
	snap, ok := h.loadSnapshot(w, r)
	if !ok {
		return
	}

	anomalies := h.detector().Detect(snap.user, snap.entries, snap.absences, period, region)
	writeJSON(w, http.StatusOK, toAnomalyReport(anomalies, period))
}

// AllAnomalies scans every active user.
// GET /api/anomalies?from=2025-03-01&to=2025-03-31
func (h *Handler) AllAnomalies(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodParam(r)
	if err != nil {
		h.fail(w, "Invalid range", err)
		return
	}
	region, err := h.region(r)
	if err != nil {
		h.fail(w, "Invalid region", err)
		return
	}

	anomalies, _, err := h.scanAll(r.Context(), period, region)
	if err != nil {
		h.fail(w, "Failed to scan", err)
		return
	}
	writeJSON(w, http.StatusOK, toAnomalyReport(anomalies, period))
}

// =============================================================================
// HOLIDAY ENDPOINTS
// =============================================================================

// ListHolidays returns statutory and company holidays of a region and year.
// GET /api/holidays?year=2025&region=BY
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := h.yearParam(r)
	if err != nil {
		h.fail(w, "Invalid year", err)
		return
	}
	region, err := h.region(r)
	if err != nil {
		h.fail(w, "Invalid region", err)
		return
	}

	holidays := h.Holidays.GetHolidays(region, year)
	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, toHolidayDTO(hol))
	}
	writeJSON(w, http.StatusOK, map[string]any{"holidays": dtos})
}

// ListCustomHolidays returns every stored company holiday.
// GET /api/holidays/custom
func (h *Handler) ListCustomHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Store.ListHolidays(r.Context())
	if err != nil {
		h.fail(w, "Failed to list holidays", err)
		return
	}
	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, toHolidayDTO(hol))
	}
	writeJSON(w, http.StatusOK, map[string]any{"holidays": dtos})
}

// ListRegions returns the state codes accepted by region=.
// GET /api/regions
func (h *Handler) ListRegions(w http.ResponseWriter, r *http.Request) {
	states := calendar.States()
	dtos := make([]RegionDTO, len(states))
	for i, s := range states {
		dtos[i] = RegionDTO{Code: string(s), Name: calendar.StateNames[s]}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday creates a company holiday.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Date == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Date and name are required", nil)
		return
	}

	date, err := generic.ParseDate(req.Date)
	if err != nil {
		h.fail(w, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	holiday := generic.Holiday{Date: date, Name: req.Name, Recurring: req.Recurring}
	for _, raw := range req.Regions {
		region, err := parseRegion(raw)
		if err != nil {
			h.fail(w, "Invalid region", err)
			return
		}
		holiday.Regions = append(holiday.Regions, region)
	}

	saved, err := h.Store.SaveHoliday(r.Context(), holiday)
	if err != nil {
		h.fail(w, "Failed to create holiday", err)
		return
	}
	h.Holidays.Invalidate()

	writeJSON(w, http.StatusCreated, toHolidayDTO(saved))
}

// DeleteHoliday deletes a company holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "Failed to delete holiday", err)
		return
	}
	h.Holidays.Invalidate()

	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// Health reports whether the store answers and the last background scan.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	resp := HealthDTO{Status: "ok"}
	if h.Scanner != nil {
		resp.ScannerRunning = h.Scanner.Running()
		resp.LastScan = toScanDTO(h.Scanner.Last())
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// HELPERS
// =============================================================================

type snapshot struct {
	user     timeoff.User
	entries  []timeoff.TimeEntry
	absences []timeoff.AbsenceRequest
}

func (h *Handler) loadUser(w http.ResponseWriter, r *http.Request) (*timeoff.User, bool) {
	user, err := h.Store.GetUser(r.Context(), generic.EntityID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, "Failed to get user", err)
		return nil, false
	}
	return user, true
}

func (h *Handler) loadSnapshot(w http.ResponseWriter, r *http.Request) (snapshot, bool) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return snapshot{}, false
	}
	entries, err := h.Store.ListEntries(r.Context(), user.ID)
	if err != nil {
		h.fail(w, "Failed to load entries", err)
		return snapshot{}, false
	}
	absences, err := h.Store.ListAbsences(r.Context(), user.ID)
	if err != nil {
		h.fail(w, "Failed to load absences", err)
		return snapshot{}, false
	}
	return snapshot{user: *user, entries: entries, absences: absences}, true
}

// scanAll loads every user, the entries starting inside period and all
// absences, then runs the detector.
func (h *Handler) scanAll(ctx context.Context, period generic.Period, region generic.Region) ([]tracking.Anomaly, int, error) {
	users, err := h.Store.ListUsers(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	from, to := period.Instants(h.Location)
	entries, err := h.Store.EntriesBetween(ctx, from, to)
	if err != nil {
		return nil, 0, fmt.Errorf("load entries: %w", err)
	}
	absences, err := h.Store.ListAbsences(ctx, "")
	if err != nil {
		return nil, 0, fmt.Errorf("load absences: %w", err)
	}
	return h.detector().DetectAll(users, entries, absences, period, region), len(users), nil
}

// holidayNames maps each holiday date of period to its joined names.
func (h *Handler) holidayNames(period generic.Period, region generic.Region) map[generic.TimePoint]string {
	out := make(map[generic.TimePoint]string)
	for _, year := range period.Years() {
		for day, name := range calendar.Names(h.Holidays, region, year) {
			out[day] = name
		}
	}
	return out
}

func (h *Handler) detector() *tracking.Detector {
	d := *h.Detector
	d.Now = h.Now
	return &d
}

func (h *Handler) today() generic.TimePoint {
	return generic.Today(h.Now(), h.Location)
}

// region reads region=, falling back to the configured default.
func (h *Handler) region(r *http.Request) (generic.Region, error) {
	raw := r.URL.Query().Get("region")
	if strings.TrimSpace(raw) == "" {
		return h.DefaultRegion, nil
	}
	return parseRegion(raw)
}

func parseRegion(raw string) (generic.Region, error) {
	region := generic.Region(strings.ToUpper(strings.TrimSpace(raw)))
	if !calendar.IsKnownState(region) {
		return "", &generic.ParseError{Field: "region", Value: raw, Err: generic.ErrInvalidRegion}
	}
	return region, nil
}

func (h *Handler) yearParam(r *http.Request) (int, error) {
	s := r.URL.Query().Get("year")
	if s == "" {
		return h.today().Year(), nil
	}
	year, err := strconv.Atoi(s)
	if err != nil || year < 1900 || year > 9999 {
		return 0, &generic.ParseError{Field: "year", Value: s, Err: generic.ErrInvalidDate}
	}
	return year, nil
}

// periodParam defaults to the configured lookback window ending today. The
// end is clamped to today; longer than maxRangeDays is rejected.
func (h *Handler) periodParam(r *http.Request) (generic.Period, error) {
	today := h.today()
	period := generic.Period{Start: today.AddDays(-h.LookbackDays), End: today}

	if s := r.URL.Query().Get("from"); s != "" {
		d, err := generic.ParseDate(s)
		if err != nil {
			return period, err
		}
		period.Start = d
	}
	if s := r.URL.Query().Get("to"); s != "" {
		d, err := generic.ParseDate(s)
		if err != nil {
			return period, err
		}
		period.End = d
	}
	if period.End.Before(period.Start) {
		return period, fmt.Errorf("%w: %s", generic.ErrInvalidPeriod, period)
	}
	if period.End.After(today) {
		period.End = today
	}
	if n := generic.DaysBetween(period.Start, period.End) + 1; n > maxRangeDays {
		return period, fmt.Errorf("%w: %d days, at most %d", generic.ErrInvalidPeriod, n, maxRangeDays)
	}
	return period, nil
}

// fail maps err to a status code; store failures are logged.
func (h *Handler) fail(w http.ResponseWriter, message string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Log.WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
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
