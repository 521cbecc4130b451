/*
handlers_test.go - HTTP tests for the API handlers

Tests for:
- User creation and lookup (404, 400 on bad schedules)
- Snapshot input endpoints feeding statistics, balance and anomalies
- Holiday CRUD with cache invalidation
- Rate limiting
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/worktime-engine/config"
	"github.com/warp/worktime-engine/factory"
	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// fixedNow is Wednesday, 2025-03-12 12:00 in Berlin.
var fixedNow = time.Date(2025, time.March, 12, 12, 0, 0, 0, generic.Berlin)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	h := NewHandler(store, config.Default(), logger)
	h.Now = func() time.Time { return fixedNow }
	return h
}

func newTestRouter(t *testing.T) (*Handler, http.Handler) {
	h := newTestHandler(t)
	return h, NewRouter(h, RouterOptions{AllowedOrigins: []string{"*"}})
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func createAlice(t *testing.T, router http.Handler) {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/users", CreateUserRequest{ID: "alice", Name: "Alice"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func berlinAt(d, hour int) time.Time {
	return time.Date(2025, time.March, d, hour, 0, 0, 0, generic.Berlin)
}

func workEntry(d, fromHour, hours int) TimeEntryRequest {
	end := berlinAt(d, fromHour+hours)
	return TimeEntryRequest{Start: berlinAt(d, fromHour), End: &end, TaskTitle: "Schnitt"}
}

// =============================================================================
// USERS
// =============================================================================

func TestUsers_CreateGetList(t *testing.T) {
	_, router := newTestRouter(t)

	// GIVEN: A part-time user posted with a day list
	hours := 6.0
	rec := do(t, router, http.MethodPost, "/api/users", CreateUserRequest{
		ID: "bob", Name: "Bob", EmploymentStartDate: "2025-02-01",
		WorkSchedule: &factory.ScheduleJSON{Days: []string{"mon", "wed"}, HoursPerDay: &hours},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// WHEN: Fetching it
	rec = do(t, router, http.MethodGet, "/api/users/bob", nil)

	// THEN: Flags and start date are returned
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode[UserDTO](t, rec)
	assert.Equal(t, "active", user.Status)
	assert.Equal(t, "2025-02-01", user.EmploymentStartDate)
	require.NotNil(t, user.WorkSchedule)
	assert.True(t, user.WorkSchedule.Monday)
	assert.False(t, user.WorkSchedule.Tuesday)
	assert.Equal(t, 6.0, *user.WorkSchedule.HoursPerDay)

	rec = do(t, router, http.MethodGet, "/api/users", nil)
	assert.Len(t, decode[[]UserDTO](t, rec), 1)
}

func TestUsers_Errors(t *testing.T) {
	_, router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/users/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	zero := 0.0
	rec = do(t, router, http.MethodPost, "/api/users", map[string]any{
		"name": "Eve", "work_schedule": map[string]any{"monday": true, "hours_per_day": zero},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/users", CreateUserRequest{Name: "Eve", EmploymentStartDate: "01.02.2025"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode[ErrorResponse](t, rec).Details)

	rec = do(t, router, http.MethodPost, "/api/users/nobody/entries", []TimeEntryRequest{workEntry(3, 9, 8)})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// STATISTICS / BALANCE / ANOMALIES
// =============================================================================

func TestWeekStatistics(t *testing.T) {
	_, router := newTestRouter(t)
	createAlice(t, router)

	// GIVEN: 7h on each day Mon-Fri of the week of March 3rd
	var entries []TimeEntryRequest
	for d := 3; d <= 7; d++ {
		entries = append(entries, workEntry(d, 9, 7))
	}
	rec := do(t, router, http.MethodPost, "/api/users/alice/entries", entries)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 5, decode[SavedResponse](t, rec).Saved)

	// WHEN: Requesting the week from a Wednesday
	rec = do(t, router, http.MethodGet, "/api/users/alice/statistics/week?start=2025-03-05", nil)

	// THEN: Seven buckets from Monday
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stats := decode[StatisticsDTO](t, rec)
	require.Len(t, stats.Buckets, 7)
	assert.Equal(t, "Mo", stats.Buckets[0].Label)
	assert.Equal(t, "2025-03-03", stats.Buckets[0].Start)
	assert.Equal(t, 35.0, stats.TotalHours)
	assert.Equal(t, 40.0, stats.TotalTarget)
	assert.Equal(t, "03.03.2025 - 09.03.2025", stats.Range)

	rec = do(t, router, http.MethodGet, "/api/users/alice/statistics/month?year=2025&month=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[StatisticsDTO](t, rec).Buckets, 5)

	rec = do(t, router, http.MethodGet, "/api/users/alice/statistics/year?year=2025", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[StatisticsDTO](t, rec).Buckets, 12)

	rec = do(t, router, http.MethodGet, "/api/users/alice/statistics/month?month=13", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBalance(t *testing.T) {
	_, router := newTestRouter(t)
	createAlice(t, router)

	// GIVEN: One approved vacation week and one pending day
	rec := do(t, router, http.MethodPost, "/api/users/alice/absences", []AbsenceRequestDTO{
		{Type: "vacation", Status: "approved", StartDate: "2025-03-17", EndDate: "2025-03-21"},
		{Type: "vacation", StartDate: "2025-04-02"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// WHEN: Reading the 2025 balance
	rec = do(t, router, http.MethodGet, "/api/users/alice/balance?year=2025", nil)

	// THEN: Pending counts separately from used
	require.Equal(t, http.StatusOK, rec.Code)
	b := decode[BalanceDTO](t, rec)
	assert.Equal(t, 30.0, b.TotalEntitlement)
	assert.Equal(t, 5.0, b.Used)
	assert.Equal(t, 1.0, b.Pending)
	assert.Equal(t, 24.0, b.Available)

	rec = do(t, router, http.MethodPost, "/api/users/alice/absences", []AbsenceRequestDTO{{Type: "sabbatical", StartDate: "2025-05-01"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnomalies(t *testing.T) {
	_, router := newTestRouter(t)
	createAlice(t, router)
	rec := do(t, router, http.MethodPost, "/api/users/alice/entries", []TimeEntryRequest{workEntry(3, 9, 7)})
	require.Equal(t, http.StatusCreated, rec.Code)

	// WHEN: Scanning Mon-Fri with only Monday tracked
	rec = do(t, router, http.MethodGet, "/api/users/alice/anomalies?from=2025-03-03&to=2025-03-07", nil)

	// THEN: Four missing days
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[AnomalyReportDTO](t, rec)
	assert.Len(t, report.Anomalies, 4)
	assert.Equal(t, map[string]int{"MISSING_ENTRY": 4}, report.Counts)

	rec = do(t, router, http.MethodGet, "/api/anomalies?from=2025-03-03&to=2025-03-07", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[AnomalyReportDTO](t, rec).Anomalies, 4)

	rec = do(t, router, http.MethodGet, "/api/anomalies?from=2025-03-07&to=2025-03-03", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestHolidays_CreateInvalidatesCache(t *testing.T) {
	_, router := newTestRouter(t)

	count := func() int {
		rec := do(t, router, http.MethodGet, "/api/holidays?year=2025&region=by", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		return len(decode[map[string][]HolidayDTO](t, rec)["holidays"])
	}
	before := count()
	assert.Greater(t, before, 9)

	rec := do(t, router, http.MethodPost, "/api/holidays", CreateHolidayRequest{Date: "2025-06-13", Name: "Betriebsausflug", Regions: []string{"by"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[HolidayDTO](t, rec)
	assert.Equal(t, []string{"BY"}, created.Regions)

	assert.Equal(t, before+1, count())

	rec = do(t, router, http.MethodDelete, "/api/holidays/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, before, count())

	rec = do(t, router, http.MethodDelete, "/api/holidays/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func TestRateLimit(t *testing.T) {
	h := newTestHandler(t)
	router := NewRouter(h, RouterOptions{AllowedOrigins: []string{"*"}, RateLimitPerSec: 0.001, RateLimitBurst: 1})

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/api/health", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, router, http.MethodGet, "/api/health", nil).Code)
}

func TestIPRateLimiter_PerIP(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)

	assert.Same(t, limiter.GetLimiter("10.0.0.1"), limiter.GetLimiter("10.0.0.1"))
	assert.NotSame(t, limiter.GetLimiter("10.0.0.1"), limiter.GetLimiter("10.0.0.2"))
}

func TestScanner_Scan(t *testing.T) {
	h := newTestHandler(t)
	require.NoError(t, h.LoadScenarioByID(context.Background(), "anomalies"))

	scanner := NewAnomalyScanner(h)
	summary, err := scanner.Scan(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Users)
	assert.Same(t, summary, scanner.Last())
	assert.Positive(t, summary.Counts["MISSING_ENTRY"])
}

// =============================================================================
// SNAPSHOT MAINTENANCE
// =============================================================================

func TestDeleteEntryAndAbsence(t *testing.T) {
	_, router := newTestRouter(t)
	createAlice(t, router)
	rec := do(t, router, http.MethodPost, "/api/users", CreateUserRequest{ID: "bob", Name: "Bob"})
	require.Equal(t, http.StatusCreated, rec.Code)

	// GIVEN: One entry and one absence for alice
	rec = do(t, router, http.MethodPost, "/api/users/alice/entries", []TimeEntryRequest{workEntry(3, 9, 8)})
	require.Equal(t, http.StatusCreated, rec.Code)
	entryID := decode[SavedResponse](t, rec).IDs[0]
	rec = do(t, router, http.MethodPost, "/api/users/alice/absences", []AbsenceRequestDTO{{Type: "VACATION", Status: "APPROVED", StartDate: "2025-03-04"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	absenceID := decode[SavedResponse](t, rec).IDs[0]

	// WHEN: Another user tries to delete them
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodDelete, "/api/users/bob/entries/"+entryID, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodDelete, "/api/users/bob/absences/"+absenceID, nil).Code)

	// THEN: Only the owner can, once
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodDelete, "/api/users/alice/entries/"+entryID, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodDelete, "/api/users/alice/entries/"+entryID, nil).Code)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodDelete, "/api/users/alice/absences/"+absenceID, nil).Code)

	// AND: Monday is missing again, Tuesday no longer excused
	rec = do(t, router, http.MethodGet, "/api/users/alice/anomalies?from=2025-03-03&to=2025-03-04", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]int{"MISSING_ENTRY": 2}, decode[AnomalyReportDTO](t, rec).Counts)
}

func TestDeleteUser(t *testing.T) {
	_, router := newTestRouter(t)
	createAlice(t, router)

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodDelete, "/api/users/alice", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/users/alice", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodDelete, "/api/users/alice", nil).Code)
}

// =============================================================================
// REGIONS AND RANGES
// =============================================================================

func TestRegions(t *testing.T) {
	_, router := newTestRouter(t)
	createAlice(t, router)

	rec := do(t, router, http.MethodGet, "/api/regions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	regions := decode[[]RegionDTO](t, rec)
	require.Len(t, regions, 16)
	assert.Equal(t, RegionDTO{Code: "BB", Name: "Brandenburg"}, regions[0])

	// Unknown state codes are rejected everywhere region= is read
	for _, path := range []string{
		"/api/holidays?year=2025&region=xx",
		"/api/anomalies?region=xx",
		"/api/users/alice/anomalies?region=xx",
		"/api/users/alice/statistics/week?region=xx",
	} {
		assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, path, nil).Code, path)
	}
	rec = do(t, router, http.MethodPost, "/api/holidays", CreateHolidayRequest{Date: "2025-06-13", Name: "Ausflug", Regions: []string{"Bavaria"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWeekStatistics_HolidayNames(t *testing.T) {
	_, router := newTestRouter(t)
	createAlice(t, router)

	rec := do(t, router, http.MethodGet, "/api/users/alice/statistics/week?start=2025-04-21&region=BY", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	buckets := decode[StatisticsDTO](t, rec).Buckets
	assert.Equal(t, "Ostermontag", buckets[0].Holiday)
	assert.Empty(t, buckets[1].Holiday)
	assert.Equal(t, 0.0, buckets[0].TargetHours)
}

func TestAnomalies_RangeBounds(t *testing.T) {
	_, router := newTestRouter(t)
	createAlice(t, router)

	// A far-away end is clamped to today
	rec := do(t, router, http.MethodGet, "/api/anomalies?from=2025-03-10&to=2099-12-31", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[AnomalyReportDTO](t, rec)
	assert.Equal(t, "2025-03-12", report.To)
	assert.Equal(t, map[string]int{"MISSING_ENTRY": 2}, report.Counts)

	// More than a year is rejected before any day is walked
	rec = do(t, router, http.MethodGet, "/api/users/alice/anomalies?from=0001-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, router, http.MethodGet, "/api/anomalies?from=2024-01-01&to=2025-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCustomHolidays_SaveTwiceDeletesByReturnedID(t *testing.T) {
	_, router := newTestRouter(t)
	req := CreateHolidayRequest{Date: "2025-12-31", Name: "Silvester"}

	// GIVEN: The same company holiday posted twice
	first := decode[HolidayDTO](t, do(t, router, http.MethodPost, "/api/holidays", req))
	req.Recurring = true
	second := decode[HolidayDTO](t, do(t, router, http.MethodPost, "/api/holidays", req))

	// THEN: One stored row, addressable by the returned ID
	assert.Equal(t, first.ID, second.ID)
	rec := do(t, router, http.MethodGet, "/api/holidays/custom", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stored := decode[map[string][]HolidayDTO](t, rec)["holidays"]
	require.Len(t, stored, 1)
	assert.True(t, stored[0].Recurring)

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodDelete, "/api/holidays/"+second.ID, nil).Code)
	assert.Empty(t, decode[map[string][]HolidayDTO](t, do(t, router, http.MethodGet, "/api/holidays/custom", nil))["holidays"])
}

// =============================================================================
// SCANNER
// =============================================================================

func TestHealth_ReportsLastScan(t *testing.T) {
	h, router := newTestRouter(t)
	require.NoError(t, h.LoadScenarioByID(context.Background(), "anomalies"))

	// Without a scanner only the status is reported
	health := decode[HealthDTO](t, do(t, router, http.MethodGet, "/api/health", nil))
	assert.Equal(t, "ok", health.Status)
	assert.Nil(t, health.LastScan)

	h.Scanner = NewAnomalyScanner(h)
	_, err := h.Scanner.Scan(context.Background())
	require.NoError(t, err)

	health = decode[HealthDTO](t, do(t, router, http.MethodGet, "/api/health", nil))
	require.NotNil(t, health.LastScan)
	assert.False(t, health.ScannerRunning)
	assert.Equal(t, 1, health.LastScan.Users)
	assert.Equal(t, "2025-03-12", health.LastScan.To)
	assert.Positive(t, health.LastScan.Counts["MISSING_ENTRY"])
}

func TestScanner_StartStopRestart(t *testing.T) {
	h := newTestHandler(t)
	scanner := NewAnomalyScanner(h)

	// GIVEN: Start called twice
	scanner.Start()
	scanner.Start()
	assert.True(t, scanner.Running())

	// WHEN: Stopped once
	scanner.Stop()

	// THEN: The single loop is gone and has scanned once
	assert.False(t, scanner.Running())
	require.NotNil(t, scanner.Last())

	// AND: A restart scans again
	scanner.mu.Lock()
	scanner.last = nil
	scanner.mu.Unlock()
	scanner.Start()
	scanner.Stop()
	assert.NotNil(t, scanner.Last())
}

func TestCurrentScenario_ConcurrentAccess(t *testing.T) {
	h, router := newTestRouter(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			h.setScenario(scenarios[i%len(scenarios)].ID)
		}
	}()
	for i := 0; i < 50; i++ {
		assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/api/scenarios/current", nil).Code)
	}
	<-done
}
