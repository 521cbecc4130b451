/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for demos. Each scenario creates users, time entries and absences
	relative to today, so statistics and scans always show something.

AVAILABLE SCENARIOS:

	full-time:      Mon-Fri 8h, clean weeks plus vacation
	part-time:      Mon/Wed/Fri 6h with pro-rata vacation
	mid-year-hire:  Employment start on July 1st of the current year
	anomalies:      Every anomaly rule triggered at least once
	team:           All of the above

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create users with their work schedule JSON
 3. Add time entries on scheduled, non-holiday days
 4. Add absence requests

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "anomalies"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Statistics and anomaly endpoints
  - factory/schedule.go: Schedule JSON presets
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/worktime-engine/factory"
	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/timeoff"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "full-time",
		Name:        "Full-Time Employee",
		Description: "Mon-Fri 8h with four clean weeks, one approved and one pending vacation",
	},
	{
		ID:          "part-time",
		Name:        "Part-Time Employee",
		Description: "Mon/Wed/Fri 6h, 18 vacation days, a half-day absence",
	},
	{
		ID:          "mid-year-hire",
		Name:        "Mid-Year Hire",
		Description: "Employment starts July 1st: pro-rata entitlement and expected hours",
	},
	{
		ID:          "anomalies",
		Name:        "Anomalies",
		Description: "Missing days, under-performance, excess work, shoot days and a forgotten timer",
	},
	{
		ID:          "team",
		Name:        "Team",
		Description: "All users of the other scenarios together",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	current := h.scenario()
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the database and loads a scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.loadScenario(r.Context(), req.ScenarioID); err != nil {
		if _, known := scenarioLoaders[req.ScenarioID]; !known {
			writeError(w, http.StatusBadRequest, "Unknown scenario", err)
			return
		}
		h.fail(w, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		h.fail(w, "Failed to reset database", err)
		return
	}
	h.Holidays.Invalidate()
	h.setScenario("")

	writeJSON(w, http.StatusOK, map[string]any{"status": "reset"})
}

type scenarioLoader func(h *Handler, ctx context.Context) error

var scenarioLoaders = map[string]scenarioLoader{
	"full-time":     (*Handler).loadFullTime,
	"part-time":     (*Handler).loadPartTime,
	"mid-year-hire": (*Handler).loadMidYearHire,
	"anomalies":     (*Handler).loadAnomalies,
	"team": func(h *Handler, ctx context.Context) error {
		for _, load := range []scenarioLoader{(*Handler).loadFullTime, (*Handler).loadPartTime, (*Handler).loadMidYearHire, (*Handler).loadAnomalies} {
			if err := load(h, ctx); err != nil {
				return err
			}
		}
		return nil
	},
}

// LoadScenarioByID resets the database and loads scenario id.
func (h *Handler) LoadScenarioByID(ctx context.Context, id string) error {
	return h.loadScenario(ctx, id)
}

func (h *Handler) loadScenario(ctx context.Context, id string) error {
	load, ok := scenarioLoaders[id]
	if !ok {
		return fmt.Errorf("unknown scenario: %s", id)
	}
	if err := h.Store.Reset(ctx); err != nil {
		return err
	}
	h.Holidays.Invalidate()

	if err := load(h, ctx); err != nil {
		return err
	}
	h.setScenario(id)
	h.Log.WithField("scenario", id).Info("scenario loaded")
	return nil
}

func (h *Handler) scenario() string {
	h.scenarioMu.RLock()
	defer h.scenarioMu.RUnlock()
	return h.currentScenario
}

func (h *Handler) setScenario(id string) {
	h.scenarioMu.Lock()
	h.currentScenario = id
	h.scenarioMu.Unlock()
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadFullTime(ctx context.Context) error {
	user, err := h.scenarioUser(ctx, "alice", "Alice Schmidt", factory.FullTimeJSON(8, 30), nil)
	if err != nil {
		return err
	}

	today := h.today()
	if err := h.trackDays(ctx, user, today.AddDays(-28), today.AddDays(-1), 8, "Schnitt", "Imagefilm"); err != nil {
		return err
	}

	vacStart := generic.StartOfWeek(today.AddDays(21))
	return h.scenarioAbsences(ctx,
		timeoff.AbsenceRequest{UserID: user.ID, Type: timeoff.AbsenceVacation, Status: timeoff.StatusApproved,
			StartDate: vacStart, EndDate: vacStart.AddDays(4), Reason: "Sommerurlaub"},
		timeoff.AbsenceRequest{UserID: user.ID, Type: timeoff.AbsenceVacation, Status: timeoff.StatusPending,
			StartDate: vacStart.AddDays(14), EndDate: vacStart.AddDays(15)},
	)
}

func (h *Handler) loadPartTime(ctx context.Context) error {
	user, err := h.scenarioUser(ctx, "bob", "Bob Weber", factory.PartTimeJSON([]string{"mon", "wed", "fri"}, 6, 18), nil)
	if err != nil {
		return err
	}

	today := h.today()
	if err := h.trackDays(ctx, user, today.AddDays(-21), today.AddDays(-1), 6, "Buchhaltung", "Verwaltung"); err != nil {
		return err
	}

	halfDay := nextWorkDay(user, today.AddDays(7))
	return h.scenarioAbsences(ctx,
		timeoff.AbsenceRequest{UserID: user.ID, Type: timeoff.AbsenceVacation, Status: timeoff.StatusApproved,
			StartDate: halfDay, EndDate: halfDay, HalfDay: timeoff.HalfAfternoon},
		timeoff.AbsenceRequest{UserID: user.ID, Type: timeoff.AbsenceCompensatoryDay, Status: timeoff.StatusApproved,
			StartDate: nextWorkDay(user, halfDay.AddDays(1)), EndDate: nextWorkDay(user, halfDay.AddDays(1))},
	)
}

func (h *Handler) loadMidYearHire(ctx context.Context) error {
	today := h.today()
	hire := generic.NewTimePoint(today.Year(), time.July, 1)
	user, err := h.scenarioUser(ctx, "carol", "Carol Neumann", factory.FullTimeJSON(8, 30), &hire)
	if err != nil {
		return err
	}

	from := hire
	if today.AddDays(-28).After(from) {
		from = today.AddDays(-28)
	}
	return h.trackDays(ctx, user, from, today.AddDays(-1), 8.5, "Motion Design", "Kampagne")
}

func (h *Handler) loadAnomalies(ctx context.Context) error {
	user, err := h.scenarioUser(ctx, "dave", "Dave Fischer", factory.FullTimeJSON(8, 30), nil)
	if err != nil {
		return err
	}

	// The last five work days, one per rule
	days := make([]generic.TimePoint, 0, 5)
	for d := h.today().AddDays(-1); len(days) < 5; d = d.AddDays(-1) {
		if user.Schedule().IsWorkdayWithHolidays(d, h.Holidays, h.DefaultRegion) {
			days = append(days, d)
		}
	}
	at := func(d generic.TimePoint, hour int) time.Time { return d.At(hour, h.Location) }

	entries := []timeoff.TimeEntry{
		// UNDER_PERFORMANCE: 3h
		closedEntry(user.ID, at(days[0], 9), 3*time.Hour, "Konzept", "Intern"),
		// EXCESS_WORK_REGULAR: 10h in the office
		closedEntry(user.ID, at(days[1], 8), 10*time.Hour, "Schnitt", "Imagefilm"),
		// EXCESS_WORK_SHOOT: 16h on set
		closedEntry(user.ID, at(days[2], 6), 16*time.Hour, "Drehtag", "PRODUKTION Spot"),
		// FORGOT_TO_STOP: 20:00 until 07:00 next morning
		closedEntry(user.ID, at(days[3], 20), 11*time.Hour, "Rendering", "Imagefilm"),
	}
	// days[4] stays empty: MISSING_ENTRY
	_, err = h.Store.SaveEntries(ctx, entries)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) scenarioUser(ctx context.Context, id, name, scheduleJSON string, start *generic.TimePoint) (timeoff.User, error) {
	schedule, err := h.Schedules.ParseSchedule(scheduleJSON)
	if err != nil {
		return timeoff.User{}, err
	}
	return h.Store.SaveUser(ctx, timeoff.User{
		ID:                  generic.EntityID(id),
		Name:                name,
		Email:               id + "@example.com",
		Status:              timeoff.UserActive,
		WorkSchedule:        schedule,
		EmploymentStartDate: start,
	})
}

// trackDays books one entry of hours at 09:00 on every scheduled,
// non-holiday day of [from, to].
func (h *Handler) trackDays(ctx context.Context, user timeoff.User, from, to generic.TimePoint, hours float64, task, project string) error {
	schedule := user.Schedule()
	var entries []timeoff.TimeEntry
	for _, d := range (generic.Period{Start: from, End: to}).Days() {
		if !user.EmployedOn(d) || !schedule.IsWorkdayWithHolidays(d, h.Holidays, h.DefaultRegion) {
			continue
		}
		entries = append(entries, closedEntry(user.ID, d.At(9, h.Location), time.Duration(hours*float64(time.Hour)), task, project))
	}
	_, err := h.Store.SaveEntries(ctx, entries)
	return err
}

func (h *Handler) scenarioAbsences(ctx context.Context, absences ...timeoff.AbsenceRequest) error {
	for _, a := range absences {
		if _, err := h.Store.SaveAbsence(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func closedEntry(userID generic.EntityID, start time.Time, d time.Duration, task, project string) timeoff.TimeEntry {
	end := start.Add(d)
	return timeoff.TimeEntry{
		UserID:      userID,
		Start:       start,
		End:         &end,
		Duration:    int64(d.Seconds()),
		TaskTitle:   task,
		ProjectName: project,
	}
}

func nextWorkDay(user timeoff.User, from generic.TimePoint) generic.TimePoint {
	schedule := user.Schedule()
	d := from
	for !schedule.IsWorkDay(d) {
		d = d.AddDays(1)
	}
	return d
}
