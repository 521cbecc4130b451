/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Dates are plain
  YYYY-MM-DD strings, instants are RFC3339, hours are rounded to one decimal.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - factory/schedule.go: ScheduleJSON type
*/
package api

import (
	"time"

	"github.com/warp/worktime-engine/factory"
	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/timeoff"
	"github.com/warp/worktime-engine/tracking"
)

// =============================================================================
// USERS
// =============================================================================

// UserDTO represents a user in API responses.
type UserDTO struct {
	ID                  string                `json:"id"`
	Name                string                `json:"name"`
	Email               string                `json:"email,omitempty"`
	Status              string                `json:"status"`
	WorkSchedule        *factory.ScheduleJSON `json:"work_schedule,omitempty"`
	EmploymentStartDate string                `json:"employment_start_date,omitempty"`
}

// CreateUserRequest is the request body for creating a user.
type CreateUserRequest struct {
	ID                  string                `json:"id"`
	Name                string                `json:"name"`
	Email               string                `json:"email"`
	Status              string                `json:"status"`
	WorkSchedule        *factory.ScheduleJSON `json:"work_schedule"`
	EmploymentStartDate string                `json:"employment_start_date"`
}

// =============================================================================
// SNAPSHOT INPUTS
// =============================================================================

// TimeEntryRequest is one tracked interval. End is omitted while running.
type TimeEntryRequest struct {
	ID          string     `json:"id"`
	Start       time.Time  `json:"start"`
	End         *time.Time `json:"end"`
	Duration    *int64     `json:"duration"` // seconds, derived from start/end when omitted
	TaskID      string     `json:"task_id"`
	TaskTitle   string     `json:"task_title"`
	ListTitle   string     `json:"list_title"`
	ProjectID   string     `json:"project_id"`
	ProjectName string     `json:"project_name"`
	Note        string     `json:"note"`
	Billable    bool       `json:"billable"`
}

// AbsenceRequestDTO is used for both input and output of absences.
type AbsenceRequestDTO struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	HalfDay   string `json:"half_day,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// SavedResponse reports how many snapshot rows were stored.
type SavedResponse struct {
	Saved int      `json:"saved"`
	IDs   []string `json:"ids"`
}

// =============================================================================
// STATISTICS
// =============================================================================

// BucketDTO is one aggregated time bucket.
type BucketDTO struct {
	Label       string             `json:"label"`
	Start       string             `json:"start"`
	End         string             `json:"end"`
	Hours       float64            `json:"hours"`
	TargetHours float64            `json:"target_hours"`
	Absence     *AbsenceRequestDTO `json:"absence,omitempty"`
	Holiday     string             `json:"holiday,omitempty"` // daily buckets only
}

// StatisticsDTO is the response of the statistics endpoints.
type StatisticsDTO struct {
	UserID                string      `json:"user_id"`
	Range                 string      `json:"range"`
	Region                string      `json:"region,omitempty"`
	Buckets               []BucketDTO `json:"buckets"`
	TotalHours            float64     `json:"total_hours"`
	TotalTarget           float64     `json:"total_target"`
	Average               float64     `json:"average"`
	AverageWorkDays       float64     `json:"average_work_days"`
	AverageTargetWorkDays float64     `json:"average_target_work_days"`
}

// =============================================================================
// BALANCE
// =============================================================================

// BalanceDTO is the vacation and overtime balance of one user and year.
type BalanceDTO struct {
	UserID                 string  `json:"user_id"`
	Year                   int     `json:"year"`
	TotalEntitlement       float64 `json:"total_entitlement"`
	Used                   float64 `json:"used"`
	Pending                float64 `json:"pending"`
	Available              float64 `json:"available"`
	OvertimeHours          float64 `json:"overtime_hours"`
	OvertimeDaysEquivalent float64 `json:"overtime_days_equivalent"`
	TotalAvailable         float64 `json:"total_available"`
}

// =============================================================================
// ANOMALIES
// =============================================================================

// AnomalyDTO is one detected anomaly.
type AnomalyDTO struct {
	Date         string  `json:"date"`
	UserID       string  `json:"user_id"`
	Type         string  `json:"type"`
	TrackedHours float64 `json:"tracked_hours"`
	TargetHours  float64 `json:"target_hours"`
	HasShoot     bool    `json:"has_shoot"`
	EntryID      string  `json:"entry_id,omitempty"`
}

// AnomalyReportDTO wraps a scan result.
type AnomalyReportDTO struct {
	From      string         `json:"from"`
	To        string         `json:"to"`
	Anomalies []AnomalyDTO   `json:"anomalies"`
	Counts    map[string]int `json:"counts"`
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// HolidayDTO is a statutory or company holiday.
type HolidayDTO struct {
	ID        string   `json:"id,omitempty"`
	Date      string   `json:"date"`
	Name      string   `json:"name"`
	Regions   []string `json:"regions,omitempty"`
	Recurring bool     `json:"recurring,omitempty"`
}

// CreateHolidayRequest is the request body for a company holiday.
type CreateHolidayRequest struct {
	Date      string   `json:"date"`
	Name      string   `json:"name"`
	Regions   []string `json:"regions"`
	Recurring bool     `json:"recurring"`
}

// RegionDTO is one German state accepted as region.
type RegionDTO struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// =============================================================================
// HEALTH
// =============================================================================

// ScanSummaryDTO describes the last background anomaly scan.
type ScanSummaryDTO struct {
	At     time.Time      `json:"at"`
	From   string         `json:"from"`
	To     string         `json:"to"`
	Users  int            `json:"users"`
	Counts map[string]int `json:"counts"`
}

// HealthDTO is the response of /api/health.
type HealthDTO struct {
	Status         string          `json:"status"`
	ScannerRunning bool            `json:"scanner_running"`
	LastScan       *ScanSummaryDTO `json:"last_scan,omitempty"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest is the request body for loading a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toUserDTO(u timeoff.User, schedules *factory.ScheduleFactory) UserDTO {
	dto := UserDTO{
		ID:     string(u.ID),
		Name:   u.Name,
		Email:  u.Email,
		Status: string(u.Status),
	}
	if dto.Status == "" {
		dto.Status = string(timeoff.UserActive)
	}
	if u.WorkSchedule != nil {
		sj := schedules.ToJSON(*u.WorkSchedule)
		dto.WorkSchedule = &sj
	}
	if u.EmploymentStartDate != nil {
		dto.EmploymentStartDate = u.EmploymentStartDate.String()
	}
	return dto
}

func toAbsenceDTO(a timeoff.AbsenceRequest) AbsenceRequestDTO {
	return AbsenceRequestDTO{
		ID:        a.ID,
		Type:      string(a.Type),
		Status:    string(a.Status),
		StartDate: a.StartDate.String(),
		EndDate:   a.EndDate.String(),
		HalfDay:   string(a.HalfDay),
		Reason:    a.Reason,
	}
}

func toBucketDTOs(buckets []tracking.Bucket) []BucketDTO {
	dtos := make([]BucketDTO, len(buckets))
	for i, b := range buckets {
		dtos[i] = BucketDTO{
			Label:       b.Label,
			Start:       b.Period.Start.String(),
			End:         b.Period.End.String(),
			Hours:       b.Hours,
			TargetHours: b.TargetHours,
		}
		if b.Absence != nil {
			a := toAbsenceDTO(*b.Absence)
			dtos[i].Absence = &a
		}
	}
	return dtos
}

func toBalanceDTO(b timeoff.VacationBalance) BalanceDTO {
	return BalanceDTO{
		UserID:                 string(b.UserID),
		Year:                   b.Year,
		TotalEntitlement:       b.TotalEntitlement.Float(),
		Used:                   b.Used.Float(),
		Pending:                b.Pending.Float(),
		Available:              b.Available.Float(),
		OvertimeHours:          generic.Round1(b.OvertimeHours.Float()),
		OvertimeDaysEquivalent: generic.Round1(b.OvertimeDaysEquivalent.Float()),
		TotalAvailable:         generic.Round1(timeoff.TotalAvailableDays(b).Float()),
	}
}

func toAnomalyReport(anomalies []tracking.Anomaly, period generic.Period) AnomalyReportDTO {
	dtos := make([]AnomalyDTO, len(anomalies))
	for i, a := range anomalies {
		dtos[i] = AnomalyDTO{
			Date:         a.Date.String(),
			UserID:       string(a.UserID),
			Type:         string(a.Type),
			TrackedHours: a.Details.TrackedHours,
			TargetHours:  a.Details.TargetHours,
			HasShoot:     a.Details.HasShoot,
			EntryID:      a.EntryID,
		}
	}
	counts := make(map[string]int)
	for typ, n := range tracking.CountByType(anomalies) {
		counts[string(typ)] = n
	}
	return AnomalyReportDTO{
		From:      period.Start.String(),
		To:        period.End.String(),
		Anomalies: dtos,
		Counts:    counts,
	}
}

func toHolidayDTO(h generic.Holiday) HolidayDTO {
	dto := HolidayDTO{ID: h.ID, Date: h.Date.String(), Name: h.Name, Recurring: h.Recurring}
	for _, r := range h.Regions {
		dto.Regions = append(dto.Regions, string(r))
	}
	return dto
}

func toScanDTO(s *ScanSummary) *ScanSummaryDTO {
	if s == nil {
		return nil
	}
	dto := &ScanSummaryDTO{
		At:     s.At,
		From:   s.Period.Start.String(),
		To:     s.Period.End.String(),
		Users:  s.Users,
		Counts: make(map[string]int, len(s.Counts)),
	}
	for typ, n := range s.Counts {
		dto.Counts[string(typ)] = n
	}
	return dto
}
