package models

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

var weekdays = map[string]bool{
	"MONDAY": true, "TUESDAY": true, "WEDNESDAY": true, "THURSDAY": true,
	"FRIDAY": true, "SATURDAY": true, "SUNDAY": true,
}

func validWeekdays(days []string) bool {
	for _, d := range days {
		if !weekdays[d] {
			return false
		}
	}
	return true
}

func upperAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToUpper(strings.TrimSpace(v))
	}
	return out
}

type RosterEntry struct {
	EmployeeID      primitive.ObjectID `bson:"employeeId" json:"employeeId"`
	Date            time.Time          `bson:"date" json:"date"`
	ShiftScheduleID primitive.ObjectID `bson:"shiftScheduleId,omitempty" json:"shiftScheduleId,omitempty"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Roster assigns employees to shifts across a date range.
type Roster struct {
	ScopedBase `bson:",inline"`
	Name       string        `bson:"name" json:"name"`
	StartDate  time.Time     `bson:"startDate" json:"startDate"`
	EndDate    time.Time     `bson:"endDate" json:"endDate"`
	Entries    []RosterEntry `bson:"entries" json:"entries"`
}

func (r *Roster) Validate() error {
	switch {
	case r.FacilityID.IsZero():
		return errors.New("facilityId is required")
	case strings.TrimSpace(r.Name) == "":
		return errors.New("name is required")
	case r.StartDate.IsZero() || r.EndDate.IsZero():
		return errors.New("startDate and endDate are required")
	case r.EndDate.Before(r.StartDate):
		return errors.New("endDate must not be before startDate")
	}
	for _, e := range r.Entries {
		if e.EmployeeID.IsZero() {
			return errors.New("every roster entry needs an employeeId")
		}
		if e.Date.Before(r.StartDate) || e.Date.After(r.EndDate) {
			return errors.New("roster entry date falls outside the roster range")
		}
	}
	return nil
}

func (r *Roster) Normalize() {
	r.StartDate = StartOfDay(r.StartDate)
	r.EndDate = StartOfDay(r.EndDate)
	for i := range r.Entries {
		r.Entries[i].Date = StartOfDay(r.Entries[i].Date)
	}
}

const (
	LeaveCasual = "CASUAL"
	LeaveSick   = "SICK"
	LeaveEarned = "EARNED"
	LeaveUnpaid = "UNPAID"

	LeavePending  = "PENDING"
	LeaveApproved = "APPROVED"
	LeaveRejected = "REJECTED"
)

// LeavePlanner is one employee's leave request.
type LeavePlanner struct {
	ScopedBase `bson:",inline"`
	EmployeeID primitive.ObjectID `bson:"employeeId" json:"employeeId"`
	LeaveType  string             `bson:"leaveType" json:"leaveType"`
	StartDate  time.Time          `bson:"startDate" json:"startDate"`
	EndDate    time.Time          `bson:"endDate" json:"endDate"`
	Reason     string             `bson:"reason,omitempty" json:"reason,omitempty"`
	Status     string             `bson:"status" json:"status"`
}

func (l *LeavePlanner) Validate() error {
	switch {
	case l.FacilityID.IsZero():
		return errors.New("facilityId is required")
	case l.EmployeeID.IsZero():
		return errors.New("employeeId is required")
	case l.StartDate.IsZero() || l.EndDate.IsZero():
		return errors.New("startDate and endDate are required")
	case l.EndDate.Before(l.StartDate):
		return errors.New("endDate must not be before startDate")
	}
	switch l.LeaveType {
	case LeaveCasual, LeaveSick, LeaveEarned, LeaveUnpaid:
	default:
		return errors.New("leaveType must be one of CASUAL, SICK, EARNED, UNPAID")
	}
	switch l.Status {
	case LeavePending, LeaveApproved, LeaveRejected:
	default:
		return errors.New("status must be one of PENDING, APPROVED, REJECTED")
	}
	return nil
}

func (l *LeavePlanner) Normalize() {
	l.LeaveType = strings.ToUpper(l.LeaveType)
	l.Status = strings.ToUpper(l.Status)
	if l.Status == "" {
		l.Status = LeavePending
	}
	l.StartDate = StartOfDay(l.StartDate)
	l.EndDate = StartOfDay(l.EndDate)
}

// Days is the inclusive number of calendar days covered.
func (l *LeavePlanner) Days() int {
	return int(l.EndDate.Sub(l.StartDate).Hours()/24) + 1
}

// ShiftSchedule is a named working window repeated on given weekdays.
type ShiftSchedule struct {
	ScopedBase  `bson:",inline"`
	Name        string               `bson:"name" json:"name"`
	StartTime   string               `bson:"startTime" json:"startTime"`
	EndTime     string               `bson:"endTime" json:"endTime"`
	Days        []string             `bson:"days" json:"days"`
	EmployeeIDs []primitive.ObjectID `bson:"employeeIds" json:"employeeIds"`
	IsActive    bool                 `bson:"isActive" json:"isActive"`
}

func (s *ShiftSchedule) Validate() error {
	switch {
	case s.FacilityID.IsZero():
		return errors.New("facilityId is required")
	case strings.TrimSpace(s.Name) == "":
		return errors.New("name is required")
	case !clockPattern.MatchString(s.StartTime) || !clockPattern.MatchString(s.EndTime):
		return errors.New("startTime and endTime must be HH:MM")
	case s.StartTime == s.EndTime:
		return errors.New("startTime and endTime must differ")
	case !validWeekdays(s.Days):
		return errors.New("days must be weekday names")
	}
	return nil
}

func (s *ShiftSchedule) Normalize() {
	s.Days = upperAll(s.Days)
	if s.EmployeeIDs == nil {
		s.EmployeeIDs = []primitive.ObjectID{}
	}
}

// Overnight reports whether the shift ends on the following day.
func (s *ShiftSchedule) Overnight() bool {
	return s.EndTime < s.StartTime
}

// WeekoffPlanner records an employee's weekly days off from a given date.
type WeekoffPlanner struct {
	ScopedBase    `bson:",inline"`
	EmployeeID    primitive.ObjectID `bson:"employeeId" json:"employeeId"`
	WeekDays      []string           `bson:"weekDays" json:"weekDays"`
	EffectiveFrom time.Time          `bson:"effectiveFrom" json:"effectiveFrom"`
	EffectiveTo   *time.Time         `bson:"effectiveTo,omitempty" json:"effectiveTo,omitempty"`
}

func (w *WeekoffPlanner) Validate() error {
	switch {
	case w.FacilityID.IsZero():
		return errors.New("facilityId is required")
	case w.EmployeeID.IsZero():
		return errors.New("employeeId is required")
	case len(w.WeekDays) == 0:
		return errors.New("weekDays is required")
	case !validWeekdays(w.WeekDays):
		return errors.New("weekDays must be weekday names")
	case w.EffectiveFrom.IsZero():
		return errors.New("effectiveFrom is required")
	case w.EffectiveTo != nil && w.EffectiveTo.Before(w.EffectiveFrom):
		return errors.New("effectiveTo must not be before effectiveFrom")
	}
	return nil
}

func (w *WeekoffPlanner) Normalize() {
	w.WeekDays = upperAll(w.WeekDays)
	w.EffectiveFrom = StartOfDay(w.EffectiveFrom)
}
