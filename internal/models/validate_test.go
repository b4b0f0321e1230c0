package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestServiceProviderValidate(t *testing.T) {
	facility := primitive.NewObjectID()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	tests := []struct {
		name    string
		mutate  func(p *ServiceProvider)
		wantErr bool
	}{
		{"valid", func(p *ServiceProvider) {}, false},
		{"open ended contract", func(p *ServiceProvider) { p.ContractEndDate = nil }, false},
		{"end before start", func(p *ServiceProvider) { p.ContractStartDate, p.ContractEndDate = &end, &start }, true},
		{"same day window", func(p *ServiceProvider) { p.ContractEndDate = &start }, true},
		{"missing category", func(p *ServiceProvider) { p.Category = " " }, true},
		{"negative value", func(p *ServiceProvider) { p.ContractValue = -1 }, true},
		{"unknown status", func(p *ServiceProvider) { p.Status = "PAUSED" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &ServiceProvider{
				ScopedBase:        ScopedBase{FacilityID: facility},
				ProviderName:      "  Sparkle Cleaning ",
				Category:          "Housekeeping",
				ContractStartDate: &start,
				ContractEndDate:   &end,
			}
			p.Normalize()
			tt.mutate(p)
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "sparkle cleaning", p.ProviderNameKey)
				assert.Equal(t, ProviderStatusActive, p.Status)
			}
		})
	}
}

func TestPlannerValidation(t *testing.T) {
	facility := primitive.NewObjectID()
	employee := primitive.NewObjectID()
	day := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

	shift := &ShiftSchedule{
		ScopedBase: ScopedBase{FacilityID: facility},
		Name:       "Night",
		StartTime:  "22:00",
		EndTime:    "06:00",
		Days:       []string{"monday", " friday"},
	}
	shift.Normalize()
	assert.NoError(t, shift.Validate())
	assert.True(t, shift.Overnight())
	assert.Equal(t, []string{"MONDAY", "FRIDAY"}, shift.Days)

	shift.StartTime = "25:00"
	assert.Error(t, shift.Validate())

	leave := &LeavePlanner{
		ScopedBase: ScopedBase{FacilityID: facility},
		EmployeeID: employee,
		LeaveType:  "sick",
		StartDate:  day,
		EndDate:    day.AddDate(0, 0, 2),
	}
	leave.Normalize()
	assert.NoError(t, leave.Validate())
	assert.Equal(t, LeavePending, leave.Status)
	assert.Equal(t, 3, leave.Days())

	leave.EndDate = day.AddDate(0, 0, -1)
	assert.Error(t, leave.Validate())

	roster := &Roster{
		ScopedBase: ScopedBase{FacilityID: facility},
		Name:       "Week 19",
		StartDate:  day,
		EndDate:    day.AddDate(0, 0, 6),
		Entries:    []RosterEntry{{EmployeeID: employee, Date: day.AddDate(0, 0, 1)}},
	}
	roster.Normalize()
	assert.NoError(t, roster.Validate())

	roster.Entries[0].Date = day.AddDate(0, 0, 10)
	assert.Error(t, roster.Validate())

	until := day.AddDate(0, -1, 0)
	weekoff := &WeekoffPlanner{
		ScopedBase:    ScopedBase{FacilityID: facility},
		EmployeeID:    employee,
		WeekDays:      []string{"sunday"},
		EffectiveFrom: day,
		EffectiveTo:   &until,
	}
	weekoff.Normalize()
	assert.Error(t, weekoff.Validate())
	weekoff.EffectiveTo = nil
	assert.NoError(t, weekoff.Validate())
}

func TestBuildQRCode(t *testing.T) {
	id, _ := primitive.ObjectIDFromHex("64b7f0c2a1b2c3d4e5f60718")
	loc := &FloorLocation{ScopedBase: ScopedBase{FacilityID: id}, FloorNumber: 3}
	assert.Equal(t, "FL_64b7f0c2a1b2c3d4e5f60718_3_AB12CD34", BuildQRCode(loc, "ab12cd34"))
	assert.Equal(t, "AB12CD34", QRSuffix(BuildQRCode(loc, "ab12cd34")))
	assert.Empty(t, QRSuffix("nounderscore"))
}

func TestFloorLocationActiveByDefault(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{name: "omitted", body: `{"floorNumber":3,"floorName":"Third"}`, want: true},
		{name: "explicit true", body: `{"floorNumber":3,"floorName":"Third","isActive":true}`, want: true},
		{name: "explicit false", body: `{"floorNumber":3,"floorName":"Third","isActive":false}`, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var loc FloorLocation
			require.NoError(t, json.Unmarshal([]byte(tt.body), &loc))
			assert.Equal(t, tt.want, loc.IsActive)
			assert.Equal(t, 3, loc.FloorNumber)
			assert.Equal(t, "Third", loc.FloorName)
		})
	}
}

func TestPagination(t *testing.T) {
	p := NewPagination(PageQuery{Page: 2, Limit: 10}, 25)
	assert.Equal(t, Pagination{CurrentPage: 2, TotalPages: 3, TotalCount: 25, HasNextPage: true, HasPreviousPage: true}, p)

	empty := NewPagination(PageQuery{}, 0)
	assert.Equal(t, int64(1), empty.CurrentPage)
	assert.Equal(t, int64(0), empty.TotalPages)
	assert.False(t, empty.HasNextPage)

	assert.Equal(t, int64(MaxPageLimit), PageQuery{Limit: 1000}.Normalized().Limit)
	assert.Equal(t, int64(40), PageQuery{Page: 3, Limit: 20}.Skip())
}
