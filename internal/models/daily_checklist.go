package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ChecklistStatus string

const (
	ChecklistPending    ChecklistStatus = "PENDING"
	ChecklistInProgress ChecklistStatus = "IN_PROGRESS"
	ChecklistCompleted  ChecklistStatus = "COMPLETED"
	ChecklistVerified   ChecklistStatus = "VERIFIED"
)

var ChecklistStatuses = []ChecklistStatus{
	ChecklistPending,
	ChecklistInProgress,
	ChecklistCompleted,
	ChecklistVerified,
}

func IsValidChecklistStatus(s string) bool {
	for _, candidate := range ChecklistStatuses {
		if string(candidate) == s {
			return true
		}
	}
	return false
}

var (
	ErrInvalidItemIndex = errors.New("item index out of range")
	ErrNotCompleted     = errors.New("checklist must be COMPLETED before it can be verified")
	ErrAlreadyVerified  = errors.New("checklist has already been verified")
)

type ChecklistItem struct {
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	IsCompleted bool                `bson:"isCompleted" json:"isCompleted"`
	CompletedBy *primitive.ObjectID `bson:"completedBy,omitempty" json:"completedBy,omitempty"`
	CompletedAt *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Notes       string              `bson:"notes,omitempty" json:"notes,omitempty"`
}

// DailyChecklist is the dated list of tasks for one (facility, section, floor, day).
type DailyChecklist struct {
	ScopedBase         `bson:",inline"`
	SectionID          primitive.ObjectID  `bson:"sectionId" json:"sectionId"`
	FloorLocationID    primitive.ObjectID  `bson:"floorLocationId" json:"floorLocationId"`
	HygieneChecklistID primitive.ObjectID  `bson:"hygieneChecklistId,omitempty" json:"hygieneChecklistId,omitempty"`
	Date               time.Time           `bson:"date" json:"date"`
	Items              []ChecklistItem     `bson:"items" json:"items"`
	OverallStatus      ChecklistStatus     `bson:"overallStatus" json:"overallStatus"`
	CompletedBy        *primitive.ObjectID `bson:"completedBy,omitempty" json:"completedBy,omitempty"`
	CompletedAt        *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	VerifiedBy         *primitive.ObjectID `bson:"verifiedBy,omitempty" json:"verifiedBy,omitempty"`
	VerifiedAt         *time.Time          `bson:"verifiedAt,omitempty" json:"verifiedAt,omitempty"`
	VerificationNotes  string              `bson:"verificationNotes,omitempty" json:"verificationNotes,omitempty"`
}

func (c *DailyChecklist) Validate() error {
	switch {
	case c.FacilityID.IsZero():
		return errors.New("facilityId is required")
	case c.SectionID.IsZero():
		return errors.New("sectionId is required")
	case c.FloorLocationID.IsZero():
		return errors.New("floorLocationId is required")
	case c.Date.IsZero():
		return errors.New("date is required")
	}
	for _, item := range c.Items {
		if item.Name == "" {
			return errors.New("every checklist item needs a name")
		}
	}
	return nil
}

// Normalize pins Date to the start of its day and derives the status.
func (c *DailyChecklist) Normalize() {
	c.Date = StartOfDay(c.Date)
	c.OverallStatus = DeriveStatus(c.Items, c.VerifiedBy != nil)
}

// DeriveStatus computes the overall status from item completion.
// A checklist with no items stays PENDING: there is nothing to complete.
func DeriveStatus(items []ChecklistItem, verified bool) ChecklistStatus {
	done := 0
	for _, item := range items {
		if item.IsCompleted {
			done++
		}
	}
	switch {
	case len(items) == 0 || done == 0:
		return ChecklistPending
	case done < len(items):
		return ChecklistInProgress
	case verified:
		return ChecklistVerified
	default:
		return ChecklistCompleted
	}
}

// CompleteItem marks item index as done by actor. Re-completing an item refreshes its
// notes and timestamp. CompletedBy on the checklist records whoever first made every
// item complete and is never overwritten.
func (c *DailyChecklist) CompleteItem(index int, by primitive.ObjectID, notes string, at time.Time) error {
	if index < 0 || index >= len(c.Items) {
		return ErrInvalidItemIndex
	}

	completer := by
	completedAt := at
	item := &c.Items[index]
	item.IsCompleted = true
	item.CompletedBy = &completer
	item.CompletedAt = &completedAt
	if notes != "" {
		item.Notes = notes
	}

	c.OverallStatus = DeriveStatus(c.Items, c.VerifiedBy != nil)
	if c.OverallStatus == ChecklistCompleted && c.CompletedBy == nil {
		c.CompletedBy = &completer
		c.CompletedAt = &completedAt
	}
	return nil
}

// Verify records supervisor sign-off. Only a COMPLETED, unverified checklist can be verified.
func (c *DailyChecklist) Verify(by primitive.ObjectID, notes string, at time.Time) error {
	if c.VerifiedBy != nil || c.OverallStatus == ChecklistVerified {
		return ErrAlreadyVerified
	}
	if c.OverallStatus != ChecklistCompleted {
		return ErrNotCompleted
	}

	verifier := by
	verifiedAt := at
	c.VerifiedBy = &verifier
	c.VerifiedAt = &verifiedAt
	c.VerificationNotes = notes
	c.OverallStatus = ChecklistVerified
	return nil
}

// ChecklistStats is the count of checklists per status.
type ChecklistStats struct {
	Total      int64                     `json:"total"`
	ByStatus   map[ChecklistStatus]int64 `json:"byStatus"`
	Completion float64                   `json:"completionRate"`
}

// NewChecklistStats fills in totals and the share of COMPLETED or VERIFIED checklists.
func NewChecklistStats(byStatus map[ChecklistStatus]int64) ChecklistStats {
	stats := ChecklistStats{ByStatus: map[ChecklistStatus]int64{}}
	for _, s := range ChecklistStatuses {
		stats.ByStatus[s] = byStatus[s]
		stats.Total += byStatus[s]
	}
	if stats.Total > 0 {
		done := stats.ByStatus[ChecklistCompleted] + stats.ByStatus[ChecklistVerified]
		stats.Completion = float64(done) / float64(stats.Total) * 100
	}
	return stats
}
