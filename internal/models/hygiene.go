package models

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HygieneSection is an area of a facility that gets cleaned on a schedule (lobby, washrooms, ...).
type HygieneSection struct {
	ScopedBase      `bson:",inline"`
	Name            string             `bson:"name" json:"name"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	FloorLocationID primitive.ObjectID `bson:"floorLocationId,omitempty" json:"floorLocationId,omitempty"`
	IsActive        bool               `bson:"isActive" json:"isActive"`
}

func (s *HygieneSection) Validate() error {
	if s.FacilityID.IsZero() {
		return errors.New("facilityId is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

const (
	FrequencyDaily   = "DAILY"
	FrequencyWeekly  = "WEEKLY"
	FrequencyMonthly = "MONTHLY"
)

type TemplateItem struct {
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
}

// TemplateFile points at the original spreadsheet a checklist's items were imported from.
type TemplateFile struct {
	Key        string    `bson:"key" json:"key"`
	FileName   string    `bson:"fileName" json:"fileName"`
	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

// HygieneChecklist is the template of tasks for a section. Daily checklists copy its items.
type HygieneChecklist struct {
	ScopedBase   `bson:",inline"`
	SectionID    primitive.ObjectID `bson:"sectionId" json:"sectionId"`
	Name         string             `bson:"name" json:"name"`
	Frequency    string             `bson:"frequency" json:"frequency"`
	Items        []TemplateItem     `bson:"items" json:"items"`
	TemplateFile *TemplateFile      `bson:"templateFile,omitempty" json:"templateFile,omitempty"`
}

func (c *HygieneChecklist) Validate() error {
	switch {
	case c.FacilityID.IsZero():
		return errors.New("facilityId is required")
	case c.SectionID.IsZero():
		return errors.New("sectionId is required")
	case strings.TrimSpace(c.Name) == "":
		return errors.New("name is required")
	}
	switch c.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
	default:
		return errors.New("frequency must be one of DAILY, WEEKLY, MONTHLY")
	}
	for _, item := range c.Items {
		if strings.TrimSpace(item.Name) == "" {
			return errors.New("every template item needs a name")
		}
	}
	return nil
}

func (c *HygieneChecklist) Normalize() {
	if c.Frequency == "" {
		c.Frequency = FrequencyDaily
	}
	c.Frequency = strings.ToUpper(c.Frequency)
}

// ChecklistItems expands the template into fresh, uncompleted daily checklist items.
func (c *HygieneChecklist) ChecklistItems() []ChecklistItem {
	items := make([]ChecklistItem, 0, len(c.Items))
	for _, t := range c.Items {
		items = append(items, ChecklistItem{Name: t.Name, Description: t.Description})
	}
	return items
}
