package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"facility-ops-api-server/internal/access"
	"facility-ops-api-server/internal/apperror"
	"facility-ops-api-server/internal/models"
	"facility-ops-api-server/internal/webhook"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	EventChecklistUpdated   = "checklist.updated"
	EventChecklistCompleted = "checklist.completed"
	EventChecklistVerified  = "checklist.verified"
)

// DateLayout is the calendar date format accepted in query strings and bodies.
const DateLayout = "2006-01-02"

// ParseDate parses YYYY-MM-DD in server-local time. An empty string yields now.
func ParseDate(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now, nil
	}
	t, err := time.ParseInLocation(DateLayout, raw, now.Location())
	if err != nil {
		return time.Time{}, apperror.Validation("date must be formatted as YYYY-MM-DD")
	}
	return t, nil
}

type ChecklistItemInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type DailyChecklistInput struct {
	FacilityID         *primitive.ObjectID  `json:"facilityId"`
	SectionID          primitive.ObjectID   `json:"sectionId"`
	FloorLocationID    primitive.ObjectID   `json:"floorLocationId"`
	HygieneChecklistID *primitive.ObjectID  `json:"hygieneChecklistId"`
	Date               string               `json:"date"`
	Items              []ChecklistItemInput `json:"items"`
}

// ChecklistFilter are the listing filters of daily checklists.
type ChecklistFilter struct {
	FacilityID      *primitive.ObjectID
	SectionID       *primitive.ObjectID
	FloorLocationID *primitive.ObjectID
	Status          string
	From            string
	To              string
	Page            models.PageQuery
}

type ChecklistService struct {
	checklists DailyChecklistStore
	sections   ScopedStore[models.HygieneSection, *models.HygieneSection]
	templates  ScopedStore[models.HygieneChecklist, *models.HygieneChecklist]
	floors     *FloorLocationService
	base       *ScopedService[models.DailyChecklist, *models.DailyChecklist]
	notifier   ChecklistNotifier
	events     EventBroadcaster
	logger     *zap.Logger
	now        func() time.Time
}

// NewChecklistService wires the daily checklist flow. notifier and events may be nil.
func NewChecklistService(
	checklists DailyChecklistStore,
	sections ScopedStore[models.HygieneSection, *models.HygieneSection],
	templates ScopedStore[models.HygieneChecklist, *models.HygieneChecklist],
	floors *FloorLocationService,
	notifier ChecklistNotifier,
	events EventBroadcaster,
	logger *zap.Logger,
) *ChecklistService {
	base := NewScopedService[models.DailyChecklist](ScopedStore[models.DailyChecklist, *models.DailyChecklist](checklists), "Daily checklist", logger).
		WithConflictMessage("A checklist already exists for this section, floor and date")
	return &ChecklistService{
		checklists: checklists,
		sections:   sections,
		templates:  templates,
		floors:     floors,
		base:       base,
		notifier:   notifier,
		events:     events,
		logger:     logger,
		now:        time.Now,
	}
}

// Create builds a checklist for a day. Items are copied from the hygiene checklist
// template when one is referenced, otherwise taken from the input.
func (s *ChecklistService) Create(ctx context.Context, actor access.Actor, in DailyChecklistInput) (*models.DailyChecklist, error) {
	facilityID, err := access.ResolveCreateFacility(actor, in.FacilityID)
	if err != nil {
		return nil, err
	}
	date, err := ParseDate(in.Date, s.now())
	if err != nil {
		return nil, err
	}
	if in.SectionID.IsZero() {
		return nil, apperror.Validation("sectionId is required")
	}
	if in.FloorLocationID.IsZero() {
		return nil, apperror.Validation("floorLocationId is required")
	}

	section, err := s.sections.FindByID(ctx, in.SectionID)
	if err != nil {
		return nil, storeError(err, "Hygiene section", "")
	}
	if section.FacilityID != facilityID {
		return nil, apperror.Validation("Hygiene section belongs to a different facility")
	}
	floor, err := s.floors.store.FindByID(ctx, in.FloorLocationID)
	if err != nil {
		return nil, storeError(err, "Floor location", "")
	}
	if floor.FacilityID != facilityID {
		return nil, apperror.Validation("Floor location belongs to a different facility")
	}

	checklist := &models.DailyChecklist{
		SectionID:       section.ID,
		FloorLocationID: floor.ID,
		Date:            date,
	}

	if in.HygieneChecklistID != nil && !in.HygieneChecklistID.IsZero() {
		template, err := s.templates.FindByID(ctx, *in.HygieneChecklistID)
		if err != nil {
			return nil, storeError(err, "Hygiene checklist", "")
		}
		if template.FacilityID != facilityID || template.SectionID != section.ID {
			return nil, apperror.Validation("Hygiene checklist does not belong to this section")
		}
		checklist.HygieneChecklistID = template.ID
		checklist.Items = template.ChecklistItems()
	} else {
		checklist.Items = make([]models.ChecklistItem, 0, len(in.Items))
		for _, item := range in.Items {
			checklist.Items = append(checklist.Items, models.ChecklistItem{
				Name:        strings.TrimSpace(item.Name),
				Description: item.Description,
			})
		}
	}

	return s.base.Create(ctx, actor, checklist, &facilityID)
}

func (s *ChecklistService) Get(ctx context.Context, actor access.Actor, id primitive.ObjectID) (*models.DailyChecklist, error) {
	return s.base.Get(ctx, actor, id)
}

func (s *ChecklistService) List(ctx context.Context, actor access.Actor, f ChecklistFilter) ([]models.DailyChecklist, models.Pagination, error) {
	params := ListParams{FacilityID: f.FacilityID, Equals: map[string]interface{}{}, Page: f.Page}
	if f.SectionID != nil {
		params.Equals["sectionId"] = *f.SectionID
	}
	if f.FloorLocationID != nil {
		params.Equals["floorLocationId"] = *f.FloorLocationID
	}
	if f.Status != "" {
		status := strings.ToUpper(f.Status)
		if !models.IsValidChecklistStatus(status) {
			return nil, models.Pagination{}, apperror.Validation("status must be one of PENDING, IN_PROGRESS, COMPLETED, VERIFIED")
		}
		params.Equals["overallStatus"] = status
	}
	if f.From != "" || f.To != "" {
		r, err := s.dateRange(f.From, f.To)
		if err != nil {
			return nil, models.Pagination{}, err
		}
		params.Range = &r
	}
	return s.base.List(ctx, actor, params)
}

// dateRange turns inclusive calendar days into a half-open range on "date".
// A missing bound collapses onto the other one.
func (s *ChecklistService) dateRange(from, to string) (models.TimeRange, error) {
	if from == "" {
		from = to
	}
	if to == "" {
		to = from
	}
	now := s.now()
	start, err := ParseDate(from, now)
	if err != nil {
		return models.TimeRange{}, err
	}
	end, err := ParseDate(to, now)
	if err != nil {
		return models.TimeRange{}, err
	}
	start, _ = models.DayBounds(start)
	_, end = models.DayBounds(end)
	if !start.Before(end) {
		return models.TimeRange{}, apperror.Validation("from must not be after to")
	}
	return models.TimeRange{Field: "date", From: start, To: end}, nil
}

// CompleteItem marks one item done. A lost race on the version guard is a 409.
func (s *ChecklistService) CompleteItem(ctx context.Context, actor access.Actor, id primitive.ObjectID, index int, notes string) (*models.DailyChecklist, error) {
	checklist, err := s.base.load(ctx, actor, id, access.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if checklist.OverallStatus == models.ChecklistVerified {
		return nil, apperror.Conflict("Checklist has already been verified")
	}

	before := checklist.OverallStatus
	if err := checklist.CompleteItem(index, actor.ID, strings.TrimSpace(notes), s.now()); err != nil {
		if errors.Is(err, models.ErrInvalidItemIndex) {
			return nil, apperror.Validation("Invalid item index %d", index)
		}
		return nil, apperror.Internal(err, "Failed to update checklist")
	}
	if err := s.base.Save(ctx, actor, checklist); err != nil {
		return nil, err
	}

	s.publish(ctx, EventChecklistUpdated, checklist, actor, false)
	if before != models.ChecklistCompleted && checklist.OverallStatus == models.ChecklistCompleted {
		s.publish(ctx, EventChecklistCompleted, checklist, actor, true)
	}
	return checklist, nil
}

// Verify records supervisor sign-off on a COMPLETED checklist.
func (s *ChecklistService) Verify(ctx context.Context, actor access.Actor, id primitive.ObjectID, notes string) (*models.DailyChecklist, error) {
	checklist, err := s.base.load(ctx, actor, id, access.ActionVerify)
	if err != nil {
		return nil, err
	}
	if err := checklist.Verify(actor.ID, strings.TrimSpace(notes), s.now()); err != nil {
		switch {
		case errors.Is(err, models.ErrAlreadyVerified):
			return nil, apperror.Conflict("Checklist has already been verified")
		case errors.Is(err, models.ErrNotCompleted):
			return nil, apperror.Conflict("Checklist must be COMPLETED before it can be verified")
		}
		return nil, apperror.Internal(err, "Failed to verify checklist")
	}
	if err := s.base.Save(ctx, actor, checklist); err != nil {
		return nil, err
	}

	s.publish(ctx, EventChecklistVerified, checklist, actor, true)
	return checklist, nil
}

func (s *ChecklistService) publish(ctx context.Context, event string, c *models.DailyChecklist, actor access.Actor, hook bool) {
	if s.events != nil {
		s.events.Broadcast(c.FacilityID.Hex(), event, c)
	}
	if !hook || s.notifier == nil {
		return
	}
	err := s.notifier.Notify(ctx, webhook.ChecklistEvent{
		Event:         event,
		ChecklistID:   c.ID.Hex(),
		FacilityID:    c.FacilityID.Hex(),
		SectionID:     c.SectionID.Hex(),
		FloorID:       c.FloorLocationID.Hex(),
		Date:          c.Date.Local().Format(DateLayout),
		OverallStatus: string(c.OverallStatus),
		ActorID:       actor.ID.Hex(),
		OccurredAt:    s.now(),
	})
	if err != nil {
		s.logger.Warn("checklist webhook failed", zap.String("event", event), zap.String("checklist_id", c.ID.Hex()), zap.Error(err))
	}
}

// QRResult is what a QR scan returns: the floor and its checklists for the day.
type QRResult struct {
	FloorLocation *models.FloorLocation   `json:"floorLocation"`
	Date          string                  `json:"date"`
	Checklists    []models.DailyChecklist `json:"checklists"`
}

// ByQRCode resolves a scanned code to the day's checklists of that floor.
func (s *ChecklistService) ByQRCode(ctx context.Context, actor access.Actor, code, date string) (*QRResult, error) {
	day, err := ParseDate(date, s.now())
	if err != nil {
		return nil, err
	}
	loc, err := s.floors.ResolveQR(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.ActionRead, loc.FacilityID); err != nil {
		return nil, err
	}

	from, to := models.DayBounds(day)
	checklists, err := s.checklists.FindByLocationAndDay(ctx, loc.ID, from, to)
	if err != nil {
		return nil, storeError(err, "Daily checklist", "")
	}
	if checklists == nil {
		checklists = []models.DailyChecklist{}
	}
	return &QRResult{FloorLocation: loc, Date: from.Format(DateLayout), Checklists: checklists}, nil
}

// Stats counts checklists per status within the caller's scope. Without a range
// it covers today.
func (s *ChecklistService) Stats(ctx context.Context, actor access.Actor, facilityID *primitive.ObjectID, from, to string) (models.ChecklistStats, error) {
	scope, err := access.ListScope(actor, facilityID)
	if err != nil {
		return models.ChecklistStats{}, err
	}
	r, err := s.dateRange(from, to)
	if err != nil {
		return models.ChecklistStats{}, err
	}
	counts, err := s.checklists.CountByStatus(ctx, scope, r.From, r.To)
	if err != nil {
		return models.ChecklistStats{}, storeError(err, "Daily checklist", "")
	}
	return models.NewChecklistStats(counts), nil
}

func (s *ChecklistService) Delete(ctx context.Context, actor access.Actor, id primitive.ObjectID) error {
	return s.base.Delete(ctx, actor, id)
}
