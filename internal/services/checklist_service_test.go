package services

import (
	"context"
	"regexp"
	"testing"

	"facility-ops-api-server/internal/access"
	"facility-ops-api-server/internal/apperror"
	"facility-ops-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var qrPattern = regexp.MustCompile(`^FL_[0-9a-f]{24}_3_[0-9A-F]{8}$`)

func fourItems() []ChecklistItemInput {
	return []ChecklistItemInput{{Name: "Mop floor"}, {Name: "Clean mirrors"}, {Name: "Restock soap"}, {Name: "Empty bins"}}
}

func TestFacilityToCompletedChecklistScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.onboard(t, "Tower A", "Jane Roe", "jane@example.com")
	user, err := f.db.Users.FindByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	manager := access.ActorFromUser(user)

	loc, section := f.floorWithSection(t, manager, res.Facility.ID, 3)
	assert.Regexp(t, qrPattern, loc.QRCode)
	assert.Contains(t, loc.QRCode, res.Facility.ID.Hex())

	checklist, err := f.svc.Checklists.Create(ctx, manager, DailyChecklistInput{
		SectionID:       section.ID,
		FloorLocationID: loc.ID,
		Items:           fourItems(),
	})
	require.NoError(t, err)
	assert.Equal(t, res.Facility.ID, checklist.FacilityID)
	assert.Equal(t, models.ChecklistPending, checklist.OverallStatus)

	for i := 0; i < 4; i++ {
		checklist, err = f.svc.Checklists.CompleteItem(ctx, manager, checklist.ID, i, "")
		require.NoError(t, err)
	}
	assert.Equal(t, models.ChecklistCompleted, checklist.OverallStatus)
	require.NotNil(t, checklist.CompletedBy)
	assert.Equal(t, manager.ID, *checklist.CompletedBy)

	scan, err := f.svc.Checklists.ByQRCode(ctx, manager, loc.QRCode, "")
	require.NoError(t, err)
	require.Len(t, scan.Checklists, 1)
	assert.Equal(t, models.ChecklistCompleted, scan.Checklists[0].OverallStatus)

	assert.Equal(t, []string{
		EventChecklistUpdated, EventChecklistUpdated, EventChecklistUpdated, EventChecklistUpdated, EventChecklistCompleted,
	}, f.events.types())
	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, EventChecklistCompleted, f.notifier.events[0].Event)
	assert.Equal(t, res.Facility.ID.Hex(), f.notifier.events[0].FacilityID)
}

func TestCompleteItemsAnyOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	facilityID := primitive.NewObjectID()
	loc, section := f.floorWithSection(t, admin(), facilityID, 3)

	workers := []access.Actor{
		member(models.RoleHousekeeping, facilityID),
		member(models.RoleHousekeeping, facilityID),
		member(models.RoleTechnician, facilityID),
		member(models.RoleHousekeeping, facilityID),
	}
	order := []int{2, 0, 3, 1}

	checklist, err := f.svc.Checklists.Create(ctx, workers[0], DailyChecklistInput{
		SectionID: section.ID, FloorLocationID: loc.ID, Items: fourItems(),
	})
	require.NoError(t, err)

	for n, idx := range order {
		checklist, err = f.svc.Checklists.CompleteItem(ctx, workers[n], checklist.ID, idx, "done")
		require.NoError(t, err)
		if n < len(order)-1 {
			assert.Equal(t, models.ChecklistInProgress, checklist.OverallStatus)
			assert.Nil(t, checklist.CompletedBy)
		}
	}
	assert.Equal(t, models.ChecklistCompleted, checklist.OverallStatus)
	assert.Equal(t, workers[3].ID, *checklist.CompletedBy)

	// re-completing an item keeps the original completer of the checklist
	checklist, err = f.svc.Checklists.CompleteItem(ctx, workers[0], checklist.ID, 1, "again")
	require.NoError(t, err)
	assert.Equal(t, workers[3].ID, *checklist.CompletedBy)
	assert.Equal(t, "again", checklist.Items[1].Notes)

	_, err = f.svc.Checklists.CompleteItem(ctx, workers[0], checklist.ID, 4, "")
	requireKind(t, err, apperror.KindValidation)
	_, err = f.svc.Checklists.CompleteItem(ctx, workers[0], checklist.ID, -1, "")
	requireKind(t, err, apperror.KindValidation)
}

func TestVerifyChecklist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	facilityID := primitive.NewObjectID()
	loc, section := f.floorWithSection(t, admin(), facilityID, 1)
	worker := member(models.RoleHousekeeping, facilityID)
	supervisor := member(models.RoleSupervisor, facilityID)

	checklist, err := f.svc.Checklists.Create(ctx, worker, DailyChecklistInput{
		SectionID: section.ID, FloorLocationID: loc.ID, Items: []ChecklistItemInput{{Name: "Mop"}, {Name: "Dust"}},
	})
	require.NoError(t, err)

	_, err = f.svc.Checklists.Verify(ctx, supervisor, checklist.ID, "")
	requireKind(t, err, apperror.KindConflict)

	_, err = f.svc.Checklists.CompleteItem(ctx, worker, checklist.ID, 0, "")
	require.NoError(t, err)
	_, err = f.svc.Checklists.Verify(ctx, supervisor, checklist.ID, "")
	requireKind(t, err, apperror.KindConflict)

	_, err = f.svc.Checklists.CompleteItem(ctx, worker, checklist.ID, 1, "")
	require.NoError(t, err)

	_, err = f.svc.Checklists.Verify(ctx, worker, checklist.ID, "")
	requireKind(t, err, apperror.KindForbidden)

	verified, err := f.svc.Checklists.Verify(ctx, supervisor, checklist.ID, "looks good")
	require.NoError(t, err)
	assert.Equal(t, models.ChecklistVerified, verified.OverallStatus)
	assert.Equal(t, supervisor.ID, *verified.VerifiedBy)
	assert.Equal(t, "looks good", verified.VerificationNotes)

	_, err = f.svc.Checklists.Verify(ctx, supervisor, checklist.ID, "")
	requireKind(t, err, apperror.KindConflict)
	_, err = f.svc.Checklists.CompleteItem(ctx, worker, checklist.ID, 0, "")
	requireKind(t, err, apperror.KindConflict)

	stored, err := f.db.DailyChecklists.FindByID(ctx, checklist.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ChecklistVerified, stored.OverallStatus)
}

func TestEmptyChecklistCannotBeVerified(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	facilityID := primitive.NewObjectID()
	loc, section := f.floorWithSection(t, admin(), facilityID, 1)

	checklist, err := f.svc.Checklists.Create(ctx, admin(), DailyChecklistInput{
		FacilityID: &facilityID, SectionID: section.ID, FloorLocationID: loc.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ChecklistPending, checklist.OverallStatus)

	_, err = f.svc.Checklists.CompleteItem(ctx, admin(), checklist.ID, 0, "")
	requireKind(t, err, apperror.KindValidation)
	_, err = f.svc.Checklists.Verify(ctx, admin(), checklist.ID, "")
	requireKind(t, err, apperror.KindConflict)
}

func TestStaleChecklistWriteConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	facilityID := primitive.NewObjectID()
	loc, section := f.floorWithSection(t, admin(), facilityID, 1)
	worker := member(models.RoleHousekeeping, facilityID)

	checklist, err := f.svc.Checklists.Create(ctx, worker, DailyChecklistInput{
		SectionID: section.ID, FloorLocationID: loc.ID, Items: fourItems(),
	})
	require.NoError(t, err)

	// two requests load the same version; the second write loses
	a, err := f.db.DailyChecklists.FindByID(ctx, checklist.ID)
	require.NoError(t, err)
	b, err := f.db.DailyChecklists.FindByID(ctx, checklist.ID)
	require.NoError(t, err)

	require.NoError(t, a.CompleteItem(0, worker.ID, "", testNow))
	require.NoError(t, f.svc.Checklists.base.Save(ctx, worker, a))
	require.NoError(t, b.CompleteItem(1, worker.ID, "", testNow))
	requireKind(t, f.svc.Checklists.base.Save(ctx, worker, b), apperror.KindConflict)
}

func TestDuplicateChecklistForSameDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	facilityID := primitive.NewObjectID()
	loc, section := f.floorWithSection(t, admin(), facilityID, 1)
	in := DailyChecklistInput{FacilityID: &facilityID, SectionID: section.ID, FloorLocationID: loc.ID, Date: "2026-03-14", Items: fourItems()}

	_, err := f.svc.Checklists.Create(ctx, admin(), in)
	require.NoError(t, err)
	_, err = f.svc.Checklists.Create(ctx, admin(), in)
	requireKind(t, err, apperror.KindConflict)

	in.Date = "2026-03-15"
	_, err = f.svc.Checklists.Create(ctx, admin(), in)
	require.NoError(t, err)

	in.Date = "14/03/2026"
	_, err = f.svc.Checklists.Create(ctx, admin(), in)
	requireKind(t, err, apperror.KindValidation)
}

func TestChecklistFromTemplate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	facilityID := primitive.NewObjectID()
	loc, section := f.floorWithSection(t, admin(), facilityID, 1)

	template, err := f.svc.Hygiene.CreateChecklist(ctx, admin(), &models.HygieneChecklist{
		SectionID: section.ID,
		Name:      "Washroom routine",
		Items:     []models.TemplateItem{{Name: "Mop"}, {Name: "Restock", Description: "Soap and tissue"}},
	}, &facilityID)
	require.NoError(t, err)
	assert.Equal(t, models.FrequencyDaily, template.Frequency)

	checklist, err := f.svc.Checklists.Create(ctx, admin(), DailyChecklistInput{
		FacilityID:         &facilityID,
		SectionID:          section.ID,
		FloorLocationID:    loc.ID,
		HygieneChecklistID: &template.ID,
		Items:              []ChecklistItemInput{{Name: "ignored"}},
	})
	require.NoError(t, err)
	require.Len(t, checklist.Items, 2)
	assert.Equal(t, "Soap and tissue", checklist.Items[1].Description)
	assert.False(t, checklist.Items[1].IsCompleted)

	otherFacility := primitive.NewObjectID()
	otherLoc, _ := f.floorWithSection(t, admin(), otherFacility, 1)
	_, err = f.svc.Checklists.Create(ctx, admin(), DailyChecklistInput{
		FacilityID: &facilityID, SectionID: section.ID, FloorLocationID: otherLoc.ID,
	})
	requireKind(t, err, apperror.KindValidation)
}

func TestQRLookup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	facilityID := primitive.NewObjectID()
	manager := member(models.RoleFacilityManager, facilityID)
	loc, _ := f.floorWithSection(t, manager, facilityID, 2)

	scan, err := f.svc.Checklists.ByQRCode(ctx, manager, loc.QRCode, "2026-01-01")
	require.NoError(t, err)
	assert.NotNil(t, scan.Checklists)
	assert.Empty(t, scan.Checklists)
	assert.Equal(t, "2026-01-01", scan.Date)

	_, err = f.svc.Checklists.ByQRCode(ctx, manager, "FL_unknown_1_ABCDEF12", "")
	requireKind(t, err, apperror.KindNotFound)

	outsider := member(models.RoleFacilityManager, primitive.NewObjectID())
	_, err = f.svc.Checklists.ByQRCode(ctx, outsider, loc.QRCode, "")
	requireKind(t, err, apperror.KindForbidden)

	loc.IsActive = false
	_, err = f.svc.FloorLocations.Update(ctx, manager, loc.ID, loc)
	require.NoError(t, err)
	_, err = f.svc.Checklists.ByQRCode(ctx, manager, loc.QRCode, "")
	requireKind(t, err, apperror.KindNotFound)

	active, _ := f.floorWithSection(t, manager, facilityID, 5)
	require.NoError(t, f.svc.FloorLocations.Delete(ctx, manager, active.ID))
	_, err = f.svc.Checklists.ByQRCode(ctx, manager, active.QRCode, "")
	requireKind(t, err, apperror.KindNotFound)
}

func TestChecklistListAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	facilityID := primitive.NewObjectID()
	loc, section := f.floorWithSection(t, admin(), facilityID, 1)
	manager := member(models.RoleFacilityManager, facilityID)

	for _, day := range []string{"2026-03-01", "2026-03-02", "2026-03-03"} {
		_, err := f.svc.Checklists.Create(ctx, manager, DailyChecklistInput{
			SectionID: section.ID, FloorLocationID: loc.ID, Date: day, Items: []ChecklistItemInput{{Name: "Mop"}},
		})
		require.NoError(t, err)
	}
	list, _, err := f.svc.Checklists.List(ctx, manager, ChecklistFilter{From: "2026-03-02", To: "2026-03-03"})
	require.NoError(t, err)
	require.Len(t, list, 2)

	_, err = f.svc.Checklists.CompleteItem(ctx, manager, list[0].ID, 0, "")
	require.NoError(t, err)

	completed, page, err := f.svc.Checklists.List(ctx, manager, ChecklistFilter{Status: "completed"})
	require.NoError(t, err)
	assert.Len(t, completed, 1)
	assert.Equal(t, int64(1), page.TotalCount)

	_, _, err = f.svc.Checklists.List(ctx, manager, ChecklistFilter{Status: "DONE"})
	requireKind(t, err, apperror.KindValidation)

	stats, err := f.svc.Checklists.Stats(ctx, manager, nil, "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.ByStatus[models.ChecklistCompleted])
	assert.Equal(t, int64(2), stats.ByStatus[models.ChecklistPending])

	outsider := member(models.RoleFacilityManager, primitive.NewObjectID())
	stats, err = f.svc.Checklists.Stats(ctx, outsider, nil, "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.Zero(t, stats.Total)

	_, err = f.svc.Checklists.Stats(ctx, manager, nil, "2026-03-31", "2026-03-01")
	requireKind(t, err, apperror.KindValidation)
}
