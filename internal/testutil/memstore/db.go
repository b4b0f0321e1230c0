package memstore

import "facility-ops-api-server/internal/models"

// DB bundles one of every store. Tx covers the facility and user stores, the two
// collections written by facility onboarding.
type DB struct {
	Facilities        *FacilityStore
	Users             *UserStore
	Catalogs          *CatalogStore
	IoTCatalogs       *CatalogStore
	FloorLocations    *FloorLocationStore
	DailyChecklists   *DailyChecklistStore
	HygieneSections   *Collection[models.HygieneSection, *models.HygieneSection]
	HygieneChecklists *Collection[models.HygieneChecklist, *models.HygieneChecklist]
	Rosters           *Collection[models.Roster, *models.Roster]
	LeavePlanners     *Collection[models.LeavePlanner, *models.LeavePlanner]
	ShiftSchedules    *Collection[models.ShiftSchedule, *models.ShiftSchedule]
	WeekoffPlanners   *Collection[models.WeekoffPlanner, *models.WeekoffPlanner]
	ServiceProviders  *Collection[models.ServiceProvider, *models.ServiceProvider]
	Tx                *Transactor
}

func New() *DB {
	db := &DB{
		Facilities:        NewFacilityStore(),
		Users:             NewUserStore(),
		Catalogs:          NewCatalogStore(),
		IoTCatalogs:       NewCatalogStore(),
		FloorLocations:    NewFloorLocationStore(),
		DailyChecklists:   NewDailyChecklistStore(),
		HygieneSections:   NewCollection[models.HygieneSection](),
		HygieneChecklists: NewCollection[models.HygieneChecklist](),
		Rosters:           NewCollection[models.Roster](),
		LeavePlanners:     NewCollection[models.LeavePlanner](),
		ShiftSchedules:    NewCollection[models.ShiftSchedule](),
		WeekoffPlanners:   NewCollection[models.WeekoffPlanner](),
		ServiceProviders: NewCollection[models.ServiceProvider](
			func(p *models.ServiceProvider) string {
				return p.FacilityID.Hex() + "/" + p.ProviderNameKey + "/" + p.Category
			},
		),
	}
	db.Tx = NewTransactor(db.Facilities, db.Users)
	return db
}
