package services

import (
	"time"

	"facility-ops-api-server/internal/auth"
	"facility-ops-api-server/internal/models"
	"facility-ops-api-server/internal/s3"

	"go.uber.org/zap"
)

// Stores groups every persistence dependency.
type Stores struct {
	Tx                Transactor
	Facilities        FacilityStore
	Users             UserStore
	Catalogs          CatalogStore
	IoTCatalogs       CatalogStore
	FloorLocations    FloorLocationStore
	DailyChecklists   DailyChecklistStore
	HygieneSections   ScopedStore[models.HygieneSection, *models.HygieneSection]
	HygieneChecklists ScopedStore[models.HygieneChecklist, *models.HygieneChecklist]
	Rosters           ScopedStore[models.Roster, *models.Roster]
	LeavePlanners     ScopedStore[models.LeavePlanner, *models.LeavePlanner]
	ShiftSchedules    ScopedStore[models.ShiftSchedule, *models.ShiftSchedule]
	WeekoffPlanners   ScopedStore[models.WeekoffPlanner, *models.WeekoffPlanner]
	ServiceProviders  ScopedStore[models.ServiceProvider, *models.ServiceProvider]
}

// Deps are the optional side channels. Nil fields disable the feature.
type Deps struct {
	Cache            LocationCache
	Notifier         ChecklistNotifier
	Events           EventBroadcaster
	Files            s3.FileStore
	Tokens           *auth.TokenService
	CredentialWindow time.Duration
}

type Services struct {
	Auth             *AuthService
	Facilities       *FacilityService
	Employees        *EmployeeService
	Catalogs         *CatalogService
	IoTCatalogs      *CatalogService
	FloorLocations   *FloorLocationService
	Checklists       *ChecklistService
	Hygiene          *HygieneService
	Rosters          *ScopedService[models.Roster, *models.Roster]
	LeavePlanners    *ScopedService[models.LeavePlanner, *models.LeavePlanner]
	ShiftSchedules   *ScopedService[models.ShiftSchedule, *models.ShiftSchedule]
	WeekoffPlanners  *ScopedService[models.WeekoffPlanner, *models.WeekoffPlanner]
	ServiceProviders *ScopedService[models.ServiceProvider, *models.ServiceProvider]
}

func New(st Stores, deps Deps, logger *zap.Logger) *Services {
	catalogs := NewCatalogService(models.CatalogRegular, st.Catalogs, st.Facilities, logger)
	iotCatalogs := NewCatalogService(models.CatalogIoT, st.IoTCatalogs, st.Facilities, logger)
	floors := NewFloorLocationService(st.FloorLocations, deps.Cache, logger)

	return &Services{
		Auth:           NewAuthService(st.Users, deps.Tokens, logger),
		Facilities:     NewFacilityService(st.Facilities, st.Users, st.Tx, catalogs, iotCatalogs, deps.CredentialWindow, logger),
		Employees:      NewEmployeeService(st.Users, logger),
		Catalogs:       catalogs,
		IoTCatalogs:    iotCatalogs,
		FloorLocations: floors,
		Checklists: NewChecklistService(st.DailyChecklists, st.HygieneSections, st.HygieneChecklists, floors,
			deps.Notifier, deps.Events, logger),
		Hygiene:         NewHygieneService(st.HygieneSections, st.HygieneChecklists, deps.Files, logger),
		Rosters:         NewScopedService[models.Roster](st.Rosters, "Roster", logger),
		LeavePlanners:   NewScopedService[models.LeavePlanner](st.LeavePlanners, "Leave planner", logger),
		ShiftSchedules:  NewScopedService[models.ShiftSchedule](st.ShiftSchedules, "Shift schedule", logger),
		WeekoffPlanners: NewScopedService[models.WeekoffPlanner](st.WeekoffPlanners, "Weekoff planner", logger),
		ServiceProviders: NewScopedService[models.ServiceProvider](st.ServiceProviders, "Service provider", logger).
			WithConflictMessage("A service provider with this name and category already exists for this facility"),
	}
}
