package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"facility-ops-api-server/internal/access"
	"facility-ops-api-server/internal/apperror"
	"facility-ops-api-server/internal/database"
	"facility-ops-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CatalogService manages one kind of per-facility service catalog.
type CatalogService struct {
	kind       models.CatalogKind
	store      CatalogStore
	facilities FacilityStore
	logger     *zap.Logger
	now        func() time.Time
}

func NewCatalogService(kind models.CatalogKind, store CatalogStore, facilities FacilityStore, logger *zap.Logger) *CatalogService {
	return &CatalogService{kind: kind, store: store, facilities: facilities, logger: logger, now: time.Now}
}

func (s *CatalogService) label() string {
	if s.kind == models.CatalogIoT {
		return "IoT service catalog"
	}
	return "Service catalog"
}

func (s *CatalogService) build(facility *models.Facility, createdBy primitive.ObjectID) (*models.ServiceCatalog, error) {
	now := s.now()
	catalog := &models.ServiceCatalog{
		ScopedBase: models.ScopedBase{
			FacilityID: facility.ID,
			CreatedBy:  createdBy,
			UpdatedBy:  createdBy,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		Kind:         s.kind,
		FacilityName: facility.SiteName,
		FacilityType: facility.FacilityType,
		Categories:   []models.ServiceCategory{},
	}
	for _, cat := range defaultCategories(s.kind, facility.FacilityType) {
		if _, err := catalog.AddCategory(cat, now); err != nil {
			return nil, fmt.Errorf("default %s category %q: %w", s.kind, cat.Name, err)
		}
	}
	return catalog, nil
}

// InitializeDefault returns the facility's catalog, creating the default one when
// none exists. A concurrent initializer that wins the insert is returned as is.
func (s *CatalogService) InitializeDefault(ctx context.Context, facility *models.Facility, createdBy primitive.ObjectID) (*models.ServiceCatalog, error) {
	existing, err := s.store.FindByFacility(ctx, facility.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	if createdBy.IsZero() {
		createdBy = facility.ID
	}
	catalog, err := s.build(facility, createdBy)
	if err != nil {
		return nil, err
	}

	err = s.store.Insert(ctx, catalog)
	if errors.Is(err, database.ErrDuplicate) {
		s.logger.Debug("catalog initialized concurrently, returning winner",
			zap.String("kind", string(s.kind)),
			zap.String("facility_id", facility.ID.Hex()),
		)
		return s.store.FindByFacility(ctx, facility.ID)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("default catalog initialized",
		zap.String("kind", string(s.kind)),
		zap.String("facility_id", facility.ID.Hex()),
		zap.Int("services", catalog.TotalServicesAvailable),
	)
	return catalog, nil
}

func (s *CatalogService) facility(ctx context.Context, id primitive.ObjectID) (*models.Facility, error) {
	f, err := s.facilities.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Facility", "")
	}
	return f, nil
}

// Initialize is the explicit endpoint: it refuses to overwrite an existing catalog.
func (s *CatalogService) Initialize(ctx context.Context, actor access.Actor, facilityID primitive.ObjectID) (*models.ServiceCatalog, error) {
	if err := access.Authorize(actor, access.ActionCreate, facilityID); err != nil {
		return nil, err
	}
	facility, err := s.facility(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.FindByFacility(ctx, facilityID); err == nil {
		return nil, apperror.Conflict("%s already initialized for this facility", s.label())
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, storeError(err, s.label(), "")
	}

	catalog, err := s.build(facility, actor.ID)
	if err != nil {
		return nil, apperror.Internal(err, "Failed to build default catalog")
	}
	if err := s.store.Insert(ctx, catalog); err != nil {
		return nil, storeError(err, s.label(), s.label()+" already initialized for this facility")
	}
	return catalog, nil
}

// Get returns the facility's catalog, lazily creating the default one.
func (s *CatalogService) Get(ctx context.Context, actor access.Actor, facilityID primitive.ObjectID) (*models.ServiceCatalog, error) {
	if err := access.Authorize(actor, access.ActionRead, facilityID); err != nil {
		return nil, err
	}
	catalog, err := s.store.FindByFacility(ctx, facilityID)
	if err == nil {
		return catalog, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, storeError(err, s.label(), "")
	}

	facility, err := s.facility(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	catalog, err = s.InitializeDefault(ctx, facility, actor.ID)
	if err != nil {
		return nil, storeError(err, s.label(), "")
	}
	return catalog, nil
}

func catalogError(err error) error {
	switch {
	case errors.Is(err, models.ErrCategoryNotFound), errors.Is(err, models.ErrServiceNotFound):
		return apperror.NotFound("%s", capitalize(err.Error()))
	case errors.Is(err, models.ErrDuplicateCategory), errors.Is(err, models.ErrDuplicateService):
		return apperror.Conflict("%s", capitalize(err.Error()))
	case errors.Is(err, models.ErrInvalidIoTStatus):
		return apperror.Validation("Status must be one of ACTIVE, INACTIVE, MAINTENANCE")
	case errors.Is(err, models.ErrCategoryNameEmpty), errors.Is(err, models.ErrServiceNameEmpty):
		return apperror.Validation("%s", capitalize(err.Error()))
	default:
		return err
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// mutate loads the live catalog, applies fn and writes it back under the version guard.
func (s *CatalogService) mutate(ctx context.Context, actor access.Actor, facilityID primitive.ObjectID, fn func(c *models.ServiceCatalog, now time.Time) error) (*models.ServiceCatalog, error) {
	if err := access.Authorize(actor, access.ActionUpdate, facilityID); err != nil {
		return nil, err
	}
	catalog, err := s.store.FindByFacility(ctx, facilityID)
	if err != nil {
		return nil, storeError(err, s.label(), "")
	}

	now := s.now()
	if err := fn(catalog, now); err != nil {
		return nil, catalogError(err)
	}
	catalog.UpdatedBy = actor.ID
	catalog.UpdatedAt = now

	if err := s.store.Replace(ctx, catalog); err != nil {
		return nil, storeError(err, s.label(), "")
	}
	return catalog, nil
}

func (s *CatalogService) AddCategory(ctx context.Context, actor access.Actor, facilityID primitive.ObjectID, in models.CategoryInput) (*models.ServiceCatalog, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperror.Validation("Category name is required")
	}
	return s.mutate(ctx, actor, facilityID, func(c *models.ServiceCatalog, now time.Time) error {
		_, err := c.AddCategory(in, now)
		return err
	})
}

func (s *CatalogService) AddService(ctx context.Context, actor access.Actor, facilityID primitive.ObjectID, categoryID string, in models.ServiceInput) (*models.ServiceCatalog, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperror.Validation("Service name is required")
	}
	return s.mutate(ctx, actor, facilityID, func(c *models.ServiceCatalog, now time.Time) error {
		_, err := c.AddService(categoryID, in, now)
		return err
	})
}

func (s *CatalogService) UpdateService(ctx context.Context, actor access.Actor, facilityID primitive.ObjectID, categoryID, serviceID string, in models.ServiceUpdate) (*models.ServiceCatalog, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperror.Validation("Service name cannot be empty")
	}
	return s.mutate(ctx, actor, facilityID, func(c *models.ServiceCatalog, now time.Time) error {
		_, err := c.UpdateService(categoryID, serviceID, in, now)
		return err
	})
}

func (s *CatalogService) ToggleService(ctx context.Context, actor access.Actor, facilityID primitive.ObjectID, categoryID, serviceID string) (*models.ServiceCatalog, error) {
	return s.mutate(ctx, actor, facilityID, func(c *models.ServiceCatalog, now time.Time) error {
		_, err := c.ToggleService(categoryID, serviceID, now)
		return err
	})
}

func (s *CatalogService) RemoveService(ctx context.Context, actor access.Actor, facilityID primitive.ObjectID, categoryID, serviceID string) (*models.ServiceCatalog, error) {
	return s.mutate(ctx, actor, facilityID, func(c *models.ServiceCatalog, now time.Time) error {
		return c.RemoveService(categoryID, serviceID)
	})
}

// SetIoTEnabled switches the IoT integration flag. Only valid on the IoT catalog.
func (s *CatalogService) SetIoTEnabled(ctx context.Context, actor access.Actor, facilityID primitive.ObjectID, enabled bool) (*models.ServiceCatalog, error) {
	if s.kind != models.CatalogIoT {
		return nil, apperror.Validation("iotEnabled only applies to the IoT service catalog")
	}
	return s.mutate(ctx, actor, facilityID, func(c *models.ServiceCatalog, now time.Time) error {
		c.IoTEnabled = enabled
		return nil
	})
}

// Delete soft-deletes the catalog. A later Get initializes a fresh default one.
func (s *CatalogService) Delete(ctx context.Context, actor access.Actor, facilityID primitive.ObjectID) error {
	if err := access.Authorize(actor, access.ActionDelete, facilityID); err != nil {
		return err
	}
	catalog, err := s.store.FindByFacility(ctx, facilityID)
	if err != nil {
		return storeError(err, s.label(), "")
	}
	if err := s.store.SoftDelete(ctx, catalog.ID, actor.ID, s.now()); err != nil {
		return storeError(err, s.label(), "")
	}
	s.logger.Info("catalog deleted",
		zap.String("kind", string(s.kind)),
		zap.String("facility_id", facilityID.Hex()),
		zap.String("actor_id", actor.ID.Hex()),
	)
	return nil
}
