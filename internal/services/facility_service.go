package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"facility-ops-api-server/internal/access"
	"facility-ops-api-server/internal/apperror"
	"facility-ops-api-server/internal/auth"
	"facility-ops-api-server/internal/database"
	"facility-ops-api-server/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type FacilityInput struct {
	SiteName     string         `json:"siteName"`
	City         string         `json:"city"`
	FacilityType string         `json:"facilityType"`
	ClientName   string         `json:"clientName"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	Address      models.Address `json:"address"`
	Status       string         `json:"status"`
}

func (in *FacilityInput) normalize() {
	in.SiteName = strings.TrimSpace(in.SiteName)
	in.City = strings.TrimSpace(in.City)
	in.FacilityType = strings.ToUpper(strings.TrimSpace(in.FacilityType))
	in.ClientName = strings.TrimSpace(in.ClientName)
	in.Email = models.NormalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Status == "" {
		in.Status = models.UserStatusActive
	}
}

func (in FacilityInput) validate() error {
	switch {
	case in.SiteName == "":
		return apperror.Validation("siteName is required")
	case in.City == "":
		return apperror.Validation("city is required")
	case !models.IsValidFacilityType(in.FacilityType):
		return apperror.Validation("facilityType must be one of %s", strings.Join(models.FacilityTypes, ", "))
	case in.ClientName == "":
		return apperror.Validation("clientName is required")
	case in.Status != models.UserStatusActive && in.Status != models.UserStatusInactive:
		return apperror.Validation("status must be ACTIVE or INACTIVE")
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return apperror.Validation("email is not a valid address")
		}
	}
	return nil
}

// ManagerCredentials are echoed once, right after the account is provisioned.
type ManagerCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OnboardingResult is what a facility creation returns.
type OnboardingResult struct {
	Facility    *models.Facility       `json:"facility"`
	Manager     *models.User           `json:"manager,omitempty"`
	Credentials *ManagerCredentials    `json:"credentials,omitempty"`
	Catalog     *models.ServiceCatalog `json:"serviceCatalog,omitempty"`
	IoTCatalog  *models.ServiceCatalog `json:"iotServiceCatalog,omitempty"`
	Warnings    []string               `json:"warnings,omitempty"`
}

type FacilityService struct {
	facilities       FacilityStore
	users            UserStore
	tx               Transactor
	catalogs         *CatalogService
	iotCatalogs      *CatalogService
	credentialWindow time.Duration
	logger           *zap.Logger
	now              func() time.Time
	newTenantID      func() string
}

func NewFacilityService(facilities FacilityStore, users UserStore, tx Transactor, catalogs, iotCatalogs *CatalogService, credentialWindow time.Duration, logger *zap.Logger) *FacilityService {
	return &FacilityService{
		facilities:       facilities,
		users:            users,
		tx:               tx,
		catalogs:         catalogs,
		iotCatalogs:      iotCatalogs,
		credentialWindow: credentialWindow,
		logger:           logger,
		now:              time.Now,
		newTenantID:      func() string { return uuid.New().String() },
	}
}

// DefaultManagerPassword derives the initial password of an auto-provisioned manager:
// the client name lowercased with all whitespace removed, "@", then the first eight
// characters of the tenant id.
func DefaultManagerPassword(clientName, tenantID string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(clientName) {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	prefix := tenantID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return b.String() + "@" + prefix
}

// splitName turns "Jane Mary Roe" into ("Jane", "Mary Roe").
func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// Create onboards a facility. The facility and its manager account are written in
// one transaction; catalog bootstrap runs afterwards and only produces warnings.
func (s *FacilityService) Create(ctx context.Context, actor access.Actor, in FacilityInput) (*OnboardingResult, error) {
	if !actor.IsPrivileged() {
		return nil, apperror.Forbidden("Only administrators can create facilities")
	}
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	facility := &models.Facility{
		TenantID:     s.newTenantID(),
		SiteName:     in.SiteName,
		City:         in.City,
		FacilityType: in.FacilityType,
		ClientName:   in.ClientName,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Address,
		Status:       in.Status,
		CreatedBy:    actor.ID,
		UpdatedBy:    actor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var password, hash string
	if facility.Email != "" {
		password = DefaultManagerPassword(facility.ClientName, facility.TenantID)
		var err error
		if hash, err = auth.HashPassword(password); err != nil {
			return nil, apperror.Internal(err, "Failed to hash password")
		}
	}

	var manager *models.User
	var provisioned bool
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		manager, provisioned = nil, false
		facility.ID = primitive.NilObjectID
		if err := s.facilities.Insert(ctx, facility); err != nil {
			return err
		}
		if facility.Email == "" {
			return nil
		}

		existing, err := s.users.FindByEmail(ctx, facility.Email)
		switch {
		case err == nil:
			if err := s.users.AddManagedFacility(ctx, existing.ID, facility.ID, now); err != nil {
				return err
			}
			if !existing.ManagesFacility(facility.ID) {
				existing.ManagedFacilities = append(existing.ManagedFacilities, facility.ID)
			}
			manager = existing
			return nil
		case !errors.Is(err, database.ErrNotFound):
			return err
		}

		first, last := splitName(facility.ClientName)
		manager = &models.User{
			FirstName:         first,
			LastName:          last,
			Email:             facility.Email,
			Password:          hash,
			Phone:             facility.Phone,
			Role:              models.RoleFacilityManager,
			Status:            models.UserStatusActive,
			IsVerified:        true,
			ManagedFacilities: []primitive.ObjectID{facility.ID},
			Permissions:       append([]string(nil), models.ManagerPermissions...),
			CreatedBy:         actor.ID,
			UpdatedBy:         actor.ID,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := s.users.Insert(ctx, manager); err != nil {
			return err
		}
		provisioned = true
		return nil
	})
	if err != nil {
		s.logger.Error("facility onboarding rolled back",
			zap.String("site_name", facility.SiteName),
			zap.String("actor_id", actor.ID.Hex()),
			zap.Error(err),
		)
		return nil, storeError(err, "Facility", "A user with this email already exists")
	}

	s.logger.Info("facility created",
		zap.String("facility_id", facility.ID.Hex()),
		zap.String("tenant_id", facility.TenantID),
		zap.String("actor_id", actor.ID.Hex()),
	)

	result := &OnboardingResult{Facility: facility, Manager: manager}
	if provisioned && s.now().Sub(manager.CreatedAt) <= s.credentialWindow {
		result.Credentials = &ManagerCredentials{Email: manager.Email, Password: password}
	}

	createdBy := actor.ID
	if createdBy.IsZero() {
		createdBy = facility.ID
	}
	if catalog, err := s.catalogs.InitializeDefault(ctx, facility, createdBy); err != nil {
		s.logger.Warn("service catalog initialization failed", zap.String("facility_id", facility.ID.Hex()), zap.Error(err))
		result.Warnings = append(result.Warnings, "Service catalog could not be initialized: "+err.Error())
	} else {
		result.Catalog = catalog
	}
	if catalog, err := s.iotCatalogs.InitializeDefault(ctx, facility, createdBy); err != nil {
		s.logger.Warn("IoT service catalog initialization failed", zap.String("facility_id", facility.ID.Hex()), zap.Error(err))
		result.Warnings = append(result.Warnings, "IoT service catalog could not be initialized: "+err.Error())
	} else {
		result.IoTCatalog = catalog
	}
	return result, nil
}

func (s *FacilityService) Get(ctx context.Context, actor access.Actor, id primitive.ObjectID) (*models.Facility, error) {
	if !actor.CanAccess(id) {
		return nil, apperror.Forbidden("You do not have access to this facility")
	}
	f, err := s.facilities.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Facility", "")
	}
	return f, nil
}

// FacilityListParams are the query filters of the facility listing.
type FacilityListParams struct {
	FacilityType string
	City         string
	Search       string
	Page         models.PageQuery
}

func (s *FacilityService) List(ctx context.Context, actor access.Actor, params FacilityListParams) ([]models.Facility, models.Pagination, error) {
	scope, err := access.ListScope(actor, nil)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	facilities, total, err := s.facilities.List(ctx, models.FacilityFilter{
		Scope:        scope,
		FacilityType: strings.ToUpper(strings.TrimSpace(params.FacilityType)),
		City:         strings.TrimSpace(params.City),
		Search:       strings.TrimSpace(params.Search),
	}, params.Page)
	if err != nil {
		return nil, models.Pagination{}, storeError(err, "Facility", "")
	}
	return facilities, models.NewPagination(params.Page, total), nil
}

// Update changes the mutable fields. The tenant id is never touched.
func (s *FacilityService) Update(ctx context.Context, actor access.Actor, id primitive.ObjectID, in FacilityInput) (*models.Facility, error) {
	if err := access.Authorize(actor, access.ActionUpdate, id); err != nil {
		return nil, err
	}
	facility, err := s.facilities.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Facility", "")
	}

	if in.Status == "" {
		in.Status = facility.Status
	}
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	facility.SiteName = in.SiteName
	facility.City = in.City
	facility.FacilityType = in.FacilityType
	facility.ClientName = in.ClientName
	facility.Email = in.Email
	facility.Phone = in.Phone
	facility.Address = in.Address
	facility.Status = in.Status
	facility.UpdatedBy = actor.ID
	facility.UpdatedAt = s.now()

	if err := s.facilities.Update(ctx, facility); err != nil {
		return nil, storeError(err, "Facility", "")
	}
	return facility, nil
}

// Delete hard-deletes the facility. Dependent documents are left in place.
func (s *FacilityService) Delete(ctx context.Context, actor access.Actor, id primitive.ObjectID) error {
	if !actor.IsPrivileged() {
		return apperror.Forbidden("Only administrators can delete facilities")
	}
	if err := s.facilities.Delete(ctx, id); err != nil {
		return storeError(err, "Facility", "")
	}
	s.logger.Info("facility deleted", zap.String("facility_id", id.Hex()), zap.String("actor_id", actor.ID.Hex()))
	return nil
}
