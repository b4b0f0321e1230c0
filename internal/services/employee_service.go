package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"facility-ops-api-server/internal/access"
	"facility-ops-api-server/internal/apperror"
	"facility-ops-api-server/internal/auth"
	"facility-ops-api-server/internal/database"
	"facility-ops-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const minPasswordLength = 8

type EmployeeInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	Status    string `json:"status"`
}

// EmployeeFilter narrows the employee listing.
type EmployeeFilter struct {
	FacilityID *primitive.ObjectID
	Role       string
	Status     string
	Page       models.PageQuery
}

type EmployeeService struct {
	users  UserStore
	logger *zap.Logger
	now    func() time.Time
}

func NewEmployeeService(users UserStore, logger *zap.Logger) *EmployeeService {
	return &EmployeeService{users: users, logger: logger, now: time.Now}
}

func canManageEmployees(actor access.Actor) bool {
	return actor.IsPrivileged() || actor.Role == models.RoleFacilityManager
}

// checkRole enforces which roles the actor may hand out.
func checkRole(actor access.Actor, role string) error {
	if !models.IsCreatableRole(role) {
		return apperror.Validation("role must be one of %s", strings.Join(models.CreatableRoles, ", "))
	}
	if role == models.RoleFacilityManager && !actor.IsPrivileged() {
		return apperror.Forbidden("Only administrators can assign the FACILITY_MANAGER role")
	}
	return nil
}

// visible reports whether the actor may see or edit u.
func visible(actor access.Actor, u *models.User) bool {
	if actor.IsPrivileged() || actor.ID == u.ID {
		return true
	}
	if access.IsPrivileged(u.Role) {
		return false
	}
	for _, id := range u.ManagedFacilities {
		if actor.CanAccess(id) {
			return true
		}
	}
	return false
}

// Create adds an employee. The new account inherits the creator's managed
// facilities; any client-supplied assignment is ignored.
func (s *EmployeeService) Create(ctx context.Context, actor access.Actor, in EmployeeInput) (*models.User, error) {
	if !canManageEmployees(actor) {
		return nil, apperror.Forbidden("You are not allowed to create employees")
	}

	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = models.NormalizeEmail(in.Email)
	in.Role = strings.ToUpper(strings.TrimSpace(in.Role))
	switch {
	case in.FirstName == "":
		return nil, apperror.Validation("firstName is required")
	case in.Email == "":
		return nil, apperror.Validation("email is required")
	case len(in.Password) < minPasswordLength:
		return nil, apperror.Validation("password must be at least %d characters", minPasswordLength)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, apperror.Validation("email is not a valid address")
	}
	if err := checkRole(actor, in.Role); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, apperror.Conflict("A user with this email already exists")
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, storeError(err, "User", "")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Internal(err, "Failed to hash password")
	}

	now := s.now()
	managed := make([]primitive.ObjectID, len(actor.ManagedFacilities))
	copy(managed, actor.ManagedFacilities)
	user := &models.User{
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		Email:             in.Email,
		Password:          hash,
		Phone:             strings.TrimSpace(in.Phone),
		Role:              in.Role,
		Status:            models.UserStatusActive,
		ManagedFacilities: managed,
		CreatedBy:         actor.ID,
		UpdatedBy:         actor.ID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, storeError(err, "User", "A user with this email already exists")
	}

	s.logger.Info("employee created",
		zap.String("user_id", user.ID.Hex()),
		zap.String("role", user.Role),
		zap.String("actor_id", actor.ID.Hex()),
	)
	return user, nil
}

func (s *EmployeeService) List(ctx context.Context, actor access.Actor, f EmployeeFilter) ([]models.User, models.Pagination, error) {
	scope, err := access.ListScope(actor, f.FacilityID)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	filter := models.UserFilter{
		Scope:  scope,
		Role:   strings.ToUpper(f.Role),
		Status: strings.ToUpper(f.Status),
	}
	if !actor.IsPrivileged() {
		filter.ExcludeRoles = []string{models.RoleSuperAdmin, models.RoleAdmin}
	}
	users, total, err := s.users.List(ctx, filter, f.Page)
	if err != nil {
		return nil, models.Pagination{}, storeError(err, "User", "")
	}
	return users, models.NewPagination(f.Page, total), nil
}

func (s *EmployeeService) Get(ctx context.Context, actor access.Actor, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Employee", "")
	}
	if !visible(actor, user) {
		return nil, apperror.NotFound("Employee not found")
	}
	return user, nil
}

// Update changes profile, role and status. Email, password and facility
// assignments are not editable here.
func (s *EmployeeService) Update(ctx context.Context, actor access.Actor, id primitive.ObjectID, in EmployeeInput) (*models.User, error) {
	user, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != user.ID && !canManageEmployees(actor) {
		return nil, apperror.Forbidden("You are not allowed to update employees")
	}

	if v := strings.TrimSpace(in.FirstName); v != "" {
		user.FirstName = v
	}
	if v := strings.TrimSpace(in.LastName); v != "" {
		user.LastName = v
	}
	if v := strings.TrimSpace(in.Phone); v != "" {
		user.Phone = v
	}
	if role := strings.ToUpper(strings.TrimSpace(in.Role)); role != "" && role != user.Role {
		if actor.ID == user.ID {
			return nil, apperror.Forbidden("You cannot change your own role")
		}
		if err := checkRole(actor, role); err != nil {
			return nil, err
		}
		user.Role = role
	}
	if status := strings.ToUpper(strings.TrimSpace(in.Status)); status != "" {
		switch status {
		case models.UserStatusActive, models.UserStatusInactive, models.UserStatusSuspended:
		default:
			return nil, apperror.Validation("status must be one of ACTIVE, INACTIVE, SUSPENDED")
		}
		user.Status = status
	}
	user.UpdatedBy = actor.ID
	user.UpdatedAt = s.now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, storeError(err, "Employee", "")
	}
	return user, nil
}

func (s *EmployeeService) Delete(ctx context.Context, actor access.Actor, id primitive.ObjectID) error {
	if actor.ID == id {
		return apperror.Validation("You cannot delete your own account")
	}
	user, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if !canManageEmployees(actor) {
		return apperror.Forbidden("You are not allowed to delete employees")
	}
	if access.IsPrivileged(user.Role) && actor.Role != models.RoleSuperAdmin {
		return apperror.Forbidden("Only a super admin can delete administrators")
	}
	if err := s.users.SoftDelete(ctx, id, actor.ID, s.now()); err != nil {
		return storeError(err, "Employee", "")
	}
	s.logger.Info("employee deleted", zap.String("user_id", id.Hex()), zap.String("actor_id", actor.ID.Hex()))
	return nil
}
