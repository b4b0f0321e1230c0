package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleSuperAdmin      = "SUPER_ADMIN"
	RoleAdmin           = "ADMIN"
	RoleFacilityManager = "FACILITY_MANAGER"
	RoleSupervisor      = "SUPERVISOR"
	RoleTechnician      = "TECHNICIAN"
	RoleHousekeeping    = "HOUSEKEEPING"
	RoleSecurity        = "SECURITY"
	RoleEmployee        = "EMPLOYEE"
)

// CreatableRoles are the roles that may be assigned through the public API.
var CreatableRoles = []string{
	RoleFacilityManager,
	RoleSupervisor,
	RoleTechnician,
	RoleHousekeeping,
	RoleSecurity,
	RoleEmployee,
}

func IsCreatableRole(role string) bool {
	for _, r := range CreatableRoles {
		if r == role {
			return true
		}
	}
	return false
}

const (
	UserStatusActive    = "ACTIVE"
	UserStatusInactive  = "INACTIVE"
	UserStatusSuspended = "SUSPENDED"
)

const (
	PermFacilityRead     = "facility:read"
	PermFacilityUpdate   = "facility:update"
	PermServiceRead      = "service:read"
	PermServiceManage    = "service:manage"
	PermIoTServiceRead   = "iot_service:read"
	PermIoTServiceManage = "iot_service:manage"
)

// ManagerPermissions is the bundle given to auto-provisioned facility managers.
// It deliberately excludes employee, user, billing and audit rights.
var ManagerPermissions = []string{
	PermFacilityRead,
	PermFacilityUpdate,
	PermServiceRead,
	PermServiceManage,
	PermIoTServiceRead,
	PermIoTServiceManage,
}

// User matches the document in the users collection.
type User struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	FirstName         string               `bson:"firstName" json:"firstName"`
	LastName          string               `bson:"lastName" json:"lastName"`
	Email             string               `bson:"email" json:"email"`
	Password          string               `bson:"password" json:"-"`
	Phone             string               `bson:"phone,omitempty" json:"phone,omitempty"`
	Role              string               `bson:"role" json:"role"`
	Status            string               `bson:"status" json:"status"`
	IsVerified        bool                 `bson:"isVerified" json:"isVerified"`
	ManagedFacilities []primitive.ObjectID `bson:"managedFacilities" json:"managedFacilities"`
	Permissions       []string             `bson:"permissions,omitempty" json:"permissions,omitempty"`
	CreatedBy         primitive.ObjectID   `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	UpdatedBy         primitive.ObjectID   `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	DeletedBy         primitive.ObjectID   `bson:"deletedBy,omitempty" json:"deletedBy,omitempty"`
	IsDeleted         bool                 `bson:"isDeleted" json:"isDeleted"`
	DeletedAt         *time.Time           `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt         time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// ManagesFacility reports whether id is in the user's managed set.
func (u *User) ManagesFacility(id primitive.ObjectID) bool {
	for _, f := range u.ManagedFacilities {
		if f == id {
			return true
		}
	}
	return false
}

// NormalizeEmail lowercases and trims an address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserFilter narrows a user listing.
type UserFilter struct {
	Scope  FacilityScope // matched against managedFacilities
	Role   string
	Status string
	// ExcludeRoles hides privileged accounts from non-privileged callers.
	ExcludeRoles []string
}
