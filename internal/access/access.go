// Package access holds the facility scoping policy applied to every facility-scoped resource.
package access

import (
	"facility-ops-api-server/internal/apperror"
	"facility-ops-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the authenticated caller as seen by services.
type Actor struct {
	ID                primitive.ObjectID
	Email             string
	Role              string
	ManagedFacilities []primitive.ObjectID
}

// ActorFromUser builds an Actor from a freshly loaded user document.
func ActorFromUser(u *models.User) Actor {
	managed := make([]primitive.ObjectID, len(u.ManagedFacilities))
	copy(managed, u.ManagedFacilities)
	return Actor{ID: u.ID, Email: u.Email, Role: u.Role, ManagedFacilities: managed}
}

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionVerify Action = "verify"
)

// IsPrivileged reports whether role belongs to the admin tier.
func IsPrivileged(role string) bool {
	return role == models.RoleSuperAdmin || role == models.RoleAdmin
}

func (a Actor) IsPrivileged() bool { return IsPrivileged(a.Role) }

func (a Actor) manages(facilityID primitive.ObjectID) bool {
	for _, id := range a.ManagedFacilities {
		if id == facilityID {
			return true
		}
	}
	return false
}

// CanAccess reports whether the actor may touch documents of facilityID at all.
func (a Actor) CanAccess(facilityID primitive.ObjectID) bool {
	return a.IsPrivileged() || a.manages(facilityID)
}

// Authorize checks an action on a document owned by facilityID.
func Authorize(a Actor, action Action, facilityID primitive.ObjectID) error {
	if !a.CanAccess(facilityID) {
		return apperror.Forbidden("You do not have access to this facility")
	}
	if a.IsPrivileged() {
		return nil
	}
	switch action {
	case ActionDelete:
		if a.Role != models.RoleFacilityManager {
			return apperror.Forbidden("Only facility managers can delete this resource")
		}
	case ActionVerify:
		if a.Role != models.RoleFacilityManager && a.Role != models.RoleSupervisor {
			return apperror.Forbidden("Only supervisors or facility managers can verify checklists")
		}
	}
	return nil
}

// ListScope resolves the facility restriction for a listing. requested is the optional
// facilityId filter from the query string.
func ListScope(a Actor, requested *primitive.ObjectID) (models.FacilityScope, error) {
	if requested != nil {
		if !a.CanAccess(*requested) {
			return models.FacilityScope{}, apperror.Forbidden("You do not have access to this facility")
		}
		return models.OnlyFacilities(*requested), nil
	}
	if a.IsPrivileged() {
		return models.AllFacilities(), nil
	}
	ids := make([]primitive.ObjectID, len(a.ManagedFacilities))
	copy(ids, a.ManagedFacilities)
	return models.OnlyFacilities(ids...), nil
}

// ResolveCreateFacility picks the facility a new document belongs to. Non-privileged
// actors default to their first managed facility.
func ResolveCreateFacility(a Actor, requested *primitive.ObjectID) (primitive.ObjectID, error) {
	if requested != nil && !requested.IsZero() {
		if err := Authorize(a, ActionCreate, *requested); err != nil {
			return primitive.NilObjectID, err
		}
		return *requested, nil
	}
	if a.IsPrivileged() {
		return primitive.NilObjectID, apperror.Validation("facilityId is required")
	}
	if len(a.ManagedFacilities) == 0 {
		return primitive.NilObjectID, apperror.Forbidden("You are not assigned to any facility")
	}
	return a.ManagedFacilities[0], nil
}

// ParseFacilityID parses an optional hex id from a request. Empty input returns nil.
func ParseFacilityID(raw string) (*primitive.ObjectID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, apperror.Validation("Invalid facilityId")
	}
	return &id, nil
}
