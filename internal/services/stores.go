// Package services holds the business rules. Handlers call services; services call stores.
package services

import (
	"context"
	"errors"
	"time"

	"facility-ops-api-server/internal/apperror"
	"facility-ops-api-server/internal/database"
	"facility-ops-api-server/internal/models"
	"facility-ops-api-server/internal/webhook"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transactor runs fn atomically. Stores called with the ctx passed to fn join the transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type FacilityStore interface {
	Insert(ctx context.Context, f *models.Facility) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Facility, error)
	List(ctx context.Context, filter models.FacilityFilter, page models.PageQuery) ([]models.Facility, int64, error)
	Update(ctx context.Context, f *models.Facility) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type UserStore interface {
	Insert(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	AddManagedFacility(ctx context.Context, userID, facilityID primitive.ObjectID, at time.Time) error
	List(ctx context.Context, filter models.UserFilter, page models.PageQuery) ([]models.User, int64, error)
	Update(ctx context.Context, u *models.User) error
	SoftDelete(ctx context.Context, id, by primitive.ObjectID, at time.Time) error
}

// ScopedStore persists facility-scoped documents with soft delete and optimistic versioning.
type ScopedStore[T any, PT models.Scoped[T]] interface {
	Insert(ctx context.Context, doc PT) error
	FindByID(ctx context.Context, id primitive.ObjectID) (PT, error)
	List(ctx context.Context, q models.ListQuery) ([]T, int64, error)
	Replace(ctx context.Context, doc PT) error
	SoftDelete(ctx context.Context, id, by primitive.ObjectID, at time.Time) error
}

type CatalogStore interface {
	ScopedStore[models.ServiceCatalog, *models.ServiceCatalog]
	FindByFacility(ctx context.Context, facilityID primitive.ObjectID) (*models.ServiceCatalog, error)
}

type FloorLocationStore interface {
	ScopedStore[models.FloorLocation, *models.FloorLocation]
	FindByQRCode(ctx context.Context, code string) (*models.FloorLocation, error)
}

type DailyChecklistStore interface {
	ScopedStore[models.DailyChecklist, *models.DailyChecklist]
	FindByLocationAndDay(ctx context.Context, locationID primitive.ObjectID, from, to time.Time) ([]models.DailyChecklist, error)
	CountByStatus(ctx context.Context, scope models.FacilityScope, from, to time.Time) (map[models.ChecklistStatus]int64, error)
}

// LocationCache is an optional read-through cache for QR lookups.
type LocationCache interface {
	Get(ctx context.Context, code string) (*models.FloorLocation, bool, error)
	Set(ctx context.Context, loc *models.FloorLocation) error
	Invalidate(ctx context.Context, code string) error
}

type ChecklistNotifier interface {
	Notify(ctx context.Context, event webhook.ChecklistEvent) error
}

type EventBroadcaster interface {
	Broadcast(facilityID, eventType string, data interface{}) int
}

// storeError converts a store failure into an application error. what names the
// resource in messages; conflict is the message used for duplicate keys.
func storeError(err error, what, conflict string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, database.ErrNotFound):
		return apperror.NotFound("%s not found", what)
	case errors.Is(err, database.ErrDuplicate):
		if conflict == "" {
			conflict = what + " already exists"
		}
		return apperror.Conflict("%s", conflict)
	case errors.Is(err, database.ErrVersionConflict):
		return apperror.Conflict("%s was modified by another request, reload and try again", what)
	default:
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return err
		}
		return apperror.Internal(err, "Database error")
	}
}
