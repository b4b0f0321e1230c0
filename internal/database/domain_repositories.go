// internal/database/domain_repositories.go
package database

import (
	"context"
	"time"

	"facility-ops-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CatalogRepository stores one kind of service catalog. The regular and IoT
// catalogs live in separate collections with identical shape.
type CatalogRepository struct {
	*ScopedRepository[models.ServiceCatalog, *models.ServiceCatalog]
}

func NewCatalogRepository(db *mongo.Database, kind models.CatalogKind) *CatalogRepository {
	name := ServiceCatalogCollection
	if kind == models.CatalogIoT {
		name = IoTServiceCatalogCollection
	}
	return &CatalogRepository{NewScopedRepository[models.ServiceCatalog](db, name)}
}

// FindByFacility returns the live catalog of a facility.
func (r *CatalogRepository) FindByFacility(ctx context.Context, facilityID primitive.ObjectID) (*models.ServiceCatalog, error) {
	return r.FindOne(ctx, bson.M{"facilityId": facilityID})
}

type FloorLocationRepository struct {
	*ScopedRepository[models.FloorLocation, *models.FloorLocation]
}

func NewFloorLocationRepository(db *mongo.Database) *FloorLocationRepository {
	return &FloorLocationRepository{NewScopedRepository[models.FloorLocation](db, FloorLocationsCollection)}
}

// FindByQRCode returns the live location carrying code, active or not.
func (r *FloorLocationRepository) FindByQRCode(ctx context.Context, code string) (*models.FloorLocation, error) {
	return r.FindOne(ctx, bson.M{"qrCode": code})
}

type DailyChecklistRepository struct {
	*ScopedRepository[models.DailyChecklist, *models.DailyChecklist]
}

func NewDailyChecklistRepository(db *mongo.Database) *DailyChecklistRepository {
	return &DailyChecklistRepository{NewScopedRepository[models.DailyChecklist](db, DailyChecklistsCollection)}
}

// FindByLocationAndDay lists live checklists of a floor dated within [from, to).
func (r *DailyChecklistRepository) FindByLocationAndDay(ctx context.Context, locationID primitive.ObjectID, from, to time.Time) ([]models.DailyChecklist, error) {
	filter := bson.M{
		"floorLocationId": locationID,
		"date":            bson.M{"$gte": from, "$lt": to},
	}
	return r.FindAll(ctx, filter, bson.D{{Key: "createdAt", Value: 1}})
}

// CountByStatus groups live checklists in scope and date range by overallStatus.
func (r *DailyChecklistRepository) CountByStatus(ctx context.Context, scope models.FacilityScope, from, to time.Time) (map[models.ChecklistStatus]int64, error) {
	match := listFilter(models.ListQuery{
		Scope: scope,
		Range: &models.TimeRange{Field: "date", From: from, To: to},
	})
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$overallStatus"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[models.ChecklistStatus]int64, len(rows))
	for _, row := range rows {
		counts[models.ChecklistStatus(row.Status)] = row.Count
	}
	return counts, nil
}
