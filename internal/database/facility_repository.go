// internal/database/facility_repository.go
package database

import (
	"context"
	"regexp"

	"facility-ops-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FacilityRepository struct {
	coll *mongo.Collection
}

func NewFacilityRepository(db *mongo.Database) *FacilityRepository {
	return &FacilityRepository{coll: db.Collection(FacilitiesCollection)}
}

func (r *FacilityRepository) Insert(ctx context.Context, f *models.Facility) error {
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, f)
	return translate(err)
}

func (r *FacilityRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Facility, error) {
	var f models.Facility
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

func facilityFilter(filter models.FacilityFilter) bson.M {
	query := bson.M{}
	if !filter.Scope.All {
		ids := filter.Scope.IDs
		if ids == nil {
			ids = []primitive.ObjectID{}
		}
		query["_id"] = bson.M{"$in": ids}
	}
	if filter.FacilityType != "" {
		query["facilityType"] = filter.FacilityType
	}
	if filter.City != "" {
		query["city"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(filter.City) + "$", Options: "i"}
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"siteName": pattern},
			bson.M{"city": pattern},
		}
	}
	return query
}

func (r *FacilityRepository) List(ctx context.Context, filter models.FacilityFilter, page models.PageQuery) ([]models.Facility, int64, error) {
	query := facilityFilter(filter)
	page = page.Normalized()

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(page.Limit)
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	facilities := []models.Facility{}
	if err := cursor.All(ctx, &facilities); err != nil {
		return nil, 0, err
	}
	return facilities, total, nil
}

// Update rewrites the mutable fields. tenantId and createdBy are never touched.
func (r *FacilityRepository) Update(ctx context.Context, f *models.Facility) error {
	update := bson.M{"$set": bson.M{
		"siteName":     f.SiteName,
		"city":         f.City,
		"facilityType": f.FacilityType,
		"clientName":   f.ClientName,
		"email":        f.Email,
		"phone":        f.Phone,
		"address":      f.Address,
		"status":       f.Status,
		"updatedBy":    f.UpdatedBy,
		"updatedAt":    f.UpdatedAt,
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": f.ID}, update)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the facility document. Dependent documents are left in place.
func (r *FacilityRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
