// internal/database/scoped_repository.go
package database

import (
	"context"
	"time"

	"facility-ops-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ScopedRepository stores facility-scoped, soft-deletable, versioned documents.
// Every read ignores soft-deleted documents.
type ScopedRepository[T any, PT models.Scoped[T]] struct {
	coll *mongo.Collection
}

func NewScopedRepository[T any, PT models.Scoped[T]](db *mongo.Database, collection string) *ScopedRepository[T, PT] {
	return &ScopedRepository[T, PT]{coll: db.Collection(collection)}
}

// ScopeFilter builds the facility restriction for a query.
func ScopeFilter(scope models.FacilityScope) bson.M {
	if scope.All {
		return bson.M{}
	}
	ids := scope.IDs
	if ids == nil {
		ids = []primitive.ObjectID{}
	}
	return bson.M{"facilityId": bson.M{"$in": ids}}
}

func listFilter(q models.ListQuery) bson.M {
	filter := ScopeFilter(q.Scope)
	filter["isDeleted"] = false
	for field, value := range q.Equals {
		filter[field] = value
	}
	if q.Range != nil {
		cond := bson.M{}
		if !q.Range.From.IsZero() {
			cond["$gte"] = q.Range.From
		}
		if !q.Range.To.IsZero() {
			cond["$lt"] = q.Range.To
		}
		if len(cond) > 0 {
			filter[q.Range.Field] = cond
		}
	}
	return filter
}

// Insert assigns an id when missing and starts the version at 1.
func (r *ScopedRepository[T, PT]) Insert(ctx context.Context, doc PT) error {
	base := doc.Base()
	if base.ID.IsZero() {
		base.ID = primitive.NewObjectID()
	}
	base.Version = 1
	base.IsDeleted = false

	_, err := r.coll.InsertOne(ctx, doc)
	return translate(err)
}

func (r *ScopedRepository[T, PT]) FindByID(ctx context.Context, id primitive.ObjectID) (PT, error) {
	return r.FindOne(ctx, bson.M{"_id": id})
}

// FindOne returns the first live document matching filter.
func (r *ScopedRepository[T, PT]) FindOne(ctx context.Context, filter bson.M) (PT, error) {
	live := bson.M{"isDeleted": false}
	for k, v := range filter {
		live[k] = v
	}

	var doc T
	if err := r.coll.FindOne(ctx, live).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return PT(&doc), nil
}

// FindAll returns every live document matching filter, sorted by sort.
func (r *ScopedRepository[T, PT]) FindAll(ctx context.Context, filter bson.M, sort bson.D) ([]T, error) {
	live := bson.M{"isDeleted": false}
	for k, v := range filter {
		live[k] = v
	}

	cursor, err := r.coll.Find(ctx, live, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := []T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// List returns one page of live documents, newest first, and the total match count.
func (r *ScopedRepository[T, PT]) List(ctx context.Context, q models.ListQuery) ([]T, int64, error) {
	filter := listFilter(q)
	page := q.Page.Normalized()

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(page.Limit)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	docs := []T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// Replace writes doc only if the stored version still equals doc's version, then bumps it.
// A lost race returns ErrVersionConflict; a missing or deleted document returns ErrNotFound.
func (r *ScopedRepository[T, PT]) Replace(ctx context.Context, doc PT) error {
	base := doc.Base()
	expected := base.Version
	base.Version = expected + 1

	filter := bson.M{"_id": base.ID, "isDeleted": false, "version": expected}
	result, err := r.coll.ReplaceOne(ctx, filter, doc)
	if err != nil {
		base.Version = expected
		return translate(err)
	}
	if result.MatchedCount == 0 {
		base.Version = expected
		count, err := r.coll.CountDocuments(ctx, bson.M{"_id": base.ID, "isDeleted": false})
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

// SoftDelete flags the document deleted and records who did it.
func (r *ScopedRepository[T, PT]) SoftDelete(ctx context.Context, id, by primitive.ObjectID, at time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"isDeleted": true,
			"deletedAt": at,
			"deletedBy": by,
			"updatedAt": at,
		},
		"$inc": bson.M{"version": 1},
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "isDeleted": false}, update)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
