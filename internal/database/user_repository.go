// internal/database/user_repository.go
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

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(UsersCollection)}
}

// Insert stores a new user. The email is normalized; a live user with the same
// email yields ErrDuplicate.
func (r *UserRepository) Insert(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Email = models.NormalizeEmail(u.Email)
	if u.ManagedFacilities == nil {
		u.ManagedFacilities = []primitive.ObjectID{}
	}
	_, err := r.coll.InsertOne(ctx, u)
	return translate(err)
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	filter["isDeleted"] = false
	var u models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": models.NormalizeEmail(email)})
}

// AddManagedFacility grants a user access to one more facility.
func (r *UserRepository) AddManagedFacility(ctx context.Context, userID, facilityID primitive.ObjectID, at time.Time) error {
	update := bson.M{
		"$addToSet": bson.M{"managedFacilities": facilityID},
		"$set":      bson.M{"updatedAt": at},
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID, "isDeleted": false}, update)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func userFilter(filter models.UserFilter) bson.M {
	query := bson.M{"isDeleted": false}
	if !filter.Scope.All {
		ids := filter.Scope.IDs
		if ids == nil {
			ids = []primitive.ObjectID{}
		}
		query["managedFacilities"] = bson.M{"$in": ids}
	}
	roleCond := bson.M{}
	if filter.Role != "" {
		roleCond["$eq"] = filter.Role
	}
	if len(filter.ExcludeRoles) > 0 {
		roleCond["$nin"] = filter.ExcludeRoles
	}
	if len(roleCond) > 0 {
		query["role"] = roleCond
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return query
}

func (r *UserRepository) List(ctx context.Context, filter models.UserFilter, page models.PageQuery) ([]models.User, int64, error) {
	query := userFilter(filter)
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

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Update rewrites profile fields. Password, email and managedFacilities are not changed here.
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	update := bson.M{"$set": bson.M{
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"phone":     u.Phone,
		"role":      u.Role,
		"status":    u.Status,
		"updatedBy": u.UpdatedBy,
		"updatedAt": u.UpdatedAt,
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": u.ID, "isDeleted": false}, update)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) SoftDelete(ctx context.Context, id, by primitive.ObjectID, at time.Time) error {
	update := bson.M{"$set": bson.M{
		"isDeleted": true,
		"deletedAt": at,
		"deletedBy": by,
		"status":    models.UserStatusInactive,
		"updatedAt": at,
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "isDeleted": false}, update)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByEmail counts users with email regardless of soft delete. Used by the seeder.
func (r *UserRepository) CountByEmail(ctx context.Context, email string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"email": models.NormalizeEmail(email)})
}
