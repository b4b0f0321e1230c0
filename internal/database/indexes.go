// internal/database/indexes.go
package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var notDeleted = bson.D{{Key: "isDeleted", Value: false}}

func uniqueAmongLive(name string) *options.IndexOptions {
	return options.Index().SetName(name).SetUnique(true).SetPartialFilterExpression(notDeleted)
}

func facilityIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: "facilityId", Value: 1}, {Key: "isDeleted", Value: 1}},
		Options: options.Index().SetName("idx_facilityId_isDeleted"),
	}
}

// Indexes lists every index the application relies on, per collection.
// The unique ones back the duplicate checks in the services.
var Indexes = map[string][]mongo.IndexModel{
	FacilitiesCollection: {
		{
			Keys:    bson.D{{Key: "tenantId", Value: 1}},
			Options: options.Index().SetName("uniq_tenantId").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "siteName", Value: 1}, {Key: "city", Value: 1}},
			Options: options.Index().SetName("idx_siteName_city"),
		},
	},
	UsersCollection: {
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: uniqueAmongLive("uniq_email"),
		},
		{
			Keys:    bson.D{{Key: "managedFacilities", Value: 1}},
			Options: options.Index().SetName("idx_managedFacilities"),
		},
	},
	ServiceCatalogCollection: {
		{
			Keys:    bson.D{{Key: "facilityId", Value: 1}},
			Options: uniqueAmongLive("uniq_facilityId"),
		},
	},
	IoTServiceCatalogCollection: {
		{
			Keys:    bson.D{{Key: "facilityId", Value: 1}},
			Options: uniqueAmongLive("uniq_facilityId"),
		},
	},
	FloorLocationsCollection: {
		{
			Keys:    bson.D{{Key: "qrCode", Value: 1}},
			Options: options.Index().SetName("uniq_qrCode").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "facilityId", Value: 1}, {Key: "floorNumber", Value: 1}},
			Options: uniqueAmongLive("uniq_facilityId_floorNumber"),
		},
	},
	DailyChecklistsCollection: {
		{
			Keys: bson.D{
				{Key: "facilityId", Value: 1},
				{Key: "sectionId", Value: 1},
				{Key: "floorLocationId", Value: 1},
				{Key: "date", Value: 1},
			},
			Options: uniqueAmongLive("uniq_facility_section_floor_date"),
		},
		{
			Keys:    bson.D{{Key: "floorLocationId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("idx_floorLocationId_date"),
		},
	},
	ServiceProvidersCollection: {
		{
			Keys: bson.D{
				{Key: "facilityId", Value: 1},
				{Key: "providerNameKey", Value: 1},
				{Key: "category", Value: 1},
			},
			Options: uniqueAmongLive("uniq_facility_provider_category"),
		},
	},
	HygieneSectionsCollection:   {facilityIndex()},
	HygieneChecklistsCollection: {facilityIndex()},
	RostersCollection:           {facilityIndex()},
	LeavePlannersCollection:     {facilityIndex()},
	ShiftSchedulesCollection:    {facilityIndex()},
	WeekoffPlannersCollection:   {facilityIndex()},
}

// EnsureIndexes creates any missing index. CreateMany is a no-op for existing ones.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for collection, models := range Indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
