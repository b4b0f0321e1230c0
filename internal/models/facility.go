// internal/models/facility.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	FacilityTypeResidential = "RESIDENTIAL"
	FacilityTypeCommercial  = "COMMERCIAL"
	FacilityTypeIndustrial  = "INDUSTRIAL"
	FacilityTypeHospital    = "HOSPITAL"
	FacilityTypeHotel       = "HOTEL"
	FacilityTypeEducational = "EDUCATIONAL"
	FacilityTypeOther       = "OTHER"
)

var FacilityTypes = []string{
	FacilityTypeResidential,
	FacilityTypeCommercial,
	FacilityTypeIndustrial,
	FacilityTypeHospital,
	FacilityTypeHotel,
	FacilityTypeEducational,
	FacilityTypeOther,
}

func IsValidFacilityType(t string) bool {
	for _, candidate := range FacilityTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// Facility is a managed site. TenantID is generated on creation and never changes.
type Facility struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID     string             `bson:"tenantId" json:"tenantId"`
	SiteName     string             `bson:"siteName" json:"siteName"`
	City         string             `bson:"city" json:"city"`
	FacilityType string             `bson:"facilityType" json:"facilityType"`
	ClientName   string             `bson:"clientName" json:"clientName"`
	Email        string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Address      Address            `bson:"address" json:"address"`
	Status       string             `bson:"status" json:"status"` // ACTIVE, INACTIVE
	CreatedBy    primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	UpdatedBy    primitive.ObjectID `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FacilityFilter narrows a facility listing.
type FacilityFilter struct {
	Scope        FacilityScope
	FacilityType string
	City         string
	Search       string // case-insensitive match on siteName or city
}
