// internal/models/common.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address is a structured postal address.
type Address struct {
	FullText  string  `bson:"fullText" json:"fullText"`
	Latitude  float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
}

// ScopedBase carries the fields shared by every facility-scoped document:
// identity, owning facility, audit references, soft delete and an optimistic version.
type ScopedBase struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FacilityID primitive.ObjectID `bson:"facilityId" json:"facilityId"`
	Version    int64              `bson:"version" json:"version"`
	IsDeleted  bool               `bson:"isDeleted" json:"isDeleted"`
	DeletedAt  *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	DeletedBy  primitive.ObjectID `bson:"deletedBy,omitempty" json:"deletedBy,omitempty"`
	CreatedBy  primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	UpdatedBy  primitive.ObjectID `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (b *ScopedBase) Base() *ScopedBase { return b }

// Scoped is satisfied by pointers to documents embedding ScopedBase.
type Scoped[T any] interface {
	*T
	Base() *ScopedBase
	Validate() error
}

// Normalizer is implemented by documents that derive fields (lowercase keys,
// truncated dates) before they are written.
type Normalizer interface {
	Normalize()
}

// FacilityScope restricts a query to a set of facilities. All=true means no restriction.
type FacilityScope struct {
	All bool
	IDs []primitive.ObjectID
}

func AllFacilities() FacilityScope { return FacilityScope{All: true} }

func OnlyFacilities(ids ...primitive.ObjectID) FacilityScope {
	return FacilityScope{IDs: ids}
}

func (s FacilityScope) Contains(id primitive.ObjectID) bool {
	if s.All {
		return true
	}
	for _, candidate := range s.IDs {
		if candidate == id {
			return true
		}
	}
	return false
}

// TimeRange is a half-open [From, To) filter on a date field.
type TimeRange struct {
	Field string
	From  time.Time
	To    time.Time
}

// ListQuery describes a paginated listing of facility-scoped documents.
// Equals holds exact-match conditions keyed by bson field name.
type ListQuery struct {
	Scope  FacilityScope
	Equals map[string]interface{}
	Range  *TimeRange
	Page   PageQuery
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type PageQuery struct {
	Page  int64
	Limit int64
}

// Normalized clamps page and limit into sane bounds.
func (p PageQuery) Normalized() PageQuery {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p PageQuery) Skip() int64 {
	n := p.Normalized()
	return (n.Page - 1) * n.Limit
}

type Pagination struct {
	CurrentPage     int64 `json:"currentPage"`
	TotalPages      int64 `json:"totalPages"`
	TotalCount      int64 `json:"totalCount"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

func NewPagination(page PageQuery, total int64) Pagination {
	p := page.Normalized()
	pages := (total + p.Limit - 1) / p.Limit
	return Pagination{
		CurrentPage:     p.Page,
		TotalPages:      pages,
		TotalCount:      total,
		HasNextPage:     p.Page < pages,
		HasPreviousPage: p.Page > 1,
	}
}

// StartOfDay truncates t to midnight of its server-local calendar day. Times read
// back from Mongo are UTC, so the location is reset before truncating.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Local().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// DayBounds returns [start, end) of the calendar day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := StartOfDay(t)
	return start, start.AddDate(0, 0, 1)
}
