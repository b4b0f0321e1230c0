package handlers

import (
	"context"
	"net/http"
	"strings"

	"facility-ops-api-server/internal/access"
	"facility-ops-api-server/internal/api/response"
	"facility-ops-api-server/internal/models"
	"facility-ops-api-server/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScopedCRUD is the service surface behind a facility-scoped resource.
type ScopedCRUD[T any, PT models.Scoped[T]] interface {
	Create(ctx context.Context, actor access.Actor, doc PT, requested *primitive.ObjectID) (PT, error)
	Get(ctx context.Context, actor access.Actor, id primitive.ObjectID) (PT, error)
	List(ctx context.Context, actor access.Actor, params services.ListParams) ([]T, models.Pagination, error)
	Update(ctx context.Context, actor access.Actor, id primitive.ObjectID, incoming PT) (PT, error)
	Delete(ctx context.Context, actor access.Actor, id primitive.ObjectID) error
}

// QueryFilter maps a query string parameter onto an exact-match field.
type QueryFilter struct {
	Param    string
	Field    string
	ObjectID bool
	Bool     bool
}

// ResourceHandler exposes CRUD for one facility-scoped collection.
type ResourceHandler[T any, PT models.Scoped[T]] struct {
	Service ScopedCRUD[T, PT]
	// Name is used in response messages, e.g. "Roster".
	Name    string
	Filters []QueryFilter
}

func NewResourceHandler[T any, PT models.Scoped[T]](service ScopedCRUD[T, PT], name string, filters ...QueryFilter) *ResourceHandler[T, PT] {
	return &ResourceHandler[T, PT]{Service: service, Name: name, Filters: filters}
}

// Register mounts the five CRUD routes on group.
func (h *ResourceHandler[T, PT]) Register(group *gin.RouterGroup) {
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
}

func (h *ResourceHandler[T, PT]) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	doc := PT(new(T))
	if !bindJSON(c, doc) {
		return
	}

	created, err := h.Service.Create(c.Request.Context(), a, doc, requestedFacility(doc.Base().FacilityID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, h.Name+" created successfully", created)
}

func (h *ResourceHandler[T, PT]) equals(c *gin.Context) (map[string]interface{}, bool) {
	equals := map[string]interface{}{}
	for _, f := range h.Filters {
		raw := strings.TrimSpace(c.Query(f.Param))
		if raw == "" {
			continue
		}
		switch {
		case f.ObjectID:
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				response.BadRequest(c, "Invalid "+f.Param)
				return nil, false
			}
			equals[f.Field] = id
		case f.Bool:
			equals[f.Field] = raw == "true"
		default:
			equals[f.Field] = raw
		}
	}
	return equals, true
}

func (h *ResourceHandler[T, PT]) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	facilityID, ok := facilityQuery(c)
	if !ok {
		return
	}
	equals, ok := h.equals(c)
	if !ok {
		return
	}

	docs, pagination, err := h.Service.List(c.Request.Context(), a, services.ListParams{
		FacilityID: facilityID,
		Equals:     equals,
		Page:       pageQuery(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if docs == nil {
		docs = []T{}
	}
	response.Paged(c, docs, pagination)
}

func (h *ResourceHandler[T, PT]) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.Service.Get(c.Request.Context(), a, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, doc)
}

// Update replaces the document. A version in the body must match the stored one.
func (h *ResourceHandler[T, PT]) Update(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	doc := PT(new(T))
	if !bindJSON(c, doc) {
		return
	}

	updated, err := h.Service.Update(c.Request.Context(), a, id, doc)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.Name+" updated successfully", updated)
}

func (h *ResourceHandler[T, PT]) Delete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.Service.Delete(c.Request.Context(), a, id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.Name+" deleted successfully", nil)
}
