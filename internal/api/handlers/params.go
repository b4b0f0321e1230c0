package handlers

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"facility-ops-api-server/internal/access"
	"facility-ops-api-server/internal/api/middleware"
	"facility-ops-api-server/internal/api/response"
	"facility-ops-api-server/internal/apperror"
	"facility-ops-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// actor returns the authenticated caller, writing 401 when the route was mounted
// without the auth middleware.
func actor(c *gin.Context) (access.Actor, bool) {
	a, ok := middleware.CurrentActor(c)
	if !ok {
		response.Error(c, apperror.Unauthorized("Authentication required"))
	}
	return a, ok
}

// objectIDParam parses a path parameter as an ObjectID, writing 400 on failure.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

// optionalObjectID parses an optional query parameter. Empty yields nil.
func optionalObjectID(c *gin.Context, name string) (*primitive.ObjectID, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		response.BadRequest(c, "Invalid "+name)
		return nil, false
	}
	return &id, true
}

// facilityQuery reads the optional ?facilityId= filter.
func facilityQuery(c *gin.Context) (*primitive.ObjectID, bool) {
	id, err := access.ParseFacilityID(strings.TrimSpace(c.Query("facilityId")))
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return id, true
}

// pageQuery reads ?page=&limit=. Bad numbers fall back to the defaults.
func pageQuery(c *gin.Context) models.PageQuery {
	page, _ := strconv.ParseInt(c.Query("page"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)
	return models.PageQuery{Page: page, Limit: limit}.Normalized()
}

// bindJSON decodes the body and writes 400 on malformed input.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.BadRequest(c, err.Error())
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for endpoints whose body may be empty.
func bindOptionalJSON(c *gin.Context, dst interface{}) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, err.Error())
		return false
	}
	return true
}

// requestedFacility pulls the facilityId a client put in a create body.
func requestedFacility(id primitive.ObjectID) *primitive.ObjectID {
	if id.IsZero() {
		return nil
	}
	return &id
}
