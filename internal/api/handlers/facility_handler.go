// internal/api/handlers/facility_handler.go
package handlers

import (
	"net/http"

	"facility-ops-api-server/internal/api/response"
	"facility-ops-api-server/internal/models"
	"facility-ops-api-server/internal/services"

	"github.com/gin-gonic/gin"
)

type FacilityHandler struct {
	Facilities *services.FacilityService
}

// CreateFacility onboards a facility together with its manager account and
// default service catalogs.
func (h *FacilityHandler) CreateFacility(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req services.FacilityInput
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.Facilities.Create(c.Request.Context(), a, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Facility created successfully", result)
}

func (h *FacilityHandler) GetAllFacilities(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	facilities, pagination, err := h.Facilities.List(c.Request.Context(), a, services.FacilityListParams{
		FacilityType: c.Query("facilityType"),
		City:         c.Query("city"),
		Search:       c.Query("search"),
		Page:         pageQuery(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if facilities == nil {
		facilities = []models.Facility{}
	}
	response.Paged(c, facilities, pagination)
}

func (h *FacilityHandler) GetFacilityByID(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	facility, err := h.Facilities.Get(c.Request.Context(), a, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, facility)
}

// UpdateFacility replaces the editable fields. tenantId in the body is ignored.
func (h *FacilityHandler) UpdateFacility(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req services.FacilityInput
	if !bindJSON(c, &req) {
		return
	}

	facility, err := h.Facilities.Update(c.Request.Context(), a, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Facility updated successfully", facility)
}

func (h *FacilityHandler) DeleteFacility(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.Facilities.Delete(c.Request.Context(), a, id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Facility deleted successfully", nil)
}
