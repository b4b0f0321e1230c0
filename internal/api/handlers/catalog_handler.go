package handlers

import (
	"net/http"

	"facility-ops-api-server/internal/access"
	"facility-ops-api-server/internal/api/response"
	"facility-ops-api-server/internal/models"
	"facility-ops-api-server/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogHandler serves both the regular and the IoT service catalog; Catalogs
// decides which one.
type CatalogHandler struct {
	Catalogs *services.CatalogService
}

type ServiceRequest struct {
	Name                string   `json:"name" binding:"required"`
	Description         string   `json:"description"`
	IsActive            *bool    `json:"isActive"`
	Status              string   `json:"status"`
	Features            []string `json:"features"`
	IntegrationEndpoint string   `json:"integrationEndpoint"`
}

func (r ServiceRequest) input() models.ServiceInput {
	in := models.ServiceInput{
		Name:                r.Name,
		Description:         r.Description,
		IsActive:            true,
		Status:              r.Status,
		Features:            r.Features,
		IntegrationEndpoint: r.IntegrationEndpoint,
	}
	if r.IsActive != nil {
		in.IsActive = *r.IsActive
	}
	return in
}

type CategoryRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	Services    []ServiceRequest `json:"services"`
}

type UpdateServiceRequest struct {
	Name                *string  `json:"name"`
	Description         *string  `json:"description"`
	IsActive            *bool    `json:"isActive"`
	Status              *string  `json:"status"`
	Features            []string `json:"features"`
	IntegrationEndpoint *string  `json:"integrationEndpoint"`
}

type IoTEnabledRequest struct {
	IoTEnabled *bool `json:"iotEnabled" binding:"required"`
}

type catalogCall struct {
	actor      access.Actor
	facilityID primitive.ObjectID
}

// catalogRequest resolves the caller and the :facilityId parameter shared by every route.
func catalogRequest(c *gin.Context) (call catalogCall, ok bool) {
	if call.actor, ok = actor(c); !ok {
		return
	}
	call.facilityID, ok = objectIDParam(c, "facilityId")
	return
}

func (h *CatalogHandler) Initialize(c *gin.Context) {
	call, ok := catalogRequest(c)
	if !ok {
		return
	}
	catalog, err := h.Catalogs.Initialize(c.Request.Context(), call.actor, call.facilityID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Service catalog initialized successfully", catalog)
}

// Get returns the catalog, creating the default one on first access.
func (h *CatalogHandler) Get(c *gin.Context) {
	call, ok := catalogRequest(c)
	if !ok {
		return
	}
	catalog, err := h.Catalogs.Get(c.Request.Context(), call.actor, call.facilityID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, catalog)
}

func (h *CatalogHandler) AddCategory(c *gin.Context) {
	call, ok := catalogRequest(c)
	if !ok {
		return
	}
	var req CategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	in := models.CategoryInput{Name: req.Name, Description: req.Description}
	for _, s := range req.Services {
		in.Services = append(in.Services, s.input())
	}
	catalog, err := h.Catalogs.AddCategory(c.Request.Context(), call.actor, call.facilityID, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Category added successfully", catalog)
}

func (h *CatalogHandler) AddService(c *gin.Context) {
	call, ok := catalogRequest(c)
	if !ok {
		return
	}
	var req ServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	catalog, err := h.Catalogs.AddService(c.Request.Context(), call.actor, call.facilityID, c.Param("categoryId"), req.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Service added successfully", catalog)
}

func (h *CatalogHandler) UpdateService(c *gin.Context) {
	call, ok := catalogRequest(c)
	if !ok {
		return
	}
	var req UpdateServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	catalog, err := h.Catalogs.UpdateService(c.Request.Context(), call.actor, call.facilityID,
		c.Param("categoryId"), c.Param("serviceId"), models.ServiceUpdate{
			Name:                req.Name,
			Description:         req.Description,
			IsActive:            req.IsActive,
			Status:              req.Status,
			Features:            req.Features,
			IntegrationEndpoint: req.IntegrationEndpoint,
		})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Service updated successfully", catalog)
}

func (h *CatalogHandler) ToggleService(c *gin.Context) {
	call, ok := catalogRequest(c)
	if !ok {
		return
	}
	catalog, err := h.Catalogs.ToggleService(c.Request.Context(), call.actor, call.facilityID, c.Param("categoryId"), c.Param("serviceId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Service status toggled successfully", catalog)
}

func (h *CatalogHandler) RemoveService(c *gin.Context) {
	call, ok := catalogRequest(c)
	if !ok {
		return
	}
	catalog, err := h.Catalogs.RemoveService(c.Request.Context(), call.actor, call.facilityID, c.Param("categoryId"), c.Param("serviceId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Service removed successfully", catalog)
}

func (h *CatalogHandler) SetIoTEnabled(c *gin.Context) {
	call, ok := catalogRequest(c)
	if !ok {
		return
	}
	var req IoTEnabledRequest
	if !bindJSON(c, &req) {
		return
	}

	catalog, err := h.Catalogs.SetIoTEnabled(c.Request.Context(), call.actor, call.facilityID, *req.IoTEnabled)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "IoT integration updated successfully", catalog)
}

func (h *CatalogHandler) Delete(c *gin.Context) {
	call, ok := catalogRequest(c)
	if !ok {
		return
	}
	if err := h.Catalogs.Delete(c.Request.Context(), call.actor, call.facilityID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Service catalog deleted successfully", nil)
}
