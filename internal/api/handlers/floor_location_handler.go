package handlers

import (
	"facility-ops-api-server/internal/api/response"
	"facility-ops-api-server/internal/models"
	"facility-ops-api-server/internal/services"

	"github.com/gin-gonic/gin"
)

type FloorLocationHandler struct {
	*ResourceHandler[models.FloorLocation, *models.FloorLocation]
	Floors *services.FloorLocationService
}

func NewFloorLocationHandler(floors *services.FloorLocationService) *FloorLocationHandler {
	return &FloorLocationHandler{
		ResourceHandler: NewResourceHandler[models.FloorLocation](floors, "Floor location",
			QueryFilter{Param: "isActive", Field: "isActive", Bool: true},
		),
		Floors: floors,
	}
}

// Register mounts the CRUD routes plus the QR lookup.
func (h *FloorLocationHandler) Register(group *gin.RouterGroup) {
	group.GET("/qr/:qrCode", h.GetByQRCode)
	h.ResourceHandler.Register(group)
}

func (h *FloorLocationHandler) GetByQRCode(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	loc, err := h.Floors.GetByQR(c.Request.Context(), a, c.Param("qrCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, loc)
}
