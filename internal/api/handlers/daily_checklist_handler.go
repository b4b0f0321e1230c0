package handlers

import (
	"net/http"
	"strconv"

	"facility-ops-api-server/internal/api/response"
	"facility-ops-api-server/internal/models"
	"facility-ops-api-server/internal/services"

	"github.com/gin-gonic/gin"
)

type DailyChecklistHandler struct {
	Checklists *services.ChecklistService
}

type NotesRequest struct {
	Notes string `json:"notes"`
}

func (h *DailyChecklistHandler) Register(group *gin.RouterGroup) {
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/qr/:qrCode", h.ByQRCode)
	group.GET("/stats", h.Stats)
	group.GET("/:id", h.Get)
	group.PATCH("/:id/items/:itemIndex/complete", h.CompleteItem)
	group.PATCH("/:id/verify", h.Verify)
	group.DELETE("/:id", h.Delete)
}

// Create opens the checklist of one floor and section for a day. Items come from the
// body or, when hygieneChecklistId is set, from that template.
func (h *DailyChecklistHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req services.DailyChecklistInput
	if !bindJSON(c, &req) {
		return
	}

	checklist, err := h.Checklists.Create(c.Request.Context(), a, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Daily checklist created successfully", checklist)
}

func (h *DailyChecklistHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	filter := services.ChecklistFilter{
		Status: c.Query("status"),
		From:   c.Query("from"),
		To:     c.Query("to"),
		Page:   pageQuery(c),
	}
	if filter.FacilityID, ok = facilityQuery(c); !ok {
		return
	}
	if filter.SectionID, ok = optionalObjectID(c, "sectionId"); !ok {
		return
	}
	if filter.FloorLocationID, ok = optionalObjectID(c, "floorLocationId"); !ok {
		return
	}

	checklists, pagination, err := h.Checklists.List(c.Request.Context(), a, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	if checklists == nil {
		checklists = []models.DailyChecklist{}
	}
	response.Paged(c, checklists, pagination)
}

// ByQRCode lists the checklists of the scanned floor for ?date=YYYY-MM-DD, today by default.
func (h *DailyChecklistHandler) ByQRCode(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	result, err := h.Checklists.ByQRCode(c.Request.Context(), a, c.Param("qrCode"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

func (h *DailyChecklistHandler) Stats(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	facilityID, ok := facilityQuery(c)
	if !ok {
		return
	}

	stats, err := h.Checklists.Stats(c.Request.Context(), a, facilityID, c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

func (h *DailyChecklistHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	checklist, err := h.Checklists.Get(c.Request.Context(), a, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, checklist)
}

// CompleteItem marks the zero-based itemIndex done. Repeating it only refreshes notes.
func (h *DailyChecklistHandler) CompleteItem(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("itemIndex"))
	if err != nil {
		response.BadRequest(c, "itemIndex must be a number")
		return
	}
	var req NotesRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	checklist, err := h.Checklists.CompleteItem(c.Request.Context(), a, id, index, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Checklist item completed", checklist)
}

func (h *DailyChecklistHandler) Verify(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req NotesRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	checklist, err := h.Checklists.Verify(c.Request.Context(), a, id, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Checklist verified successfully", checklist)
}

func (h *DailyChecklistHandler) Delete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.Checklists.Delete(c.Request.Context(), a, id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Daily checklist deleted successfully", nil)
}
