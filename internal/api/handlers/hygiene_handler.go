package handlers

import (
	"context"
	"fmt"
	"net/http"

	"facility-ops-api-server/internal/access"
	"facility-ops-api-server/internal/api/response"
	"facility-ops-api-server/internal/models"
	"facility-ops-api-server/internal/services"
	"facility-ops-api-server/internal/templates"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// hygieneChecklists routes creation through the section check of HygieneService.
type hygieneChecklists struct {
	*services.ScopedService[models.HygieneChecklist, *models.HygieneChecklist]
	hygiene *services.HygieneService
}

func (h hygieneChecklists) Create(ctx context.Context, actor access.Actor, doc *models.HygieneChecklist, requested *primitive.ObjectID) (*models.HygieneChecklist, error) {
	return h.hygiene.CreateChecklist(ctx, actor, doc, requested)
}

func NewHygieneSectionHandler(hygiene *services.HygieneService) *ResourceHandler[models.HygieneSection, *models.HygieneSection] {
	return NewResourceHandler[models.HygieneSection](hygiene.Sections, "Hygiene section",
		QueryFilter{Param: "floorLocationId", Field: "floorLocationId", ObjectID: true},
		QueryFilter{Param: "isActive", Field: "isActive", Bool: true},
	)
}

type HygieneChecklistHandler struct {
	*ResourceHandler[models.HygieneChecklist, *models.HygieneChecklist]
	Hygiene *services.HygieneService
}

func NewHygieneChecklistHandler(hygiene *services.HygieneService) *HygieneChecklistHandler {
	crud := hygieneChecklists{ScopedService: hygiene.Checklists, hygiene: hygiene}
	return &HygieneChecklistHandler{
		ResourceHandler: NewResourceHandler[models.HygieneChecklist](crud, "Hygiene checklist",
			QueryFilter{Param: "sectionId", Field: "sectionId", ObjectID: true},
			QueryFilter{Param: "frequency", Field: "frequency"},
		),
		Hygiene: hygiene,
	}
}

func (h *HygieneChecklistHandler) Register(group *gin.RouterGroup) {
	h.ResourceHandler.Register(group)
	group.POST("/:id/template", h.UploadTemplate)
	group.GET("/:id/template", h.TemplateURL)
	group.GET("/:id/export", h.Export)
}

// UploadTemplate accepts a multipart "file" field holding an .xlsx workbook and
// replaces the checklist items with its rows.
func (h *HygieneChecklistHandler) UploadTemplate(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file not found in request")
		return
	}
	if header.Size > services.MaxTemplateSize {
		response.BadRequest(c, fmt.Sprintf("file exceeds the %d MB limit", services.MaxTemplateSize>>20))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.BadRequest(c, "failed to read file")
		return
	}
	defer file.Close()

	checklist, err := h.Hygiene.UploadTemplate(c.Request.Context(), a, id, header.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fmt.Sprintf("Template imported with %d items", len(checklist.Items)), checklist)
}

// TemplateURL returns a presigned link to the original upload.
func (h *HygieneChecklistHandler) TemplateURL(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	url, err := h.Hygiene.TemplateURL(c.Request.Context(), a, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"url": url})
}

// Export downloads the current items in the upload format.
func (h *HygieneChecklistHandler) Export(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	checklist, data, err := h.Hygiene.ExportItems(c.Request.Context(), a, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "checklist-"+checklist.ID.Hex()+".xlsx"))
	c.Data(http.StatusOK, templates.ContentType, data)
}
