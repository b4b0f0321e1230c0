package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"facility-ops-api-server/internal/access"
	"facility-ops-api-server/internal/apperror"
	"facility-ops-api-server/internal/models"
	"facility-ops-api-server/internal/s3"
	"facility-ops-api-server/internal/templates"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	// MaxTemplateSize bounds an uploaded spreadsheet.
	MaxTemplateSize = 5 << 20
	templateURLTTL  = 15 * time.Minute
)

// HygieneService manages hygiene sections and the checklist templates attached to them.
type HygieneService struct {
	Sections   *ScopedService[models.HygieneSection, *models.HygieneSection]
	Checklists *ScopedService[models.HygieneChecklist, *models.HygieneChecklist]
	sections   ScopedStore[models.HygieneSection, *models.HygieneSection]
	files      s3.FileStore
	logger     *zap.Logger
	now        func() time.Time
}

// NewHygieneService builds the service. files may be nil, in which case template
// upload and download are unavailable.
func NewHygieneService(
	sections ScopedStore[models.HygieneSection, *models.HygieneSection],
	checklists ScopedStore[models.HygieneChecklist, *models.HygieneChecklist],
	files s3.FileStore,
	logger *zap.Logger,
) *HygieneService {
	return &HygieneService{
		Sections: NewScopedService[models.HygieneSection](sections, "Hygiene section", logger),
		Checklists: NewScopedService[models.HygieneChecklist](checklists, "Hygiene checklist", logger).
			WithKeep(func(stored, incoming *models.HygieneChecklist) {
				incoming.SectionID = stored.SectionID
				incoming.TemplateFile = stored.TemplateFile
			}),
		sections: sections,
		files:    files,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateChecklist adds a template to a section of the same facility.
func (s *HygieneService) CreateChecklist(ctx context.Context, actor access.Actor, doc *models.HygieneChecklist, requested *primitive.ObjectID) (*models.HygieneChecklist, error) {
	facilityID, err := access.ResolveCreateFacility(actor, requested)
	if err != nil {
		return nil, err
	}
	if doc.SectionID.IsZero() {
		return nil, apperror.Validation("sectionId is required")
	}
	section, err := s.sections.FindByID(ctx, doc.SectionID)
	if err != nil {
		return nil, storeError(err, "Hygiene section", "")
	}
	if section.FacilityID != facilityID {
		return nil, apperror.Validation("Hygiene section belongs to a different facility")
	}
	doc.TemplateFile = nil
	return s.Checklists.Create(ctx, actor, doc, &facilityID)
}

func (s *HygieneService) requireFiles() error {
	if s.files == nil {
		return apperror.Internal(errors.New("file store not configured"), "File storage is not available")
	}
	return nil
}

// UploadTemplate replaces a checklist's items with the tasks in an .xlsx file and
// keeps the original in object storage.
func (s *HygieneService) UploadTemplate(ctx context.Context, actor access.Actor, id primitive.ObjectID, fileName string, file io.Reader) (*models.HygieneChecklist, error) {
	if err := s.requireFiles(); err != nil {
		return nil, err
	}
	if !strings.EqualFold(path.Ext(fileName), ".xlsx") {
		return nil, apperror.Validation("Only .xlsx files are supported")
	}

	checklist, err := s.Checklists.load(ctx, actor, id, access.ActionUpdate)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxTemplateSize+1))
	if err != nil {
		return nil, apperror.Validation("Failed to read uploaded file")
	}
	if len(data) > MaxTemplateSize {
		return nil, apperror.Validation("File exceeds the %d MB limit", MaxTemplateSize>>20)
	}

	items, err := templates.ParseChecklist(bytes.NewReader(data))
	if err != nil {
		return nil, apperror.Validation("%s", err.Error())
	}

	key := fmt.Sprintf("hygiene-checklists/%s/%s/%s.xlsx", checklist.FacilityID.Hex(), checklist.ID.Hex(), uuid.New().String())
	if _, err := s.files.UploadFile(ctx, bytes.NewReader(data), key, templates.ContentType); err != nil {
		return nil, apperror.Internal(err, "Failed to store template file")
	}

	previous := checklist.TemplateFile
	checklist.Items = items
	checklist.TemplateFile = &models.TemplateFile{Key: key, FileName: path.Base(fileName), UploadedAt: s.now()}
	if err := s.Checklists.Save(ctx, actor, checklist); err != nil {
		if delErr := s.files.DeleteFile(ctx, key); delErr != nil {
			s.logger.Warn("orphaned template file", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	if previous != nil {
		if err := s.files.DeleteFile(ctx, previous.Key); err != nil {
			s.logger.Warn("failed to delete replaced template file", zap.String("key", previous.Key), zap.Error(err))
		}
	}
	s.logger.Info("checklist template imported",
		zap.String("checklist_id", checklist.ID.Hex()),
		zap.Int("items", len(items)),
	)
	return checklist, nil
}

// TemplateURL returns a short-lived download link for the uploaded spreadsheet.
func (s *HygieneService) TemplateURL(ctx context.Context, actor access.Actor, id primitive.ObjectID) (string, error) {
	if err := s.requireFiles(); err != nil {
		return "", err
	}
	checklist, err := s.Checklists.Get(ctx, actor, id)
	if err != nil {
		return "", err
	}
	if checklist.TemplateFile == nil {
		return "", apperror.NotFound("No template file uploaded for this checklist")
	}
	url, err := s.files.PresignedURL(ctx, checklist.TemplateFile.Key, templateURLTTL)
	if err != nil {
		return "", apperror.Internal(err, "Failed to create download link")
	}
	return url, nil
}

// ExportItems renders the checklist's current items as an .xlsx workbook in the import format.
func (s *HygieneService) ExportItems(ctx context.Context, actor access.Actor, id primitive.ObjectID) (*models.HygieneChecklist, []byte, error) {
	checklist, err := s.Checklists.Get(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	data, err := templates.BuildChecklist(checklist.Items)
	if err != nil {
		return nil, nil, apperror.Internal(err, "Failed to build spreadsheet")
	}
	return checklist, data, nil
}
