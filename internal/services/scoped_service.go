package services

import (
	"context"
	"time"

	"facility-ops-api-server/internal/access"
	"facility-ops-api-server/internal/apperror"
	"facility-ops-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ScopedService is the CRUD flow shared by every facility-scoped resource:
// resolve the facility, check access, normalize, validate, persist.
type ScopedService[T any, PT models.Scoped[T]] struct {
	store    ScopedStore[T, PT]
	name     string
	conflict string
	logger   *zap.Logger
	now      func() time.Time

	// prepare fills server-generated fields on create, after the facility is resolved.
	prepare func(doc PT)
	// keep copies server-managed fields from the stored document onto an update.
	keep func(stored, incoming PT)
}

func NewScopedService[T any, PT models.Scoped[T]](store ScopedStore[T, PT], name string, logger *zap.Logger) *ScopedService[T, PT] {
	return &ScopedService[T, PT]{store: store, name: name, logger: logger, now: time.Now}
}

// WithConflictMessage sets the message returned when a unique key is violated.
func (s *ScopedService[T, PT]) WithConflictMessage(msg string) *ScopedService[T, PT] {
	s.conflict = msg
	return s
}

// WithPrepare registers a hook that runs on new documents before validation.
func (s *ScopedService[T, PT]) WithPrepare(prepare func(doc PT)) *ScopedService[T, PT] {
	s.prepare = prepare
	return s
}

// WithKeep registers fields an update must not overwrite.
func (s *ScopedService[T, PT]) WithKeep(keep func(stored, incoming PT)) *ScopedService[T, PT] {
	s.keep = keep
	return s
}

func normalize(doc interface{}) {
	if n, ok := doc.(models.Normalizer); ok {
		n.Normalize()
	}
}

func validate(doc interface{ Validate() error }) error {
	if err := doc.Validate(); err != nil {
		return apperror.Validation("%s", err.Error())
	}
	return nil
}

func (s *ScopedService[T, PT]) Create(ctx context.Context, actor access.Actor, doc PT, requested *primitive.ObjectID) (PT, error) {
	facilityID, err := access.ResolveCreateFacility(actor, requested)
	if err != nil {
		return nil, err
	}

	now := s.now()
	base := doc.Base()
	*base = models.ScopedBase{
		FacilityID: facilityID,
		CreatedBy:  actor.ID,
		UpdatedBy:  actor.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if s.prepare != nil {
		s.prepare(doc)
	}
	normalize(doc)
	if err := validate(doc); err != nil {
		return nil, err
	}

	if err := s.store.Insert(ctx, doc); err != nil {
		return nil, storeError(err, s.name, s.conflict)
	}
	s.logger.Info("document created",
		zap.String("resource", s.name),
		zap.String("id", base.ID.Hex()),
		zap.String("facility_id", facilityID.Hex()),
		zap.String("actor_id", actor.ID.Hex()),
	)
	return doc, nil
}

// load fetches a live document and checks the actor may perform action on it.
func (s *ScopedService[T, PT]) load(ctx context.Context, actor access.Actor, id primitive.ObjectID, action access.Action) (PT, error) {
	doc, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, s.name, s.conflict)
	}
	if err := access.Authorize(actor, action, doc.Base().FacilityID); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *ScopedService[T, PT]) Get(ctx context.Context, actor access.Actor, id primitive.ObjectID) (PT, error) {
	return s.load(ctx, actor, id, access.ActionRead)
}

// ListParams are the filters a listing endpoint accepts.
type ListParams struct {
	FacilityID *primitive.ObjectID
	Equals     map[string]interface{}
	Range      *models.TimeRange
	Page       models.PageQuery
}

func (s *ScopedService[T, PT]) List(ctx context.Context, actor access.Actor, params ListParams) ([]T, models.Pagination, error) {
	scope, err := access.ListScope(actor, params.FacilityID)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	docs, total, err := s.store.List(ctx, models.ListQuery{
		Scope:  scope,
		Equals: params.Equals,
		Range:  params.Range,
		Page:   params.Page,
	})
	if err != nil {
		return nil, models.Pagination{}, storeError(err, s.name, s.conflict)
	}
	return docs, models.NewPagination(params.Page, total), nil
}

// Update replaces the editable content of a document with incoming. Identity,
// facility and audit fields come from the stored copy. A non-zero incoming version
// must match the stored one.
func (s *ScopedService[T, PT]) Update(ctx context.Context, actor access.Actor, id primitive.ObjectID, incoming PT) (PT, error) {
	stored, err := s.load(ctx, actor, id, access.ActionUpdate)
	if err != nil {
		return nil, err
	}

	clientVersion := incoming.Base().Version
	if clientVersion != 0 && clientVersion != stored.Base().Version {
		return nil, apperror.Conflict("%s was modified by another request, reload and try again", s.name)
	}

	base := incoming.Base()
	*base = *stored.Base()
	base.UpdatedBy = actor.ID
	base.UpdatedAt = s.now()
	if s.keep != nil {
		s.keep(stored, incoming)
	}

	normalize(incoming)
	if err := validate(incoming); err != nil {
		return nil, err
	}
	if err := s.store.Replace(ctx, incoming); err != nil {
		return nil, storeError(err, s.name, s.conflict)
	}
	return incoming, nil
}

// Save writes back a document previously returned by Get or load after in-place edits.
func (s *ScopedService[T, PT]) Save(ctx context.Context, actor access.Actor, doc PT) error {
	base := doc.Base()
	base.UpdatedBy = actor.ID
	base.UpdatedAt = s.now()
	normalize(doc)
	if err := validate(doc); err != nil {
		return err
	}
	return storeError(s.store.Replace(ctx, doc), s.name, s.conflict)
}

func (s *ScopedService[T, PT]) Delete(ctx context.Context, actor access.Actor, id primitive.ObjectID) error {
	if _, err := s.load(ctx, actor, id, access.ActionDelete); err != nil {
		return err
	}
	if err := s.store.SoftDelete(ctx, id, actor.ID, s.now()); err != nil {
		return storeError(err, s.name, s.conflict)
	}
	s.logger.Info("document deleted",
		zap.String("resource", s.name),
		zap.String("id", id.Hex()),
		zap.String("actor_id", actor.ID.Hex()),
	)
	return nil
}
