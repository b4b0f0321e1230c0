package services

import (
	"context"
	"strings"

	"facility-ops-api-server/internal/access"
	"facility-ops-api-server/internal/apperror"
	"facility-ops-api-server/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// FloorLocationService manages QR-addressable floors. QR lookups go through an
// optional cache that is invalidated on every write.
type FloorLocationService struct {
	*ScopedService[models.FloorLocation, *models.FloorLocation]
	store  FloorLocationStore
	cache  LocationCache
	logger *zap.Logger
}

// NewFloorLocationService builds the service. cache may be nil.
func NewFloorLocationService(store FloorLocationStore, cache LocationCache, logger *zap.Logger) *FloorLocationService {
	base := NewScopedService[models.FloorLocation](ScopedStore[models.FloorLocation, *models.FloorLocation](store), "Floor location", logger).
		WithConflictMessage("A floor location with this floor number already exists for this facility").
		WithPrepare(func(l *models.FloorLocation) {
			suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
			l.QRCode = models.BuildQRCode(l, suffix)
		}).
		WithKeep(func(stored, incoming *models.FloorLocation) {
			incoming.QRCode = stored.QRCode
			if incoming.FloorNumber != stored.FloorNumber {
				incoming.QRCode = models.BuildQRCode(incoming, models.QRSuffix(stored.QRCode))
			}
		})
	return &FloorLocationService{ScopedService: base, store: store, cache: cache, logger: logger}
}

func (s *FloorLocationService) invalidate(ctx context.Context, code string) {
	if s.cache == nil || code == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, code); err != nil {
		s.logger.Warn("floor location cache invalidation failed", zap.String("qr_code", code), zap.Error(err))
	}
}

// ResolveQR returns the active floor location behind a QR code.
// Unknown, deleted and inactive locations are all reported as not found.
func (s *FloorLocationService) ResolveQR(ctx context.Context, code string) (*models.FloorLocation, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperror.Validation("qrCode is required")
	}

	if s.cache != nil {
		loc, found, err := s.cache.Get(ctx, code)
		if err != nil {
			s.logger.Warn("floor location cache read failed", zap.String("qr_code", code), zap.Error(err))
		} else if found && loc.IsActive && !loc.IsDeleted {
			return loc, nil
		}
	}

	loc, err := s.store.FindByQRCode(ctx, code)
	if err != nil {
		return nil, storeError(err, "Floor location", "")
	}
	if !loc.IsActive {
		return nil, apperror.NotFound("Floor location not found")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, loc); err != nil {
			s.logger.Warn("floor location cache write failed", zap.String("qr_code", code), zap.Error(err))
		}
	}
	return loc, nil
}

// GetByQR resolves a QR code on behalf of actor, who must have access to its facility.
func (s *FloorLocationService) GetByQR(ctx context.Context, actor access.Actor, code string) (*models.FloorLocation, error) {
	loc, err := s.ResolveQR(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.ActionRead, loc.FacilityID); err != nil {
		return nil, err
	}
	return loc, nil
}

// Update replaces a floor. Changing the floor number regenerates the QR code, keeping
// its suffix, and the previous code stops resolving.
func (s *FloorLocationService) Update(ctx context.Context, actor access.Actor, id primitive.ObjectID, incoming *models.FloorLocation) (*models.FloorLocation, error) {
	previous, err := s.load(ctx, actor, id, access.ActionUpdate)
	if err != nil {
		return nil, err
	}
	loc, err := s.ScopedService.Update(ctx, actor, id, incoming)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, previous.QRCode)
	if loc.QRCode != previous.QRCode {
		s.invalidate(ctx, loc.QRCode)
	}
	return loc, nil
}

func (s *FloorLocationService) Delete(ctx context.Context, actor access.Actor, id primitive.ObjectID) error {
	loc, err := s.load(ctx, actor, id, access.ActionDelete)
	if err != nil {
		return err
	}
	if err := s.ScopedService.Delete(ctx, actor, id); err != nil {
		return err
	}
	s.invalidate(ctx, loc.QRCode)
	return nil
}
