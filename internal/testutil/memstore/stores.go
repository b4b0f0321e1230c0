package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"facility-ops-api-server/internal/database"
	"facility-ops-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FacilityStore struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.Facility
}

func NewFacilityStore() *FacilityStore {
	return &FacilityStore{docs: map[primitive.ObjectID]models.Facility{}}
}

func (s *FacilityStore) Insert(ctx context.Context, f *models.Facility) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	for _, other := range s.docs {
		if other.TenantID == f.TenantID {
			return fmt.Errorf("%w: tenantId", database.ErrDuplicate)
		}
	}
	s.docs[f.ID] = *clone(f)
	return nil
}

func (s *FacilityStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Facility, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.docs[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return clone(&f), nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (s *FacilityStore) List(ctx context.Context, filter models.FacilityFilter, page models.PageQuery) ([]models.Facility, int64, error) {
	s.mu.Lock()
	var matched []models.Facility
	for _, f := range s.docs {
		switch {
		case !filter.Scope.Contains(f.ID):
		case filter.FacilityType != "" && f.FacilityType != filter.FacilityType:
		case filter.City != "" && !strings.EqualFold(f.City, filter.City):
		case filter.Search != "" && !containsFold(f.SiteName, filter.Search) && !containsFold(f.City, filter.Search):
		default:
			matched = append(matched, f)
		}
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	page = page.Normalized()
	total := int64(len(matched))
	out := []models.Facility{}
	for i := page.Skip(); i < total && int64(len(out)) < page.Limit; i++ {
		out = append(out, matched[i])
	}
	return out, total, nil
}

func (s *FacilityStore) Update(ctx context.Context, f *models.Facility) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.docs[f.ID]
	if !ok {
		return database.ErrNotFound
	}
	updated := *clone(f)
	updated.TenantID = stored.TenantID
	updated.CreatedAt = stored.CreatedAt
	updated.CreatedBy = stored.CreatedBy
	s.docs[f.ID] = updated
	return nil
}

func (s *FacilityStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *FacilityStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

func (s *FacilityStore) snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := make(map[primitive.ObjectID]models.Facility, len(s.docs))
	for id, f := range s.docs {
		saved[id] = f
	}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.docs = saved
	}
}

type UserStore struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.User

	// InsertErr, when set, is returned by the next Insert instead of writing.
	InsertErr error
}

func NewUserStore() *UserStore {
	return &UserStore{docs: map[primitive.ObjectID]models.User{}}
}

func (s *UserStore) Insert(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.InsertErr; err != nil {
		s.InsertErr = nil
		return err
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Email = models.NormalizeEmail(u.Email)
	if u.ManagedFacilities == nil {
		u.ManagedFacilities = []primitive.ObjectID{}
	}
	for _, other := range s.docs {
		if !other.IsDeleted && other.Email == u.Email {
			return fmt.Errorf("%w: email", database.ErrDuplicate)
		}
	}
	s.docs[u.ID] = *clone(u)
	return nil
}

func (s *UserStore) find(match func(u models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.docs {
		if !u.IsDeleted && match(u) {
			return clone(&u), nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.find(func(u models.User) bool { return u.ID == id })
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	return s.find(func(u models.User) bool { return u.Email == email })
}

// CountByEmail counts live users with email.
func (s *UserStore) CountByEmail(ctx context.Context, email string) (int64, error) {
	if _, err := s.FindByEmail(ctx, email); err != nil {
		return 0, nil
	}
	return 1, nil
}

func (s *UserStore) AddManagedFacility(ctx context.Context, userID, facilityID primitive.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.docs[userID]
	if !ok || u.IsDeleted {
		return database.ErrNotFound
	}
	if !u.ManagesFacility(facilityID) {
		u.ManagedFacilities = append(append([]primitive.ObjectID{}, u.ManagedFacilities...), facilityID)
	}
	u.UpdatedAt = at
	s.docs[userID] = u
	return nil
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func (s *UserStore) List(ctx context.Context, filter models.UserFilter, page models.PageQuery) ([]models.User, int64, error) {
	s.mu.Lock()
	var matched []models.User
	for _, u := range s.docs {
		inScope := filter.Scope.All
		for _, id := range u.ManagedFacilities {
			inScope = inScope || filter.Scope.Contains(id)
		}
		switch {
		case u.IsDeleted, !inScope:
		case filter.Role != "" && u.Role != filter.Role:
		case hasRole(filter.ExcludeRoles, u.Role):
		case filter.Status != "" && u.Status != filter.Status:
		default:
			matched = append(matched, *clone(&u))
		}
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	page = page.Normalized()
	total := int64(len(matched))
	out := []models.User{}
	for i := page.Skip(); i < total && int64(len(out)) < page.Limit; i++ {
		out = append(out, matched[i])
	}
	return out, total, nil
}

func (s *UserStore) Update(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.docs[u.ID]
	if !ok || stored.IsDeleted {
		return database.ErrNotFound
	}
	stored.FirstName = u.FirstName
	stored.LastName = u.LastName
	stored.Phone = u.Phone
	stored.Role = u.Role
	stored.Status = u.Status
	stored.UpdatedBy = u.UpdatedBy
	stored.UpdatedAt = u.UpdatedAt
	s.docs[u.ID] = stored
	return nil
}

func (s *UserStore) SoftDelete(ctx context.Context, id, by primitive.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.docs[id]
	if !ok || u.IsDeleted {
		return database.ErrNotFound
	}
	deletedAt := at
	u.IsDeleted = true
	u.DeletedAt = &deletedAt
	u.DeletedBy = by
	u.Status = models.UserStatusInactive
	u.UpdatedAt = at
	s.docs[id] = u
	return nil
}

func (s *UserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

func (s *UserStore) snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := make(map[primitive.ObjectID]models.User, len(s.docs))
	for id, u := range s.docs {
		saved[id] = *clone(&u)
	}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.docs = saved
	}
}

type CatalogStore struct {
	*Collection[models.ServiceCatalog, *models.ServiceCatalog]
}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{NewCollection[models.ServiceCatalog](
		func(c *models.ServiceCatalog) string { return c.FacilityID.Hex() },
	)}
}

func (s *CatalogStore) FindByFacility(ctx context.Context, facilityID primitive.ObjectID) (*models.ServiceCatalog, error) {
	return s.FindOne(func(c *models.ServiceCatalog) bool { return c.FacilityID == facilityID })
}

type FloorLocationStore struct {
	*Collection[models.FloorLocation, *models.FloorLocation]
}

func NewFloorLocationStore() *FloorLocationStore {
	return &FloorLocationStore{NewCollection[models.FloorLocation](
		func(l *models.FloorLocation) string { return l.QRCode },
		func(l *models.FloorLocation) string { return fmt.Sprintf("%s/%d", l.FacilityID.Hex(), l.FloorNumber) },
	)}
}

func (s *FloorLocationStore) FindByQRCode(ctx context.Context, code string) (*models.FloorLocation, error) {
	return s.FindOne(func(l *models.FloorLocation) bool { return l.QRCode == code })
}

type DailyChecklistStore struct {
	*Collection[models.DailyChecklist, *models.DailyChecklist]
}

func NewDailyChecklistStore() *DailyChecklistStore {
	return &DailyChecklistStore{NewCollection[models.DailyChecklist](
		func(c *models.DailyChecklist) string {
			return fmt.Sprintf("%s/%s/%s/%d", c.FacilityID.Hex(), c.SectionID.Hex(), c.FloorLocationID.Hex(), c.Date.Unix())
		},
	)}
}

func inDay(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func (s *DailyChecklistStore) FindByLocationAndDay(ctx context.Context, locationID primitive.ObjectID, from, to time.Time) ([]models.DailyChecklist, error) {
	return s.FindAll(func(c *models.DailyChecklist) bool {
		return c.FloorLocationID == locationID && inDay(c.Date, from, to)
	}), nil
}

func (s *DailyChecklistStore) CountByStatus(ctx context.Context, scope models.FacilityScope, from, to time.Time) (map[models.ChecklistStatus]int64, error) {
	counts := map[models.ChecklistStatus]int64{}
	for _, c := range s.FindAll(func(c *models.DailyChecklist) bool {
		return scope.Contains(c.FacilityID) && inDay(c.Date, from, to)
	}) {
		counts[c.OverallStatus]++
	}
	return counts, nil
}

type snapshotter interface {
	snapshot() func()
}

// Transactor emulates a multi-document transaction: every registered store is
// snapshotted before fn runs and restored if fn fails. Writes are not isolated
// from concurrent readers.
type Transactor struct {
	stores []snapshotter
}

func NewTransactor(stores ...snapshotter) *Transactor {
	return &Transactor{stores: stores}
}

func (t *Transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	restores := make([]func(), 0, len(t.stores))
	for _, s := range t.stores {
		restores = append(restores, s.snapshot())
	}
	if err := fn(ctx); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}
