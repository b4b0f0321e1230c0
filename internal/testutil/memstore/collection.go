// Package memstore is an in-memory implementation of the store interfaces used by
// services, for tests. Documents are deep-copied through BSON on every read and
// write, so callers never share memory with the store.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"facility-ops-api-server/internal/database"
	"facility-ops-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func clone[T any](src *T) *T {
	data, err := bson.Marshal(src)
	if err != nil {
		panic(fmt.Sprintf("memstore: marshal: %v", err))
	}
	var dst T
	if err := bson.Unmarshal(data, &dst); err != nil {
		panic(fmt.Sprintf("memstore: unmarshal: %v", err))
	}
	return &dst
}

func fields(doc interface{}) bson.M {
	data, err := bson.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("memstore: marshal: %v", err))
	}
	m := bson.M{}
	if err := bson.Unmarshal(data, &m); err != nil {
		panic(fmt.Sprintf("memstore: unmarshal: %v", err))
	}
	return m
}

// UniqueKey returns the value a document must not share with another live document.
// An empty key opts the document out.
type UniqueKey[PT any] func(doc PT) string

// Collection stores facility-scoped documents with soft delete and versioning.
type Collection[T any, PT models.Scoped[T]] struct {
	mu     sync.Mutex
	docs   map[primitive.ObjectID]PT
	unique []UniqueKey[PT]

	// InsertErr, when set, is returned by the next Insert instead of writing.
	InsertErr error
}

func NewCollection[T any, PT models.Scoped[T]](unique ...UniqueKey[PT]) *Collection[T, PT] {
	return &Collection[T, PT]{docs: map[primitive.ObjectID]PT{}, unique: unique}
}

func (c *Collection[T, PT]) violates(doc PT) bool {
	for _, key := range c.unique {
		k := key(doc)
		if k == "" {
			continue
		}
		for id, other := range c.docs {
			if id == doc.Base().ID || other.Base().IsDeleted {
				continue
			}
			if key(other) == k {
				return true
			}
		}
	}
	return false
}

func (c *Collection[T, PT]) Insert(ctx context.Context, doc PT) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.InsertErr; err != nil {
		c.InsertErr = nil
		return err
	}
	base := doc.Base()
	if base.ID.IsZero() {
		base.ID = primitive.NewObjectID()
	}
	base.Version = 1
	base.IsDeleted = false
	if c.violates(doc) {
		return fmt.Errorf("%w: unique index violated", database.ErrDuplicate)
	}
	c.docs[base.ID] = PT(clone[T](doc))
	return nil
}

func (c *Collection[T, PT]) FindByID(ctx context.Context, id primitive.ObjectID) (PT, error) {
	return c.FindOne(func(doc PT) bool { return doc.Base().ID == id })
}

// FindOne returns a copy of the first live document matching match.
func (c *Collection[T, PT]) FindOne(match func(doc PT) bool) (PT, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, doc := range c.docs {
		if !doc.Base().IsDeleted && match(doc) {
			return PT(clone[T](doc)), nil
		}
	}
	return nil, database.ErrNotFound
}

// FindAll returns copies of every live document matching match, oldest first.
func (c *Collection[T, PT]) FindAll(match func(doc PT) bool) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []T
	for _, doc := range c.docs {
		if !doc.Base().IsDeleted && match(doc) {
			out = append(out, *clone[T](doc))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return PT(&out[i]).Base().CreatedAt.Before(PT(&out[j]).Base().CreatedAt)
	})
	return out
}

func matchesQuery(doc interface{}, base *models.ScopedBase, q models.ListQuery) bool {
	if !q.Scope.Contains(base.FacilityID) {
		return false
	}
	if len(q.Equals) == 0 && q.Range == nil {
		return true
	}
	m := fields(doc)
	for field, want := range q.Equals {
		if fmt.Sprint(m[field]) != fmt.Sprint(want) {
			return false
		}
	}
	if q.Range != nil {
		dt, ok := m[q.Range.Field].(primitive.DateTime)
		if !ok {
			return false
		}
		t := dt.Time()
		if t.Before(q.Range.From) || !t.Before(q.Range.To) {
			return false
		}
	}
	return true
}

func (c *Collection[T, PT]) List(ctx context.Context, q models.ListQuery) ([]T, int64, error) {
	c.mu.Lock()
	var matched []PT
	for _, doc := range c.docs {
		if !doc.Base().IsDeleted && matchesQuery(doc, doc.Base(), q) {
			matched = append(matched, doc)
		}
	}
	c.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i].Base(), matched[j].Base()
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.Hex() > b.ID.Hex()
	})

	page := q.Page.Normalized()
	total := int64(len(matched))
	out := []T{}
	for i := page.Skip(); i < total && int64(len(out)) < page.Limit; i++ {
		out = append(out, *clone[T](matched[i]))
	}
	return out, total, nil
}

func (c *Collection[T, PT]) Replace(ctx context.Context, doc PT) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	base := doc.Base()
	stored, ok := c.docs[base.ID]
	if !ok || stored.Base().IsDeleted {
		return database.ErrNotFound
	}
	if stored.Base().Version != base.Version {
		return database.ErrVersionConflict
	}
	if c.violates(doc) {
		return fmt.Errorf("%w: unique index violated", database.ErrDuplicate)
	}
	base.Version++
	base.IsDeleted = false
	c.docs[base.ID] = PT(clone[T](doc))
	return nil
}

func (c *Collection[T, PT]) SoftDelete(ctx context.Context, id, by primitive.ObjectID, at time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored, ok := c.docs[id]
	if !ok || stored.Base().IsDeleted {
		return database.ErrNotFound
	}
	base := stored.Base()
	deletedAt := at
	base.IsDeleted = true
	base.DeletedAt = &deletedAt
	base.DeletedBy = by
	base.UpdatedAt = at
	base.Version++
	return nil
}

// Len counts documents, deleted ones included.
func (c *Collection[T, PT]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}

func (c *Collection[T, PT]) snapshot() func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	saved := make(map[primitive.ObjectID]PT, len(c.docs))
	for id, doc := range c.docs {
		saved[id] = PT(clone[T](doc))
	}
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.docs = saved
	}
}
