// Package memstore keeps every collection in process memory. It backs the
// "memory" storage mode and the handler tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/academic-scheduler/internal/apperrors"
	"github.com/harentsoaR/academic-scheduler/internal/models"
)

type collection[T any, P models.Document[T]] struct {
	mu   sync.RWMutex
	docs map[primitive.ObjectID]T

	kind      string
	duplicate string
	unique    func(*T) string
	clone     func(T) T
	less      func(a, b *T) bool
	now       func() time.Time
}

func newCollection[T any, P models.Document[T]](kind string) *collection[T, P] {
	return &collection[T, P]{
		docs:  make(map[primitive.ObjectID]T),
		kind:  kind,
		clone: func(v T) T { return v },
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (c *collection[T, P]) Create(_ context.Context, doc *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	P(doc).Stamp(c.now())
	if _, exists := c.docs[P(doc).Key()]; exists {
		return apperrors.Conflict(c.kind + " already exists")
	}
	if err := c.checkUnique(doc); err != nil {
		return err
	}
	c.docs[P(doc).Key()] = c.clone(*doc)
	return nil
}

func (c *collection[T, P]) Get(_ context.Context, id primitive.ObjectID) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	doc, ok := c.docs[id]
	if !ok {
		return nil, apperrors.NotFound(c.kind + " not found")
	}
	out := c.clone(doc)
	return &out, nil
}

func (c *collection[T, P]) Save(_ context.Context, doc *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := P(doc)
	if _, ok := c.docs[p.Key()]; !ok {
		return apperrors.NotFound(c.kind + " not found")
	}
	if err := c.checkUnique(doc); err != nil {
		return err
	}
	p.Stamp(c.now())
	c.docs[p.Key()] = c.clone(*doc)
	return nil
}

func (c *collection[T, P]) Delete(_ context.Context, id primitive.ObjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[id]; !ok {
		return apperrors.NotFound(c.kind + " not found")
	}
	delete(c.docs, id)
	return nil
}

// list returns clones of the documents accepted by match, ordered by less.
func (c *collection[T, P]) list(match func(*T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.docs))
	for _, doc := range c.docs {
		if match(&doc) {
			out = append(out, c.clone(doc))
		}
	}
	if c.less != nil {
		sort.SliceStable(out, func(i, j int) bool { return c.less(&out[i], &out[j]) })
	}
	return out
}

func (c *collection[T, P]) findFirst(match func(*T) bool) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, doc := range c.docs {
		if match(&doc) {
			out := c.clone(doc)
			return &out, nil
		}
	}
	return nil, apperrors.NotFound(c.kind + " not found")
}

// checkUnique must be called with the write lock held.
func (c *collection[T, P]) checkUnique(doc *T) error {
	if c.unique == nil {
		return nil
	}
	key := c.unique(doc)
	id := P(doc).Key()
	for otherID, other := range c.docs {
		if otherID != id && c.unique(&other) == key {
			return apperrors.Conflict(c.duplicate)
		}
	}
	return nil
}
