package repositories

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/heartletter/letter_api/shared"
)

var ErrNotFound = errors.New("document not found")

// BaseRepository provides common document-store functionality
type BaseRepository struct {
	store Store
	now   func() time.Time
	graph *Graph
}

func NewBaseRepository(store Store) BaseRepository {
	return BaseRepository{store: store, now: time.Now, graph: DefaultGraph()}
}

// WithClock returns a copy stamping documents with now.
func (r BaseRepository) WithClock(now func() time.Time) BaseRepository {
	r.now = now
	return r
}

// Store returns the underlying key-value store
func (r *BaseRepository) Store() Store {
	return r.store
}

func (r *BaseRepository) Graph() *Graph {
	return r.graph
}

func (r *BaseRepository) Now() time.Time {
	return r.now().UTC()
}

func (r *BaseRepository) newID(prefix string) string {
	return shared.NewID(prefix, r.now())
}

func (r *BaseRepository) getDocument(ctx context.Context, key string, v interface{}) error {
	if key == "" {
		return ErrNotFound
	}
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if raw == "" {
		return ErrNotFound
	}
	return Decode(raw, v)
}

func (r *BaseRepository) putDocument(ctx context.Context, key string, v interface{}) error {
	doc, err := Encode(v)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, key, doc)
}

// patchDocument shallow-merges fields into the stored document and rewrites
// it. Nothing is written when the document does not exist or holds null.
func (r *BaseRepository) patchDocument(ctx context.Context, key string, fields map[string]interface{}) error {
	var doc map[string]interface{}
	if err := r.getDocument(ctx, key, &doc); err != nil {
		return err
	}
	if doc == nil {
		return ErrNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	doc["updatedAt"] = r.Now()
	return r.putDocument(ctx, key, doc)
}

// resolvePointer follows a key holding another document's id.
func (r *BaseRepository) resolvePointer(ctx context.Context, key string) (string, error) {
	id, err := r.store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", ErrNotFound
	}
	return id, nil
}

// pushIndex moves id to the head of an index list without duplicating it.
func (r *BaseRepository) pushIndex(ctx context.Context, indexKey, id string) error {
	if err := r.store.LRem(ctx, indexKey, id); err != nil {
		return err
	}
	return r.store.LPush(ctx, indexKey, id)
}

type lastModified interface {
	LastModified() time.Time
}

// listIndexed loads every id in an index list, skipping ids whose document no
// longer exists, newest first.
func listIndexed[T any, P interface {
	*T
	lastModified
}](ctx context.Context, r *BaseRepository, indexKey string) ([]P, error) {
	ids, err := r.store.LRange(ctx, indexKey, 0, -1)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(ids))
	out := make([]P, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		doc := P(new(T))
		if err := r.getDocument(ctx, id, doc); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, doc)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastModified().After(out[j].LastModified())
	})
	return out, nil
}

func getAs[T any](ctx context.Context, r *BaseRepository, key string) (*T, error) {
	doc := new(T)
	if err := r.getDocument(ctx, key, doc); err != nil {
		return nil, err
	}
	return doc, nil
}
