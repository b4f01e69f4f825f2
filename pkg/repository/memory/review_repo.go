package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/artem13815/brandreview/pkg/review"
)

// ReviewRepo keeps reviews in process memory. Used when DATABASE_URL is unset.
type ReviewRepo struct {
	mu    sync.RWMutex
	items map[uuid.UUID]review.Review
}

func NewReviewRepo() *ReviewRepo {
	return &ReviewRepo{items: make(map[uuid.UUID]review.Review)}
}

func (r *ReviewRepo) Create(_ context.Context, rv review.Review) (review.Review, error) {
	if rv.ID == uuid.Nil {
		rv.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[rv.ID] = rv
	return rv, nil
}

func (r *ReviewRepo) GetByID(_ context.Context, id uuid.UUID) (review.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rv, ok := r.items[id]
	if !ok {
		return review.Review{}, review.ErrNotFound
	}
	return rv, nil
}

// List returns reviews newest first.
func (r *ReviewRepo) List(_ context.Context, brandID string, limit, offset int) ([]review.Review, error) {
	r.mu.RLock()
	out := make([]review.Review, 0, len(r.items))
	for _, rv := range r.items {
		if brandID == "" || rv.BrandID == brandID {
			out = append(out, rv)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return []review.Review{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
