package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/brandreview/pkg/review"
)

// ReviewRepository сохраняет результаты проверок макетов.
type ReviewRepository struct {
	pool *pgxpool.Pool
}

func NewReviewRepository(ctx context.Context, pool *pgxpool.Pool) (*ReviewRepository, error) {
	r := &ReviewRepository{pool: pool}
	if err := r.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure reviews schema: %w", err)
	}
	return r, nil
}

func (r *ReviewRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS reviews (
	id UUID PRIMARY KEY,
	brand_id TEXT NOT NULL,
	design_type TEXT NOT NULL DEFAULT '',
	submitted_by TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	file_name TEXT NOT NULL DEFAULT '',
	mime_type TEXT NOT NULL DEFAULT '',
	model TEXT NOT NULL,
	score REAL NOT NULL,
	status TEXT NOT NULL,
	result JSONB NOT NULL,
	raw_response TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS reviews_brand_created_idx ON reviews (brand_id, created_at DESC);
`)
	return err
}

func (r *ReviewRepository) Create(ctx context.Context, rv review.Review) (review.Review, error) {
	if rv.ID == uuid.Nil {
		rv.ID = uuid.New()
	}
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = time.Now().UTC()
	}
	resultJSON, err := json.Marshal(rv.Result)
	if err != nil {
		return review.Review{}, err
	}
	_, err = r.pool.Exec(ctx, `
INSERT INTO reviews (id, brand_id, design_type, submitted_by, notes, file_name, mime_type, model, score, status, result, raw_response, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`, rv.ID, rv.BrandID, rv.DesignType, rv.SubmittedBy, rv.Notes, rv.FileName, rv.MimeType, rv.Model,
		rv.Result.ComplianceScore, rv.Result.Status, resultJSON, rv.RawResponse, rv.CreatedAt)
	if err != nil {
		return review.Review{}, err
	}
	return rv, nil
}

const selectReview = `
SELECT id, brand_id, design_type, submitted_by, notes, file_name, mime_type, model, result, raw_response, created_at
FROM reviews`

func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (review.Review, error) {
	rv, err := scanReview(r.pool.QueryRow(ctx, selectReview+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return review.Review{}, review.ErrNotFound
	}
	return rv, err
}

func (r *ReviewRepository) List(ctx context.Context, brandID string, limit, offset int) ([]review.Review, error) {
	rows, err := r.pool.Query(ctx, selectReview+`
WHERE ($1 = '' OR brand_id = $1)
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`, brandID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]review.Review, 0, limit)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func scanReview(row pgx.Row) (review.Review, error) {
	var rv review.Review
	var resultBytes []byte
	var created time.Time
	if err := row.Scan(&rv.ID, &rv.BrandID, &rv.DesignType, &rv.SubmittedBy, &rv.Notes, &rv.FileName,
		&rv.MimeType, &rv.Model, &resultBytes, &rv.RawResponse, &created); err != nil {
		return review.Review{}, err
	}
	if err := json.Unmarshal(resultBytes, &rv.Result); err != nil {
		return review.Review{}, fmt.Errorf("decode review result: %w", err)
	}
	rv.CreatedAt = created.UTC()
	return rv, nil
}
