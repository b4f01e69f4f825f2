package checkers

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artem13815/brandreview/pkg/brand"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestRedisChecker(t *testing.T) {
	c := NewRedisChecker(pingFunc(func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	}))
	assert.Equal(t, "redis", c.Name())
	assert.NoError(t, c.Check(context.Background()))

	failing := NewRedisChecker(pingFunc(func(context.Context) error { return errors.New("down") }))
	assert.Error(t, failing.Check(context.Background()))
}

func TestPostgresChecker(t *testing.T) {
	c := NewPostgresChecker(pingFunc(func(ctx context.Context) error { return ctx.Err() }))
	assert.Equal(t, "postgres", c.Name())
	assert.NoError(t, c.Check(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Check(ctx), context.Canceled)
}

func TestBrandDataChecker(t *testing.T) {
	repo := brand.NewFileRepository(filepath.Join("..", "..", "..", "brand-data"))

	assert.NoError(t, NewBrandDataChecker(repo, "OAD").Check(context.Background()))
	assert.ErrorIs(t, NewBrandDataChecker(repo, "MISSING").Check(context.Background()), brand.ErrBrandNotFound)
}
