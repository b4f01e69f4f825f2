package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	name  string
	err   error
	calls *int
}

func (f fakeChecker) Name() string { return f.name }

func (f fakeChecker) Check(_ context.Context) error {
	if f.calls != nil {
		*f.calls++
	}
	return f.err
}

func TestService(t *testing.T) {
	ctx := context.Background()

	ok := NewService(fakeChecker{name: "a"}, fakeChecker{name: "b"})
	rep := ok.Check(ctx)
	require.True(t, rep.Ready())
	assert.NoError(t, rep.Err)
	assert.Equal(t, map[string]string{"a": "ok", "b": "ok"}, rep.Checks)

	down := NewService(fakeChecker{name: "a"}, fakeChecker{name: "redis", err: errors.New("connection refused")})
	rep = down.Check(ctx)
	require.False(t, rep.Ready())
	assert.Equal(t, "redis: connection refused", rep.Err.Error())
	assert.Equal(t, map[string]string{"a": "ok", "redis": "connection refused"}, rep.Checks)
}

func TestService_ChecksRunOnce(t *testing.T) {
	var pg, redis int
	svc := NewService(
		fakeChecker{name: "postgres", err: errors.New("timeout"), calls: &pg},
		fakeChecker{name: "redis", calls: &redis},
	)

	rep := svc.Check(context.Background())

	assert.False(t, rep.Ready())
	assert.Equal(t, 1, pg)
	assert.Equal(t, 1, redis)
}
