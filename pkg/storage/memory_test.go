package storage_test

import (
	"context"
	"testing"

	"github.com/cairo-thws/fedt4t/pkg/errors"
	"github.com/cairo-thws/fedt4t/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGetUpdateDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := storage.NewInMemoryStorage()

	require.NoError(t, s.Create(ctx, "k", 1))
	assert.ErrorIs(t, s.Create(ctx, "k", 2), errors.ErrEntityExists)

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	require.NoError(t, s.Update(ctx, "k", 2))
	v, _ = s.Get(ctx, "k")
	assert.Equal(t, 2, v)

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestEmptyKeyRejected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := storage.NewInMemoryStorage()

	assert.ErrorIs(t, s.Create(ctx, "", 1), errors.ErrEmptyKey)
	_, err := s.Get(ctx, "")
	assert.ErrorIs(t, err, errors.ErrEmptyKey)
	assert.ErrorIs(t, s.Update(ctx, "", 1), errors.ErrEmptyKey)
	assert.ErrorIs(t, s.Delete(ctx, ""), errors.ErrEmptyKey)
}

func TestUpdateMissing(t *testing.T) {
	t.Parallel()

	s := storage.NewInMemoryStorage()
	assert.ErrorIs(t, s.Update(context.Background(), "missing", 1), errors.ErrNotFound)
}

func TestListOrderedWithPagination(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := storage.NewInMemoryStorage()

	require.NoError(t, s.Create(ctx, "b", "two"))
	require.NoError(t, s.Create(ctx, "a", "one"))
	require.NoError(t, s.Create(ctx, "c", "three"))

	all, total, err := s.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	assert.Equal(t, []interface{}{"one", "two", "three"}, all)

	page, total, err := s.List(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	assert.Equal(t, []interface{}{"two"}, page)

	empty, total, err := s.List(ctx, 9, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	assert.Empty(t, empty)
}
