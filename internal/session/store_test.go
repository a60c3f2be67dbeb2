package session

import (
	"context"
	"edu_portal_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreOverwritesAndDeletes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Load(ctx, "u1")
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, store.Save(ctx, &Session{UserID: "u1", Email: "a@b.c", Role: model.Student}))
	require.NoError(t, store.Save(ctx, &Session{UserID: "u1", Email: "a@b.c", Role: model.Teacher}))

	sess, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.Teacher, sess.Role)

	require.NoError(t, store.Delete(ctx, "u1"))
	require.NoError(t, store.Delete(ctx, "u1"))
	_, err = store.Load(ctx, "u1")
	assert.ErrorIs(t, err, ErrNoSession)
}
