package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvision_Idempotent(t *testing.T) {
	db := setupSeededDB(t)
	ctx := context.Background()

	first, err := db.Provision(ctx, "42", "Ann")
	require.NoError(t, err)
	second, err := db.Provision(ctx, "42", "Ann")
	require.NoError(t, err)

	assert.Equal(t, first, second)

	users, err := db.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, users)
	assert.Equal(t, len(SharedVocabulary), countRows(t, db, `SELECT COUNT(*) FROM enrollments WHERE user_id = ?`, first))
}

func TestProvision_DisplayName(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.Provision(ctx, "42", "Ann")
	require.NoError(t, err)

	_, err = db.Provision(ctx, "42", "Annie")
	require.NoError(t, err)
	u, err := db.GetUserByExternalID(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "Annie", u.DisplayName)

	_, err = db.Provision(ctx, "42", "")
	require.NoError(t, err)
	u, err = db.GetUserByExternalID(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "Annie", u.DisplayName, "an empty name must not clear the stored one")
}

func TestProvision_DoesNotResurrectRemovedWords(t *testing.T) {
	db := setupSeededDB(t)
	ctx := context.Background()

	userID, err := db.Provision(ctx, "42", "")
	require.NoError(t, err)

	removed, err := db.Deactivate(ctx, userID, 1)
	require.NoError(t, err)
	require.True(t, removed)

	_, err = db.Provision(ctx, "42", "")
	require.NoError(t, err)

	e, err := db.GetEnrollment(ctx, userID, 1)
	require.NoError(t, err)
	assert.False(t, e.Active)
	assert.Equal(t, 1, countRows(t, db, `SELECT COUNT(*) FROM enrollments WHERE user_id = ? AND word_id = 1`, userID))
}

func TestProvision_FillsMissingEnrollments(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	userID, err := db.Provision(ctx, "42", "")
	require.NoError(t, err)
	assert.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM enrollments`))

	_, err = db.SeedSharedWords(ctx)
	require.NoError(t, err)

	_, err = db.Provision(ctx, "42", "")
	require.NoError(t, err)
	assert.Equal(t, len(SharedVocabulary), countRows(t, db, `SELECT COUNT(*) FROM enrollments WHERE user_id = ?`, userID))
}

func TestProvision_RejectsEmptyIdentity(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.Provision(context.Background(), "  ", "Ann")
	assert.Error(t, err)
}

func TestGetUserByExternalID_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetUserByExternalID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
