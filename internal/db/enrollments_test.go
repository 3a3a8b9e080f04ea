package db

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveWords_SortedByNative(t *testing.T) {
	db := setupSeededDB(t)
	ctx := context.Background()

	userID, err := db.Provision(ctx, "42", "")
	require.NoError(t, err)

	words, err := db.ActiveWords(ctx, userID)
	require.NoError(t, err)
	require.Len(t, words, len(SharedVocabulary))

	natives := make([]string, len(words))
	for i, w := range words {
		natives[i] = w.Native
	}
	assert.True(t, sort.StringsAreSorted(natives), "got %v", natives)
}

func TestActiveWords_EmptyForNewUserWithoutSeed(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	userID, err := db.Provision(ctx, "42", "")
	require.NoError(t, err)

	words, err := db.ActiveWords(ctx, userID)
	require.NoError(t, err)
	assert.NotNil(t, words)
	assert.Empty(t, words)
}

func TestAddThenList(t *testing.T) {
	db := setupSeededDB(t)
	ctx := context.Background()

	userID, err := db.Provision(ctx, "42", "")
	require.NoError(t, err)

	wordID, err := db.AddPersonalWord(ctx, userID, "Apple", "Яблоко")
	require.NoError(t, err)
	require.NoError(t, db.Enroll(ctx, userID, wordID))
	require.NoError(t, db.Enroll(ctx, userID, wordID), "enrolling twice is a no-op")

	words, err := db.ActiveWords(ctx, userID)
	require.NoError(t, err)
	require.Len(t, words, len(SharedVocabulary)+1)
	assert.Contains(t, words, ActiveWord{WordID: wordID, English: "apple", Native: "яблоко"})
}

func TestPersonalWordsStayPrivate(t *testing.T) {
	db := setupSeededDB(t)
	ctx := context.Background()

	alice, err := db.Provision(ctx, "alice", "")
	require.NoError(t, err)
	bob, err := db.Provision(ctx, "bob", "")
	require.NoError(t, err)

	wordID, err := db.AddPersonalWord(ctx, alice, "cat", "кот")
	require.NoError(t, err)
	require.NoError(t, db.Enroll(ctx, alice, wordID))

	words, err := db.ActiveWords(ctx, bob)
	require.NoError(t, err)
	for _, w := range words {
		assert.NotEqual(t, wordID, w.WordID)
	}
}

func TestDeactivate(t *testing.T) {
	db := setupSeededDB(t)
	ctx := context.Background()

	alice, err := db.Provision(ctx, "alice", "")
	require.NoError(t, err)
	bob, err := db.Provision(ctx, "bob", "")
	require.NoError(t, err)

	removed, err := db.Deactivate(ctx, alice, 2)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = db.Deactivate(ctx, alice, 2)
	require.NoError(t, err)
	assert.False(t, removed, "already inactive word")

	removed, err = db.Deactivate(ctx, alice, 99999)
	require.NoError(t, err)
	assert.False(t, removed, "word the user is not enrolled in")

	aliceWords, err := db.ActiveWords(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, aliceWords, len(SharedVocabulary)-1)

	bobWords, err := db.ActiveWords(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, bobWords, len(SharedVocabulary), "other users are unaffected")

	// The shared word itself still exists.
	_, err = db.GetWord(ctx, 2)
	assert.NoError(t, err)
}

func TestRandomActiveWord(t *testing.T) {
	db := setupSeededDB(t)
	ctx := context.Background()

	userID, err := db.Provision(ctx, "42", "")
	require.NoError(t, err)

	for i := int64(1); i <= int64(len(SharedVocabulary)); i++ {
		if i == 5 {
			continue
		}
		_, err := db.Deactivate(ctx, userID, i)
		require.NoError(t, err)
	}

	w, err := db.RandomActiveWord(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), w.WordID)
	assert.Equal(t, "black", w.English)
	assert.Equal(t, "чёрный", w.Native)

	_, err = db.Deactivate(ctx, userID, 5)
	require.NoError(t, err)

	_, err = db.RandomActiveWord(ctx, userID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordResult(t *testing.T) {
	db := setupSeededDB(t)
	ctx := context.Background()

	userID, err := db.Provision(ctx, "42", "")
	require.NoError(t, err)

	require.NoError(t, db.RecordResult(ctx, userID, 1, true))
	require.NoError(t, db.RecordResult(ctx, userID, 1, true))
	require.NoError(t, db.RecordResult(ctx, userID, 1, false))

	e, err := db.GetEnrollment(ctx, userID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, e.CorrectCount)
	assert.Equal(t, 1, e.WrongCount)
	assert.True(t, e.Active)

	err = db.RecordResult(ctx, userID, 99999, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStats(t *testing.T) {
	db := setupSeededDB(t)
	ctx := context.Background()

	userID, err := db.Provision(ctx, "42", "")
	require.NoError(t, err)

	require.NoError(t, db.RecordResult(ctx, userID, 1, true))
	require.NoError(t, db.RecordResult(ctx, userID, 2, false))
	_, err = db.Deactivate(ctx, userID, 3)
	require.NoError(t, err)

	s, err := db.Stats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, Stats{
		ActiveWords:  len(SharedVocabulary) - 1,
		TotalWords:   len(SharedVocabulary),
		CorrectCount: 1,
		WrongCount:   1,
	}, *s)
}

func TestStats_UnknownUser(t *testing.T) {
	db := setupTestDB(t)

	s, err := db.Stats(context.Background(), 12345)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, *s)
}
