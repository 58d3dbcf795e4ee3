package tags

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-tags/internal/database"
)

func countTags(t *testing.T, db *database.Database, title, category string) int {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM tag WHERE title = ? AND category = ?", title, category).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestRegisterInsertsTagAndAliases(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	res, err := Register(ctx, db, "twilight_sparkle", CategoryCharacter, "")
	require.NoError(t, err)
	assert.Equal(t, Inserted, res.Outcome)

	tag, err := GetTag(ctx, db, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "twilight sparkle", tag.Title)
	assert.Equal(t, CategoryCharacter, tag.Category)
	assert.Nil(t, tag.Parent)

	aliases, err := Aliases(ctx, db, res.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"character:twilight_sparkle", "character:twilight sparkle"}, aliases)
}

func TestRegisterIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, err := Register(ctx, db, "rainbow dash", CategoryCharacter, "")
	require.NoError(t, err)
	second, err := Register(ctx, db, "rainbow_dash", CategoryCharacter, "")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, Inserted, first.Outcome)
	assert.Equal(t, AlreadyExists, second.Outcome)
	assert.Equal(t, 1, countTags(t, db, "rainbow dash", CategoryCharacter))
}

func TestRegisterConcurrent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	const workers = 8
	results := make([]RegisterResult, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = Register(ctx, db, "fluttershy", CategoryCharacter, "")
		}()
	}
	wg.Wait()

	inserted := 0
	for i := range workers {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].ID, results[i].ID)
		if results[i].Outcome == Inserted {
			inserted++
		}
	}
	assert.Equal(t, 1, inserted)
	assert.Equal(t, 1, countTags(t, db, "fluttershy", CategoryCharacter))
}

func TestRegisterAliasBidirectional(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id := mustRegister(t, db, "pinkie pie", CategoryCharacter, "")

	for _, alias := range []string{"character:pinkie pie", "character:pinkie_pie"} {
		got, found, err := TagIDByAlias(ctx, db, alias)
		require.NoError(t, err)
		require.True(t, found, alias)
		assert.Equal(t, id, got, alias)

		resolved, err := Resolve(ctx, db, Label(alias))
		require.NoError(t, err)
		assert.Equal(t, []int64{id}, resolved, alias)
	}
}

func TestRegisterUpgradesContentPlaceholder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	stub, err := Register(ctx, db, "rarity", CategoryContent, "")
	require.NoError(t, err)
	require.Equal(t, Inserted, stub.Outcome)

	res, err := Register(ctx, db, "rarity", CategoryArtist, "rarity")
	require.NoError(t, err)
	assert.Equal(t, CategoryUpgraded, res.Outcome)
	assert.Equal(t, stub.ID, res.ID)

	tag, err := GetTag(ctx, db, stub.ID)
	require.NoError(t, err)
	assert.Equal(t, CategoryArtist, tag.Category)

	assert.Equal(t, 1, countTags(t, db, "rarity", CategoryArtist))
	assert.Equal(t, 0, countTags(t, db, "rarity", CategoryContent))
}

func TestRegisterContentDefersToExistingTag(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	existing := mustRegister(t, db, "applejack", "character", "applejack")

	res, err := Register(ctx, db, "applejack", CategoryContent, "")
	require.NoError(t, err)
	assert.Equal(t, MergedIntoExisting, res.Outcome)
	assert.Equal(t, existing, res.ID)

	tag, err := GetTag(ctx, db, existing)
	require.NoError(t, err)
	assert.Equal(t, "character", tag.Category)
	assert.Equal(t, 0, countTags(t, db, "applejack", CategoryContent))
}

func TestRegisterAliasConflict(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	mustRegister(t, db, "luna", CategoryCharacter, "moon")

	_, err := Register(ctx, db, "luna", "copyright", "moon")
	require.ErrorIs(t, err, ErrAliasConflict)
	assert.Equal(t, 0, countTags(t, db, "luna", "copyright"))

	_, found, err := CheckExists(ctx, db, "luna", "copyright")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRegisterEmptyTitle(t *testing.T) {
	t.Parallel()

	_, err := Register(context.Background(), nil, "", CategoryArtist, "")
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestCheckExists(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id := mustRegister(t, db, "starlight glimmer", CategoryCharacter, "glimmer")

	got, found, err := CheckExists(ctx, db, "starlight_glimmer", CategoryCharacter)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, id, got)

	got, found, err = CheckExists(ctx, db, "glimmer", CategoryCharacter)
	require.NoError(t, err)
	assert.True(t, found, "alias fallback")
	assert.Equal(t, id, got)

	_, found, err = CheckExists(ctx, db, "glimmer", CategoryArtist)
	require.NoError(t, err)
	assert.False(t, found, "alias fallback is scoped to the category")
}

func TestRegisterShortensLongTitles(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	long := ""
	for range 60 {
		long += "word "
	}
	res, err := Register(ctx, db, long, "set", "long-set")
	require.NoError(t, err)

	tag, err := GetTag(ctx, db, res.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(tag.Title)), TitleMaxSize)

	again, err := Register(ctx, db, long, "set", "long-set")
	require.NoError(t, err)
	assert.Equal(t, res.ID, again.ID)
}
