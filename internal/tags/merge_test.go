package tags

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-tags/internal/database"
	"media-tags/internal/metrics"
)

func TestMerge(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	loser := mustRegister(t, db, "twilight", CategoryCharacter, "")
	winner := mustRegister(t, db, "twilight sparkle", CategoryCharacter, "")
	child := mustRegister(t, db, "twilight book", "object", "")
	setParentRaw(t, db, child, loser)

	onlyLoser := addContent(t, db, "loser.png", 0, false, loser)
	both := addContent(t, db, "both.png", 1, false, loser, winner)
	onlyWinner := addContent(t, db, "winner.png", 2, false, winner)

	before := testutil.ToFloat64(metrics.TagMergeLinksTotal.WithLabelValues("relinked"))

	report, err := Merge(ctx, db, loser, winner)
	require.NoError(t, err)
	assert.Equal(t, MergeReport{Relinked: 1, Dropped: 1, AliasesMoved: 1, OrphanedChildren: 1}, report)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.TagMergeLinksTotal.WithLabelValues("relinked")))

	_, err = GetTag(ctx, db, loser)
	assert.ErrorIs(t, err, ErrTagNotFound)

	loserLinks, err := ContentIDsByTag(ctx, db, loser)
	require.NoError(t, err)
	assert.Empty(t, loserLinks)

	winnerLinks, err := ContentIDsByTag(ctx, db, winner)
	require.NoError(t, err)
	assert.Equal(t, []int64{onlyLoser, both, onlyWinner}, winnerLinks)

	for _, contentID := range []int64{onlyLoser, both, onlyWinner} {
		tagIDs, err := database.TagIDsForContent(ctx, db, contentID)
		require.NoError(t, err)
		assert.Equal(t, []int64{winner}, tagIDs, "content %d", contentID)
	}

	got, found, err := TagIDByAlias(ctx, db, "character:twilight")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, winner, got, "loser aliases follow the winner")

	orphan, err := GetTag(ctx, db, child)
	require.NoError(t, err)
	assert.Nil(t, orphan.Parent)
}

func TestMergeClearsTwoCycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("winner parented to loser", func(t *testing.T) {
		loser := mustRegister(t, db, "l1", "set", "")
		winner := mustRegister(t, db, "w1", "set", "")
		setParentRaw(t, db, winner, loser)

		_, err := Merge(ctx, db, loser, winner)
		require.NoError(t, err)

		tag, err := GetTag(ctx, db, winner)
		require.NoError(t, err)
		assert.Nil(t, tag.Parent)
	})

	t.Run("loser parented to winner", func(t *testing.T) {
		loser := mustRegister(t, db, "l2", "set", "")
		winner := mustRegister(t, db, "w2", "set", "")
		root := mustRegister(t, db, "r2", "set", "")
		setParentRaw(t, db, loser, winner)
		setParentRaw(t, db, winner, root)

		_, err := Merge(ctx, db, loser, winner)
		require.NoError(t, err)

		tag, err := GetTag(ctx, db, winner)
		require.NoError(t, err)
		require.NotNil(t, tag.Parent)
		assert.Equal(t, root, *tag.Parent)
	})
}

func TestMergeErrors(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tagID := mustRegister(t, db, "solo", "set", "")
	contentID := addContent(t, db, "solo.png", 0, false, tagID)

	_, err := Merge(ctx, db, tagID, tagID)
	assert.ErrorIs(t, err, ErrSelfMerge)

	_, err = Merge(ctx, db, tagID, 424242)
	assert.ErrorIs(t, err, ErrTagNotFound)

	_, err = Merge(ctx, db, 424242, tagID)
	assert.ErrorIs(t, err, ErrTagNotFound)

	links, err := database.TagIDsForContent(ctx, db, contentID)
	require.NoError(t, err)
	assert.Equal(t, []int64{tagID}, links, "failed merge changes nothing")
}

func TestPartition(t *testing.T) {
	t.Parallel()

	relink, drop := partition([]int64{1, 2, 3, 4}, []int64{2, 4, 6})
	assert.Equal(t, []int64{1, 3}, relink)
	assert.Equal(t, []int64{2, 4}, drop)

	relink, drop = partition(nil, []int64{1})
	assert.Empty(t, relink)
	assert.Empty(t, drop)
}
