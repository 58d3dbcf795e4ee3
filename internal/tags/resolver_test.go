package tags

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLabel(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	pony := mustRegister(t, db, "pony", "species", "")
	unicorn := mustRegister(t, db, "unicorn", "species", "")
	alicorn := mustRegister(t, db, "alicorn", "species", "winged unicorn")
	setParentRaw(t, db, unicorn, pony)
	setParentRaw(t, db, alicorn, unicorn)

	got, err := Resolve(ctx, db, Label("pony"))
	require.NoError(t, err)
	assert.Equal(t, []int64{pony, unicorn, alicorn}, got)

	got, err = Resolve(ctx, db, Label("winged_unicorn"))
	require.NoError(t, err)
	assert.Equal(t, []int64{alicorn}, got, "secondary alias")

	got, err = Resolve(ctx, db, Label("Pony"))
	require.NoError(t, err)
	assert.Empty(t, got, "labels match exactly")
}

func TestResolveID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	parent := mustRegister(t, db, "equestria", "copyright", "")
	child := mustRegister(t, db, "ponyville", "location", "")
	other := mustRegister(t, db, "canterlot", "location", "")
	setParentRaw(t, db, child, parent)

	got, err := Resolve(ctx, db, ID(parent))
	require.NoError(t, err)
	assert.Equal(t, []int64{parent, child}, got)

	got, err = Resolve(ctx, db, ID(other))
	require.NoError(t, err)
	assert.Equal(t, []int64{other}, got)

	got, err = Resolve(ctx, db, ID(9999))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolveTerminatesOnCycles(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	a := mustRegister(t, db, "a", "set", "")
	b := mustRegister(t, db, "b", "set", "")
	c := mustRegister(t, db, "c", "set", "")
	setParentRaw(t, db, b, a)
	setParentRaw(t, db, c, b)
	setParentRaw(t, db, a, c)

	got, err := Resolve(ctx, db, ID(a))
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{a, b, c}, got)

	up, err := Ancestors(ctx, db, a)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{a, b, c}, up)
}

func TestResolveInvalidReference(t *testing.T) {
	t.Parallel()

	_, err := Resolve(context.Background(), nil, Reference{})
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestResolveGroupUnion(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	parent := mustRegister(t, db, "mane six", "set", "")
	child := mustRegister(t, db, "rarity", CategoryCharacter, "")
	setParentRaw(t, db, child, parent)

	got, err := ResolveGroup(ctx, db, &Group{References: []Reference{
		Label("character:rarity"),
		ID(parent),
		Label("nothing here"),
	}})
	require.NoError(t, err)
	assert.Equal(t, []int64{child, parent}, got)

	_, err = ResolveGroup(ctx, db, nil)
	assert.ErrorIs(t, err, ErrNilGroup)
}
