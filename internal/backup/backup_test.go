package backup

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-tags/internal/database"
	"media-tags/internal/tags"
)

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, err := database.New(context.Background(), database.Options{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "tags.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustRegister(t *testing.T, db *database.Database, title, category string) int64 {
	t.Helper()
	res, err := tags.Register(context.Background(), db, title, category, "")
	require.NoError(t, err)
	return res.ID
}

func seedGraph(t *testing.T, db *database.Database) {
	t.Helper()
	ctx := context.Background()

	pony := mustRegister(t, db, "pony", tags.CategoryContent)
	applejack := mustRegister(t, db, "applejack", tags.CategoryCharacter)
	bigMac := mustRegister(t, db, "big mac", tags.CategoryCharacter)
	require.NoError(t, tags.AddAlias(ctx, db, bigMac, "macintosh"))
	require.NoError(t, tags.SetParent(ctx, db, applejack, pony))
	require.NoError(t, tags.SetParent(ctx, db, bigMac, pony))
}

func TestExport(t *testing.T) {
	db := setupTestDB(t)
	seedGraph(t, db)

	dump, err := Export(context.Background(), db)
	require.NoError(t, err)

	pony := TagKey{Title: "pony", Category: tags.CategoryContent}
	assert.Equal(t, []TagDocument{
		{Title: "pony", Category: tags.CategoryContent, Aliases: []string{"pony"}},
		{Title: "applejack", Category: tags.CategoryCharacter, Aliases: []string{"character:applejack"}, Parent: &pony},
		{
			Title:    "big mac",
			Category: tags.CategoryCharacter,
			Aliases:  []string{"character:big mac", "character:big_mac", "macintosh"},
			Parent:   &pony,
		},
	}, dump.Tags)
}

func TestExportEmpty(t *testing.T) {
	db := setupTestDB(t)

	dump, err := Export(context.Background(), db)
	require.NoError(t, err)
	assert.Empty(t, dump.Tags)

	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, dump))
	back, err := ReadYAML(&buf)
	require.NoError(t, err)
	assert.Empty(t, back.Tags)
}

func TestRoundTrip(t *testing.T) {
	src := setupTestDB(t)
	seedGraph(t, src)
	ctx := context.Background()

	dump, err := Export(ctx, src)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, dump))
	decoded, err := ReadYAML(&buf)
	require.NoError(t, err)
	assert.Equal(t, dump, decoded)

	dst := setupTestDB(t)
	report, err := NewImporter(dst, ImporterConfig{NumWorkers: 4}).Import(ctx, decoded)
	require.NoError(t, err)
	assert.Equal(t, Report{Registered: 3, AliasesAdded: 1, ParentsLinked: 2}, report)

	lastImport, err := database.GetMetadata(ctx, dst, LastImportKey)
	require.NoError(t, err)
	assert.NotEmpty(t, lastImport)

	// Concurrent registration assigns ids in any order.
	restored, err := Export(ctx, dst)
	require.NoError(t, err)
	assert.ElementsMatch(t, dump.Tags, restored.Tags)
}

func TestImportIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	dump := Dump{Tags: []TagDocument{
		{Title: "rarity", Category: tags.CategoryCharacter},
		{Title: "rarity", Category: tags.CategoryCharacter},
		{Title: "gems"},
	}}

	report, err := NewImporter(db, ImporterConfig{NumWorkers: 3}).Import(ctx, dump)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Registered)
	assert.Equal(t, 1, report.Existing)

	report, err = NewImporter(db, ImporterConfig{NumWorkers: 3}).Import(ctx, dump)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Registered)
	assert.Equal(t, 3, report.Existing)

	all, err := tags.ListTags(ctx, db)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	categories, err := tags.CategoriesOf(ctx, db, "gems")
	require.NoError(t, err)
	assert.Equal(t, []string{tags.CategoryContent}, categories)
}

func TestImportParentFallsBackToExistingTag(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	pony := mustRegister(t, db, "pony", tags.CategoryContent)

	dump := Dump{Tags: []TagDocument{
		{Title: "fluttershy", Category: tags.CategoryCharacter, Parent: &TagKey{Title: "pony", Category: tags.CategoryContent}},
	}}
	report, err := NewImporter(db, DefaultImporterConfig()).Import(ctx, dump)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ParentsLinked)

	id, found, err := tags.CheckExists(ctx, db, "fluttershy", tags.CategoryCharacter)
	require.NoError(t, err)
	require.True(t, found)
	tag, err := tags.GetTag(ctx, db, id)
	require.NoError(t, err)
	require.NotNil(t, tag.Parent)
	assert.Equal(t, pony, *tag.Parent)
}

func TestImportReportsFailures(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	dump := Dump{Tags: []TagDocument{
		{Title: "spike", Category: tags.CategoryCharacter, Parent: &TagKey{Title: "dragon", Category: "species"}},
		{Title: "owlowiscious", Category: tags.CategoryCharacter},
	}}
	report, err := NewImporter(db, ImporterConfig{NumWorkers: 2}).Import(ctx, dump)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Equal(t, 2, report.Registered)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 0, report.ParentsLinked)
}

func TestImportCancelled(t *testing.T) {
	db := setupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewImporter(db, ImporterConfig{NumWorkers: 1}).Import(ctx, Dump{Tags: []TagDocument{{Title: "derpy"}}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadYAML(t *testing.T) {
	dump, err := ReadYAML(strings.NewReader(`
tags:
  - title: applejack
    category: character
    aliases: [aj]
    parent:
      title: pony
      category: content
`))
	require.NoError(t, err)
	require.Len(t, dump.Tags, 1)
	assert.Equal(t, []string{"aj"}, dump.Tags[0].Aliases)
	assert.Equal(t, &TagKey{Title: "pony", Category: "content"}, dump.Tags[0].Parent)

	_, err = ReadYAML(strings.NewReader("tags:\n  - category: character\n"))
	assert.ErrorIs(t, err, tags.ErrEmptyTitle)

	_, err = ReadYAML(strings.NewReader("tags: [\n"))
	assert.Error(t, err)
}

func TestNewImporterDefaults(t *testing.T) {
	im := NewImporter(nil, ImporterConfig{ChannelBuffer: -1})
	assert.Positive(t, im.config.NumWorkers)
	assert.LessOrEqual(t, im.config.NumWorkers, maxImportWorkers)
	assert.Equal(t, 0, im.config.ChannelBuffer)
}
