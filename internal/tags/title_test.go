package tags

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "twilight sparkle", NormalizeTitle("twilight_sparkle"))
	assert.Equal(t, "plain", NormalizeTitle("plain"))
}

func TestDefaultAlias(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title, category, want string
	}{
		{"rarity", CategoryCharacter, "character:rarity"},
		{"somebody", CategoryArtist, "artist:somebody"},
		{"equestria", "copyright", "equestria"},
		{"rarity", CategoryContent, "rarity"},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DefaultAlias(tt.title, tt.category))
		})
	}
}

func TestSwapSeparators(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "character:twilight_sparkle", SwapSeparators("character:twilight sparkle"))
	assert.Equal(t, "character:twilight sparkle", SwapSeparators("character:twilight_sparkle"))
	assert.Equal(t, "rarity", SwapSeparators("rarity"))
}

func TestShortenTitle(t *testing.T) {
	t.Parallel()

	t.Run("fits", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "short title", ShortenTitle("short title", 20))
	})

	t.Run("cuts at word boundary", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "alpha beta…", ShortenTitle("alpha beta gamma delta", 12))
	})

	t.Run("underscore separated", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "alpha beta…", ShortenTitle("alpha_beta_gamma_delta", 12))
	})

	t.Run("single long word is truncated", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "abcde", ShortenTitle("abcdefghij", 5))
	})

	t.Run("respects limit", func(t *testing.T) {
		t.Parallel()
		long := strings.Repeat("word ", 100)
		got := ShortenTitle(long, TitleMaxSize)
		assert.LessOrEqual(t, utf8.RuneCountInString(got), TitleMaxSize)
		assert.True(t, strings.HasSuffix(got, "…"))
	})
}
