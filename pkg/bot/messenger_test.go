package bot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMessage(t *testing.T) {
	t.Run("should keep a short message whole", func(t *testing.T) {
		assert.Equal(t, []string{"ciao"}, splitMessage("ciao", 10))
	})

	t.Run("should keep a message exactly at the limit whole", func(t *testing.T) {
		assert.Equal(t, []string{"0123456789"}, splitMessage("0123456789", 10))
	})

	t.Run("should split on the last newline before the limit", func(t *testing.T) {
		// given
		text := "aaaa\nbbbb\ncccc"

		// when
		parts := splitMessage(text, 10)

		// then
		assert.Equal(t, []string{"aaaa\nbbbb", "cccc"}, parts)
	})

	t.Run("should cut hard when no newline fits", func(t *testing.T) {
		// given
		text := "abcdefghijklmno"

		// when
		parts := splitMessage(text, 10)

		// then
		assert.Equal(t, []string{"abcdefghij", "klmno"}, parts)
	})

	t.Run("should count runes rather than bytes", func(t *testing.T) {
		// given
		text := strings.Repeat("è", 12)

		// when
		parts := splitMessage(text, 10)

		// then
		require.Len(t, parts, 2)
		assert.Equal(t, strings.Repeat("è", 10), parts[0])
		assert.Equal(t, strings.Repeat("è", 2), parts[1])
	})

	t.Run("should drop blank runs at a split point", func(t *testing.T) {
		// given
		text := "aaaa\n\n\n\nbbbbbbbb"

		// when
		parts := splitMessage(text, 10)

		// then
		assert.Equal(t, []string{"aaaa", "bbbbbbbb"}, parts)
	})

	t.Run("should split a long report into several parts", func(t *testing.T) {
		// given
		var b strings.Builder
		for i := 0; i < 400; i++ {
			b.WriteString("- Alimentari: 12.50€\n")
		}
		text := strings.TrimRight(b.String(), "\n")

		// when
		parts := splitMessage(text, messageLimit)

		// then
		require.Greater(t, len(parts), 1)
		for _, part := range parts {
			assert.LessOrEqual(t, len([]rune(part)), messageLimit)
			assert.True(t, strings.HasPrefix(part, "- Alimentari"))
			assert.True(t, strings.HasSuffix(part, "€"))
		}
	})
}
