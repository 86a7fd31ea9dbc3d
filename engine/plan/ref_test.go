package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	t.Run("Should parse source and nested path", func(t *testing.T) {
		ref, ok := ParseRef("{{step1.user.email}}")
		require.True(t, ok)
		assert.Equal(t, "step1", ref.Source)
		assert.Equal(t, []string{"user", "email"}, ref.Path)
		assert.Equal(t, "{{step1.user.email}}", ref.String())
	})

	t.Run("Should tolerate inner whitespace", func(t *testing.T) {
		ref, ok := ParseRef("{{ webhook.body }}")
		require.True(t, ok)
		assert.True(t, ref.IsTrigger())
		assert.Equal(t, []string{"body"}, ref.Path)
	})

	t.Run("Should parse a bare source", func(t *testing.T) {
		ref, ok := ParseRef("{{step1}}")
		require.True(t, ok)
		assert.Empty(t, ref.Path)
		assert.Equal(t, NewRef("step1").String(), ref.String())
	})

	t.Run("Should ignore partial interpolation", func(t *testing.T) {
		for _, s := range []string{"Hello {{step1.name}}", "{{step1.name}}!", "{{}}", "{{a..b}}", "plain"} {
			_, ok := ParseRef(s)
			assert.False(t, ok, s)
		}
	})
}
