package template

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveInputs(t *testing.T) {
	defs := []Input{
		{Name: "targetUrl", Type: InputURL, Required: true},
		{Name: "recipient", Type: InputEmail, Required: true},
		{Name: "every", Type: InputInteger, Default: int64(5)},
		{Name: "schedule", Type: InputCron},
	}

	t.Run("Should apply defaults and coerce integers", func(t *testing.T) {
		got, err := ResolveInputs(defs, map[string]any{
			"targetUrl": " https://example.com ",
			"recipient": "ops@example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", got["targetUrl"])
		assert.Equal(t, int64(5), got["every"])
		_, hasSchedule := got["schedule"]
		assert.False(t, hasSchedule)

		got, err = ResolveInputs(defs, map[string]any{
			"targetUrl": "https://example.com",
			"recipient": "ops@example.com",
			"every":     "15",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(15), got["every"])
	})

	t.Run("Should list every missing input before building", func(t *testing.T) {
		_, err := ResolveInputs(defs, map[string]any{"recipient": ""})
		var inputErr *InputError
		require.ErrorAs(t, err, &inputErr)
		assert.Equal(t, []string{"targetUrl", "recipient"}, inputErr.Missing)
		assert.True(t, errors.Is(err, ErrInvalidInputs))
		assert.Contains(t, err.Error(), "missing input: targetUrl")
	})

	t.Run("Should reject malformed values", func(t *testing.T) {
		_, err := ResolveInputs(defs, map[string]any{
			"targetUrl": "example.com",
			"recipient": "not-an-email",
			"every":     "-3",
			"schedule":  "whenever",
		})
		var inputErr *InputError
		require.ErrorAs(t, err, &inputErr)
		assert.Empty(t, inputErr.Missing)
		assert.Len(t, inputErr.Invalid, 4)
		assert.Equal(t, "must be an http:// or https:// URL", inputErr.Invalid["targetUrl"])
	})

	t.Run("Should not mutate the provided map", func(t *testing.T) {
		provided := map[string]any{"targetUrl": "https://example.com", "recipient": "a@b.co"}
		_, err := ResolveInputs(defs, provided)
		require.NoError(t, err)
		assert.Len(t, provided, 2)
	})
}

func TestInputSchema(t *testing.T) {
	t.Run("Should require inputs without defaults", func(t *testing.T) {
		schema := InputSchema([]Input{
			{Name: "a", Type: InputURL, Required: true},
			{Name: "b", Type: InputString, Required: true, Default: "x"},
		})
		assert.Equal(t, []string{"a"}, schema["required"])
	})
}
