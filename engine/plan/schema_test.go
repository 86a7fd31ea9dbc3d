package plan

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSchema(t *testing.T) {
	t.Run("Should describe the plan with tagged trigger and action variants", func(t *testing.T) {
		data, err := json.Marshal(JSONSchema())
		require.NoError(t, err)
		var doc map[string]any
		require.NoError(t, json.Unmarshal(data, &doc))
		assert.Equal(t, "WorkflowPlan", doc["title"])
		props, ok := doc["properties"].(map[string]any)
		require.True(t, ok)
		trigger, ok := props["trigger"].(map[string]any)
		require.True(t, ok)
		assert.Len(t, trigger["oneOf"], 3)
		actions, ok := props["actions"].(map[string]any)
		require.True(t, ok)
		items, ok := actions["items"].(map[string]any)
		require.True(t, ok)
		assert.Len(t, items["oneOf"], 4)
	})
}
