package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterval_Duration(t *testing.T) {
	t.Run("Should convert every unit", func(t *testing.T) {
		cases := map[IntervalUnit]time.Duration{
			UnitSeconds: 3 * time.Second,
			UnitMinutes: 3 * time.Minute,
			UnitHours:   3 * time.Hour,
			UnitDays:    72 * time.Hour,
			UnitWeeks:   21 * 24 * time.Hour,
		}
		for unit, want := range cases {
			got, err := Interval{Amount: 3, Unit: unit}.Duration()
			require.NoError(t, err)
			assert.Equal(t, want, got, unit)
		}
	})

	t.Run("Should fail on unknown units", func(t *testing.T) {
		_, err := Interval{Amount: 1, Unit: "fortnights"}.Duration()
		assert.Error(t, err)
	})
}
