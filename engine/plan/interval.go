package plan

import (
	"fmt"
	"time"

	"github.com/xhit/go-str2duration/v2"
)

// IntervalUnit is the unit of a structured interval.
type IntervalUnit string

const (
	UnitSeconds IntervalUnit = "seconds"
	UnitMinutes IntervalUnit = "minutes"
	UnitHours   IntervalUnit = "hours"
	UnitDays    IntervalUnit = "days"
	UnitWeeks   IntervalUnit = "weeks"
)

var unitSuffix = map[IntervalUnit]string{
	UnitSeconds: "s",
	UnitMinutes: "m",
	UnitHours:   "h",
	UnitDays:    "d",
	UnitWeeks:   "w",
}

// Interval is a structured duration such as {amount: 5, unit: "minutes"}.
type Interval struct {
	Amount int          `json:"amount" validate:"min=1"`
	Unit   IntervalUnit `json:"unit"   validate:"required,oneof=seconds minutes hours days weeks" jsonschema:"enum=seconds,enum=minutes,enum=hours,enum=days,enum=weeks"`
}

// Duration converts the interval into a time.Duration.
func (i Interval) Duration() (time.Duration, error) {
	suffix, ok := unitSuffix[i.Unit]
	if !ok {
		return 0, fmt.Errorf("unsupported interval unit %q", i.Unit)
	}
	return str2duration.ParseDuration(fmt.Sprintf("%d%s", i.Amount, suffix))
}
