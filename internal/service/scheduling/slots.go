package scheduling

import (
	"fmt"
	"time"

	"github.com/carebook/clinic-api/internal/model"
)

// DefaultSlotInterval is the slot length used when none is configured.
const DefaultSlotInterval = 30 * time.Minute

// GenerateSlots expands an availability window into the ordered sequence of
// discrete bookable slot start times. Both bounds are wall-clock HH:MM
// values on the same date.
//
// A slot is emitted while its start is strictly before end; only the start
// is checked, so when the window length is not a multiple of the interval
// the final slot runs past the published end time. That boundary rule is
// deliberate and governs the exact slot counts elsewhere.
//
// start >= end yields an empty sequence rather than an error.
func GenerateSlots(start, end string, interval time.Duration) ([]string, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %v", interval)
	}

	startMin, err := parseMinutes(start)
	if err != nil {
		return nil, err
	}
	endMin, err := parseMinutes(end)
	if err != nil {
		return nil, err
	}

	step := int(interval / time.Minute)
	slots := []string{}
	for t := startMin; t < endMin; t += step {
		slots = append(slots, formatMinutes(t))
	}
	return slots, nil
}

func parseMinutes(s string) (int, error) {
	t, err := time.Parse(model.TimeFormat, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
