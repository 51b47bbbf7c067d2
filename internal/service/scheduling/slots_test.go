package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlots(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		interval time.Duration
		want     []string
	}{
		{
			name:     "standard morning window",
			start:    "09:00",
			end:      "11:00",
			interval: 30 * time.Minute,
			want:     []string{"09:00", "09:30", "10:00", "10:30"},
		},
		{
			name:     "interval not dividing window keeps slot starting before end",
			start:    "09:00",
			end:      "10:45",
			interval: 30 * time.Minute,
			want:     []string{"09:00", "09:30", "10:00", "10:30"},
		},
		{
			name:     "hour interval",
			start:    "13:00",
			end:      "17:00",
			interval: time.Hour,
			want:     []string{"13:00", "14:00", "15:00", "16:00"},
		},
		{
			name:     "start equals end yields no slots",
			start:    "09:00",
			end:      "09:00",
			interval: 30 * time.Minute,
			want:     []string{},
		},
		{
			name:     "start after end yields no slots",
			start:    "17:00",
			end:      "09:00",
			interval: 30 * time.Minute,
			want:     []string{},
		},
		{
			name:     "window shorter than interval yields one slot",
			start:    "09:00",
			end:      "09:10",
			interval: 30 * time.Minute,
			want:     []string{"09:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateSlots(tt.start, tt.end, tt.interval)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateSlotsAscending(t *testing.T) {
	slots, err := GenerateSlots("08:15", "18:00", 25*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	for i := 1; i < len(slots); i++ {
		assert.Less(t, slots[i-1], slots[i], "slots must be strictly ascending")
	}
	// Every slot start lies inside [start, end).
	for _, s := range slots {
		assert.GreaterOrEqual(t, s, "08:15")
		assert.Less(t, s, "18:00")
	}
}

func TestGenerateSlotsErrors(t *testing.T) {
	_, err := GenerateSlots("9am", "17:00", 30*time.Minute)
	assert.Error(t, err)

	_, err = GenerateSlots("09:00", "17:00", 0)
	assert.Error(t, err)

	_, err = GenerateSlots("09:00", "25:00", 30*time.Minute)
	assert.Error(t, err)
}
