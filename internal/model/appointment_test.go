package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatusTransitions(t *testing.T) {
	tests := []struct {
		status      AppointmentStatus
		cancellable bool
	}{
		{AppointmentStatusBooked, true},
		{AppointmentStatusPending, true},
		{AppointmentStatusRescheduled, true},
		{AppointmentStatusCompleted, false},
		{AppointmentStatusCancelled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.cancellable, tt.status.Cancellable())
			assert.Equal(t, tt.cancellable, tt.status.Completable())
		})
	}
}

func TestOccupyingStatuses(t *testing.T) {
	assert.ElementsMatch(t,
		[]AppointmentStatus{AppointmentStatusBooked, AppointmentStatusCompleted},
		OccupyingStatuses)
}
