package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	assert.Equal(t, ErrNotFound, Code(NotFound("appointment")))
	assert.Equal(t, ErrConflict, Code(Conflict("slot is already booked")))
	assert.Equal(t, ErrStore, Code(errors.New("plain error")))
	assert.Equal(t, ErrStore, Code(Store(errors.New("boom"))))
}

func TestCodeUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("while booking: %w", Conflict("slot is already booked"))
	assert.True(t, Is(wrapped, ErrConflict))
	assert.False(t, Is(wrapped, ErrNotFound))
}

func TestStoreHidesDetail(t *testing.T) {
	err := Store(errors.New("pq: connection refused"))
	assert.Equal(t, "storage failure", err.Message)
	assert.Contains(t, err.Error(), "connection refused")
}
