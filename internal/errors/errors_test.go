package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   Kind
		status int
	}{
		{"validation", Validation(Field("endDate", "must be after startDate")), KindValidation, http.StatusBadRequest},
		{"not found", NotFound("Booking not found"), KindNotFound, http.StatusNotFound},
		{"conflict", Conflict("illegal transition"), KindConflict, http.StatusConflict},
		{"unauthorized", Unauthorized("Invalid token"), KindAuthentication, http.StatusUnauthorized},
		{"forbidden", Forbidden("Staff only"), KindAuthorization, http.StatusForbidden},
		{"dependency", Dependency("Failed to load booking", errors.New("conn reset")), KindDependency, http.StatusInternalServerError},
		{"sentinel unauthorized", ErrUnauthorized, KindAuthentication, http.StatusUnauthorized},
		{"sentinel forbidden", fmt.Errorf("wrapped: %w", ErrForbidden), KindAuthorization, http.StatusForbidden},
		{"wrapped app error", fmt.Errorf("service: %w", Conflict("x")), KindConflict, http.StatusConflict},
		{"plain error", errors.New("boom"), KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.Equal(t, tt.status, Status(tt.err))
		})
	}
}

func TestAppErrorMessage(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Dependency("Failed to create booking", cause)

	assert.Equal(t, "Failed to create booking: pq: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)

	v := Validation(Field("email", "is required"))
	assert.Contains(t, v.Error(), "email")
	assert.Len(t, v.Fields, 1)
}

func TestKindOfNil(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
}
