package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
		msg    string
	}{
		{"validation", NewValidationError("content required", nil), CodeInvalidInput, http.StatusBadRequest, "content required"},
		{"not found", NewNotFound("case", nil), CodeNotFound, http.StatusNotFound, "case not found"},
		{"forbidden", NewForbidden("nope"), CodeForbidden, http.StatusForbidden, "nope"},
		{"invalid state", NewInvalidState("case is already open"), CodeInvalidState, http.StatusBadRequest, "case is already open"},
		{"internal", NewInternalError(errors.New("boom")), CodeInternal, http.StatusInternalServerError, "internal server error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			require.NotNil(t, de)
			assert.Equal(t, tt.code, de.Code)
			assert.Equal(t, tt.status, de.HTTPStatus)
			assert.Equal(t, tt.msg, de.Error())
			assert.True(t, HasCode(tt.err, tt.code))
		})
	}
}

func TestToDomainError_WrapsUnknownErrors(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	raw := errors.New("disk on fire")
	de := ToDomainError(raw)
	assert.Equal(t, CodeInternal, de.Code)
	assert.ErrorIs(t, de, raw)
}

func TestHasCode_FollowsWrapping(t *testing.T) {
	wrapped := fmt.Errorf("create message: %w", NewForbidden("a regular user can only message their own case"))
	assert.True(t, HasCode(wrapped, CodeForbidden))
	assert.False(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeForbidden))
}
