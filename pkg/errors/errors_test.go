package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatusMapsCodes(t *testing.T) {
	cases := map[int]string{
		http.StatusUnauthorized:        "UNAUTHORIZED",
		http.StatusForbidden:           "FORBIDDEN",
		http.StatusNotFound:            "NOT_FOUND",
		http.StatusConflict:            "CONFLICT",
		http.StatusBadRequest:          "VALIDATION_ERROR",
		http.StatusUnprocessableEntity: "VALIDATION_ERROR",
		http.StatusBadGateway:          "REQUEST_FAILED",
	}
	for status, code := range cases {
		err := FromStatus(status, "boom")
		assert.Equal(t, code, err.Code)
		assert.Equal(t, status, err.Status)
		assert.Equal(t, "boom", err.Message)
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("load: %w", FromStatus(http.StatusConflict, "email taken"))
	assert.True(t, stdErrors.Is(err, ErrConflict))
	assert.False(t, stdErrors.Is(err, ErrNotFound))
	assert.True(t, HasStatus(err, http.StatusConflict))
	assert.Equal(t, "email taken", Message(err))
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(stdErrors.New("plain"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Nil(t, FromError(nil))
}
