package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studypals/studypals/internal/errors"
)

func TestAppError_Error(t *testing.T) {
	err := errors.NewNotFoundError("session", "abc")
	assert.Equal(t, "NOT_FOUND: session not found: abc", err.Error())
	assert.Equal(t, http.StatusNotFound, err.Status)

	wrapped := errors.NewInternalError(fmt.Errorf("disk full"))
	assert.Contains(t, wrapped.Error(), "disk full")
	assert.Equal(t, "disk full", stderrors.Unwrap(wrapped).Error())
}

func TestDeserializationError_Message(t *testing.T) {
	err := errors.NewDeserializationError("StudyAnalytics", "userId", "required field missing", nil)
	assert.Equal(t, "decode StudyAnalytics.userId: required field missing", err.Error())

	whole := errors.NewDeserializationError("QuizSession", "", "malformed document", fmt.Errorf("unexpected EOF"))
	assert.Equal(t, "decode QuizSession: malformed document (unexpected EOF)", whole.Error())
}

func TestAsAppError(t *testing.T) {
	t.Run("app error passes through", func(t *testing.T) {
		in := errors.NewValidationError("quality", "must be between 0 and 3")
		assert.Same(t, in, errors.AsAppError(fmt.Errorf("wrapped: %w", in)))
	})

	t.Run("deserialization error becomes 400", func(t *testing.T) {
		in := errors.NewDeserializationError("StudySession", "startTime", "wrong type", nil)
		out := errors.AsAppError(in)
		require.NotNil(t, out)
		assert.Equal(t, errors.ErrCodeDeserialization, out.Code)
		assert.Equal(t, http.StatusBadRequest, out.Status)

		var decErr *errors.DeserializationError
		assert.True(t, stderrors.As(out, &decErr))
	})

	t.Run("unknown error becomes 500", func(t *testing.T) {
		out := errors.AsAppError(fmt.Errorf("boom"))
		assert.Equal(t, errors.ErrCodeInternal, out.Code)
		assert.Equal(t, http.StatusInternalServerError, out.Status)
	})
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, errors.IsNotFound(errors.NewNotFoundError("x", 1)))
	assert.False(t, errors.IsNotFound(errors.NewBadRequestError("x")))
	assert.False(t, errors.IsNotFound(fmt.Errorf("plain")))
}
