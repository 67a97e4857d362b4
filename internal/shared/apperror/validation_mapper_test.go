package apperror_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"

	"go-staffops/internal/shared/apperror"
)

var errOdd = apperror.New(apperror.CodeInvalidInput, "count must be even", http.StatusBadRequest)

type mapperInput struct {
	TeamID string `json:"team_id" binding:"required"`
	Count  string `json:"count" binding:"omitempty,even"`
	Notes  string `json:"notes" binding:"max=3"`
}

func TestMapValidationError(t *testing.T) {
	apperror.Init(apperror.Rule{
		Tag:   "even",
		Check: func(v string) bool { return len(v)%2 == 0 },
		Err:   errOdd,
	})

	tests := []struct {
		name        string
		in          mapperInput
		wantMessage string
	}{
		{name: "required uses json name", in: mapperInput{}, wantMessage: "Team Id is required"},
		{name: "registered rule keeps its error", in: mapperInput{TeamID: "t", Count: "abc"}, wantMessage: "count must be even"},
		{name: "max reports the limit", in: mapperInput{TeamID: "t", Notes: "long"}, wantMessage: "Notes must be at most 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(tt.in)
			assert.Error(t, err)

			got := apperror.MapValidationError(err)

			var appErr *apperror.AppError
			assert.True(t, errors.As(got, &appErr))
			assert.Equal(t, tt.wantMessage, appErr.Message)
			assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
		})
	}
}

func TestMapValidationError_NotAValidationError(t *testing.T) {
	got := apperror.MapValidationError(errors.New("unexpected EOF"))

	assert.Equal(t, apperror.ErrInvalidInput, got)
}
