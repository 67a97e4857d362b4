package apperror

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// humanField turns "team_id" into "Team Id".
func humanField(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}

// MapValidationError turns the first binding failure into an AppError.
// Tags registered through Init map to their own error.
func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return ErrInvalidInput
	}

	fe := errs[0]
	if appErr, ok := ruleError(fe.Tag()); ok {
		return appErr
	}

	field := humanField(fe.Field())
	switch fe.Tag() {
	case "required":
		return RequiredField(field)
	case "max":
		return New(CodeInvalidInput, field+" must be at most "+fe.Param(), http.StatusBadRequest)
	case "min":
		return New(CodeInvalidInput, field+" must be at least "+fe.Param(), http.StatusBadRequest)
	default:
		return InvalidField(field)
	}
}
