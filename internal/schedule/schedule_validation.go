package schedule

import (
	scheduleerrors "go-staffops/internal/schedule/errors"
	"go-staffops/internal/shared/apperror"
)

// ValidationRules are the binding tags used by the request types here.
func ValidationRules() []apperror.Rule {
	return []apperror.Rule{
		{
			Tag: "day",
			Check: func(v string) bool {
				_, err := ParseDay(v)
				return err == nil
			},
			Err: scheduleerrors.ErrInvalidDate,
		},
		{
			Tag: "attendance_status",
			Check: func(v string) bool {
				_, err := ParseStatus(v)
				return err == nil
			},
			Err: scheduleerrors.ErrInvalidStatus,
		},
	}
}
