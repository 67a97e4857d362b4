package scheduleerrors

import (
	"net/http"

	"go-staffops/internal/shared/apperror"
)

var (
	// IdentityUnresolved: no membership link could be found for a cell, so it
	// cannot be mutated.
	ErrMissingMembershipLink = apperror.New(
		apperror.CodeUnprocessable,
		"missing membership link",
		http.StatusUnprocessableEntity,
	)
	// FetchPartialFailure: one team's records could not be fetched. Reported,
	// never returned as a hard error.
	ErrFetchPartialFailure = apperror.New(
		apperror.CodeUpstreamError,
		"attendance for a team could not be loaded",
		http.StatusBadGateway,
	)
	// CommitFailure: the store rejected a batch or single-record mutation.
	ErrCommitFailed = apperror.New(
		apperror.CodeUpstreamError,
		"attendance commit failed",
		http.StatusBadGateway,
	)
	// RefetchFailure: the post-commit refetch failed; local state stands.
	ErrRefetchFailed = apperror.New(
		apperror.CodeUpstreamError,
		"saved, but reloading attendance failed; refresh manually",
		http.StatusBadGateway,
	)
	ErrNothingToCommit = apperror.New(
		apperror.CodeInvalidState,
		"no pending changes for this shift and day",
		http.StatusBadRequest,
	)
	ErrCommitInProgress = apperror.New(
		apperror.CodeConflict,
		"changes for this shift and day are already being saved",
		http.StatusConflict,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"invalid attendance status",
		http.StatusBadRequest,
	)
	ErrInvalidWindow = apperror.New(
		apperror.CodeInvalidInput,
		"invalid view window, expected date=YYYY-MM-DD or month and year",
		http.StatusBadRequest,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrTeamNotFound = apperror.New(
		apperror.CodeNotFound,
		"team not found",
		http.StatusNotFound,
	)
	ErrCellNotFound = apperror.New(
		apperror.CodeNotFound,
		"attendance cell not found in the current view",
		http.StatusNotFound,
	)
	ErrFetchTeamsFailed = apperror.New(
		apperror.CodeUpstreamError,
		"teams could not be loaded",
		http.StatusBadGateway,
	)
	ErrExportFailed = apperror.New(
		apperror.CodeInternalError,
		"schedule export could not be generated",
		http.StatusInternalServerError,
	)
)
