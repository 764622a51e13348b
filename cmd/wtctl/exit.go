package main

import "webtemplate-backend/internal/apperr"

// Exit codes.
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitValidationError  = 2
	ExitPermissionDenied = 4
	ExitNotFound         = 5
)

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	appErr, ok := apperr.As(err)
	if !ok {
		return ExitGeneralError
	}
	switch appErr.Code {
	case "VALIDATION_FAILED", "INVALID_PAYLOAD", "CONFLICT":
		return ExitValidationError
	case "PERMISSION_DENIED", "FORBIDDEN", "UNAUTHORIZED":
		return ExitPermissionDenied
	case "NOT_FOUND":
		return ExitNotFound
	default:
		return ExitGeneralError
	}
}
