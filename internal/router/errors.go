package router

import (
	"errors"
	"net/http"

	"github.com/antimatter-studios/cognito-local/internal/core/domain"
)

// WireError is the {"__type", "message"} shape every error response
// takes (§6, §7). Status is not serialized; the HTTP adapter reads it to
// set the response code.
type WireError struct {
	Type    string
	Message string
	Status  int
}

func (e *WireError) Error() string { return e.Message }

// taxonomyEntry pairs a sentinel with its wire name and HTTP status.
type taxonomyEntry struct {
	sentinel error
	wireType string
	status   int
}

// taxonomy is the error table of §7, walked in order by errors.Is so the
// router never matches on string content.
var taxonomy = []taxonomyEntry{
	{domain.ErrResourceNotFound, "ResourceNotFoundException", http.StatusBadRequest},
	{domain.ErrUserNotFound, "UserNotFoundException", http.StatusBadRequest},
	{domain.ErrUsernameExists, "UsernameExistsException", http.StatusBadRequest},
	{domain.ErrNotAuthorized, "NotAuthorizedException", http.StatusBadRequest},
	{domain.ErrInvalidPassword, "InvalidPasswordException", http.StatusBadRequest},
	{domain.ErrPasswordResetRequired, "PasswordResetRequiredException", http.StatusBadRequest},
	{domain.ErrCodeMismatch, "CodeMismatchException", http.StatusBadRequest},
	{domain.ErrInvalidParameter, "InvalidParameterException", http.StatusBadRequest},
	{domain.ErrUnsupported, "UnsupportedException", http.StatusInternalServerError},
	{domain.ErrUnexpectedLambdaException, "UnexpectedLambdaException", http.StatusInternalServerError},
	{domain.ErrInvalidLambdaResponse, "InvalidLambdaResponseException", http.StatusInternalServerError},
	{domain.ErrUserLambdaValidation, "UserLambdaValidationException", http.StatusBadRequest},
}

// Translate maps a domain/sentinel error to its wire shape. Unknown
// errors fall back to an internal error, never leaking their message.
func Translate(err error) *WireError {
	if err == nil {
		return nil
	}
	var we *WireError
	if errors.As(err, &we) {
		return we
	}
	for _, e := range taxonomy {
		if errors.Is(err, e.sentinel) {
			return &WireError{Type: e.wireType, Message: err.Error(), Status: e.status}
		}
	}
	return &WireError{Type: "InternalErrorException", Message: "internal error", Status: http.StatusInternalServerError}
}

// WithMessage wraps a sentinel with a more specific message while keeping
// it matchable by errors.Is.
func WithMessage(sentinel error, message string) error {
	return domain.WithMessage(sentinel, message)
}
