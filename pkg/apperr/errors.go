package apperr

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

var (
	ErrInvalidStageOrder       = errors.New("invalid stage order")
	ErrInvalidParameters       = errors.New("invalid parameters")
	ErrInvalidEvaluationResult = errors.New("invalid evaluation result")
	ErrUnknownStageCode        = errors.New("unknown stage code")
	ErrNotFound                = errors.New("not found")
	ErrForbidden               = errors.New("forbidden")
	ErrConflict                = errors.New("conflict")
	ErrUnauthorized            = errors.New("unauthorized")
)

// FromDB maps gorm's not-found sentinel onto ErrNotFound and leaves other
// errors alone.
func FromDB(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// HTTPStatus picks the response code for an error returned by a service.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidStageOrder):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidParameters),
		errors.Is(err, ErrInvalidEvaluationResult),
		errors.Is(err, ErrUnknownStageCode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message is the text sent to clients. Unexpected errors are not echoed.
func Message(err error) string {
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
