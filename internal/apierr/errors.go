// Package apierr holds the error kinds shared by the workflow and admin APIs
// and converts them into the uniform {success:false, message} response.
package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medbill/medbill-site/backend/api/pkg/logger"
)

// Error kinds. Match with errors.Is.
var (
	ErrValidation          = errors.New("validation error")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotFound            = errors.New("not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrPersistence         = errors.New("persistence error")
)

// Error carries a caller-facing message next to its kind and optional cause.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Cause }

func Validation(format string, args ...interface{}) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(what string) error {
	return &Error{Kind: ErrNotFound, Message: what + " not found"}
}

func UnsupportedFileType(format string, args ...interface{}) error {
	return &Error{Kind: ErrUnsupportedFileType, Message: fmt.Sprintf(format, args...)}
}

func FileTooLarge(format string, args ...interface{}) error {
	return &Error{Kind: ErrFileTooLarge, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(msg string) error {
	return &Error{Kind: ErrUnauthorized, Message: msg}
}

// Persistence wraps a store failure. The cause is logged, never shown to callers.
func Persistence(op string, cause error) error {
	return &Error{Kind: ErrPersistence, Message: op, Cause: cause}
}

// Message returns the caller-facing text for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if errors.Is(e.Kind, ErrPersistence) {
			return "Something went wrong, please try again later."
		}
		return e.Message
	}
	return "Something went wrong, please try again later."
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes the failure response for err. Server faults are logged;
// caller mistakes only at debug level.
func Respond(c *gin.Context, err error) {
	code := Status(err)
	if code >= http.StatusInternalServerError {
		logger.Errorw("request failed", "method", c.Request.Method, "route", c.FullPath(), "err", err)
	} else {
		logger.Debugw("request rejected", "method", c.Request.Method, "route", c.FullPath(), "err", err)
	}
	c.AbortWithStatusJSON(code, gin.H{"success": false, "message": Message(err)})
}
