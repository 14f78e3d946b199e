// Package apperr carries an HTTP status and client-safe message alongside an error,
// so core functions can fail with the right response without knowing about gin.
package apperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Error struct {
	Status  int
	Message string
	Fields  gin.H
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// With attaches an extra field to the JSON body.
func (e *Error) With(key string, value any) *Error {
	if e.Fields == nil {
		e.Fields = gin.H{}
	}
	e.Fields[key] = value
	return e
}

// Wrap records the underlying cause; it is logged but never sent to the client.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

func New(status int, msg string) *Error { return &Error{Status: status, Message: msg} }

func BadRequest(msg string) *Error   { return New(http.StatusBadRequest, msg) }
func Unauthorized(msg string) *Error { return New(http.StatusUnauthorized, msg) }
func Forbidden(msg string) *Error    { return New(http.StatusForbidden, msg) }
func NotFound(msg string) *Error     { return New(http.StatusNotFound, msg) }
func Conflict(msg string) *Error     { return New(http.StatusConflict, msg) }

func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "internal server error", Err: err}
}

// Respond writes err as {"message": ...}. Errors that are not *Error become a
// generic 500; their detail only goes to the log.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	switch {
	case errors.As(err, &appErr):
	case errors.Is(err, gorm.ErrRecordNotFound):
		appErr = NotFound("record not found")
	default:
		appErr = Internal(err)
	}

	if appErr.Status >= http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).WithError(appErr.Err).Error(appErr.Message)
	}

	body := gin.H{"message": appErr.Message}
	for k, v := range appErr.Fields {
		body[k] = v
	}
	c.AbortWithStatusJSON(appErr.Status, body)
}
