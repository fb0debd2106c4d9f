package server

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/toyz/jointc/internal/errors"
)

// HttpError is the JSON body of every failed request
type HttpError struct {
	StatusCode int      `json:"status_code"`
	Message    string   `json:"message"`
	RequestID  string   `json:"request_id,omitempty"`
	Hints      []string `json:"hints,omitempty"`
}

// Error implements the error interface
func (e *HttpError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NewHttpError creates a new HttpError with the given status code and message
func NewHttpError(statusCode int, message string) *HttpError {
	return &HttpError{StatusCode: statusCode, Message: message}
}

// ErrBadRequest creates a 400 Bad Request error
func ErrBadRequest(message string) *HttpError {
	return NewHttpError(http.StatusBadRequest, message)
}

// statusOf maps tool errors to HTTP statuses; anything the caller could
// not have fixed is a 500
func statusOf(code errors.ErrorCode) int {
	switch code {
	case errors.ValidationErrorCode, errors.ConfigurationErrorCode:
		return http.StatusBadRequest
	case errors.FileSystemErrorCode:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// toHttpError converts any handler error into the response body
func toHttpError(err error) *HttpError {
	var he *HttpError
	if stderrors.As(err, &he) {
		return he
	}
	var ee *echo.HTTPError
	if stderrors.As(err, &ee) {
		return NewHttpError(ee.Code, fmt.Sprint(ee.Message))
	}
	var ce errors.CompilerError
	if stderrors.As(err, &ce) {
		out := NewHttpError(statusOf(ce.ErrorCode()), ce.Error())
		out.Hints = ce.Suggestions()
		return out
	}
	return NewHttpError(http.StatusInternalServerError, err.Error())
}

func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he := toHttpError(err)
	he.RequestID = c.Response().Header().Get(echo.HeaderXRequestID)
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(he.StatusCode)
	} else {
		err = c.JSON(he.StatusCode, he)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}
