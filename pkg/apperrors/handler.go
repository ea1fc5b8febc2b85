package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Triaksa-Space/youthspark-cms/pkg/logger"
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the standard error response structure
type ErrorResponse struct {
	Error     string        `json:"error"`
	Message   string        `json:"message"`
	Detail    string        `json:"detail,omitempty"`
	Fields    []FieldDetail `json:"fields,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

// HTTPErrorHandler returns the echo catch-all error handler. Unknown errors
// become a generic 500 without leaking their text.
func HTTPErrorHandler(log logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		requestID := logger.GetRequestIDFromContext(c)
		reqLog := log.WithRequestID(requestID)

		var (
			response ErrorResponse
			status   int
			httpErr  *echo.HTTPError
		)

		if appErr, ok := AsAppError(err); ok {
			status = appErr.HTTPStatus
			response = ErrorResponse{
				Error:     appErr.Code,
				Message:   appErr.Message,
				Detail:    appErr.Detail,
				Fields:    appErr.Fields,
				RequestID: requestID,
			}
			if status >= 500 {
				reqLog.Error("Internal error", appErr.Err, logger.String("error_code", appErr.Code))
			} else {
				reqLog.Warn("Client error",
					logger.String("error_code", appErr.Code),
					logger.String("message", appErr.Message),
				)
			}
		} else if errors.As(err, &httpErr) {
			status = httpErr.Code
			response = ErrorResponse{
				Error:     httpErrorCode(status),
				Message:   fmt.Sprint(httpErr.Message),
				RequestID: requestID,
			}
			if status >= 500 {
				reqLog.Error("HTTP error", httpErr.Internal, logger.Status(status))
			}
		} else {
			status = http.StatusInternalServerError
			response = ErrorResponse{
				Error:     ErrCodeUnexpectedError,
				Message:   "An unexpected error occurred",
				RequestID: requestID,
			}
			reqLog.Error("Unhandled error", err)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, response)
		}
		if writeErr != nil {
			reqLog.Error("Failed to write error response", writeErr)
		}
	}
}

func httpErrorCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return ErrCodeFileTooLarge
	case http.StatusTooManyRequests:
		return ErrCodeRateLimitExceeded
	default:
		return "HTTP_ERROR"
	}
}

// RespondWithError writes err immediately. Handlers normally just return the
// AppError and let HTTPErrorHandler answer.
func RespondWithError(c echo.Context, err *AppError) error {
	return c.JSON(err.HTTPStatus, ErrorResponse{
		Error:     err.Code,
		Message:   err.Message,
		Detail:    err.Detail,
		Fields:    err.Fields,
		RequestID: logger.GetRequestIDFromContext(c),
	})
}

// RespondWithSuccess is a helper to return a success response
func RespondWithSuccess(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}
