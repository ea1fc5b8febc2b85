package logger

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDHeader is the HTTP header for request ID
const RequestIDHeader = "X-Request-ID"

// RequestLoggerMiddleware tags every request with an ID, stores a request-scoped
// logger on the request context and logs the outcome.
func RequestLoggerMiddleware(log Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			requestID := req.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			c.Set(string(ContextKeyRequestID), requestID)
			c.Response().Header().Set(RequestIDHeader, requestID)

			reqLog := log.WithRequestID(requestID).WithFields(
				Method(req.Method),
				Path(req.URL.Path),
				RemoteIP(c.RealIP()),
			)

			ctx := WithRequestIDContext(req.Context(), requestID)
			ctx = WithLoggerContext(ctx, reqLog)
			c.SetRequest(req.WithContext(ctx))

			reqLog.Debug("Request started")

			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status below is final.
				c.Error(err)
			}

			status := c.Response().Status
			logFields := []Field{
				Status(status),
				Duration("duration_ms", time.Since(start)),
				Int64("bytes_out", c.Response().Size),
			}
			if userID, ok := c.Get("user_id").(int64); ok {
				logFields = append(logFields, UserID(userID))
			}

			switch {
			case status >= 500:
				reqLog.Error("Server error response", err, logFields...)
			case status >= 400:
				reqLog.Warn("Client error response", logFields...)
			default:
				reqLog.Info("Request completed", logFields...)
			}

			return nil
		}
	}
}

// RecoveryMiddleware recovers from panics, logs them and answers with a generic 500.
func RecoveryMiddleware(log Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					requestID := GetRequestIDFromContext(c)
					log.WithRequestID(requestID).Error("Panic recovered",
						nil,
						Any("panic", r),
						Method(c.Request().Method),
						Path(c.Request().URL.Path),
					)

					if !c.Response().Committed {
						err = c.JSON(http.StatusInternalServerError, map[string]interface{}{
							"error":      "INTERNAL_UNEXPECTED_ERROR",
							"message":    "An unexpected error occurred",
							"request_id": requestID,
						})
					}
				}
			}()
			return next(c)
		}
	}
}

// GetRequestIDFromContext gets request ID from echo context
func GetRequestIDFromContext(c echo.Context) string {
	if requestID, ok := c.Get(string(ContextKeyRequestID)).(string); ok {
		return requestID
	}
	return ""
}
