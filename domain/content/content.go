// Package content holds the request and response plumbing shared by the
// editable page handlers.
package content

import (
	"net/http"

	"github.com/Triaksa-Space/youthspark-cms/pkg/apperrors"
	"github.com/Triaksa-Space/youthspark-cms/pkg/collection"
	"github.com/Triaksa-Space/youthspark-cms/pkg/logger"
	"github.com/labstack/echo/v4"
)

// Items is the envelope of a whole-collection read or write. The cap matches
// collection.MaxItems.
type Items[T any] struct {
	Items []T `json:"items" validate:"required,max=500"`
}

// ReplaceResponse answers a successful collection replacement.
type ReplaceResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// MessageResponse answers a successful singleton write.
type MessageResponse struct {
	Message string `json:"message"`
}

// Bind decodes the JSON body into req and checks its envelope rules.
func Bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		logger.FromContext(c.Request().Context()).Warn("Invalid request payload", logger.Err(err))
		return apperrors.NewBadRequest(apperrors.ErrCodeInvalidInput, "Invalid request payload.")
	}
	if err := c.Validate(req); err != nil {
		return apperrors.FromCollection(err)
	}
	return nil
}

// NoStore stops browsers and proxies from caching a read, so editors always
// see the latest committed state.
func NoStore(c echo.Context) {
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
}

// ReadCollection answers GET for a plain collection endpoint.
func ReadCollection[T any](c echo.Context, svc *collection.Service, coll collection.Collection[T]) error {
	items, err := collection.Read(c.Request().Context(), svc, coll)
	if err != nil {
		return apperrors.FromCollection(err)
	}
	NoStore(c)
	return c.JSON(http.StatusOK, Items[T]{Items: items})
}

// ReplaceCollection answers PUT for a plain collection endpoint.
func ReplaceCollection[T any](c echo.Context, svc *collection.Service, coll collection.Collection[T], message string) error {
	req := new(Items[T])
	if err := Bind(c, req); err != nil {
		return err
	}
	n, err := collection.Replace(c.Request().Context(), svc, coll, req.Items)
	if err != nil {
		return apperrors.FromCollection(err)
	}
	return c.JSON(http.StatusOK, ReplaceResponse{Message: message, Count: n})
}
