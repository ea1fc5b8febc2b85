package middleware

import (
	"github.com/Triaksa-Space/youthspark-cms/pkg/apperrors"
	"github.com/labstack/echo/v4"
)

// Roles allowed to edit site content.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// RoleMiddleware lets the request through only when the authenticated role is
// one of roles. It must run after JWTMiddleware.
func RoleMiddleware(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextRole).(string)
			if _, ok := allowed[role]; !ok {
				return apperrors.NewForbidden(apperrors.ErrCodeForbidden, "Access denied")
			}
			return next(c)
		}
	}
}
