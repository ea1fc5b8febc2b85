package middleware

import (
	"strings"

	"github.com/Triaksa-Space/youthspark-cms/pkg/apperrors"
	"github.com/Triaksa-Space/youthspark-cms/pkg/logger"
	"github.com/Triaksa-Space/youthspark-cms/utils"
	"github.com/labstack/echo/v4"
)

// Context keys set by JWTMiddleware for downstream handlers.
const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextEmail    = "email"
	ContextRole     = "role"
)

// TokenParser verifies a bearer token. *utils.TokenManager implements it.
type TokenParser interface {
	Parse(token string) (*utils.Claims, error)
}

// JWTMiddleware rejects requests without a valid bearer token. A missing token
// is 401, a token that fails verification is 403.
func JWTMiddleware(tokens TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.Get().WithComponent("auth").WithRequestID(logger.GetRequestIDFromContext(c))

			tokenString := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if tokenString == "" {
				log.Warn("No token provided", logger.Path(c.Path()))
				return apperrors.NewUnauthorized(apperrors.ErrCodeTokenMissing, "No token provided")
			}

			claims, err := tokens.Parse(tokenString)
			if err != nil {
				log.Warn("Token verification failed", logger.Err(err), logger.Path(c.Path()))
				return apperrors.NewForbidden(apperrors.ErrCodeTokenInvalid, "Invalid token")
			}

			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextUsername, claims.Username)
			c.Set(ContextEmail, claims.Email)
			c.Set(ContextRole, claims.Role)

			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithUserIDContext(req.Context(), claims.UserID)))

			return next(c)
		}
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
