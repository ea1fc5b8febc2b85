package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Triaksa-Space/youthspark-cms/pkg/apperrors"
	"github.com/Triaksa-Space/youthspark-cms/pkg/logger"
	"github.com/Triaksa-Space/youthspark-cms/pkg/sanitize"
	"github.com/Triaksa-Space/youthspark-cms/utils"
	"github.com/labstack/echo/v4"
)

// TokenIssuer signs session tokens. *utils.TokenManager implements it.
type TokenIssuer interface {
	Issue(userID int64, username, email, role string) (string, error)
}

type Handler struct {
	store     *Store
	tokens    TokenIssuer
	sanitizer *sanitize.Sanitizer
}

func NewHandler(store *Store, tokens TokenIssuer, sanitizer *sanitize.Sanitizer) *Handler {
	return &Handler{store: store, tokens: tokens, sanitizer: sanitizer}
}

// LoginHandler handles POST /api/login.
func (h *Handler) LoginHandler(c echo.Context) error {
	log := logger.Get().WithComponent("auth").WithRequestID(logger.GetRequestIDFromContext(c))
	ctx := c.Request().Context()

	req := new(LoginRequest)
	if err := c.Bind(req); err != nil {
		log.Warn("Invalid login request payload", logger.Err(err))
		return apperrors.NewBadRequest(apperrors.ErrCodeInvalidInput, "Invalid request payload.")
	}

	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Password) == "" {
		log.Warn("Login attempt with missing credentials", logger.Username(req.Username))
		return apperrors.NewBadRequest(apperrors.ErrCodeMissingField, "Username and password are required")
	}

	if h.sanitizer.PlainText(req.Username) != req.Username {
		log.Warn("Invalid characters in username")
		return apperrors.NewBadRequest(apperrors.ErrCodeInvalidFormat, "Invalid username format")
	}

	user, err := h.store.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Info("No user found for username", logger.Username(req.Username))
			return invalidCredentials()
		}
		return apperrors.NewInternal(apperrors.ErrCodeStorageUnavailable, "Internal server error", err)
	}

	if !utils.CheckPasswordHash(req.Password, user.Password) {
		log.Info("Password mismatch", logger.Username(req.Username))
		return invalidCredentials()
	}

	if utils.IsLegacyHash(user.Password) {
		h.upgradeHash(c, log, user.ID, req.Password)
	}

	token, err := h.tokens.Issue(user.ID, user.Username, user.Email, user.Role)
	if err != nil {
		return apperrors.NewInternal(apperrors.ErrCodeConfiguration, "Server configuration error", err)
	}

	log.Info("Login successful", logger.UserID(user.ID), logger.Username(user.Username))
	return c.JSON(http.StatusOK, LoginResponse{
		Message: "Login successful",
		Token:   token,
		User: UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		},
	})
}

// upgradeHash rewrites a legacy SHA-256 hash as bcrypt once the password is
// known to be correct. Failure only costs another upgrade attempt next login.
func (h *Handler) upgradeHash(c echo.Context, log logger.Logger, userID int64, password string) {
	hash, err := utils.HashPassword(password)
	if err == nil {
		err = h.store.UpdatePassword(c.Request().Context(), userID, hash)
	}
	if err != nil {
		log.Warn("Failed to upgrade legacy password hash", logger.UserID(userID), logger.Err(err))
		return
	}
	log.Info("Upgraded legacy password hash", logger.UserID(userID))
}

func invalidCredentials() error {
	return apperrors.NewUnauthorized(apperrors.ErrCodeInvalidCredentials, "Invalid username or password")
}
