package routes

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Triaksa-Space/youthspark-cms/domain/about"
	"github.com/Triaksa-Space/youthspark-cms/domain/auth"
	"github.com/Triaksa-Space/youthspark-cms/domain/health"
	"github.com/Triaksa-Space/youthspark-cms/domain/home"
	"github.com/Triaksa-Space/youthspark-cms/domain/impact"
	"github.com/Triaksa-Space/youthspark-cms/domain/programs"
	"github.com/Triaksa-Space/youthspark-cms/domain/upload"
	"github.com/Triaksa-Space/youthspark-cms/middleware"
	"github.com/Triaksa-Space/youthspark-cms/pkg/apperrors"
	"github.com/Triaksa-Space/youthspark-cms/pkg/logger"
	"github.com/Triaksa-Space/youthspark-cms/pkg/validation"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
)

// Handlers are the constructed endpoint groups.
type Handlers struct {
	Auth     *auth.Handler
	Home     *home.Handler
	About    *about.Handler
	Programs *programs.Handler
	Impact   *impact.Handler
	Upload   *upload.Handler
	Health   *health.Handler
}

// Options configure the server around the handlers.
type Options struct {
	Log       logger.Logger
	Validator *validation.Validator
	Tokens    middleware.TokenParser

	Redis           *redis.Client
	LoginRateLimit  int
	LoginRateWindow time.Duration

	FrontendURL     string
	FrontendDistDir string
	ImagesDir       string // served at /images when the disk backend is used
	UploadMaxBytes  int64
}

// NewServer builds the echo instance with the shared middleware stack and all routes.
func NewServer(h Handlers, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = opts.Validator
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler(opts.Log)

	e.Use(logger.RecoveryMiddleware(opts.Log))
	e.Use(logger.RequestLoggerMiddleware(opts.Log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  []string{opts.FrontendURL},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, logger.RequestIDHeader},
		ExposeHeaders: []string{echo.HeaderContentLength, logger.RequestIDHeader},
		MaxAge:        86400,
	}))
	e.Use(echomw.BodyLimitWithConfig(echomw.BodyLimitConfig{
		Limit: "2M",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/api/upload"
		},
	}))

	if opts.ImagesDir != "" {
		e.Static("/images", opts.ImagesDir)
	}

	RegisterRoutes(e, h, opts)

	if opts.FrontendDistDir != "" {
		e.Use(echomw.StaticWithConfig(echomw.StaticConfig{
			Root:  opts.FrontendDistDir,
			HTML5: true,
			Skipper: func(c echo.Context) bool {
				p := c.Request().URL.Path
				return strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/images/")
			},
		}))
	}

	return e
}

func RegisterRoutes(e *echo.Echo, h Handlers, opts Options) {
	e.GET("/health", h.Health.HealthHandler)
	e.GET("/health/live", h.Health.LivenessHandler)
	e.GET("/health/ready", h.Health.ReadinessHandler)
	e.GET("/health/stats", h.Health.StatsHandler)

	api := e.Group("/api")

	api.POST("/login", h.Auth.LoginHandler, middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		MaxRequests: opts.LoginRateLimit,
		Window:      opts.LoginRateWindow,
		Redis:       opts.Redis,
	}))

	// Writes need a valid token with an editing role.
	editor := []echo.MiddlewareFunc{
		middleware.JWTMiddleware(opts.Tokens),
		middleware.RoleMiddleware(middleware.RoleAdmin, middleware.RoleEditor),
	}

	api.GET("/home", h.Home.GetHandler)
	api.PUT("/home", h.Home.UpdateHandler, editor...)

	api.GET("/about", h.About.GetHandler)
	api.PUT("/about", h.About.UpdateHandler, editor...)
	api.GET("/about/mission-points", h.About.GetMissionPointsHandler)
	api.PUT("/about/mission-points", h.About.UpdateMissionPointsHandler, editor...)
	api.GET("/about/history-points", h.About.GetHistoryPointsHandler)
	api.PUT("/about/history-points", h.About.UpdateHistoryPointsHandler, editor...)

	api.GET("/programs", h.Programs.GetHandler)
	api.PUT("/programs", h.Programs.UpdateHandler, editor...)

	api.GET("/impact", h.Impact.GetHandler)
	api.PUT("/impact", h.Impact.UpdateHandler, editor...)
	api.GET("/impact/stats", h.Impact.GetStatsHandler)
	api.PUT("/impact/stats", h.Impact.UpdateStatsHandler, editor...)
	api.GET("/impact/testimonials", h.Impact.GetTestimonialsHandler)
	api.PUT("/impact/testimonials", h.Impact.UpdateTestimonialsHandler, editor...)

	maxUpload := opts.UploadMaxBytes
	if maxUpload <= 0 {
		maxUpload = upload.DefaultMaxBytes
	}
	uploadMW := append(editor[:len(editor):len(editor)], echomw.BodyLimitWithConfig(echomw.BodyLimitConfig{
		// room for the multipart envelope around the file
		Limit: formatBytes(maxUpload + 64*1024),
	}))
	api.POST("/upload", h.Upload.UploadHandler, uploadMW...)
}

func formatBytes(n int64) string {
	return strconv.FormatInt(n/1024, 10) + "K"
}
