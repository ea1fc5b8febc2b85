package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Triaksa-Space/youthspark-cms/config"
	"github.com/Triaksa-Space/youthspark-cms/domain/about"
	"github.com/Triaksa-Space/youthspark-cms/domain/auth"
	"github.com/Triaksa-Space/youthspark-cms/domain/health"
	"github.com/Triaksa-Space/youthspark-cms/domain/home"
	"github.com/Triaksa-Space/youthspark-cms/domain/impact"
	"github.com/Triaksa-Space/youthspark-cms/domain/programs"
	"github.com/Triaksa-Space/youthspark-cms/domain/upload"
	"github.com/Triaksa-Space/youthspark-cms/pkg/collection"
	"github.com/Triaksa-Space/youthspark-cms/pkg/logger"
	"github.com/Triaksa-Space/youthspark-cms/pkg/sanitize"
	"github.com/Triaksa-Space/youthspark-cms/pkg/storage"
	"github.com/Triaksa-Space/youthspark-cms/pkg/validation"
	"github.com/Triaksa-Space/youthspark-cms/routes"
	"github.com/Triaksa-Space/youthspark-cms/utils"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "youthspark",
	Short:         "Youth Spark content API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply or inspect database migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE:      runMigrate,
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an account that can edit site content",
	RunE:  runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().String("username", "", "login name")
	createAdminCmd.Flags().String("email", "", "contact email")
	createAdminCmd.Flags().String("password", "", "initial password (min 8 characters)")
	createAdminCmd.Flags().String("role", "admin", "admin or editor")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and initializes the global logger.
func bootstrap() (*config.Config, logger.Logger, error) {
	if err := config.LoadEnvFile(); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logger.Init(logger.Config{
		Level:       logger.Level(cfg.LogLevel),
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})
	return cfg, log, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	if err := cfg.RequireJWTSecret(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.OpenDB(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.DB.AutoMigrate {
		if err := config.Migrate(ctx, db, cfg.DB.Dialect(), "up"); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}

	rdb := config.NewRedis(ctx, cfg.RedisURL)
	if rdb != nil {
		defer rdb.Close()
	}

	store, err := storage.New(ctx, cfg.Upload)
	if err != nil {
		return err
	}

	validator := validation.New()
	sanitizer := sanitize.New()
	svc := collection.New(db, validator, sanitizer,
		collection.WithTimeout(cfg.DB.QueryTimeout),
		collection.WithLogger(log),
	)
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	uploadBase := ""
	if cfg.IsProduction() {
		uploadBase = cfg.BackendURL
	}
	imagesDir := ""
	if store.Name() == "disk" {
		imagesDir = cfg.Upload.Dir
	}

	e := routes.NewServer(routes.Handlers{
		Auth:     auth.NewHandler(auth.NewStore(db, cfg.DB.QueryTimeout), tokens, sanitizer),
		Home:     home.NewHandler(svc, cfg.DefaultHeroImageURL),
		About:    about.NewHandler(svc),
		Programs: programs.NewHandler(svc),
		Impact:   impact.NewHandler(svc),
		Upload:   upload.NewHandler(store, upload.Config{MaxBytes: cfg.Upload.MaxBytes, BaseURL: uploadBase}),
		Health:   health.NewHandler(svc, rdb, cfg.Version),
	}, routes.Options{
		Log:             log,
		Validator:       validator,
		Tokens:          tokens,
		Redis:           rdb,
		LoginRateLimit:  cfg.LoginRateLimit,
		LoginRateWindow: cfg.LoginRateWindow,
		FrontendURL:     cfg.FrontendURL,
		FrontendDistDir: cfg.FrontendDistDir,
		ImagesDir:       imagesDir,
		UploadMaxBytes:  cfg.Upload.MaxBytes,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting",
			logger.String("port", cfg.Port),
			logger.String("environment", cfg.Environment),
			logger.String("db_driver", cfg.DB.Driver),
			logger.Backend(store.Name()),
		)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("Server stopped")
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	command := "up"
	if len(args) == 1 {
		command = args[0]
	}

	db, err := config.OpenDB(cmd.Context(), cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := config.Migrate(cmd.Context(), db, cfg.DB.Dialect(), command); err != nil {
		return err
	}
	log.Info("Migration finished", logger.Operation(command), logger.String("dialect", cfg.DB.Dialect()))
	return nil
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	username, _ := flags.GetString("username")
	email, _ := flags.GetString("email")
	password, _ := flags.GetString("password")
	role, _ := flags.GetString("role")

	db, err := config.OpenDB(cmd.Context(), cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	user, err := auth.NewStore(db, cfg.DB.QueryTimeout).CreateUser(cmd.Context(), validation.New(), auth.NewUser{
		Username: username,
		Email:    email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	log.Info("Account created", logger.UserID(user.ID), logger.Username(user.Username), logger.String("role", user.Role))
	return nil
}
