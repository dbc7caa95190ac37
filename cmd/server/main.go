package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"github.com/yukikurage/todo-team-api/internal/auth"
	"github.com/yukikurage/todo-team-api/internal/config"
	"github.com/yukikurage/todo-team-api/internal/constants"
	"github.com/yukikurage/todo-team-api/internal/database"
	"github.com/yukikurage/todo-team-api/internal/handlers"
	"github.com/yukikurage/todo-team-api/internal/logging"
	"github.com/yukikurage/todo-team-api/internal/metrics"
	"github.com/yukikurage/todo-team-api/internal/repository"
	"github.com/yukikurage/todo-team-api/internal/services"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "todo-team-api",
		Short:         "Todo, project and team management API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := setup(); err != nil {
				return err
			}
			return database.Migrate()
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		logging.Log.WithError(err).Fatal("Command failed")
	}
}

// setup loads configuration, configures logging and opens the database.
func setup() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logging.Setup(cfg.IsProduction(), cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	if err := database.Connect(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	if err := database.Migrate(); err != nil {
		return err
	}

	sqlDB, err := database.GetDB().DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	m := metrics.New()
	m.RegisterDBStatsCollector(sqlDB.Stats)

	store, err := redisStore.NewStore(
		10,
		"tcp",
		cfg.RedisAddr(),
		"",
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		return err
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	var generator services.TodoGenerator
	if cfg.OpenAIAPIKey != "" {
		generator = services.NewAIService(cfg.OpenAIAPIKey)
	}

	router := handlers.NewRouter(handlers.Dependencies{
		Store:            repository.NewStore(database.GetDB()),
		Tokens:           auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL),
		Metrics:          m,
		Sessions:         store,
		Generator:        generator,
		CascadeBatchSize: constants.CascadeBatchSize,
	})

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", constants.RequestIDHeader},
		ExposedHeaders:   []string{constants.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           corsHandler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.WithField("addr", cfg.HTTPAddr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
