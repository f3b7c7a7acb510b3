package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"todoList/internal/auth"
	"todoList/internal/config"
	"todoList/internal/handlers"
	"todoList/internal/location"
	"todoList/internal/logger"
	"todoList/internal/repository/photo"
	"todoList/internal/service"
	"todoList/internal/worker"

	"github.com/sourcegraph/conc"
	"github.com/spf13/afero"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type App struct {
	config     *config.Config
	fs         afero.Fs
	server     *http.Server
	repository service.TaskRepository
	photos     service.PhotoStore
	service    *service.TaskService
	worker     *worker.PhotoSweeper
	shutdowns  []func()
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		fs:        afero.NewOsFs(),
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: flushing logs")
		logger.Sync()
	})

	repo, closeRepo, err := OpenTaskStore(ctx, a.config.Storage, a.fs)
	if err != nil {
		return fmt.Errorf("task storage: %w", err)
	}
	a.repository = repo
	a.shutdowns = append(a.shutdowns, func() {
		if err := closeRepo(); err != nil {
			logger.Warn("App: closing task storage", zap.Error(err))
		}
	})

	photos, err := OpenPhotoStore(ctx, a.config.Photos, a.fs)
	if err != nil {
		return fmt.Errorf("photo storage: %w", err)
	}
	a.photos = photos

	stagingDir, err := filepath.Abs(a.config.Photos.StagingDir)
	if err != nil {
		return fmt.Errorf("staging directory: %w", err)
	}
	staging, err := photo.NewStaging(a.fs, stagingDir)
	if err != nil {
		return err
	}

	users := make([]auth.User, 0, len(a.config.Auth.Users))
	for _, u := range a.config.Auth.Users {
		users = append(users, auth.User{Email: u.Email, Name: u.Name})
	}
	authenticator, err := auth.New(a.config.Auth.Password, users)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	var geocoder location.Geocoder
	if a.config.Location.GeocoderURL != "" {
		geocoder = location.NewNominatim(a.config.Location.GeocoderURL, a.config.Location.UserAgent, a.config.Location.Timeout)
	}

	a.service = service.NewTaskService(a.repository, a.photos)

	if a.config.Sweeper.Enabled {
		a.worker = worker.NewPhotoSweeper(a.repository, a.photos, &a.config.Sweeper.Interval, &a.config.Sweeper.MinAge, &a.config.Sweeper.BatchSize)
	}

	router := handlers.Routes(
		handlers.RouterConfig{
			RateLimit:      a.config.Server.RateLimit,
			AllowedOrigins: a.config.Server.AllowedOrigins,
		},
		handlers.NewTaskHandler(a.service, staging, geocoder),
		handlers.NewAuthHandler(authenticator),
		authenticator,
	)

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      otelhttp.NewHandler(router, "todoList"),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	logger.Info("App: initialized",
		zap.String("addr", a.server.Addr),
		zap.String("storage", a.config.Storage.Type),
		zap.String("photos", a.config.Photos.Type),
		zap.Bool("sweeper", a.worker != nil))
	return nil
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()

	serveErr := make(chan error, 1)
	var wg conc.WaitGroup

	wg.Go(func() {
		logger.Info("App: server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	})

	if a.worker != nil {
		wg.Go(func() {
			a.worker.Start(workerCtx)
		})
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("App: shutdown requested")
	case err := <-serveErr:
		logger.Error("App: server failed", err)
		runErr = fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("App: server shutdown", zap.Error(err))
	}
	stopWorker()
	wg.Wait()

	a.Shutdown()
	return runErr
}

func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
