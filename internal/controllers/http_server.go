package controllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"AssessmentTrackerService/internal/clients"
	"AssessmentTrackerService/internal/config"
	"AssessmentTrackerService/internal/repository"
	"AssessmentTrackerService/internal/services"
)

const (
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 15 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

type HTTPServer struct {
	httpServer  *http.Server
	mu          *sync.RWMutex
	isRunning   bool
	config      config.ServerConfig
	logger      *slog.Logger
	controllers *controllersRegistry
}

type controllersRegistry struct {
	tracker    *TrackerController
	user       *UserController
	reviewer   *ReviewerController
	assessment *AssessmentController
}

func NewHTTPServer(logger *slog.Logger, db *gorm.DB, cfg *config.Config) *HTTPServer {
	repos := initializeRepositories(db)
	svcs := initializeServices(repos, cfg, logger)
	ctrls := initializeControllers(svcs, logger)

	return &HTTPServer{
		config:      cfg.Server,
		logger:      logger,
		mu:          &sync.RWMutex{},
		controllers: ctrls,
	}
}

func (s *HTTPServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("server is already running")
	}

	router := s.createRouter()
	s.httpServer = s.createHTTPServer(router)

	s.logger.Info("Starting HTTP server", "address", s.config.Address, "port", s.config.Port)

	errCh := make(chan error, 1)
	go s.runServer(errCh)

	s.isRunning = true

	select {
	case err := <-errCh:
		s.isRunning = false
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		return s.Stop(ctx, 10*time.Second)
	}
}

func (s *HTTPServer) Stop(ctx context.Context, timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpServer == nil || !s.isRunning {
		return nil
	}

	s.logger.Info("Initiating server shutdown...")

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Failed to shutdown server gracefully", "error", err)
		return err
	}

	s.isRunning = false
	s.logger.Info("Server stopped successfully")
	return nil
}

func (s *HTTPServer) createRouter() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(s.requestLoggingMiddleware)
	s.registerAllRoutes(router)
	return router
}

func (s *HTTPServer) createHTTPServer(handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Address, s.config.Port),
		Handler:      handler,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}
}

func (s *HTTPServer) runServer(errCh chan<- error) {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errCh <- err
	}
}

func (s *HTTPServer) registerAllRoutes(router *chi.Mux) {
	s.registerTrackerRoutes(router)
	s.registerUserRoutes(router)
	s.registerReviewerRoutes(router)
	s.registerAssessmentRoutes(router)
	s.logger.Info("All HTTP routes registered successfully")
}

func (s *HTTPServer) registerTrackerRoutes(router *chi.Mux) {
	router.Route("/tracker", func(r chi.Router) {
		r.Post("/init", s.controllers.tracker.Init)
		r.Post("/commit", s.controllers.tracker.RecordCommit)
		r.Post("/check", s.controllers.tracker.RecordCheckResult)
		r.Post("/requestReview", s.controllers.tracker.RequestReview)
		r.Post("/approve", s.controllers.tracker.Approve)
		r.Post("/delete", s.controllers.tracker.Delete)
		r.Get("/entry", s.controllers.tracker.GetEntry)
	})
}

func (s *HTTPServer) registerUserRoutes(router *chi.Mux) {
	router.Route("/users", func(r chi.Router) {
		r.Post("/register", s.controllers.user.Register)
		r.Get("/get", s.controllers.user.Get)
	})
}

func (s *HTTPServer) registerReviewerRoutes(router *chi.Mux) {
	router.Route("/reviewers", func(r chi.Router) {
		r.Post("/add", s.controllers.reviewer.Add)
		r.Get("/list", s.controllers.reviewer.List)
	})
}

func (s *HTTPServer) registerAssessmentRoutes(router *chi.Mux) {
	router.Route("/assessments", func(r chi.Router) {
		r.Post("/upsert", s.controllers.assessment.Upsert)
		r.Get("/get", s.controllers.assessment.Get)
		r.Get("/list", s.controllers.assessment.List)
	})
}

func (s *HTTPServer) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		s.logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", duration,
			"remoteAddr", r.RemoteAddr,
		)
	})
}

type repositoriesRegistry struct {
	user       *repository.UserRepository
	assessment *repository.AssessmentRepository
	reviewer   *repository.ReviewerRepository
	tracker    *repository.TrackerRepository
	assertion  *repository.AssertionRepository
}

func initializeRepositories(db *gorm.DB) *repositoriesRegistry {
	return &repositoriesRegistry{
		user:       repository.NewUserRepository(db),
		assessment: repository.NewAssessmentRepository(db),
		reviewer:   repository.NewReviewerRepository(db),
		tracker:    repository.NewTrackerRepository(db),
		assertion:  repository.NewAssertionRepository(db),
	}
}

type servicesRegistry struct {
	tracker    *services.TrackerService
	user       *services.UserService
	reviewer   *services.ReviewerService
	assessment *services.AssessmentService
}

func initializeServices(repos *repositoriesRegistry, cfg *config.Config, logger *slog.Logger) *servicesRegistry {
	selector := services.NewReviewerSelector(repos.reviewer, repos.tracker, cfg.Review)
	issuer := clients.NewBadgrClient(cfg.Issuer, logger)
	badges := services.NewBadgeService(issuer, repos.assertion, cfg.Issuer.BadgeClasses)
	notifier := clients.NewNotifierClient(cfg.Notifier, logger)
	provisioner := clients.NewProvisionerClient(cfg.Provisioner, logger)

	return &servicesRegistry{
		tracker: services.NewTrackerService(
			repos.tracker,
			repos.user,
			repos.assessment,
			repos.reviewer,
			repos.assertion,
			selector,
			badges,
			notifier,
			provisioner,
			cfg.Review.BotUsername,
			logger,
		),
		user:       services.NewUserService(repos.user),
		reviewer:   services.NewReviewerService(repos.reviewer, repos.user),
		assessment: services.NewAssessmentService(repos.assessment),
	}
}

func initializeControllers(svcs *servicesRegistry, logger *slog.Logger) *controllersRegistry {
	return &controllersRegistry{
		tracker:    NewTrackerController(svcs.tracker, logger),
		user:       NewUserController(svcs.user, logger),
		reviewer:   NewReviewerController(svcs.reviewer, logger),
		assessment: NewAssessmentController(svcs.assessment, logger),
	}
}
