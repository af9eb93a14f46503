package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"campusreq_backend/database"
	"campusreq_backend/internal/auth"
	"campusreq_backend/internal/broadcast"
	"campusreq_backend/internal/config"
	"campusreq_backend/internal/email"
	"campusreq_backend/internal/handlers"
	"campusreq_backend/internal/middleware"
	"campusreq_backend/internal/repositories"
	"campusreq_backend/internal/routes"
	"campusreq_backend/internal/services"
	"campusreq_backend/internal/services/dto"
	"campusreq_backend/internal/validator"
	"campusreq_backend/internal/workers"
	"campusreq_backend/pkg/apperrors"
	"campusreq_backend/ws"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

// App owns every long-lived dependency of one process.
type App struct {
	cfg    *config.Config
	log    *zap.Logger
	db     *gorm.DB
	rdb    *goredis.Client
	mailer email.Provider
	tokens *auth.Manager

	manager     *ws.WebSocketManager
	relay       *broadcast.RedisRelay
	broadcaster services.Broadcaster
	services    *services.ServiceContainer
}

// New connects to the database (and Redis when enabled) and builds the
// service graph. Close releases what New opened.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	apperrors.Configure(!cfg.IsProduction(), log)

	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("schema auto-migrated")
	}

	a := &App{
		cfg:     cfg,
		log:     log,
		db:      db,
		tokens:  auth.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.TTL)*time.Minute),
		manager: ws.NewWebSocketManager(log),
	}

	a.broadcaster = a.manager
	if cfg.Redis.Enabled {
		rdb, err := broadcast.NewRedisClient(cfg.Redis.URL, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.rdb = rdb
		a.relay = broadcast.NewRedisRelay(rdb, cfg.Redis.Channel, a.manager, log)
		a.broadcaster = a.relay
	}

	mailer, err := newMailer(cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.mailer = mailer

	a.services = buildServices(a.broadcaster, a.mailer, log)
	return a, nil
}

func newMailer(cfg *config.Config, log *zap.Logger) (email.Provider, error) {
	if !cfg.Email.Enabled {
		if cfg.IsProduction() {
			return nil, nil
		}
		return NewLogEmailProvider(log), nil
	}

	provider := email.NewGomailProvider(&email.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
		Timeout:   10 * time.Second,
	}, email.NewTemplateManager())
	if err := provider.Validate(); err != nil {
		return nil, fmt.Errorf("email config: %w", err)
	}
	return provider, nil
}

func buildServices(broadcaster services.Broadcaster, mailer email.Provider, log *zap.Logger) *services.ServiceContainer {
	requestRepo := repositories.NewRequestRepository()
	resourceRepo := repositories.NewResourceRepository()
	userRepo := repositories.NewUserRepository()
	notificationRepo := repositories.NewNotificationRepository()
	reconcileRepo := repositories.NewReconcileRepository()
	tx := repositories.NewTxManager()

	notificationService := services.NewNotificationService(notificationRepo, userRepo, broadcaster, mailer, log)

	return &services.ServiceContainer{
		RequestService:      services.NewRequestService(requestRepo, resourceRepo, userRepo, notificationService, tx, log),
		NotificationService: notificationService,
		ReconcileService:    services.NewReconcileService(reconcileRepo, resourceRepo, notificationService, broadcaster, tx, log),
		ExportService:       services.NewExportService(requestRepo),
		CalendarService:     services.NewCalendarService(requestRepo),
	}
}

// Router builds the gin engine with every route mounted.
func (a *App) Router() *gin.Engine {
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(a.cfg.Server.CORSOrigins))
	router.Use(middleware.DBMiddleware(a.db))

	base := handlers.NewBaseHandler(validator.New())
	appHandlers := &handlers.AppHandlers{
		RequestHandler:      handlers.NewRequestHandler(base, a.services.RequestService),
		NotificationHandler: handlers.NewNotificationHandler(base, a.services.NotificationService),
		ReportHandler:       handlers.NewReportHandler(base, a.services.ExportService, a.services.CalendarService),
		CronHandler:         handlers.NewCronHandler(base, a.services.ReconcileService),
		HealthHandler:       handlers.NewHealthHandler(base),
	}
	wsHandler := ws.NewWebSocketHandler(a.manager, a.cfg.Server.CORSOrigins)

	routes.RegisterRoutes(router, appHandlers, wsHandler, routes.Options{
		Auth:       a.tokens,
		CronSecret: a.cfg.Reconcile.CronSecret,
	})
	return router
}

// Serve runs the HTTP server, the broadcast hub, the Redis relay and the
// scheduler until ctx is cancelled, then shuts them down in order.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      a.Router(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.manager.Run(gctx)
		return nil
	})

	if a.relay != nil {
		g.Go(func() error {
			return a.relay.Run(gctx)
		})
	}

	scheduler := workers.NewScheduler(a.log)
	if a.cfg.Reconcile.Enabled {
		worker := workers.NewReconcileWorker(a.db, a.services.ReconcileService, a.log)
		if err := worker.Register(scheduler, a.cfg.Reconcile.Schedule); err != nil {
			return err
		}
	}
	if err := scheduler.Start(gctx); err != nil {
		return err
	}

	g.Go(func() error {
		a.log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// ws and SSE connections are hijacked or long-lived; the hub closes them
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.Warn("http shutdown", zap.Error(err))
		}
		scheduler.Wait()
		return nil
	})

	return g.Wait()
}

// DB exposes the pool to the CLI and the integration harness.
func (a *App) DB() *gorm.DB {
	return a.db
}

func (a *App) Tokens() *auth.Manager {
	return a.tokens
}

// ReconcileOnce runs a single sweep, for the CLI.
func (a *App) ReconcileOnce(ctx context.Context) (*dto.ReconcileResult, error) {
	return a.services.ReconcileService.Reconcile(ctx, a.db, time.Now())
}

func (a *App) Close() {
	if a.mailer != nil {
		_ = a.mailer.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
