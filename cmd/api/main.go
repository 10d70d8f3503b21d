package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/gestion-soporte/mesa-ayuda/internal/api/http"
	"github.com/gestion-soporte/mesa-ayuda/internal/api/http/handlers"
	"github.com/gestion-soporte/mesa-ayuda/internal/auth"
	"github.com/gestion-soporte/mesa-ayuda/internal/clock"
	"github.com/gestion-soporte/mesa-ayuda/internal/config"
	"github.com/gestion-soporte/mesa-ayuda/internal/events"
	"github.com/gestion-soporte/mesa-ayuda/internal/notify"
	"github.com/gestion-soporte/mesa-ayuda/internal/observability"
	"github.com/gestion-soporte/mesa-ayuda/internal/persistence"
	"github.com/gestion-soporte/mesa-ayuda/internal/presence"
	"github.com/gestion-soporte/mesa-ayuda/internal/repository"
	"github.com/gestion-soporte/mesa-ayuda/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	clk, err := clock.NewSystem(cfg.App.Timezone)
	if err != nil {
		logger.Fatal("failed to load operating timezone", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	usuarioRepo := repository.NewUsuarioRepository(pool)
	historialRepo := repository.NewHistorialRepository(pool, clk)
	ticketRepo := repository.NewTicketRepository(pool, historialRepo, clk, logger)
	aprobacionRepo := repository.NewAprobacionRepository(pool, clk)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	presencia := presence.NewRedisTracker(redis.Client,
		time.Duration(cfg.Notification.PresenceTTLSeconds)*time.Second)
	notifier := notify.NewRedisNotifier(redis.Client, cfg.Notification.Canal, logger)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:    ticketRepo,
		HistorialRepo: historialRepo,
		UsuarioRepo:   usuarioRepo,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	aprobacionService := service.NewAprobacionService(service.AprobacionDependencies{
		TicketRepo:     ticketRepo,
		AprobacionRepo: aprobacionRepo,
		UsuarioRepo:    usuarioRepo,
		Presencia:      presencia,
		Notifier:       notifier,
		Dispatcher:     dispatcher,
		Clock:          clk,
		Logger:         logger,
	})
	authService := service.NewAuthService(cfg.Auth, usuarioRepo)
	service.NewNotificationService(dispatcher, logger).RegisterHandlers()

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), usuarioRepo, presencia)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Aprobaciones:   handlers.NewAprobacionesHandler(aprobacionService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
