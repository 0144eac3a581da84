package main

import (
	"context"
	"log"

	"github.com/MidnightMr/parking-service/config"
	"github.com/MidnightMr/parking-service/internal/handler"
	"github.com/MidnightMr/parking-service/internal/middleware"
	"github.com/MidnightMr/parking-service/internal/repository"
	"github.com/MidnightMr/parking-service/internal/service"
	"github.com/MidnightMr/parking-service/pkg/database"
	"github.com/MidnightMr/parking-service/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Printf("RabbitMQ unavailable, events disabled: %v", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	lotRepo := repository.NewLotRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	recordRepo := repository.NewRecordRepository(db)

	// Core engine
	registry := service.NewSpaceRegistry(lotRepo)
	ledger := service.NewLedger(userRepo, walletRepo)

	// Services
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry)
	userSvc := service.NewUserService(userRepo)
	walletSvc := service.NewWalletService(userRepo, walletRepo, ledger)
	lotSvc := service.NewLotService(lotRepo, registry)
	reservationSvc := service.NewReservationService(
		reservationRepo, lotRepo, registry, ledger, publisher, cfg.MaxReservationDuration)
	parkingSvc := service.NewParkingService(
		recordRepo, reservationRepo, lotRepo, registry, ledger, publisher)

	// Background sweeper: expires stale reservations and repairs
	// half-settled exits.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper := service.NewSweeper(
		reservationRepo, recordRepo, lotRepo, registry, publisher, cfg.SweepInterval)
	sweeper.Start(ctx)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "parking-service"})
	})

	authMw := middleware.NewAuthMiddleware(authSvc)
	api := e.Group("/api/v1")

	handler.NewAuthHandler(authSvc).RegisterRoutes(api.Group("/auth"))

	users := api.Group("/users", authMw.Authenticate())
	handler.NewUserHandler(userSvc, walletSvc).RegisterRoutes(users)

	handler.NewLotHandler(lotSvc).RegisterRoutes(api.Group("/lots"), authMw.Authenticate())

	reservations := api.Group("/reservations", authMw.Authenticate())
	handler.NewReservationHandler(reservationSvc).RegisterRoutes(reservations)

	parking := api.Group("/parking", authMw.Authenticate())
	handler.NewParkingHandler(parkingSvc).RegisterRoutes(parking)

	log.Printf("Parking Service starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
