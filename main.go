// File: smartparking/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartparking/config"
	"smartparking/cron"
	"smartparking/database"
	reservationRepo "smartparking/database/repository/reservation"
	spotRepo "smartparking/database/repository/spot"
	userRepoPkg "smartparking/database/repository/user"
	zoneRepo "smartparking/database/repository/zone"
	"smartparking/handlers"
	"smartparking/models"
	"smartparking/routes"
	"smartparking/services/admin"
	"smartparking/services/events"
	"smartparking/services/notification"
	"smartparking/services/occupancy"
	"smartparking/services/payment"
	"smartparking/services/reservation"
	"smartparking/services/tasks"
	"smartparking/services/user"
	"smartparking/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	database.InitDB()
	utils.InitCache()
	utils.InitQueueCache()
	utils.FirebaseInit()
	utils.StartHealthMonitor(rootCtx, []*redis.Client{utils.GetCacheClient(), utils.GetQueueClient()}, database.MongoClient)
	stripe.Key = config.AppConfig.StripeKey

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	spots := spotRepo.NewMongoSpotRepo()
	reservations := reservationRepo.NewMongoReservationRepo()
	zones := zoneRepo.NewMongoZoneRepo()
	userRepo := userRepoPkg.NewMongoUserRepo()

	// infrastructure.
	publisher := events.NewPublisher(config.AppConfig.AMQPURL, logger)
	defer func() { _ = publisher.Close() }()

	var sender notification.Sender
	if utils.FCMClient != nil {
		sender = utils.FCMClient
	}
	notificationService, err := notification.NewDefaultNotificationService(userRepo, sender, logger)
	if err != nil {
		logger.Fatal("main: failed to initialize notification service", zap.Error(err))
	}

	queueClient := asynq.NewClient(cron.RedisOpt())
	defer func() { _ = queueClient.Close() }()

	// occupancy engine.
	engine := occupancy.NewOccupancyEngine(occupancy.NewMongoStore(spots, reservations), logger.Named("occupancy"))
	claims := occupancy.NewRedisClaimLocker(utils.GetCacheClient(), config.AppConfig.SpotClaimTTL, logger)

	sweeper := occupancy.NewSweeper(engine, config.AppConfig.OccupancySweepInterval, logger.Named("sweeper"),
		occupancy.ReleaseHandlerFunc(func(ctx context.Context, spot models.Spot) {
			if err := notificationService.NotifyOccupancyExpired(ctx, spot); err != nil {
				logger.Warn("main: expiry notification not sent", zap.String("spotID", spot.ID), zap.Error(err))
			}
		}),
		occupancy.ReleaseHandlerFunc(func(ctx context.Context, spot models.Spot) {
			_ = publisher.Publish(ctx, events.SpotReleased(spot, time.Now()))
		}),
	)

	// services.
	userService := user.NewUserService(userRepo, logger)
	reservationService := &reservation.DefaultReservationService{
		Reservations: reservations,
		Spots:        spots,
		Engine:       engine,
		Claims:       claims,
		Releases:     tasks.NewAsynqReleaseScheduler(queueClient),
		Notifier:     notificationService,
		Events:       publisher,
		Logger:       logger.Named("reservation"),
	}
	adminService := &admin.DefaultAdminService{
		Zones:        zones,
		Spots:        spots,
		Reservations: reservations,
		Users:        userRepo,
		Logger:       logger.Named("admin"),
	}
	paymentService := payment.NewStripePaymentService(
		reservationService,
		notificationService,
		config.AppConfig.PaymentCurrency,
		config.AppConfig.StripeWebhookSecret,
		logger.Named("payment"),
	)

	// background work.
	go sweeper.Start(rootCtx)
	stopWorker := cron.InitOccupancyWorker(sweeper, reservationService, logger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		UserRepo:    userRepo,
		Auth:        &handlers.AuthHandler{UserService: userService},
		Spots:       &handlers.SpotHandler{Spots: adminService, Engine: engine, Sweeper: sweeper},
		Reservation: &handlers.ReservationHandler{Service: reservationService, UserService: userService},
		Payment:     &handlers.PaymentHandler{Service: paymentService},
		Admin:       &handlers.AdminHandler{Service: adminService, Reservations: reservationService, Sweeper: sweeper},
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	stop()
	stopWorker()
	if err := database.Disconnect(ctx); err != nil {
		logger.Sugar().Warnf("main: mongo disconnect: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
