// File: viewingdesk/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/api/option"

	"viewingdesk/config"
	propertyRepo "viewingdesk/database/repository/property"
	reservationRepo "viewingdesk/database/repository/reservation"
	"viewingdesk/handlers"
	"viewingdesk/middleware"
	"viewingdesk/routes"
	"viewingdesk/services/property"
	"viewingdesk/services/reservation"
	"viewingdesk/utils"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync() //nolint:errcheck

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	lockClient := utils.GetLockClient()
	utils.StartHealthMonitor(rootCtx, lockClient, time.Minute)

	calendar, err := reservation.NewCalendar(
		cfg.CivicTZName,
		cfg.CivicUTCOffsetHours,
		cfg.OpenHour,
		cfg.CloseHour,
		time.Weekday(cfg.ClosedWeekday),
	)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid calendar configuration: %v", err)
	}

	// repositories.
	resRepo := reservationRepo.NewAirtableReservationRepo(reservationRepo.Options{
		APIURL:  cfg.AirtableAPIURL,
		Token:   cfg.AirtableToken,
		BaseID:  cfg.AirtableBaseID,
		Table:   cfg.AirtableTable,
		Timeout: cfg.StoreTimeout,
	})
	propRepo, err := propertyRepo.NewSheetsPropertyRepo(
		rootCtx,
		cfg.GoogleSpreadsheetID,
		cfg.SheetRange,
		option.WithCredentialsJSON([]byte(cfg.GoogleSAKey)),
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize property catalog: %v", err)
	}

	// services.
	reservationService := reservation.NewReservationService(
		resRepo,
		calendar,
		utils.NewSlotLocker(lockClient, cfg.SlotLockTTL),
		cfg.UpdateGuardFailOpen,
		logger.Named("reservation"),
	)
	catalogService := &property.DefaultCatalogService{Repo: propRepo}
	tokens := utils.NewLookupTokenIssuer(cfg.JWTSecret, cfg.LookupTokenTTL)

	reservationHandler := handlers.NewReservationHandler(reservationService, tokens)
	propertyHandler := handlers.NewPropertyHandler(catalogService)

	handlerBundle := &handlers.HandlerBundle{
		Tokens: tokens,

		LookupHandler:            reservationHandler.LookupHandler,
		CheckAvailabilityHandler: reservationHandler.CheckAvailabilityHandler,
		UpdateHandler:            reservationHandler.UpdateHandler,
		CancelHandler:            reservationHandler.CancelHandler,

		ListPropertiesHandler: propertyHandler.ListPropertiesHandler,
	}

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Sugar().Fatalf("main: invalid TRUSTED_PROXIES: %v", err)
	}
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	routes.RegisterRoutes(router, handlerBundle)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
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
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}
	if lockClient != nil {
		_ = lockClient.Close()
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
