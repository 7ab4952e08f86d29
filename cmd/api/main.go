package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"agrimarket/internal/adapter/api"
	"agrimarket/internal/adapter/api/handler"
	apimiddleware "agrimarket/internal/adapter/api/middleware"
	"agrimarket/internal/adapter/api/router"
	"agrimarket/internal/adapter/repository"
	"agrimarket/internal/infrastructure/firebase"
	"agrimarket/internal/infrastructure/ratelimit"
	"agrimarket/internal/infrastructure/sequencer"
	"agrimarket/internal/infrastructure/storage"
	"agrimarket/internal/infrastructure/websocket"
	"agrimarket/internal/usecase"
	"agrimarket/pkg/config"
	"agrimarket/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opt option.ClientOption
	if cfg.ServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON))
	} else {
		if _, err := os.Stat(cfg.ServiceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", cfg.ServiceAccountPath)
		}
		logger.Info("Using Firebase service account from file: %s", cfg.ServiceAccountPath)
		opt = option.WithCredentialsFile(cfg.ServiceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	firebaseAuthClient, err := firebase.NewFirebaseAuthClient(ctx, authClient, cfg.FirebaseApiKey)
	if err != nil {
		log.Fatalf("Failed to initialize identity client: %v", err)
	}

	// Sales exports are only archived when a bucket is configured.
	var archiver usecase.ReportArchiver
	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opt)
		if err != nil {
			log.Fatalf("Failed to initialize Cloud Storage: %v", err)
		}
		defer storageClient.Close()
		archiver = storageClient
	} else {
		logger.Warn("STORAGE_BUCKET not set, sales exports will not be archived")
	}

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	cropRepo := repository.NewFirestoreCropRepository(firestoreClient)
	poolRepo := repository.NewFirestorePoolRepository(firestoreClient)
	cartRepo := repository.NewFirestoreCartRepository(firestoreClient)
	orderRepo := repository.NewFirestoreOrderRepository(firestoreClient)
	reviewRepo := repository.NewFirestoreReviewRepository(firestoreClient)

	locker := sequencer.New()

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	catalogUseCase := usecase.NewCatalogUseCase(cropRepo, poolRepo, userRepo)
	orderConsoleUseCase := usecase.NewOrderConsoleUseCase(orderRepo, wsManager)

	handler.Setup(handler.UseCases{
		Auth:    usecase.NewAuthUseCase(userRepo, firebaseAuthClient),
		User:    usecase.NewUserUseCase(userRepo),
		Crop:    usecase.NewCropUseCase(cropRepo, locker),
		Pool:    usecase.NewPoolUseCase(poolRepo, catalogUseCase, locker),
		Catalog: catalogUseCase,
		Cart:    usecase.NewCartUseCase(cartRepo, catalogUseCase, cfg.DeliveryCharge),
		Order: usecase.NewOrderUseCase(cartRepo, cropRepo, poolRepo, orderRepo, userRepo, usecase.OrderOptions{
			DeliveryCharge: cfg.DeliveryCharge,
			SweepPolicy:    cfg.SweepPolicy,
			Notifier:       wsManager,
			Locker:         locker,
		}),
		OrderConsole: orderConsoleUseCase,
		Review:       usecase.NewReviewUseCase(reviewRepo),
		Analytics:    usecase.NewAnalyticsUseCase(orderRepo, cropRepo, poolRepo, catalogUseCase, archiver),
	})
	handler.SetupHealthHandler(map[string]handler.Checker{
		"firestore": repository.NewFirestoreHealth(firestoreClient),
	})
	wsHandler := handler.NewWebSocketHandler(wsManager, orderConsoleUseCase, cfg.AllowedOrigins)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.AllowedOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders: []string{echo.HeaderContentDisposition, "X-Report-Object", "Retry-After"},
	}))

	e.Validator = api.NewValidator()

	limiter := ratelimit.NewRateLimiter(int(cfg.RateLimitPerMinute), int(cfg.RateLimitPerMinute)/3+1)
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Cleanup(10 * time.Minute)
			}
		}
	}()

	guards := router.Guards{
		Auth:    apimiddleware.NewAuthMiddleware(firebaseAuthClient),
		Session: apimiddleware.NewSessionMiddleware(userRepo),
	}
	router.Setup(e, guards, limiter, wsHandler)

	go func() {
		logger.Info("Starting server on port %s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed: %v", err)
	}
}
