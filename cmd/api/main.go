package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/qasr/qasr-api/internal/config"
	"github.com/qasr/qasr-api/internal/domain/booking"
	"github.com/qasr/qasr-api/internal/domain/discount"
	"github.com/qasr/qasr-api/internal/domain/hall"
	"github.com/qasr/qasr-api/internal/domain/invoice"
	"github.com/qasr/qasr-api/internal/domain/notification"
	"github.com/qasr/qasr-api/internal/domain/payment"
	"github.com/qasr/qasr-api/internal/domain/vendor"
	"github.com/qasr/qasr-api/internal/middleware"
	"github.com/qasr/qasr-api/internal/pkg/database"
	"github.com/qasr/qasr-api/internal/pkg/logger"
	"github.com/qasr/qasr-api/internal/pkg/moyasar"
	pkgresponse "github.com/qasr/qasr-api/internal/pkg/response"
	"github.com/qasr/qasr-api/internal/pkg/slotlock"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Qasr API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(database.RedisOptions{
		URL:          cfg.RedisURL,
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	// ---------- Repositories ----------
	hallRepo := hall.NewRepository(db)
	vendorRepo := vendor.NewRepository(db)
	discountRepo := discount.NewRepository(db)
	bookingRepo := booking.NewRepository(db)
	paymentRepo := payment.NewRepository(db)

	// ---------- Collaborators ----------
	var locker slotlock.Locker
	var notifier notification.Notifier
	if redis != nil {
		locker = slotlock.NewRedisLocker(redis, cfg.SlotLockTTL)
		notifier = notification.NewRedisNotifier(redis, cfg.EventChannel)
	} else {
		log.Warn().Msg("Redis unavailable, using in-process slot locks and dropping notifications")
		locker = slotlock.NewLocalLocker()
		notifier = notification.Noop{}
	}

	gateway := moyasar.NewClient(moyasar.Config{
		BaseURL:       cfg.MoyasarBaseURL,
		APIKey:        cfg.MoyasarAPIKey,
		WebhookSecret: cfg.MoyasarWebhookSecret,
	})

	// ---------- Services ----------
	availabilityEngine := booking.NewAvailabilityEngine(bookingRepo, booking.AvailabilityConfig{
		OpeningHour:    cfg.OpeningHour,
		ClosingHour:    cfg.ClosingHour,
		MinDuration:    cfg.MinDuration,
		MaxDuration:    cfg.MaxDuration,
		BookingHorizon: cfg.BookingHorizon,
	})
	pricingEngine := booking.NewPricingEngine(hallRepo, vendorRepo, discountRepo, cfg.DefaultCurrency)

	bookingService := booking.NewService(
		bookingRepo,
		availabilityEngine,
		pricingEngine,
		hallRepo,
		vendorRepo,
		locker,
		notifier,
		invoice.LogIssuer{},
	)

	paymentService := payment.NewService(paymentRepo, bookingService, gateway, payment.RedirectURLs{
		Callback: cfg.BackendURL + "/webhooks/moyasar",
		Success:  cfg.FrontendURL + "/bookings/payment-success",
		Back:     cfg.FrontendURL + "/bookings",
	})

	// ---------- Handlers ----------
	bookingHandler := booking.NewHandler(bookingService)
	paymentHandler := payment.NewHandler(paymentService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/bookings", bookingHandler.Routes(middleware.Actor, paymentHandler.CreateCheckout))

		r.With(middleware.Actor).Get("/halls/{id}/free-slots", bookingHandler.FreeSlots)
		r.With(middleware.Actor).Get("/vendors/{id}/free-slots", bookingHandler.FreeSlots)
	})

	r.Mount("/webhooks", paymentHandler.WebhookRoutes())

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
