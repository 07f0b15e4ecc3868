package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lara-shop/lara-api/internal/auth"
	"github.com/lara-shop/lara-api/internal/cart"
	"github.com/lara-shop/lara-api/internal/config"
	"github.com/lara-shop/lara-api/internal/coupon"
	"github.com/lara-shop/lara-api/internal/db"
	apihttp "github.com/lara-shop/lara-api/internal/handler/http"
	"github.com/lara-shop/lara-api/internal/notification"
	"github.com/lara-shop/lara-api/internal/order"
	"github.com/lara-shop/lara-api/internal/payment"
	"github.com/lara-shop/lara-api/internal/product"
	"github.com/lara-shop/lara-api/internal/ratelimit"
	"github.com/lara-shop/lara-api/internal/returns"
	"github.com/lara-shop/lara-api/internal/review"
	"github.com/lara-shop/lara-api/internal/stats"
	"github.com/lara-shop/lara-api/internal/user"
	"github.com/lara-shop/lara-api/internal/wishlist"
)

const (
	productCacheTTL = 5 * time.Minute
	migrationsPath  = "migrations"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	log.Info().Msg("Starting lara-api...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx := context.Background()

	pool, err := db.Connect(ctx, db.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		DBName:   cfg.Postgres.DBName,
		SSLMode:  cfg.Postgres.SSLMode,
	}, migrationsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Repositories.
	userRepo := user.NewRepository(pool)
	var productRepo product.Repository = product.NewRepository(pool)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
		productRepo = product.NewCachedRepository(productRepo, rdb, productCacheTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Product cache enabled")
	}
	reviewRepo := review.NewRepository(pool)
	cartRepo := cart.NewRepository(pool)
	couponRepo := coupon.NewRepository(pool)
	orderRepo := order.NewRepository(pool)
	paymentRepo := payment.NewRepository(pool)
	returnsRepo := returns.NewRepository(pool)
	wishlistRepo := wishlist.NewRepository(pool)
	statsRepo := stats.NewRepository(pool)

	// Notifications go to Kafka when brokers are configured, otherwise
	// to the log.
	var notifier notification.Sender = notification.NewLogSender()
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSender := notification.NewKafkaSender(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaSender.Close()
		notifier = kafkaSender
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka notifications enabled")
	}

	// Services.
	userSvc := user.NewService(userRepo)
	productSvc := product.NewService(productRepo)
	reviewSvc := review.NewService(reviewRepo, productRepo)
	cartSvc := cart.NewService(cartRepo, productRepo)
	couponSvc := coupon.NewService(couponRepo)
	orderSvc := order.NewService(orderRepo, productRepo, couponSvc, userSvc, notifier)
	paymentSvc := payment.NewService(paymentRepo, orderRepo)
	returnsSvc := returns.NewService(returnsRepo, orderRepo)
	wishlistSvc := wishlist.NewService(wishlistRepo, productRepo)
	statsSvc := stats.NewService(statsRepo)

	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authMW := auth.NewMiddleware(tokens, userSvc)

	limiter := ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	defer limiter.Close()

	router := apihttp.NewRouter(apihttp.Handlers{
		Auth:     apihttp.NewAuthHandler(userSvc, tokens),
		Product:  apihttp.NewProductHandler(productSvc, reviewSvc),
		Cart:     apihttp.NewCartHandler(cartSvc),
		Order:    apihttp.NewOrderHandler(orderSvc),
		Payment:  apihttp.NewPaymentHandler(paymentSvc),
		Coupon:   apihttp.NewCouponHandler(couponSvc),
		Returns:  apihttp.NewReturnsHandler(returnsSvc),
		Wishlist: apihttp.NewWishlistHandler(wishlistSvc),
		Admin:    apihttp.NewAdminHandler(userSvc, statsSvc),
	}, authMW, limiter)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Str("port", cfg.App.Port).Msg("Could not start HTTP server")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("lara-api stopped gracefully.")
}
