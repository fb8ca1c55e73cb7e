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

	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/config"
	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/httpapi"
	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/logger"
	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/realtime"
	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/repository"
	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/service"
	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/session"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Service: "ecommerce-backend",
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName, repository.MongoOptions{
		ConnectTimeout: cfg.MongoConnectTimeout,
		SelectTimeout:  cfg.MongoSelectTimeout,
		MaxPoolSize:    cfg.MongoMaxPoolSize,
		MinPoolSize:    cfg.MongoMinPoolSize,
	})
	if err != nil {
		log.Error("failed to connect to MongoDB", "err", err)
		os.Exit(1)
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		if err := db.Client().Disconnect(disconnectCtx); err != nil {
			log.Error("error disconnecting MongoDB client", "err", err)
		}
	}()
	log.Info("connected to MongoDB", "db", cfg.MongoDBName)

	if err := repository.CreateProductIndexes(ctx, db); err != nil {
		log.Error("failed to create product indexes", "err", err)
		os.Exit(1)
	}
	if err := repository.CreateUserIndexes(ctx, db); err != nil {
		log.Error("failed to create user indexes", "err", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	productRepo := repository.NewMongoProductRepository(db)
	cartRepo := repository.NewMongoCartRepository(db)
	userRepo := repository.NewMongoUserRepository(db)

	productService := service.NewProductService(productRepo, log)
	cartService := service.NewCartService(cartRepo, productRepo, log)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, log)

	sessionStore := session.NewRedisStore(redisClient, cfg.SessionTTL)

	hub := realtime.NewHub(productService, log)
	go hub.Run(ctx)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Products:       httpapi.NewProductHandler(productService, hub),
		Carts:          httpapi.NewCartHandler(cartService, sessionStore),
		Sessions:       httpapi.NewSessionHandler(authService),
		Realtime:       http.HandlerFunc(hub.ServeWS),
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      http.MaxBytesHandler(router, cfg.MaxRequestBodySize),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // websocket connections outlive any write deadline
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "err", err)
	}
	cancel() // stops the hub

	log.Info("server exited")
}
