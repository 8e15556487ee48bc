package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/marketplace-backend/internal/cache"
	"github.com/magabrotheeeer/marketplace-backend/internal/config"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/marketplace-backend/internal/migrations"
	"github.com/magabrotheeeer/marketplace-backend/internal/rabbitmq"
	services "github.com/magabrotheeeer/marketplace-backend/internal/services/auth"
	"github.com/magabrotheeeer/marketplace-backend/internal/storage"
)

// App HTTP-приложение сервиса аутентификации.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *storage.Storage
	amqpConn *amqp.Connection
}

// New собирает все зависимости сервиса аутентификации.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.Db, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	amqpConn, err := rabbitmq.Connect(cfg.RabbitMQConnection, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(amqpConn, rabbitmq.DefaultQueues())
	if err != nil {
		return nil, err
	}
	notifier := rabbitmq.NewNotifier(ch)

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authService := services.NewAuthService(db, cacheRedis, notifier, jwtMaker, cfg.Tokens, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		amqpConn: amqpConn,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до остановки контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.Db.Close()
		_ = a.amqpConn.Close()
		return err
	}
}
