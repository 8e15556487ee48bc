// Package sender собирает приложение доставки писем: потребляет уведомления
// из RabbitMQ и отправляет их по SMTP.
package sender

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/marketplace-backend/internal/config"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/smtp"
	"github.com/magabrotheeeer/marketplace-backend/internal/rabbitmq"
	services "github.com/magabrotheeeer/marketplace-backend/internal/services/sender"
)

// App приложение доставки писем.
type App struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	service *services.SenderService
	logger  *slog.Logger
}

// New собирает зависимости приложения доставки.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQConnection, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.DefaultQueues())
	if err != nil {
		return nil, err
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	senderService := services.NewSenderService(transport, logger)

	return &App{
		conn:    conn,
		ch:      ch,
		service: senderService,
		logger:  logger,
	}, nil
}

// Run подписывается на очереди уведомлений и блокируется до остановки контекста.
func (a *App) Run(ctx context.Context) error {
	if err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.ResetPasswordQueue, a.service.SendResetPassword); err != nil {
		return err
	}
	if err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.OtpQueue, a.service.SendOtpCode); err != nil {
		return err
	}
	a.logger.Info("sender service consuming notifications")

	<-ctx.Done()
	_ = a.ch.Close()
	_ = a.conn.Close()
	return nil
}
