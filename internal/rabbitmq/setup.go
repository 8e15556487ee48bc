package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// NotificationsExchange имя обменника для исходящих уведомлений.
const NotificationsExchange = "notifications"

// Имена очередей и ключи маршрутизации уведомлений.
const (
	ResetPasswordQueue      = "reset-password"
	ResetPasswordRoutingKey = "auth.reset-password"
	OtpQueue                = "otp-codes"
	OtpRoutingKey           = "auth.otp"
)

// QueueConfig описывает очередь и её привязку к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// DefaultQueues очереди, которые объявляет сервис аутентификации.
func DefaultQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: ResetPasswordQueue, RoutingKey: ResetPasswordRoutingKey},
		{QueueName: OtpQueue, RoutingKey: OtpRoutingKey},
	}
}

// SetupChannel открывает канал, объявляет обменник и привязывает очереди.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		NotificationsExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		if _, err := ch.QueueDeclare(
			q.QueueName,
			true,
			false,
			false,
			false,
			nil,
		); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := ch.QueueBind(
			q.QueueName,
			q.RoutingKey,
			NotificationsExchange,
			false,
			nil,
		); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return ch, nil
}
