package rabbitmq

import (
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

// Notifier публикует уведомления аутентификации в обменник notifications.
type Notifier struct {
	ch *amqp.Channel
}

// NewNotifier создает Notifier поверх открытого канала.
func NewNotifier(ch *amqp.Channel) *Notifier {
	return &Notifier{ch: ch}
}

// PublishResetNotice отправляет уведомление с токеном сброса пароля.
func (n *Notifier) PublishResetNotice(notice models.ResetNotice) error {
	return PublishMessage(n.ch, NotificationsExchange, ResetPasswordRoutingKey, notice)
}

// PublishOtpNotice отправляет уведомление с кодом подтверждения телефона.
func (n *Notifier) PublishOtpNotice(notice models.OtpNotice) error {
	return PublishMessage(n.ch, NotificationsExchange, OtpRoutingKey, notice)
}
