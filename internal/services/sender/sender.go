// Package services содержит сервис доставки писем: токены сброса пароля
// и коды подтверждения уходят пользователю по почте.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/marketplace-backend/internal/lib/sl"
	"github.com/magabrotheeeer/marketplace-backend/internal/lib/smtp"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

// SenderService отправляет письма через SMTP транспорт.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendResetPassword отправляет пользователю письмо с токеном сброса пароля.
// body — сообщение models.ResetNotice из очереди.
func (s *SenderService) SendResetPassword(body []byte) error {
	var notice models.ResetNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{notice.Email}
	subject := "Сброс пароля"
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\nВы запросили сброс пароля.\n"+
		"Токен для сброса: %s\n\nТокен одноразовый и действует ограниченное время.\n"+
		"Если вы не запрашивали сброс, проигнорируйте это письмо.",
		notice.Name, notice.ResetToken)

	return s.sendEmail(to, subject, bodyText)
}

// SendOtpCode отправляет пользователю код подтверждения телефона.
// body — сообщение models.OtpNotice из очереди.
func (s *SenderService) SendOtpCode(body []byte) error {
	var notice models.OtpNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{notice.Email}
	subject := "Код подтверждения телефона"
	bodyText := fmt.Sprintf("Ваш код подтверждения для номера %s: %s\n\n"+
		"Код одноразовый и действует ограниченное время.",
		notice.PhoneNumber, notice.Code)

	return s.sendEmail(to, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
