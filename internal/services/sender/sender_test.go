package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/marketplace-backend/internal/lib/smtp"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

type writeCloserMock struct {
	buf    bytes.Buffer
	closed bool
}

func (w *writeCloserMock) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *writeCloserMock) Close() error {
	w.closed = true
	return nil
}

type ClientMock struct {
	mock.Mock
	writer *writeCloserMock
}

func (m *ClientMock) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *ClientMock) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *ClientMock) Data() (io.WriteCloser, error) {
	args := m.Called()
	return m.writer, args.Error(0)
}

func (m *ClientMock) Quit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *ClientMock) Close() error {
	return nil
}

type TransportMock struct {
	mock.Mock
	client *ClientMock
}

func (m *TransportMock) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return m.client, nil
}

func (m *TransportMock) GetSMTPUser() string {
	return "noreply@example.com"
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newHappyTransport() (*TransportMock, *ClientMock) {
	client := &ClientMock{writer: &writeCloserMock{}}
	client.On("Mail", "noreply@example.com").Return(nil)
	client.On("Rcpt", mock.Anything).Return(nil)
	client.On("Data").Return(nil)
	client.On("Quit").Return(nil)

	transport := &TransportMock{client: client}
	transport.On("Connect").Return(nil, nil)
	return transport, client
}

func TestSendResetPassword(t *testing.T) {
	transport, client := newHappyTransport()
	svc := NewSenderService(transport, newNoopLogger())

	body, err := json.Marshal(models.ResetNotice{
		Email:      "a@x.com",
		Name:       "Ann",
		ResetToken: "token-1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.SendResetPassword(body))

	msg := client.writer.buf.String()
	assert.Contains(t, msg, "To: a@x.com")
	assert.Contains(t, msg, "Subject: Сброс пароля")
	assert.Contains(t, msg, "token-1")
	assert.True(t, client.writer.closed)
	client.AssertCalled(t, "Rcpt", "a@x.com")
}

func TestSendOtpCode(t *testing.T) {
	transport, client := newHappyTransport()
	svc := NewSenderService(transport, newNoopLogger())

	body, err := json.Marshal(models.OtpNotice{
		Email:       "a@x.com",
		PhoneNumber: "79990001122",
		Code:        "123456",
	})
	require.NoError(t, err)

	require.NoError(t, svc.SendOtpCode(body))

	msg := client.writer.buf.String()
	assert.Contains(t, msg, "Subject: Код подтверждения телефона")
	assert.Contains(t, msg, "123456")
	assert.Contains(t, msg, "79990001122")
}

func TestSendResetPasswordBadBody(t *testing.T) {
	transport, _ := newHappyTransport()
	svc := NewSenderService(transport, newNoopLogger())

	err := svc.SendResetPassword([]byte("not a json"))
	assert.Error(t, err)
	transport.AssertNotCalled(t, "Connect")
}

func TestSendResetPasswordConnectError(t *testing.T) {
	transport := &TransportMock{}
	transport.On("Connect").Return(nil, errors.New("connection refused"))
	svc := NewSenderService(transport, newNoopLogger())

	body, err := json.Marshal(models.ResetNotice{Email: "a@x.com"})
	require.NoError(t, err)

	assert.Error(t, svc.SendResetPassword(body))
}
