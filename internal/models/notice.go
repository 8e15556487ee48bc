package models

// ResetNotice сообщение для очереди доставки токена сброса пароля.
type ResetNotice struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	ResetToken string `json:"reset_token"`
}

// OtpNotice сообщение для очереди доставки одноразового кода подтверждения.
type OtpNotice struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
}
