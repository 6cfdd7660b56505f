package service

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Notifier delivers login secrets out of band. The upload and auth
// handlers only ever see this interface so tests can capture sends.
type Notifier interface {
	SendLoginLink(email, link string) error
	SendLoginCode(phone, code string) error
}

// Sender is the production Notifier: SMTP for mail, and an
// operational toggle for SMS. With sms.enabled off the code is only
// logged, which is how development deployments run.
type Sender struct{}

func (Sender) SendLoginLink(email, link string) error {
	from := viper.GetString("mail.sender")
	if email == from {
		return errors.New("invalid email address")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your ZeroPass login link")
	m.SetBody("text/html", fmt.Sprintf("Click <a href='%v'>here</a> to log in.<br><br>This link will expire in 10 minutes.", link))

	d := gomail.NewDialer(
		viper.GetString("mail.host"),
		viper.GetInt("mail.port"),
		from,
		viper.GetString("mail.password"),
	)

	if err := d.DialAndSend(m); err != nil {
		return err
	}

	return nil
}

func (Sender) SendLoginCode(phone, code string) error {
	if !viper.GetBool("sms.enabled") {
		zap.L().Info("SMS delivery disabled, code logged instead", zap.String("phone", phone), zap.String("code", code))
		return nil
	}

	// TODO: wire an SMS gateway once one is picked, only the dev path
	// exists so far
	zap.L().Warn("sms.enabled is set but no SMS gateway is configured", zap.String("phone", phone))
	return errors.New("sms gateway not configured")
}
