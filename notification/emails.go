package notification

import (
	"errors"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

var (
	SendWelcomeEmailFunc       = SendWelcomeEmail
	SendPasswordResetEmailFunc = SendPasswordResetEmail

	SendFunc = Send
)

// SendWelcomeEmail is best-effort: it runs detached from the request that
// triggered it, and a failure is logged, never surfaced, never retried.
func SendWelcomeEmail(name, email string) {
	go func() {
		subject := "Welcome to Bug Tracker"
		html := "<div style=\"font-family: Arial;\">" +
			"<h2>Hello " + name + ",</h2>" +
			"<p>Welcome to <strong>Bug Tracker</strong>, your platform for tracking and resolving issues efficiently.</p>" +
			"<p>Start managing your projects today.</p>" +
			"<p>Regards,<br>Bug Tracker Team</p>" +
			"</div>"
		if err := SendFunc(email, subject, html); err != nil {
			logrus.Warnf("failed to send welcome email to %s: %v", email, err)
		}
	}()
}

func SendPasswordResetEmail(name, email, token string) {
	go func() {
		resetUrl := os.Getenv("FRONTEND_URL") + "/reset-password?token=" + token
		subject := "Reset your Bug Tracker password"
		html := "<div style=\"font-family: Arial;\">" +
			"<h2>Password Reset</h2>" +
			"<p>Hi " + name + ",</p>" +
			"<p>Click the link below to reset your password:</p>" +
			"<a href=\"" + resetUrl + "\">Reset Password</a>" +
			"<p>This link is valid for 1 hour.</p>" +
			"</div>"
		if err := SendFunc(email, subject, html); err != nil {
			logrus.Warnf("failed to send password reset email to %s: %v", email, err)
		}
	}()
}

// EMAIL_HOST, EMAIL_PORT, EMAIL_USER, EMAIL_PASS, EMAIL_FROM
func Send(to, subject, html string) error {
	host := os.Getenv("EMAIL_HOST")
	if host == "" {
		return errors.New("mail transport is not configured")
	}
	port, err := strconv.Atoi(os.Getenv("EMAIL_PORT"))
	if err != nil {
		port = 587
	}
	user := os.Getenv("EMAIL_USER")
	pass := os.Getenv("EMAIL_PASS")
	from := os.Getenv("EMAIL_FROM")
	if from == "" {
		from = user
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	return gomail.NewDialer(host, port, user, pass).DialAndSend(m)
}
