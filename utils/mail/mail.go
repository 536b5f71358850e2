package mail

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"os"
	"strconv"
	"time"

	"github.com/joy095/car-rental/logger"
	gomail "gopkg.in/gomail.v2"
)

// Email template paths (inside the embedded FS handed to InitTemplates).
const (
	paymentOTPTemplate        = "templates/email/payment_otp.html"
	bookingConfirmedTemplate  = "templates/email/booking_confirmed.html"
	bookingCancelledTemplate  = "templates/email/booking_cancelled.html"
	welcomeTemplate           = "templates/email/welcome.html"
	emailVerificationTemplate = "templates/email/email_verification.html"
	passwordResetTemplate     = "templates/email/password_reset.html"
)

var templateFS embed.FS

// InitTemplates hands the embedded email templates to this package.
// Must be called once at startup before any email is sent.
func InitTemplates(fs embed.FS) {
	templateFS = fs
}

// sendEmail renders a template and delivers it over SMTP using gomail.
func sendEmail(toEmail, subject, templatePath string, data interface{}) error {
	mailer := gomail.NewMessage()
	mailer.SetHeader("From", os.Getenv("FROM_EMAIL"))
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)

	t, err := template.ParseFS(templateFS, templatePath)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to parse email template %s: %v", templatePath, err)
		return fmt.Errorf("failed to parse email template: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		logger.ErrorLogger.Errorf("Failed to execute email template %s: %v", templatePath, err)
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	mailer.SetBody("text/html", body.String())

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		logger.ErrorLogger.Errorf("Invalid SMTP port: %v", err)
		return fmt.Errorf("invalid SMTP port: %w", err)
	}

	smtpHost := os.Getenv("SMTP_HOST")
	smtpUsername := os.Getenv("SMTP_USERNAME")
	smtpPassword := os.Getenv("SMTP_PASSWORD")

	dialer := gomail.NewDialer(smtpHost, port, smtpUsername, smtpPassword)
	dialer.TLSConfig = &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         smtpHost,
	}

	if err := dialer.DialAndSend(mailer); err != nil {
		logger.ErrorLogger.Errorf("Failed to send email to %s: %v", toEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.InfoLogger.Infof("Email sent to %s (%s)", toEmail, subject)
	return nil
}

// SendPaymentOTP sends the payment code together with the computed bill.
func SendPaymentOTP(email, name string, billAmount int, otp string) error {
	logger.InfoLogger.Infof("Sending payment OTP to %s", email)
	data := struct {
		Name       string
		BillAmount int
		OTP        string
		Year       int
	}{
		Name:       name,
		BillAmount: billAmount,
		OTP:        otp,
		Year:       time.Now().Year(),
	}
	return sendEmail(email, "Payment OTP", paymentOTPTemplate, data)
}

// SendBookingConfirmed notifies the customer that the booking is confirmed.
func SendBookingConfirmed(email, name, carName, startDate, endDate string) error {
	logger.InfoLogger.Infof("Sending booking confirmation to %s", email)
	data := struct {
		Name      string
		CarName   string
		StartDate string
		EndDate   string
		Year      int
	}{
		Name:      name,
		CarName:   carName,
		StartDate: startDate,
		EndDate:   endDate,
		Year:      time.Now().Year(),
	}
	return sendEmail(email, "Booking Confirmed", bookingConfirmedTemplate, data)
}

// SendBookingCancelled notifies the customer that the booking was cancelled.
func SendBookingCancelled(email, name, carName string) error {
	logger.InfoLogger.Infof("Sending cancellation notice to %s", email)
	data := struct {
		Name    string
		CarName string
		Year    int
	}{
		Name:    name,
		CarName: carName,
		Year:    time.Now().Year(),
	}
	return sendEmail(email, "Booking Cancelled", bookingCancelledTemplate, data)
}

// SendVerificationOTP sends the registration email-verification code.
func SendVerificationOTP(email, name, otp string) error {
	logger.InfoLogger.Infof("Sending verification OTP to %s", email)
	data := struct {
		Name string
		OTP  string
		Year int
	}{
		Name: name,
		OTP:  otp,
		Year: time.Now().Year(),
	}
	return sendEmail(email, "Verify Your Email", emailVerificationTemplate, data)
}

// SendPasswordResetOTP sends the forgot-password code.
func SendPasswordResetOTP(email, name, otp string) error {
	logger.InfoLogger.Infof("Sending password reset OTP to %s", email)
	data := struct {
		Name string
		OTP  string
		Year int
	}{
		Name: name,
		OTP:  otp,
		Year: time.Now().Year(),
	}
	return sendEmail(email, "Password Reset", passwordResetTemplate, data)
}

// SendWelcomeEmail greets a freshly registered user.
func SendWelcomeEmail(email, name string) error {
	logger.InfoLogger.Infof("Sending welcome email to %s", email)
	data := struct {
		Name string
		Year int
	}{
		Name: name,
		Year: time.Now().Year(),
	}
	return sendEmail(email, "Welcome to Car Rental", welcomeTemplate, data)
}

// SendAsync fires an email delivery in the background. Delivery failure is
// logged and never propagated: the owning transaction has already committed.
func SendAsync(send func() error) {
	go func() {
		if err := send(); err != nil {
			logger.ErrorLogger.Errorf("Async email dispatch failed: %v", err)
		}
	}()
}
