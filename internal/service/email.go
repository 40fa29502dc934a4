package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"drivehub-backend/internal/config"
	"drivehub-backend/internal/logger"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(cfg config.EmailConfig) EmailService {
	return &emailService{
		apiKey:    cfg.APIKey,
		fromEmail: cfg.From,
		fromName:  cfg.FromName,
	}
}

func (s *emailService) send(ctx context.Context, to, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}

	logger.Debug("email sent", "to", to, "subject", subject)
	return nil
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

func (s *emailService) SendBookingRequestNotification(ctx context.Context, ownerEmail, renterName, carName string) error {
	subject := fmt.Sprintf("New Booking Request: %s", carName)
	plainText := fmt.Sprintf("%s wants to book your %s. Review the request to approve or reject it.", renterName, carName)
	htmlContent := fmt.Sprintf(`<p><strong>%s</strong> wants to book your <strong>%s</strong>.</p><p>Review the request to approve or reject it.</p>`, renterName, carName)
	return s.send(ctx, ownerEmail, subject, plainText, htmlContent)
}

func (s *emailService) SendBookingApprovalNotification(ctx context.Context, renterEmail, carName, ownerName string) error {
	subject := fmt.Sprintf("Booking Approved: %s", carName)
	plainText := fmt.Sprintf("%s approved your booking for %s. Complete the payment to secure it.", ownerName, carName)
	htmlContent := fmt.Sprintf(`<p><strong>%s</strong> approved your booking for <strong>%s</strong>.</p><p>Complete the payment to secure it.</p>`, ownerName, carName)
	return s.send(ctx, renterEmail, subject, plainText, htmlContent)
}

func (s *emailService) SendBookingRejectionNotification(ctx context.Context, renterEmail, carName, reason string) error {
	subject := fmt.Sprintf("Booking Rejected: %s", carName)
	plainText := fmt.Sprintf("Your booking for %s was rejected. Reason: %s", carName, reason)
	htmlContent := fmt.Sprintf(`<p>Your booking for <strong>%s</strong> was rejected.</p><p>Reason: %s</p>`, carName, reason)
	return s.send(ctx, renterEmail, subject, plainText, htmlContent)
}

func (s *emailService) SendBookingCancellationNotification(ctx context.Context, ownerEmail, renterName, carName, reason string) error {
	subject := fmt.Sprintf("Booking Cancelled: %s", carName)
	plainText := fmt.Sprintf("%s cancelled the booking for %s. Reason: %s", renterName, carName, reason)
	htmlContent := fmt.Sprintf(`<p><strong>%s</strong> cancelled the booking for <strong>%s</strong>.</p><p>Reason: %s</p>`, renterName, carName, reason)
	return s.send(ctx, ownerEmail, subject, plainText, htmlContent)
}

func (s *emailService) SendBookingCompletionNotification(ctx context.Context, email, role, carName string, amountCents int64) error {
	subject := fmt.Sprintf("Booking Completed: %s", carName)
	plainText := fmt.Sprintf("The booking for %s is complete. As the %s, your final amount is %s.", carName, role, formatCents(amountCents))
	htmlContent := fmt.Sprintf(`<p>The booking for <strong>%s</strong> is complete.</p><p>As the %s, your final amount is <strong>%s</strong>.</p>`, carName, role, formatCents(amountCents))
	return s.send(ctx, email, subject, plainText, htmlContent)
}

func (s *emailService) SendDateChangeNotification(ctx context.Context, email, carName string, newStart, newEnd time.Time) error {
	subject := fmt.Sprintf("Booking Dates Changed: %s", carName)
	window := fmt.Sprintf("%s to %s", newStart.Format("Jan 2, 2006 15:04"), newEnd.Format("Jan 2, 2006 15:04"))
	plainText := fmt.Sprintf("The booking dates for %s changed to %s.", carName, window)
	htmlContent := fmt.Sprintf(`<p>The booking dates for <strong>%s</strong> changed to <strong>%s</strong>.</p>`, carName, window)
	return s.send(ctx, email, subject, plainText, htmlContent)
}

func (s *emailService) SendPaymentReceivedNotification(ctx context.Context, email, carName string, amountCents int64) error {
	subject := fmt.Sprintf("Payment Received: %s", carName)
	plainText := fmt.Sprintf("A payment of %s was received for the booking of %s.", formatCents(amountCents), carName)
	htmlContent := fmt.Sprintf(`<p>A payment of <strong>%s</strong> was received for the booking of <strong>%s</strong>.</p>`, formatCents(amountCents), carName)
	return s.send(ctx, email, subject, plainText, htmlContent)
}

func (s *emailService) SendRefundNotification(ctx context.Context, renterEmail, carName string, amountCents int64) error {
	subject := fmt.Sprintf("Refund Issued: %s", carName)
	plainText := fmt.Sprintf("A refund of %s was issued for your booking of %s.", formatCents(amountCents), carName)
	htmlContent := fmt.Sprintf(`<p>A refund of <strong>%s</strong> was issued for your booking of <strong>%s</strong>.</p>`, formatCents(amountCents), carName)
	return s.send(ctx, renterEmail, subject, plainText, htmlContent)
}
