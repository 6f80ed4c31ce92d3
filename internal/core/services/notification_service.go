package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// NotificationService delivers verification codes and lifecycle
// notices. When no webhook URL is configured it logs the message
// instead, which is the mode used in development.
type NotificationService struct {
	webhookURL string
	client     *http.Client
}

// NewNotificationService creates a new notification service
func NewNotificationService(webhookURL string) *NotificationService {
	return &NotificationService{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type notificationPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendVerificationCode sends a verification code to the given email
func (s *NotificationService) SendVerificationCode(ctx context.Context, email, code string) error {
	subject := "LendFlow verification code"
	body := fmt.Sprintf("Your verification code is %s. It expires in 5 minutes.", code)
	return s.send(ctx, email, subject, body)
}

// SendLoanDecision notifies an applicant about a loan decision
func (s *NotificationService) SendLoanDecision(ctx context.Context, email string, loanID uint, status string) error {
	subject := "LendFlow loan application update"
	body := fmt.Sprintf("Your loan application #%d is now %s.", loanID, status)
	return s.send(ctx, email, subject, body)
}

func (s *NotificationService) send(ctx context.Context, to, subject, body string) error {
	if s.webhookURL == "" {
		log.Printf("📧 [dev] notification to %s: %s", to, subject)
		return nil
	}

	payload, err := json.Marshal(notificationPayload{To: to, Subject: subject, Body: body})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned %d", resp.StatusCode)
	}

	log.Printf("✅ Notification sent to %s", to)
	return nil
}
