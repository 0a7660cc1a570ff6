package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"
)

// ResendEmailSender delivers verification and reset links through Resend.
// The orchestrator treats delivery as fire-and-forget; failures returned
// here are logged, not surfaced to the end user.
type ResendEmailSender struct {
	client     *resend.Client
	From       string
	AppBaseURL string
	VerifyPath string
	ResetPath  string
}

func NewResendEmailSender(apiKey string, from string, appBaseURL string) *ResendEmailSender {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(from) == "" {
		return &ResendEmailSender{}
	}
	return &ResendEmailSender{
		client:     resend.NewClient(apiKey),
		From:       from,
		AppBaseURL: strings.TrimRight(appBaseURL, "/"),
		VerifyPath: "/verify-email",
		ResetPath:  "/reset-password",
	}
}

func (s *ResendEmailSender) SendVerificationEmail(ctx context.Context, email string, code string) error {
	if s.client == nil {
		return errors.New("email sender not configured")
	}
	link := s.buildURL(s.VerifyPath, code)
	params := &resend.SendEmailRequest{
		From:    s.From,
		To:      []string{email},
		Subject: "Verify your email",
		Html:    fmt.Sprintf("<p>Click to verify your email:</p><p><a href=\"%s\">Verify Email</a></p>", link),
		Text:    fmt.Sprintf("Verify your email: %s", link),
	}
	_, err := s.client.Emails.Send(params)
	return err
}

func (s *ResendEmailSender) SendPasswordResetEmail(ctx context.Context, email string, code string) error {
	if s.client == nil {
		return errors.New("email sender not configured")
	}
	link := s.buildURL(s.ResetPath, code)
	params := &resend.SendEmailRequest{
		From:    s.From,
		To:      []string{email},
		Subject: "Reset your password",
		Html:    fmt.Sprintf("<p>Click to reset your password:</p><p><a href=\"%s\">Reset Password</a></p>", link),
		Text:    fmt.Sprintf("Reset your password: %s", link),
	}
	_, err := s.client.Emails.Send(params)
	return err
}

func (s *ResendEmailSender) buildURL(path string, code string) string {
	if s.AppBaseURL == "" {
		return code
	}
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("%s%s?code=%s", s.AppBaseURL, path, code)
}
