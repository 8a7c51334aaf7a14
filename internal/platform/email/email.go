// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package email delivers transactional mail through Amazon SES v2.

Core Responsibilities:

  - Reset Delivery: Password reset links with a short-lived token.
  - Onboarding: Welcome mail for newly registered accounts.
  - Degradation: When no sender address is configured the mailer runs in
    disabled mode and logs instead of sending, so local development never
    requires AWS credentials.
*/
package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Mailer sends transactional email via Amazon SES.
type Mailer struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	enabled   bool
	logger    *slog.Logger
}

/*
NewMailer creates a Mailer backed by Amazon SES.

Parameters:
  - ctx: Context for loading the AWS configuration.
  - region: AWS region hosting the SES identity (e.g. "eu-west-1").
  - fromEmail: Verified sender address. Empty string yields a disabled mailer.
  - fromName: Human-readable sender name ("Wayfarer").
  - logger: Structured logger for delivery events.

Returns:
  - *Mailer: A ready mailer; disabled if fromEmail is empty.
  - error: When the AWS configuration cannot be loaded.
*/
func NewMailer(ctx context.Context, region, fromEmail, fromName string, logger *slog.Logger) (*Mailer, error) {
	if fromEmail == "" {
		logger.Warn("email delivery disabled: no sender address configured")
		return &Mailer{enabled: false, logger: logger}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("email: failed to load AWS config: %w", err)
	}

	logger.Info("email delivery enabled",
		slog.String("from", fromEmail),
		slog.String("region", region),
	)

	return &Mailer{
		client:    sesv2.NewFromConfig(awsCfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
		logger:    logger,
	}, nil
}

// IsEnabled reports whether mail will actually be delivered.
func (m *Mailer) IsEnabled() bool {
	return m.enabled
}

/*
SendPasswordReset delivers the password reset instructions.

Parameters:
  - ctx: Request-scoped context.
  - toEmail: Recipient address.
  - toName: Recipient display name.
  - resetURL: Fully-qualified URL carrying the plaintext reset token.

Description:
The mail states the 10 minute validity window. In disabled mode the send is
skipped and logged; callers treat that as success so the reset flow remains
testable without AWS.
*/
func (m *Mailer) SendPasswordReset(ctx context.Context, toEmail, toName, resetURL string) error {
	if !m.enabled {
		m.logger.Info("skipping password reset email (delivery disabled)",
			slog.String("to", toEmail),
		)
		return nil
	}

	subject := "Your password reset token (valid for 10 min)"

	textBody := fmt.Sprintf(`Hi %s,

Forgot your password? Submit a PATCH request with your new password and password confirmation to:
%s

This link is only valid for the next 10 minutes.

If you didn't forget your password, please ignore this email!

---
This is an automated email from Wayfarer. Please do not reply.
`, toName, resetURL)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1 style="color: #2d6a4f;">Password Reset Request</h1>
		<p>Hi %s,</p>
		<p>Forgot your password? Click the button below to choose a new one:</p>
		<p style="text-align: center;">
			<a href="%s" style="display: inline-block; padding: 12px 30px; background-color: #2d6a4f; color: white; text-decoration: none; border-radius: 5px;">Reset Password</a>
		</p>
		<p>Or copy and paste this link into your browser:</p>
		<p style="word-break: break-all; font-size: 12px; color: #666;">%s</p>
		<p><strong>This link is only valid for the next 10 minutes.</strong></p>
		<p>If you didn't forget your password, please ignore this email!</p>
		<p style="font-size: 12px; color: #666;">This is an automated email from Wayfarer. Please do not reply.</p>
	</div>
</body>
</html>
`, toName, resetURL, resetURL)

	return m.send(ctx, toEmail, subject, htmlBody, textBody)
}

// SendWelcome delivers the onboarding mail for a freshly registered account.
func (m *Mailer) SendWelcome(ctx context.Context, toEmail, toName string) error {
	if !m.enabled {
		m.logger.Info("skipping welcome email (delivery disabled)",
			slog.String("to", toEmail),
		)
		return nil
	}

	subject := "Welcome to the Wayfarer family!"

	textBody := fmt.Sprintf(`Hi %s,

Welcome to Wayfarer, we're glad to have you!

Browse our tours, read reviews from other travellers, and book your next adventure.

---
This is an automated email from Wayfarer. Please do not reply.
`, toName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1 style="color: #2d6a4f;">Welcome to the Wayfarer family!</h1>
		<p>Hi %s,</p>
		<p>Welcome to Wayfarer, we're glad to have you!</p>
		<p>Browse our tours, read reviews from other travellers, and book your next adventure.</p>
		<p style="font-size: 12px; color: #666;">This is an automated email from Wayfarer. Please do not reply.</p>
	</div>
</body>
</html>
`, toName)

	return m.send(ctx, toEmail, subject, htmlBody, textBody)
}

// send performs the actual SES v2 API call.
func (m *Mailer) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := m.fromEmail
	if m.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("email: send to %s failed: %w", toEmail, err)
	}

	m.logger.Info("email sent",
		slog.String("to", toEmail),
		slog.String("subject", subject),
		slog.String("message_id", aws.ToString(result.MessageId)),
	)
	return nil
}
