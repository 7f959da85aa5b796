package reminder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"inkflow/internal/config"
	"inkflow/internal/logging"
)

// SESAPI is the part of the SES client used to send mail
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESNotifier sends reminders through Amazon SES
type SESNotifier struct {
	client    SESAPI
	fromEmail string
	fromName  string
	logger    *slog.Logger
}

// NewSESNotifier creates a notifier sending from fromEmail with the given client
func NewSESNotifier(client SESAPI, fromEmail, fromName string, logger *slog.Logger) *SESNotifier {
	return &SESNotifier{client: client, fromEmail: fromEmail, fromName: fromName, logger: logging.OrDiscard(logger)}
}

// NewNotifier returns an SES notifier when a sender address is configured,
// otherwise a LogNotifier
func NewNotifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Notifier, error) {
	logger = logging.OrDiscard(logger)
	if cfg.SESFromEmail == "" {
		logger.Info("email reminders disabled: ses_from_email not configured")
		return NewLogNotifier(logger), nil
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.SESRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.SESRegion))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("email reminders enabled", "from", cfg.SESFromEmail, "region", awsCfg.Region)
	return NewSESNotifier(sesv2.NewFromConfig(awsCfg), cfg.SESFromEmail, cfg.SESFromName, logger), nil
}

func (n *SESNotifier) NotifyDue(ctx context.Context, to Recipient, dueCount int) error {
	if to.Email == "" {
		n.logger.Warn("skipping reminder: recipient has no email", "user_id", to.UserID)
		return nil
	}

	subject, textBody, htmlBody := reminderContent(dueCount)
	if _, err := n.client.SendEmail(ctx, n.input(to.Email, subject, textBody, htmlBody)); err != nil {
		return fmt.Errorf("failed to send reminder to %s: %w", to.Email, err)
	}
	n.logger.Info("reminder sent", "user_id", to.UserID, "email", to.Email, "due", dueCount)
	return nil
}

func (n *SESNotifier) input(toEmail, subject, textBody, htmlBody string) *sesv2.SendEmailInput {
	fromAddress := n.fromEmail
	if n.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", n.fromName, n.fromEmail)
	}

	return &sesv2.SendEmailInput{
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
}

func reminderContent(dueCount int) (subject, textBody, htmlBody string) {
	noun := "cards are"
	if dueCount == 1 {
		noun = "card is"
	}
	subject = fmt.Sprintf("%d handwriting %s ready for review", dueCount, noun)

	textBody = fmt.Sprintf(`Hi,

%d %s waiting in your review queue.

A few minutes of practice now keeps each letter moving up through your boxes.

---
This is an automated reminder from InkFlow.
`, dueCount, noun)

	htmlBody = fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<p>Hi,</p>
	<p><strong>%d %s</strong> waiting in your review queue.</p>
	<p>A few minutes of practice now keeps each letter moving up through your boxes.</p>
	<p style="font-size: 12px; color: #666;">This is an automated reminder from InkFlow.</p>
</body>
</html>
`, dueCount, noun)
	return subject, textBody, htmlBody
}
