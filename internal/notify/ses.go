package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	pkglogger "github.com/mbnr/matrimonial/pkg/logger"
)

// sesAPI is the subset of *ses.Client used here.
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotifier sends notifications through AWS SES.
type SESNotifier struct {
	client      sesAPI
	fromAddress string
	baseURL     string
	logger      *slog.Logger
}

func NewSESNotifier(ctx context.Context, region, fromAddress, baseURL string, logger *slog.Logger) (*SESNotifier, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newSESNotifier(ses.NewFromConfig(cfg), fromAddress, baseURL, logger), nil
}

func newSESNotifier(client sesAPI, fromAddress, baseURL string, logger *slog.Logger) *SESNotifier {
	return &SESNotifier{
		client:      client,
		fromAddress: fromAddress,
		baseURL:     baseURL,
		logger:      logger,
	}
}

func (n *SESNotifier) VerificationProcessed(ctx context.Context, msg VerificationProcessed) error {
	subject := "Your verification was approved"
	text := fmt.Sprintf("Hi %s,\n\nYour identity verification has been approved. Your profile now shows the verified badge.\n\n%s/dashboard\n", msg.Name, n.baseURL)

	if msg.Decision != "approved" {
		subject = "Your verification needs attention"
		reason := msg.RejectionReason
		if reason == "" {
			reason = "The submitted document could not be verified."
		}
		text = fmt.Sprintf("Hi %s,\n\nYour identity verification was not approved.\nReason: %s\n\nYou can submit a new request at %s/verification\n", msg.Name, reason, n.baseURL)
	}

	return n.send(ctx, "verification_processed", msg.To, subject, text)
}

func (n *SESNotifier) ConnectionReceived(ctx context.Context, msg ConnectionReceived) error {
	subject := fmt.Sprintf("%s wants to connect with you", msg.SenderName)
	text := fmt.Sprintf("Hi %s,\n\n%s sent you a connection request:\n\n  \"%s\"\n\nRespond at %s/connections\n",
		msg.Name, msg.SenderName, msg.Message, n.baseURL)

	return n.send(ctx, "connection_received", msg.To, subject, text)
}

func (n *SESNotifier) send(ctx context.Context, kind, to, subject, text string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(n.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(text), Charset: aws.String("UTF-8")},
				Html: &types.Content{Data: aws.String(htmlBody(text)), Charset: aws.String("UTF-8")},
			},
		},
	}

	result, err := n.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}

	n.logger.InfoContext(ctx, "notification email sent",
		slog.String("kind", kind),
		slog.String("to", pkglogger.MaskEmail(to)),
		slog.String("message_id", aws.ToString(result.MessageId)),
	)

	return nil
}

// htmlBody renders the plain text body as escaped HTML paragraphs.
func htmlBody(text string) string {
	return `<!DOCTYPE html><html><body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;"><pre style="font-family: inherit; white-space: pre-wrap;">` +
		html.EscapeString(text) +
		`</pre></body></html>`
}
