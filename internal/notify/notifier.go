// internal/notify/notifier.go
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"signal-engine/internal/common/config"
	"signal-engine/internal/common/errors"
	"signal-engine/internal/common/logger"
	"signal-engine/internal/common/validation"
	"signal-engine/internal/models"
)

// SESService and SNSService are the narrow AWS views the notifier needs,
// defined here so tests can stub them.
type SESService interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// Notifier sends a digest of post_today recommendations after a scoring
// pass. Both channels are optional and fail independently: a broken
// channel is logged and skipped, never fatal to the batch.
type Notifier struct {
	config config.NotifyConfig
	ses    SESService
	sns    SNSService
	logger logger.Logger
}

func NewNotifier(cfg config.NotifyConfig, sesClient SESService, snsClient SNSService, log logger.Logger) *Notifier {
	return &Notifier{
		config: cfg,
		ses:    sesClient,
		sns:    snsClient,
		logger: log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

// SendDigest publishes the urgent recommendations. Results that are not
// post_today are ignored; an empty digest sends nothing.
func (n *Notifier) SendDigest(ctx context.Context, showID string, results []models.ScoringResult) error {
	if !n.config.Enabled {
		return nil
	}

	urgent := filterUrgent(results)
	if len(urgent) == 0 {
		n.logger.Debug("no urgent recommendations, skipping digest", map[string]interface{}{
			"showId": showID,
		})
		return nil
	}

	subject := fmt.Sprintf("%d topics to post today", len(urgent))
	body := formatDigest(urgent)

	var firstErr error
	if n.config.SNS.Enabled && n.sns != nil {
		if err := n.publishSNS(ctx, subject, body); err != nil {
			n.logger.Error("sns digest failed", map[string]interface{}{"error": err})
			firstErr = err
		}
	}
	if n.config.Email.Enabled && n.ses != nil {
		if err := n.sendEmail(ctx, subject, body); err != nil {
			n.logger.Error("email digest failed", map[string]interface{}{"error": err})
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (n *Notifier) publishSNS(ctx context.Context, subject, body string) error {
	_, err := n.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.config.SNS.TopicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(body),
	})
	if err != nil {
		return errors.NewNotificationSendFailedError("sns", err)
	}
	return nil
}

func (n *Notifier) sendEmail(ctx context.Context, subject, body string) error {
	if !validation.ValidateEmail(n.config.Email.ToEmail) {
		return errors.NewNotificationSendFailedError("email",
			fmt.Errorf("invalid recipient address %q", n.config.Email.ToEmail))
	}

	_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.config.Email.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{n.config.Email.ToEmail},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return errors.NewNotificationSendFailedError("email", err)
	}
	return nil
}

func filterUrgent(results []models.ScoringResult) []models.ScoringResult {
	var urgent []models.ScoringResult
	for _, r := range results {
		if r.IsValid && r.Tier == models.TierPostToday {
			urgent = append(urgent, r)
		}
	}
	return urgent
}

// formatDigest renders one line per recommendation with its score, why
// it surfaced and the top evidence.
func formatDigest(urgent []models.ScoringResult) string {
	var b strings.Builder
	for i, r := range urgent {
		fmt.Fprintf(&b, "%d. [%d] %s\n", i+1, r.Score, r.TierReason)
		for _, c := range r.Contributions {
			if c.Points <= 0 {
				continue
			}
			fmt.Fprintf(&b, "   +%d %s\n", c.Points, c.Text)
		}
	}
	return b.String()
}
