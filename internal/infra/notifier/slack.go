package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
)

// SlackConfig contains configuration for Slack webhook notifications.
type SlackConfig struct {
	Enabled bool

	// WebhookURL is the Slack Incoming Webhook URL (includes authentication token)
	WebhookURL string

	Timeout time.Duration
}

// SlackNotifier posts lead notifications to Slack via Incoming Webhook using
// Block Kit.
type SlackNotifier struct {
	client *webhookClient
}

// NewSlackNotifier creates a SlackNotifier limited to one message per second,
// the Incoming Webhook limit.
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	return &SlackNotifier{client: newWebhookClient("slack", config.WebhookURL, config.Timeout, 1, 1)}
}

// SlackWebhookPayload is the JSON body sent to the webhook.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`
	Blocks []SlackBlock `json:"blocks"`
}

// SlackBlock is a Block Kit block.
type SlackBlock struct {
	Type     string            `json:"type"`
	Text     *SlackTextObject  `json:"text,omitempty"`
	Fields   []SlackTextObject `json:"fields,omitempty"`
	Elements []SlackTextObject `json:"elements,omitempty"`
}

// SlackTextObject is a Block Kit text object.
type SlackTextObject struct {
	Type string `json:"type"` // "mrkdwn" or "plain_text"
	Text string `json:"text"`
}

const (
	maxSectionTextLength = 3000
	maxFallbackLength    = 150
	slackSuffix          = "..."
)

func mrkdwn(text string) SlackTextObject {
	return SlackTextObject{Type: "mrkdwn", Text: text}
}

// slackEscape escapes the three characters Slack treats as control sequences.
func slackEscape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

func buildSlackLeadPayload(lead *entity.Enrollment) SlackWebhookPayload {
	label := kindLabel(lead.Kind)
	fallback := truncate(leadHeadline(label, lead.Name, lead.Course), maxFallbackLength, slackSuffix)

	fields := []SlackTextObject{
		mrkdwn("*Name*\n" + slackEscape(lead.Name)),
		mrkdwn("*Email*\n" + slackEscape(lead.Email)),
		mrkdwn("*Phone*\n" + slackEscape(lead.Phone)),
	}
	if lead.Course != "" {
		fields = append(fields, mrkdwn("*Course*\n"+slackEscape(lead.Course)))
	}
	if lead.PreferredDate != "" {
		fields = append(fields, mrkdwn("*Preferred date*\n"+slackEscape(lead.PreferredDate)))
	}

	blocks := []SlackBlock{
		{Type: "section", Text: &SlackTextObject{Type: "mrkdwn", Text: "*" + slackEscape(fallback) + "*"}},
		{Type: "section", Fields: fields},
	}
	if lead.Message != "" {
		blocks = append(blocks, SlackBlock{
			Type: "section",
			Text: &SlackTextObject{Type: "mrkdwn", Text: truncate(slackEscape(lead.Message), maxSectionTextLength, slackSuffix)},
		})
	}
	blocks = append(blocks, SlackBlock{
		Type:     "context",
		Elements: []SlackTextObject{mrkdwn(fmt.Sprintf("#%d • %s • %s", lead.ID, sourceOrDefault(lead.Source), lead.CreatedAt.UTC().Format(time.RFC3339)))},
	})

	return SlackWebhookPayload{Text: fallback, Blocks: blocks}
}

func buildSlackDigestPayload(d Digest) SlackWebhookPayload {
	s := d.Summary
	headline := fmt.Sprintf("Lead digest: %d new leads (%d enrollments, %d demos)", s.Total, s.Courses, s.Demos)
	return SlackWebhookPayload{
		Text: truncate(headline, maxFallbackLength, slackSuffix),
		Blocks: []SlackBlock{
			{Type: "section", Text: &SlackTextObject{Type: "mrkdwn", Text: "*" + headline + "*"}},
			{Type: "section", Text: &SlackTextObject{Type: "mrkdwn", Text: truncate(slackEscape(courseBreakdown(s.ByCourse)), maxSectionTextLength, slackSuffix)}},
			{Type: "context", Elements: []SlackTextObject{mrkdwn(fmt.Sprintf("%s – %s",
				d.Since.UTC().Format(time.RFC3339), d.Until.UTC().Format(time.RFC3339)))}},
		},
	}
}

// NotifyLead implements Notifier.
func (s *SlackNotifier) NotifyLead(ctx context.Context, lead *entity.Enrollment) error {
	if lead == nil {
		return ErrInvalidLead
	}
	return s.client.post(ctx, buildSlackLeadPayload(lead))
}

// NotifyDigest implements Notifier.
func (s *SlackNotifier) NotifyDigest(ctx context.Context, d Digest) error {
	return s.client.post(ctx, buildSlackDigestPayload(d))
}

// CircuitOpen reports whether the Slack circuit breaker is open.
func (s *SlackNotifier) CircuitOpen() bool {
	return s.client.breakerOpen()
}
