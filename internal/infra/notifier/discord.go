package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
)

// DiscordConfig contains configuration for Discord webhook notifications.
type DiscordConfig struct {
	Enabled bool

	// WebhookURL is the Discord webhook URL (includes authentication token)
	WebhookURL string

	Timeout time.Duration
}

// DiscordNotifier posts lead notifications to Discord as embeds.
type DiscordNotifier struct {
	client *webhookClient
}

// NewDiscordNotifier creates a DiscordNotifier limited to 30 requests per
// minute with a burst of 3.
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{client: newWebhookClient("discord", config.WebhookURL, config.Timeout, 0.5, 3)}
}

// DiscordWebhookPayload is the JSON body sent to the webhook.
type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed is a Discord embed message.
type DiscordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"`
	Footer      DiscordEmbedFooter  `json:"footer"`
	Timestamp   string              `json:"timestamp"`
}

// DiscordEmbedField is one name/value pair of an embed.
type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// DiscordEmbedFooter represents the footer of a Discord embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

const (
	maxTitleLength       = 256
	maxDescriptionLength = 4096
	maxFieldValueLength  = 1024
	discordSuffix        = "..."

	discordGreen = 0x57F287 // course enrollment
	discordBlue  = 0x5865F2 // demo booking and digest
)

func inlineField(name, value string) DiscordEmbedField {
	return DiscordEmbedField{Name: name, Value: truncate(value, maxFieldValueLength, discordSuffix), Inline: true}
}

func buildDiscordLeadPayload(lead *entity.Enrollment) DiscordWebhookPayload {
	color := discordBlue
	if lead.Kind == entity.KindCourse {
		color = discordGreen
	}

	fields := []DiscordEmbedField{
		inlineField("Name", lead.Name),
		inlineField("Email", lead.Email),
		inlineField("Phone", lead.Phone),
	}
	if lead.Course != "" {
		fields = append(fields, inlineField("Course", lead.Course))
	}
	if lead.PreferredDate != "" {
		fields = append(fields, inlineField("Preferred date", lead.PreferredDate))
	}

	return DiscordWebhookPayload{Embeds: []DiscordEmbed{{
		Title:       truncate(leadHeadline(kindLabel(lead.Kind), lead.Name, lead.Course), maxTitleLength, discordSuffix),
		Description: truncate(lead.Message, maxDescriptionLength, discordSuffix),
		Color:       color,
		Fields:      fields,
		Footer:      DiscordEmbedFooter{Text: fmt.Sprintf("#%d • %s", lead.ID, sourceOrDefault(lead.Source))},
		Timestamp:   lead.CreatedAt.UTC().Format(time.RFC3339),
	}}}
}

func buildDiscordDigestPayload(d Digest) DiscordWebhookPayload {
	s := d.Summary
	return DiscordWebhookPayload{Embeds: []DiscordEmbed{{
		Title:       fmt.Sprintf("Lead digest: %d new leads", s.Total),
		Description: truncate(courseBreakdown(s.ByCourse), maxDescriptionLength, discordSuffix),
		Color:       discordBlue,
		Fields: []DiscordEmbedField{
			inlineField("Enrollments", fmt.Sprint(s.Courses)),
			inlineField("Demos", fmt.Sprint(s.Demos)),
		},
		Footer:    DiscordEmbedFooter{Text: "since " + d.Since.UTC().Format(time.RFC3339)},
		Timestamp: d.Until.UTC().Format(time.RFC3339),
	}}}
}

// NotifyLead implements Notifier.
func (d *DiscordNotifier) NotifyLead(ctx context.Context, lead *entity.Enrollment) error {
	if lead == nil {
		return ErrInvalidLead
	}
	return d.client.post(ctx, buildDiscordLeadPayload(lead))
}

// NotifyDigest implements Notifier.
func (d *DiscordNotifier) NotifyDigest(ctx context.Context, digest Digest) error {
	return d.client.post(ctx, buildDiscordDigestPayload(digest))
}

// CircuitOpen reports whether the Discord circuit breaker is open.
func (d *DiscordNotifier) CircuitOpen() bool {
	return d.client.breakerOpen()
}
