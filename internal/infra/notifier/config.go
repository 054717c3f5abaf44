package notifier

import (
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/yashchoube/rajeshwari-tech-sub000/pkg/config"
)

const defaultWebhookTimeout = 30 * time.Second

// LoadSlackConfig reads SLACK_ENABLED and SLACK_WEBHOOK_URL. A webhook URL
// that is not an https://hooks.slack.com/services/ URL disables the channel.
func LoadSlackConfig(logger *slog.Logger) SlackConfig {
	if !config.GetEnvBool("SLACK_ENABLED", false) {
		return SlackConfig{}
	}
	webhookURL := config.GetEnvString("SLACK_WEBHOOK_URL", "")
	if !validWebhookURL(logger, "slack", webhookURL, "hooks.slack.com", "/services/") {
		return SlackConfig{}
	}
	return SlackConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    config.GetEnvDuration("SLACK_TIMEOUT", defaultWebhookTimeout),
	}
}

// LoadDiscordConfig reads DISCORD_ENABLED and DISCORD_WEBHOOK_URL. A webhook
// URL that is not an https://discord.com/api/webhooks/ URL disables the channel.
func LoadDiscordConfig(logger *slog.Logger) DiscordConfig {
	if !config.GetEnvBool("DISCORD_ENABLED", false) {
		return DiscordConfig{}
	}
	webhookURL := config.GetEnvString("DISCORD_WEBHOOK_URL", "")
	if !validWebhookURL(logger, "discord", webhookURL, "discord.com", "/api/webhooks/") {
		return DiscordConfig{}
	}
	return DiscordConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    config.GetEnvDuration("DISCORD_TIMEOUT", defaultWebhookTimeout),
	}
}

func validWebhookURL(logger *slog.Logger, channel, raw, host, pathPrefix string) bool {
	if logger == nil {
		logger = slog.Default()
	}
	warn := func(msg string, attrs ...any) bool {
		logger.Warn(msg, append([]any{slog.String("channel", channel)}, attrs...)...)
		return false
	}

	if raw == "" {
		return warn("webhook URL is empty, disabling notifications")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return warn("invalid webhook URL format, disabling notifications", slog.Any("error", err))
	}
	if u.Scheme != "https" {
		return warn("webhook URL must use HTTPS, disabling notifications")
	}
	if u.Host != host {
		return warn("invalid webhook host, disabling notifications", slog.String("host", u.Host))
	}
	if !strings.HasPrefix(u.Path, pathPrefix) {
		return warn("invalid webhook path, disabling notifications", slog.String("path", u.Path))
	}
	return true
}
