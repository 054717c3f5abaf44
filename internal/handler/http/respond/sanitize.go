package respond

import (
	"regexp"
)

var (
	dsnPasswordPattern = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)
	bearerPattern      = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-_.=]+`)
	jwtPattern         = regexp.MustCompile(`eyJ[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+`)
	slackHookPattern   = regexp.MustCompile(`hooks\.slack\.com/services/[A-Za-z0-9/]+`)
	discordHookPattern = regexp.MustCompile(`discord(?:app)?\.com/api/webhooks/[0-9]+/[A-Za-z0-9\-_]+`)
	bcryptPattern      = regexp.MustCompile(`\$2[aby]\$\d{2}\$[./A-Za-z0-9]{53}`)
)

// SanitizeError returns err's message with credentials masked: DSN and Redis
// URL passwords, bearer tokens and JWTs, Slack/Discord webhook secrets and
// bcrypt hashes.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = dsnPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	msg = bearerPattern.ReplaceAllString(msg, "Bearer ****")
	msg = jwtPattern.ReplaceAllString(msg, "eyJ****")
	msg = slackHookPattern.ReplaceAllString(msg, "hooks.slack.com/services/****")
	msg = discordHookPattern.ReplaceAllString(msg, "discord.com/api/webhooks/****")
	msg = bcryptPattern.ReplaceAllString(msg, "$$2*$$****")
	return msg
}
