package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yashchoube/rajeshwari-tech-sub000/internal/domain/entity"
)

type contextKey string

const requestIDKey contextKey = "request_id"

const defaultRetryAfter = 5 * time.Second

// retryAfterBody is the 429 body shape shared by Slack and Discord.
type retryAfterBody struct {
	RetryAfter float64 `json:"retry_after"` // seconds
}

// extractRetryAfter reads retry_after from a JSON body, then the Retry-After
// header, and falls back to five seconds.
func extractRetryAfter(resp *http.Response, body []byte) time.Duration {
	var b retryAfterBody
	if err := json.Unmarshal(body, &b); err == nil && b.RetryAfter > 0 {
		return time.Duration(b.RetryAfter * float64(time.Second))
	}
	if v := resp.Header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultRetryAfter
}

// truncate shortens text to at most maxRunes runes including suffix.
func truncate(text string, maxRunes int, suffix string) string {
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	keep := maxRunes - utf8.RuneCountInString(suffix)
	if keep < 0 {
		keep = 0
	}
	runes := []rune(text)
	return string(runes[:keep]) + suffix
}

// leadHeadline is the one-line description of a lead used as fallback text.
func leadHeadline(kindLabel, name, course string) string {
	if course == "" {
		return fmt.Sprintf("New %s from %s", kindLabel, name)
	}
	return fmt.Sprintf("New %s from %s for %s", kindLabel, name, course)
}

// courseBreakdown renders "course: n" lines, largest first.
func courseBreakdown(byCourse map[string]int) string {
	if len(byCourse) == 0 {
		return "no course leads"
	}
	courses := make([]string, 0, len(byCourse))
	for c := range byCourse {
		courses = append(courses, c)
	}
	sort.Slice(courses, func(i, j int) bool {
		if byCourse[courses[i]] != byCourse[courses[j]] {
			return byCourse[courses[i]] > byCourse[courses[j]]
		}
		return courses[i] < courses[j]
	})
	var b strings.Builder
	for i, c := range courses {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %d", c, byCourse[c])
	}
	return b.String()
}

func kindLabel(k entity.EnrollmentKind) string {
	if k == entity.KindDemo {
		return "demo booking"
	}
	return "enrollment"
}

func sourceOrDefault(source string) string {
	if source == "" {
		return "website"
	}
	return source
}

// WithRequestID attaches the request id that webhook logs are tagged with.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}
