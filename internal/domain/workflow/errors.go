package workflow

import (
	"errors"
	"strings"
)

// ErrRateLimited classifies a collaborator failure as a back-off-and-retry
// condition. Adapters wrap their structured rate-limit errors with it so the
// retry executor can match via errors.Is instead of message text.
var ErrRateLimited = errors.New("rate limit exhausted")

var rateLimitMarkers = []string{
	"rate limit",
	"secondary rate",
	"abuse detection",
	"quota exhausted",
}

// IsRateLimit reports whether err should be retried with backoff. Structured
// classification first; the message-substring fallback covers collaborators
// that only surface plain text.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
