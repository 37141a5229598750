package services

import (
	"strings"

	"github.com/vendora-labs/catalog-core/internal/core/domain"
)

// errorPattern is one substring probe against an error message. Fold
// selects case-insensitive matching.
type errorPattern struct {
	text string
	fold bool
}

// classificationTable maps error kinds to their message patterns. The
// declared order is the tie-break when a message matches more than one
// kind ("403" is navigation before authentication), so entries must not
// be reordered.
var classificationTable = []struct {
	kind     domain.ErrorKind
	patterns []errorPattern
}{
	{domain.ErrorKindNetwork, []errorPattern{
		{text: "ECONNREFUSED"},
		{text: "ECONNRESET"},
		{text: "ENOTFOUND"},
		{text: "EAI_AGAIN"},
		{text: "connection refused", fold: true},
		{text: "connection reset", fold: true},
		{text: "no such host", fold: true},
		{text: "socket hang up", fold: true},
		{text: "network", fold: true},
	}},
	{domain.ErrorKindTimeout, []errorPattern{
		{text: "ETIMEDOUT"},
		{text: "deadline exceeded", fold: true},
		{text: "timed out", fold: true},
		{text: "timeout", fold: true},
	}},
	{domain.ErrorKindSelector, []errorPattern{
		{text: "waiting for selector", fold: true},
		{text: "no node found", fold: true},
		{text: "selector", fold: true},
	}},
	{domain.ErrorKindNavigation, []errorPattern{
		{text: "net::ERR"},
		{text: "ERR_ABORTED"},
		{text: "403"},
		{text: "navigation", fold: true},
		{text: "redirect", fold: true},
	}},
	{domain.ErrorKindMemory, []errorPattern{
		{text: "ENOMEM"},
		{text: "out of memory", fold: true},
		{text: "heap limit", fold: true},
	}},
	{domain.ErrorKindRateLimit, []errorPattern{
		{text: "429"},
		{text: "rate limit", fold: true},
		{text: "too many requests", fold: true},
	}},
	{domain.ErrorKindCaptcha, []errorPattern{
		{text: "captcha", fold: true},
		{text: "challenge-platform", fold: true},
		{text: "are you a robot", fold: true},
	}},
	{domain.ErrorKindAuthentication, []errorPattern{
		{text: "401"},
		{text: "unauthorized", fold: true},
		{text: "forbidden", fold: true},
		{text: "authentication", fold: true},
		{text: "invalid token", fold: true},
		{text: "api key", fold: true},
	}},
}

// Classify maps an error onto a domain.ErrorKind by ordered pattern
// matching over its message. Unmatched errors classify as
// domain.ErrorKindDefault. Pure function, no side effects.
func Classify(err error) domain.ErrorKind {
	if err == nil {
		return domain.ErrorKindDefault
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	for _, entry := range classificationTable {
		for _, p := range entry.patterns {
			if p.fold {
				if strings.Contains(lower, strings.ToLower(p.text)) {
					return entry.kind
				}
			} else if strings.Contains(msg, p.text) {
				return entry.kind
			}
		}
	}
	return domain.ErrorKindDefault
}
