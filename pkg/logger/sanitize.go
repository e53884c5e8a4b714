package logger

import (
	"net/url"
	"strings"
)

const redacted = "[REDACTED]"

// sensitiveParams are query keys whose values never reach the logs.
var sensitiveParams = map[string]bool{
	"password":       true,
	"token":          true,
	"refresh_token":  true,
	"secret":         true,
	"email":          true,
	"documentnumber": true,
	"phone":          true,
}

// MaskEmail masks an address for logging, e.g. "p***@e******.com".
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 1 {
		return "[invalid-email]"
	}

	user, domain := email[:at], email[at+1:]
	user = user[:1] + strings.Repeat("*", len(user)-1)

	if dot := strings.LastIndex(domain, "."); dot > 0 {
		domain = domain[:1] + strings.Repeat("*", dot-1) + domain[dot:]
	}

	return user + "@" + domain
}

// SanitizeQueryString returns rawQuery with the values of sensitive
// parameters replaced. Unparseable queries are redacted whole.
func SanitizeQueryString(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return redacted
	}

	for key := range values {
		if sensitiveParams[strings.ToLower(key)] {
			values[key] = []string{redacted}
		}
	}

	return values.Encode()
}
