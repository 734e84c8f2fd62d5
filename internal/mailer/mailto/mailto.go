// Package mailto builds compose links for the admin's own mail client.
package mailto

import (
	"net/url"
	"strings"
)

const Name = "mailto"

// Link puts every recipient in BCC so participants do not see each other.
func Link(recipients []string, subject, body string) string {
	params := []string{"bcc=" + escape(strings.Join(recipients, ","))}
	if subject != "" {
		params = append(params, "subject="+escape(subject))
	}
	if body != "" {
		params = append(params, "body="+escape(body))
	}
	return "mailto:?" + strings.Join(params, "&")
}

// escape uses %20 for spaces; mail clients show a literal "+" otherwise.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
