// Package sanitize cleans user-supplied text and outgoing error messages.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = bluemonday.StrictPolicy()

	// Tag characters stay escaped; quotes and ampersands are restored.
	unescape = strings.NewReplacer("&amp;", "&", "&#39;", "'", "&#34;", `"`)

	messagePrefixes = []string{"multipart: ", "http: ", "Multer error: "}
	braces          = strings.NewReplacer("{", "", "}", "")
)

// Text strips markup from a single line of user input.
func Text(s string) string {
	if s == "" {
		return s
	}
	return unescape.Replace(strict.Sanitize(s))
}

// Message prepares an error message for a response body.
func Message(msg string) string {
	msg = braces.Replace(msg)
	for _, p := range messagePrefixes {
		msg = strings.TrimPrefix(msg, p)
	}
	return strings.TrimSpace(msg)
}
