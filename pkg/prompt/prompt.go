// Package prompt builds the text sent to a model backend from the user's
// query, an optional image attachment and the session's context window.
package prompt

import (
	"fmt"
	"os"
	"strings"

	"github.com/papercomputeco/dispatch/pkg/router"
	"github.com/papercomputeco/dispatch/pkg/session"
)

// ExtractAttachmentPath returns the first whitespace-separated token that
// names an existing regular file with an image extension. Tokens that look
// like image names but do not exist on disk are skipped.
func ExtractAttachmentPath(query string) (string, bool) {
	for _, token := range strings.Fields(query) {
		if !hasImageExtension(token) {
			continue
		}
		info, err := os.Stat(token)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		return token, true
	}
	return "", false
}

func hasImageExtension(token string) bool {
	lower := strings.ToLower(token)
	for _, ext := range router.ImageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// WrapAttachment renders the attachment marker followed by the prompt text.
func WrapAttachment(path, text string) string {
	return fmt.Sprintf("<image>%s</image>\n%s", path, text)
}

// Assemble builds the backend input.
//
// In attachment mode the resolved image path is stripped from the query and
// wrapped in an attachment marker; if no path resolves the query is returned
// unchanged. Otherwise the query is prefixed with the rendered window.
func Assemble(query string, attachment bool, window []session.Turn) string {
	if attachment {
		path, ok := ExtractAttachmentPath(query)
		if !ok {
			return query
		}
		residual := strings.TrimSpace(strings.ReplaceAll(query, path, ""))
		return WrapAttachment(path, residual)
	}

	return FormatContext(window) + "User: " + query
}

// FormatContext renders turns oldest first as User/Assistant line pairs.
func FormatContext(window []session.Turn) string {
	var b strings.Builder
	for _, t := range window {
		b.WriteString("User: ")
		b.WriteString(t.Query)
		b.WriteString("\nAssistant: ")
		b.WriteString(t.Response)
		b.WriteString("\n")
	}
	return b.String()
}
