// Package normalize derives replacement token names from snapshot keys.
package normalize

import (
	"strings"
	"unicode"
)

// CamelToHyphen normalizes a camel-case key to a lowercase hyphen-separated
// name, used as the default replacement name for key-based transformers.
// Examples:
//   - "RequestId" → "request-id"
//   - "HTTPStatusCode" → "h-t-t-p-status-code"
//   - "name" → "name"
func CamelToHyphen(key string) string {
	var b strings.Builder
	for _, r := range key {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), "-")
}
