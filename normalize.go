package domdrive

import "strings"

// schemes that pass through NormalizeURL untouched.
var knownSchemes = []string{
	"http://",
	"https://",
	"file://",
	"data:",
	"about:",
	"chrome://",
	"chrome-extension://",
}

// NormalizeURL completes an incomplete URL the way a browser address
// bar would. Strings with a recognized scheme or a relative-path prefix
// pass through unchanged; localhost and loopback hosts get http://;
// anything with a dot gets https://; a single bare word is guessed as
// a commercial domain. Whitespace is trimmed before classification.
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)

	for _, scheme := range knownSchemes {
		if strings.HasPrefix(trimmed, scheme) {
			return trimmed
		}
	}

	if strings.HasPrefix(trimmed, "/") ||
		strings.HasPrefix(trimmed, "./") ||
		strings.HasPrefix(trimmed, "../") {
		return trimmed
	}

	if strings.HasPrefix(trimmed, "localhost") || strings.HasPrefix(trimmed, "127.0.0.1") {
		return "http://" + trimmed
	}

	if strings.Contains(trimmed, ".") {
		return "https://" + trimmed
	}

	return "https://www." + trimmed + ".com"
}
