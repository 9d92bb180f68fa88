package utils

import (
	"regexp"
	"strings"
	"time"
)

var unsafeFilenameRegex = regexp.MustCompile(`[/\\:*?"<>|\x00-\x1f]+`)

func GetRandomUserAgent() string {
	return userAgents[time.Now().UnixNano()%int64(len(userAgents))]
}

func ParseHeaderArgs(headers []string) map[string]string {
	result := make(map[string]string)
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			result[key] = value
		}
	}
	return result
}

// SanitizeFilename replaces characters that cannot appear in a file name on common platforms.
func SanitizeFilename(name string) string {
	name = unsafeFilenameRegex.ReplaceAllString(name, "_")
	return strings.TrimSpace(name)
}
