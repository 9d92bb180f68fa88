package gdrive

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tanq16/driveloader/internal/utils"
)

var driveFileRegex = regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`)

const videoInfoEndpoint = "https://drive.google.com/u/0/get_video_info"

// ExtractVideoID accepts a bare Drive ID or a Drive URL in /file/d/<id> or ?id=<id> form.
func ExtractVideoID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("empty video ID")
	}
	if !strings.ContainsAny(input, "/.") {
		return input, nil
	}
	if matches := driveFileRegex.FindStringSubmatch(input); len(matches) > 1 {
		return matches[1], nil
	}
	parsed, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid Drive URL %q: %w", input, err)
	}
	if id := parsed.Query().Get("id"); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("unable to extract video ID from %q", input)
}

func VideoInfoURL(videoID string) string {
	return videoInfoURL(videoInfoEndpoint, videoID)
}

func videoInfoURL(endpoint, videoID string) string {
	return fmt.Sprintf("%s?docid=%s&drive_originator_app=303", endpoint, url.QueryEscape(videoID))
}

// VideoInfo is what the get_video_info response yields. Either field may be empty.
type VideoInfo struct {
	Title    string
	VideoURL string
}

// ParseVideoInfo scans the &-separated response body. The first title field and the first
// field mentioning videoplayback win; the stream URL is the last |-separated segment.
func ParseVideoInfo(body string) VideoInfo {
	var info VideoInfo
	for _, field := range strings.Split(body, "&") {
		if info.Title == "" && strings.HasPrefix(field, "title=") {
			parts := strings.Split(field, "=")
			info.Title = unquote(parts[len(parts)-1])
		} else if info.VideoURL == "" && strings.Contains(field, "videoplayback") {
			segments := strings.Split(unquote(field), "|")
			info.VideoURL = segments[len(segments)-1]
		}
		if info.Title != "" && info.VideoURL != "" {
			break
		}
	}
	return info
}

func unquote(s string) string {
	if decoded, err := url.PathUnescape(s); err == nil {
		return decoded
	}
	return s
}

// ResolveFilename picks the destination name: explicit output, then the video title, then
// video_<id>.mp4. Names without an extension get .mp4.
func ResolveFilename(output, title, videoID string) string {
	if name := strings.TrimSpace(output); name != "" {
		return withExtension(name)
	}
	if name := strings.TrimSpace(title); name != "" {
		if sanitized := utils.SanitizeFilename(name); sanitized != "" {
			return withExtension(sanitized)
		}
	}
	return fmt.Sprintf("video_%s.mp4", videoID)
}

func withExtension(name string) string {
	if filepath.Ext(name) == "" {
		return name + ".mp4"
	}
	return name
}
