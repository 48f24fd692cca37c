package platform

import (
	"fmt"
	"net/url"
	"strings"
)

// URL parameters
const (
	PlaylistURLParam       = "list="
	PlaylistParamSeparator = "&"
	PlaylistQueryKey       = "list"
	VideoQueryKey          = "v"
)

// URL templates
const (
	YouTubeVideoURLTemplate    = "https://www.youtube.com/watch?v=%s"
	YouTubePlaylistURLTemplate = "https://www.youtube.com/playlist?list=%s"
)

// Hosts
const (
	ShortHost = "youtu.be"
)

// ExtractPlaylistID returns the collection id embedded in a locator, or ""
//
// Supported formats:
//   - https://www.youtube.com/watch?v=VIDEO_ID&list=PLAYLIST_ID&start_radio=1
//   - https://www.youtube.com/playlist?list=PLAYLIST_ID
func ExtractPlaylistID(locator string) string {
	if u, err := url.Parse(locator); err == nil {
		if id := u.Query().Get(PlaylistQueryKey); id != "" {
			return id
		}
	}

	// Fall back to a plain scan for inputs url.Parse rejects
	idx := strings.Index(locator, PlaylistURLParam)
	if idx < 0 {
		return ""
	}
	id := locator[idx+len(PlaylistURLParam):]
	if i := strings.Index(id, PlaylistParamSeparator); i >= 0 {
		id = id[:i]
	}
	return id
}

// ExtractVideoID returns the video id of a watch or short URL, or ""
func ExtractVideoID(locator string) string {
	u, err := url.Parse(locator)
	if err != nil {
		return ""
	}
	if strings.EqualFold(u.Host, ShortHost) {
		return strings.Trim(u.Path, "/")
	}
	if strings.HasPrefix(u.Path, "/watch") {
		return u.Query().Get(VideoQueryKey)
	}
	if strings.HasPrefix(u.Path, "/shorts/") {
		return strings.Trim(strings.TrimPrefix(u.Path, "/shorts/"), "/")
	}
	return ""
}

// CanonicalPlaylistURL returns the collection URL for a playlist id
func CanonicalPlaylistURL(playlistID string) string {
	return fmt.Sprintf(YouTubePlaylistURLTemplate, playlistID)
}

// VideoURL returns the watch URL for a video id
func VideoURL(videoID string) string {
	return fmt.Sprintf(YouTubeVideoURLTemplate, videoID)
}
