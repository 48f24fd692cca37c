package platform

import "testing"

func TestExtractPlaylistID(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.youtube.com/playlist?list=PL123", "PL123"},
		{"https://www.youtube.com/watch?v=abc&list=PL456&start_radio=1", "PL456"},
		{"https://www.youtube.com/watch?v=abc", ""},
		{"https://www.youtube.com/watch?v=abc&list=", ""},
		{"not a url list=PL789&x=1", "PL789"},
	}

	for _, test := range tests {
		result := ExtractPlaylistID(test.url)
		if result != test.expected {
			t.Errorf("ExtractPlaylistID(%q) = %q, expected %q", test.url, result, test.expected)
		}
	}
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.youtube.com/watch?v=abc123", "abc123"},
		{"https://youtu.be/xyz789", "xyz789"},
		{"https://www.youtube.com/shorts/short1", "short1"},
		{"https://www.youtube.com/playlist?list=PL1", ""},
		{"://bad", ""},
	}

	for _, test := range tests {
		result := ExtractVideoID(test.url)
		if result != test.expected {
			t.Errorf("ExtractVideoID(%q) = %q, expected %q", test.url, result, test.expected)
		}
	}
}

func TestCanonicalURLs(t *testing.T) {
	if got := CanonicalPlaylistURL("PL1"); got != "https://www.youtube.com/playlist?list=PL1" {
		t.Errorf("Unexpected playlist URL: %s", got)
	}
	if got := VideoURL("abc"); got != "https://www.youtube.com/watch?v=abc" {
		t.Errorf("Unexpected video URL: %s", got)
	}
}
