package model

import (
	"testing"
	"time"
)

func TestDownloadTask_GetETAString(t *testing.T) {
	tests := []struct {
		etaSec   int
		expected string
	}{
		{-1, "—"},
		{0, "—"},
		{30, "00:30"},
		{90, "01:30"},
		{3600, "01:00:00"},
		{3661, "01:01:01"},
		{7323, "02:02:03"},
	}

	for _, test := range tests {
		task := &DownloadTask{ETASec: test.etaSec}
		result := task.GetETAString()
		if result != test.expected {
			t.Errorf("GetETAString() with ETASec=%d = %s, expected %s", test.etaSec, result, test.expected)
		}
	}
}

func TestDownloadTask_GetSpeedString(t *testing.T) {
	tests := []struct {
		bps      float64
		expected string
	}{
		{0, "—"},
		{-5, "—"},
		{1500, "1.5 kB/s"},
		{2_000_000, "2.0 MB/s"},
	}

	for _, test := range tests {
		task := &DownloadTask{SpeedBps: test.bps}
		result := task.GetSpeedString()
		if result != test.expected {
			t.Errorf("GetSpeedString() with SpeedBps=%v = %s, expected %s", test.bps, result, test.expected)
		}
	}
}

func TestDownloadTask_GetDisplayTitle(t *testing.T) {
	tests := []struct {
		title    string
		output   string
		url      string
		expected string
	}{
		{"Video Title", "", "https://youtube.com/watch?v=123", "Video Title"},
		{"", "", "https://youtube.com/watch?v=123", "https://youtube.com/watch?v=123"},
		{"", "/tmp/out/001 - Song.m4a", "https://youtube.com/watch?v=456", "001 - Song"},
		{"https://youtube.com/watch?v=789", `C:\dl\002 - Clip.mp4`, "https://youtube.com/watch?v=789", "002 - Clip"},
	}

	for _, test := range tests {
		task := &DownloadTask{
			Title:      test.title,
			OutputPath: test.output,
			URL:        test.url,
		}
		result := task.GetDisplayTitle()
		if result != test.expected {
			t.Errorf("GetDisplayTitle() with title='%s', output='%s' = '%s', expected '%s'",
				test.title, test.output, result, test.expected)
		}
	}
}

func TestDownloadTask_Elapsed(t *testing.T) {
	task := &DownloadTask{}
	if task.Elapsed() != 0 {
		t.Errorf("Expected zero elapsed for unstarted task, got %v", task.Elapsed())
	}

	start := time.Now().Add(-3 * time.Second)
	task.StartedAt = start
	task.FinishedAt = start.Add(2 * time.Second)
	if task.Elapsed() != 2*time.Second {
		t.Errorf("Expected 2s elapsed, got %v", task.Elapsed())
	}
}
