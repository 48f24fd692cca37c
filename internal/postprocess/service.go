package postprocess

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// FFmpeg constants for resampling
const (
	// Audio codec settings
	AudioCodec   = "aac"
	AudioBitrate = "192k"

	// Container flags
	FastStartFlag = "+faststart"

	// Temporary output marker, swapped over the input on success
	ResampledSuffix = ".resample"

	// Executable and I/O constants
	FFmpegCommand       = "ffmpeg"
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"
	ProgressPipeTarget  = "pipe:2"
	ProgressTimePrefix  = "out_time_us="
	ProgressEndLine     = "progress=end"
)

// Sample rate bounds
const (
	MinSampleRate = 8000
	MaxSampleRate = 96000
)

// Service resamples audio files with ffmpeg
type Service struct {
	ffmpegPath  string
	ffprobePath string
	log         logrus.FieldLogger
}

// NewService creates a new post-processing service using ffmpeg from PATH
func NewService(log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		ffmpegPath:  FFmpegCommand,
		ffprobePath: FFprobeCommand,
		log:         log,
	}
}

// SetBinaries overrides the ffmpeg and ffprobe executables
func (s *Service) SetBinaries(ffmpegPath, ffprobePath string) {
	if ffmpegPath != "" {
		s.ffmpegPath = ffmpegPath
	}
	if ffprobePath != "" {
		s.ffprobePath = ffprobePath
	}
}

// Available reports whether ffmpeg and ffprobe can be found
func (s *Service) Available() error {
	for _, bin := range []string{s.ffmpegPath, s.ffprobePath} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("%s not found: %w", bin, err)
		}
	}
	return nil
}

// Resample re-encodes inputPath at sampleRate Hz and replaces the file in place.
// onProgress receives 0..100 and may be nil.
func (s *Service) Resample(ctx context.Context, inputPath string, sampleRate int, onProgress func(percent float64)) (string, error) {
	if sampleRate < MinSampleRate || sampleRate > MaxSampleRate {
		return "", fmt.Errorf("unsupported sample rate: %d", sampleRate)
	}
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return "", fmt.Errorf("input file does not exist: %s", inputPath)
	}

	// Duration only drives progress
	duration, err := s.ProbeDuration(ctx, inputPath)
	if err != nil {
		s.log.WithError(err).WithField("file", inputPath).Warn("failed to probe duration")
	}

	tmpPath := generateTempPath(inputPath)
	cmd := exec.CommandContext(ctx, s.ffmpegPath, BuildFFmpegArgs(inputPath, tmpPath, sampleRate)...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	s.log.WithFields(logrus.Fields{"file": inputPath, "sample_rate": sampleRate}).Info("resampling audio")
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	// Drain the pipe fully before Wait closes it
	monitorProgress(stderr, duration, onProgress)
	err = cmd.Wait()

	if ctx.Err() != nil {
		os.Remove(tmpPath)
		return "", ctx.Err()
	}
	if err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("ffmpeg failed: %w", err)
	}

	if err := os.Rename(tmpPath, inputPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to replace %s: %w", inputPath, err)
	}
	if onProgress != nil {
		onProgress(100)
	}
	return inputPath, nil
}

// BuildFFmpegArgs builds the ffmpeg command arguments
func BuildFFmpegArgs(inputPath, outputPath string, sampleRate int) []string {
	return []string{
		"-y",            // Overwrite output file
		"-i", inputPath, // Input file
		"-vn",              // Drop any video stream
		"-c:a", AudioCodec, // Audio codec
		"-b:a", AudioBitrate, // Audio bitrate
		"-ar", strconv.Itoa(sampleRate), // Target sample rate
		"-movflags", FastStartFlag, // MP4 optimization
		"-progress", ProgressPipeTarget, // Progress to stderr
		"-nostats", // No stats output
		outputPath, // Output file
	}
}

// ProbeDuration gets the duration of a media file in seconds using ffprobe
func (s *Service) ProbeDuration(ctx context.Context, filePath string) (float64, error) {
	cmd := exec.CommandContext(ctx, s.ffprobePath, "-v", FFprobeLogLevel, "-show_entries", FFprobeShowEntries, "-of", FFprobeOutputFormat, filePath)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to run ffprobe: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	return duration, nil
}

// monitorProgress reads ffmpeg -progress output until the stream closes
func monitorProgress(stderr io.Reader, totalDuration float64, onProgress func(float64)) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		percent, ok := parseProgressLine(scanner.Text(), totalDuration)
		if ok && onProgress != nil {
			onProgress(percent)
		}
	}
}

// parseProgressLine converts an out_time_us line to a percentage of totalDuration
func parseProgressLine(line string, totalDuration float64) (float64, bool) {
	line = strings.TrimSpace(line)
	if line == ProgressEndLine {
		return 100, true
	}
	if !strings.HasPrefix(line, ProgressTimePrefix) || totalDuration <= 0 {
		return 0, false
	}

	micros, err := strconv.ParseInt(strings.TrimPrefix(line, ProgressTimePrefix), 10, 64)
	if err != nil || micros < 0 {
		return 0, false
	}

	percent := float64(micros) / 1e6 / totalDuration * 100
	if percent > 100 {
		percent = 100
	}
	return percent, true
}

// generateTempPath returns the sibling path ffmpeg writes to before the swap
func generateTempPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + ResampledSuffix + ext
}
