package download

import (
	"fmt"

	"github.com/ytget/quickytdl/internal/model"
	"github.com/ytget/quickytdl/internal/platform"
)

// Format spec templates
const (
	VideoSpecTemplate       = "bestvideo[height=%d]+bestaudio/bestvideo[height<=%d]+bestaudio/best"
	AudioSpec               = "bestaudio/best"
	AudioSampleRateTemplate = "bestaudio[asr=%d]/bestaudio/best"
	FallbackSpec            = "best"
)

// FormatSpec resolves a format label into an engine selector. Video labels
// prefer the exact height, then the nearest lower one, then the best stream.
func FormatSpec(label string, sampleRate int) string {
	if label == model.FormatAudioOnly {
		if sampleRate > 0 {
			return fmt.Sprintf(AudioSampleRateTemplate, sampleRate)
		}
		return AudioSpec
	}

	height := platform.ParseHeight(label)
	if height <= 0 {
		return FallbackSpec
	}
	return fmt.Sprintf(VideoSpecTemplate, height, height)
}
