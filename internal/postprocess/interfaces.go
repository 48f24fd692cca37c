package postprocess

import (
	"context"

	"github.com/ytget/quickytdl/internal/platform"
)

// Processor defines the interface for the post-processing service.
type Processor interface {
	platform.PostProcessor
	Available() error
	ProbeDuration(ctx context.Context, filePath string) (float64, error)
}

var _ Processor = (*Service)(nil)
