package thumbnail

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// BestEffort runs a Generator under a timeout and turns every failure into
// "no thumbnail". It never returns an error.
type BestEffort struct {
	gen     Generator
	timeout time.Duration
	logger  *zap.Logger
}

// NewBestEffort wraps gen. A nil gen makes Generate always return nil.
func NewBestEffort(gen Generator, timeout time.Duration, logger *zap.Logger) *BestEffort {
	return &BestEffort{gen: gen, timeout: timeout, logger: logger}
}

// Generate returns the thumbnail path, or nil when generation failed.
func (b *BestEffort) Generate(ctx context.Context, sourceURL, fileName string) *string {
	if b == nil || b.gen == nil {
		return nil
	}
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	path, err := b.safeGenerate(ctx, sourceURL, fileName)
	if err != nil {
		b.logger.Warn("thumbnail generation failed",
			zap.String("source_url", sourceURL),
			zap.String("file_name", fileName),
			zap.Error(err))
		return nil
	}
	return &path
}

func (b *BestEffort) safeGenerate(ctx context.Context, sourceURL, fileName string) (path string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{value: r}
		}
	}()
	return b.gen.Generate(ctx, sourceURL, fileName)
}

type panicError struct {
	value any
}

func (p panicError) Error() string {
	return fmt.Sprintf("thumbnail generator panicked: %v", p.value)
}
