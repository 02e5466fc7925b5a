package renderer

import (
	"context"
	"image"

	"github.com/df07/go-pathtracer/pkg/scene"
)

// ProgressiveOptions controls a RenderProgressive run
type ProgressiveOptions struct {
	Frames int // Frames to accumulate; must be positive
}

// FrameResult is one progressive update
type FrameResult struct {
	Frame  int         // Frames accumulated so far
	Image  *image.RGBA // Snapshot of the running average, top row first
	Stats  FrameStats
	IsLast bool
}

// RenderProgressive drives Render for opts.Frames frames from a fresh
// accumulation and streams a snapshot after each one.
// Both channels are closed when the run ends. The caller should drain the
// frame channel; an error, including cancellation, is sent on the error
// channel before it closes.
func RenderProgressive(ctx context.Context, r *Renderer, sc *scene.Scene, cam Camera, opts ProgressiveOptions) (<-chan FrameResult, <-chan error) {
	frameChan := make(chan FrameResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(frameChan)
		defer close(errChan)

		frames := max(opts.Frames, 1)
		r.ResetFrameIndex()
		r.logger.Infof("starting progressive render of %d frames", frames)

		for i := 1; i <= frames; i++ {
			// Check if the client disconnected before starting this frame
			select {
			case <-ctx.Done():
				r.logger.Infof("rendering cancelled before frame %d", i)
				errChan <- ctx.Err()
				return
			default:
			}

			stats, err := r.Render(ctx, sc, cam)
			if err != nil {
				errChan <- err
				return
			}

			result := FrameResult{
				Frame:  i,
				Image:  r.image.RGBA(),
				Stats:  stats,
				IsLast: i == frames,
			}

			select {
			case frameChan <- result:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}

		r.logger.Infof("progressive render finished after %d frames", frames)
	}()

	return frameChan, errChan
}
