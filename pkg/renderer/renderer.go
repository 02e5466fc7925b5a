package renderer

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/log"
	"github.com/df07/go-pathtracer/pkg/scene"
)

const (
	// Offset along the normal for the next ray origin to avoid self-intersection
	surfaceBias = 1e-4

	// Paths whose throughput drops below this after the third hit are cut
	minThroughput = 0.01
	minBounces    = 2
)

// Renderer owns the accumulation buffer and frame index and writes one
// progressive frame per Render call into the bound Image.
// A Renderer is not safe for concurrent use; callers that edit the scene or
// camera from another goroutine must serialize those edits with Render.
type Renderer struct {
	settings     Settings
	image        *Image
	accumulation []core.Vec3
	frameIndex   int

	tiles  []*Tile
	pool   *WorkerPool
	logger log.Logger
}

// frame is the read-only state shared by all tiles of one Render call
type frame struct {
	ctx          context.Context
	scene        *scene.Scene
	camera       Camera
	settings     Settings
	index        int
	accumulation []core.Vec3
	image        *Image
}

// New creates a renderer. A nil logger uses one named "renderer".
func New(settings Settings, logger log.Logger) *Renderer {
	if logger == nil {
		logger = log.New("renderer")
	}
	return &Renderer{
		settings:   settings.normalized(),
		frameIndex: 1,
		logger:     logger,
	}
}

// SetImage binds the output buffer and reallocates the accumulation buffer
// to match. The frame index restarts at 1.
func (r *Renderer) SetImage(img *Image) {
	r.image = img
	if img == nil {
		r.accumulation = nil
		r.stopPool()
		return
	}

	r.accumulation = make([]core.Vec3, img.Width*img.Height)
	r.frameIndex = 1
	r.rebuildTiles()

	r.logger.Infof("bound %dx%d image (%d tiles, %d workers)", img.Width, img.Height, len(r.tiles), r.settings.NumWorkers)
}

// Image returns the bound output buffer
func (r *Renderer) Image() *Image {
	return r.image
}

// Settings returns the active settings
func (r *Renderer) Settings() Settings {
	return r.settings
}

// SetSettings replaces the render settings. It does not reset accumulation;
// the caller decides whether the change warrants a ResetFrameIndex.
func (r *Renderer) SetSettings(settings Settings) {
	settings = settings.normalized()
	rebuild := settings.NumWorkers != r.settings.NumWorkers ||
		settings.TileSize != r.settings.TileSize ||
		settings.Seed != r.settings.Seed
	r.settings = settings

	if rebuild && r.image != nil {
		r.rebuildTiles()
	}
}

// ResetFrameIndex makes the next Render clear the accumulation buffer
func (r *Renderer) ResetFrameIndex() {
	r.frameIndex = 1
}

// FrameIndex returns the index the next Render will accumulate into
func (r *Renderer) FrameIndex() int {
	return r.frameIndex
}

// Close stops the worker goroutines. Render fails with ErrClosed until a
// new image is bound.
func (r *Renderer) Close() {
	r.stopPool()
}

// Render traces one frame of sc through cam, adds it to the accumulation
// buffer and writes the running average into the bound image. Cancelling
// ctx aborts the frame between rows; the partially updated accumulation is
// discarded by resetting the frame index.
func (r *Renderer) Render(ctx context.Context, sc *scene.Scene, cam Camera) (FrameStats, error) {
	if r.image == nil {
		return FrameStats{}, ErrImageNotBound
	}
	if r.pool == nil {
		return FrameStats{}, ErrClosed
	}
	if sc == nil {
		return FrameStats{}, ErrSceneNotDefined
	}
	if cam == nil {
		return FrameStats{}, ErrCameraNotDefined
	}
	if w, h := cam.Size(); w != r.image.Width || h != r.image.Height {
		return FrameStats{}, fmt.Errorf("%w: camera %dx%d, image %dx%d", ErrSizeMismatch, w, h, r.image.Width, r.image.Height)
	}

	start := time.Now()

	if r.frameIndex == 1 {
		clear(r.accumulation)
	}

	f := &frame{
		ctx:          ctx,
		scene:        sc,
		camera:       cam,
		settings:     r.settings,
		index:        r.frameIndex,
		accumulation: r.accumulation,
		image:        r.image,
	}

	r.pool.Start()
	for i, tile := range r.tiles {
		r.pool.SubmitTask(TileTask{TaskID: i, Tile: tile, Frame: f})
	}

	// Barrier: every tile must finish before the frame index moves
	samples := 0
	var renderErr error
	for range r.tiles {
		result, ok := r.pool.GetResult()
		if !ok {
			r.frameIndex = 1
			return FrameStats{}, fmt.Errorf("%w: worker pool closed unexpectedly", ErrInterrupted)
		}
		if result.Error != nil && renderErr == nil {
			renderErr = result.Error
		}
		samples += result.Samples
	}

	if renderErr != nil {
		r.frameIndex = 1
		r.logger.Warningf("frame %d aborted: %v", f.index, renderErr)
		return FrameStats{}, fmt.Errorf("%w: %w", ErrInterrupted, renderErr)
	}

	if r.settings.Accumulate {
		r.frameIndex++
	} else {
		r.frameIndex = 1
	}

	stats := FrameStats{
		Frame:    f.index,
		Width:    r.image.Width,
		Height:   r.image.Height,
		Pixels:   r.image.Width * r.image.Height,
		Samples:  samples,
		Tiles:    len(r.tiles),
		Workers:  r.pool.NumWorkers(),
		Duration: time.Since(start),
	}
	r.logger.Debugf("frame %d: %d samples in %v", stats.Frame, stats.Samples, stats.Duration)

	return stats, nil
}

func (r *Renderer) rebuildTiles() {
	r.stopPool()
	r.tiles = NewTileGrid(r.image.Width, r.image.Height, r.settings.TileSize, r.settings.Seed)
	r.pool = NewWorkerPool(r.settings.NumWorkers, len(r.tiles), renderTile)
}

func (r *Renderer) stopPool() {
	if r.pool != nil {
		r.pool.Stop()
		r.pool = nil
	}
}

// renderTile runs on a worker. Tiles never overlap, so writes to the shared
// accumulation buffer and image need no locking.
func renderTile(task TileTask) TileResult {
	f := task.Frame
	bounds := task.Tile.Bounds
	random := task.Tile.Random
	width := f.image.Width
	divisor := float64(f.index)

	samples := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		if err := f.ctx.Err(); err != nil {
			return TileResult{TaskID: task.TaskID, Samples: samples, Error: err}
		}

		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := x + y*width
			f.accumulation[i] = f.accumulation[i].Add(perPixel(f, x, y, random))
			f.image.Data[i] = PackColor(f.accumulation[i].Divide(divisor).Clamp(0, 1))
			samples += f.settings.SamplesPerPixel
		}
	}

	return TileResult{TaskID: task.TaskID, Samples: samples}
}

// perPixel averages SamplesPerPixel paths through pixel (x, y) and clamps the
// estimate to [0,1]
func perPixel(f *frame, x, y int, random *rand.Rand) core.Vec3 {
	origin := f.camera.Position()

	var sum core.Vec3
	for s := 0; s < f.settings.SamplesPerPixel; s++ {
		var direction core.Vec3
		if f.settings.Jitter {
			direction = f.camera.RayDirectionAt(float64(x)+random.Float64(), float64(y)+random.Float64())
		} else {
			direction = f.camera.RayDirection(x, y)
		}

		sum = sum.Add(tracePath(f.scene, core.NewRay(origin, direction), f.settings.MaxBounces, random))
	}

	return sum.Divide(float64(f.settings.SamplesPerPixel)).Clamp(0, 1)
}

// tracePath follows one path for up to maxBounces+1 surface hits. Each hit
// adds its emission weighted by the throughput so far, then scales the
// throughput by the albedo and reflects about a roughness-perturbed normal.
// A miss adds the sky, if any, and ends the path.
func tracePath(sc *scene.Scene, ray core.Ray, maxBounces int, random *rand.Rand) core.Vec3 {
	var radiance core.Vec3
	throughput := core.Splat(1)

	for bounce := 0; bounce <= maxBounces; bounce++ {
		payload := TraceRay(sc, ray)
		if payload.Missed() {
			if sc.Sky != nil {
				radiance = radiance.Add(sc.Sky.At(ray.Direction).MultiplyVec(throughput))
			}
			break
		}

		material := sc.Material(sc.Shapes[payload.ObjectIndex])
		radiance = radiance.Add(material.Emission().MultiplyVec(throughput))
		throughput = throughput.MultiplyVec(material.Albedo)

		if bounce > minBounces && throughput.Length() < minThroughput {
			break
		}

		scatter := payload.WorldNormal.
			Add(core.RandomInRange(random, -1, 1).Multiply(material.Roughness)).
			Normalize()
		ray = core.NewRay(
			payload.WorldPosition.Add(payload.WorldNormal.Multiply(surfaceBias)),
			ray.Direction.Reflect(scatter),
		)
	}

	return radiance
}
