package cmd

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/df07/go-pathtracer/pkg/loaders"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// RenderFlags are shared by every command that renders a scene
var RenderFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "scene, s",
		Value: "default",
		Usage: "scene id: a built-in name or file:<name> for <name>.json in --scene-dir",
	},
	cli.StringFlag{
		Name:  "scene-dir",
		Value: "scenes",
		Usage: "directory searched for scene files",
	},
	cli.IntFlag{
		Name:  "width",
		Usage: "image width in pixels (0 = scene default)",
	},
	cli.Float64Flag{
		Name:  "aspect",
		Usage: "width / height ratio (0 = scene default)",
	},
	cli.Float64Flag{
		Name:  "fov",
		Usage: "vertical field of view in degrees for a fixed viewport camera (0 = 45 degree perspective camera)",
	},
	cli.IntFlag{
		Name:  "samples",
		Value: 1,
		Usage: "samples per pixel per frame",
	},
	cli.IntFlag{
		Name:  "bounces",
		Value: 5,
		Usage: "maximum bounces per path",
	},
	cli.BoolFlag{
		Name:  "no-accumulate",
		Usage: "restart the estimate every frame",
	},
	cli.BoolFlag{
		Name:  "no-jitter",
		Usage: "sample pixel corners instead of random points inside the pixel",
	},
	cli.IntFlag{
		Name:  "workers",
		Usage: "parallel tile workers (0 = CPU count)",
	},
	cli.IntFlag{
		Name:  "tile-size",
		Value: 64,
		Usage: "edge length of the square tiles handed to workers",
	},
	cli.Int64Flag{
		Name:  "seed",
		Usage: "base random seed (0 = seed from entropy)",
	},
}

// RenderFrame renders a scene progressively and writes the final average to a PNG file.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, err := loaders.Resolve(ctx.String("scene"), ctx.String("scene-dir"))
	if err != nil {
		return err
	}
	cam := cameraFromFlags(ctx, sc.Camera)
	width, height := cam.Size()

	r := renderer.New(settingsFromFlags(ctx), nil)
	defer r.Close()
	r.SetImage(renderer.NewImage(width, height))

	// Ctrl-C stops after the current row and keeps nothing
	renderCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	frames := ctx.Int("frames")
	logger.Noticef("rendering %q at %dx%d for %d frames", sc.Name, width, height, frames)

	start := time.Now()
	frameChan, errChan := renderer.RenderProgressive(renderCtx, r, sc, cam, renderer.ProgressiveOptions{Frames: frames})

	var (
		final *image.RGBA
		stats []renderer.FrameStats
	)
	for result := range frameChan {
		final = result.Image
		stats = append(stats, result.Stats)
		logger.Debugf("frame %d/%d done in %v", result.Frame, frames, result.Stats.Duration)
	}
	if err := <-errChan; err != nil {
		return err
	}

	if err := writePNG(ctx.String("out"), final); err != nil {
		return err
	}

	displayFrameStats(stats, time.Since(start))
	logger.Noticef("wrote %s", ctx.String("out"))
	return nil
}

func settingsFromFlags(ctx *cli.Context) renderer.Settings {
	settings := renderer.DefaultSettings()
	settings.SamplesPerPixel = ctx.Int("samples")
	settings.MaxBounces = ctx.Int("bounces")
	settings.Accumulate = !ctx.Bool("no-accumulate")
	settings.Jitter = !ctx.Bool("no-jitter")
	settings.NumWorkers = ctx.Int("workers")
	settings.TileSize = ctx.Int("tile-size")
	settings.Seed = ctx.Int64("seed")
	return settings
}

// cameraFromFlags builds the scene's preferred camera with any size overrides
// applied. --fov switches to the viewport camera model.
func cameraFromFlags(ctx *cli.Context, cfg scene.CameraConfig) renderer.Camera {
	if width := ctx.Int("width"); width > 0 {
		cfg.Width = width
	}
	if aspect := ctx.Float64("aspect"); aspect > 0 {
		cfg.AspectRatio = aspect
	}

	if fov := ctx.Float64("fov"); fov > 0 {
		perspective := renderer.NewCameraFromConfig(cfg)
		width, height := perspective.Size()
		return renderer.NewViewportCamera(width, float64(width)/float64(height), cfg.Position, perspective.Forward(), fov)
	}
	return renderer.NewCameraFromConfig(cfg)
}

func writePNG(path string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("no frame was rendered")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return file.Close()
}

func displayFrameStats(stats []renderer.FrameStats, total time.Duration) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Frame", "Size", "Tiles", "Workers", "Samples", "Samples/s", "Render time"})

	var samples int
	for _, stat := range stats {
		samples += stat.Samples
		table.Append([]string{
			fmt.Sprintf("%d", stat.Frame),
			fmt.Sprintf("%dx%d", stat.Width, stat.Height),
			fmt.Sprintf("%d", stat.Tiles),
			fmt.Sprintf("%d", stat.Workers),
			fmt.Sprintf("%d", stat.Samples),
			fmt.Sprintf("%.0f", stat.SamplesPerSecond()),
			stat.Duration.String(),
		})
	}
	table.SetFooter([]string{"", "", "", "", fmt.Sprintf("%d", samples), "TOTAL", total.String()})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
