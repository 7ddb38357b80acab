package renderer

import (
	"context"
	"image"
	"time"

	"github.com/df07/go-restir/pkg/core"
	"github.com/df07/go-restir/pkg/log"
	"github.com/df07/go-restir/pkg/restir"
	"github.com/pkg/errors"
)

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	Frames       int     `yaml:"frames"`       // Number of frames to render
	OrbitDegrees float64 `yaml:"orbitDegrees"` // Camera rotation per frame around the look-at point
	Accumulate   bool    `yaml:"accumulate"`   // Average frames while the camera is static
	NumWorkers   int     `yaml:"numWorkers"`   // Workers for G-buffer and shading (0 = CPU count)
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		Frames:     16,
		Accumulate: true,
	}
}

// FrameResult contains the result of a single frame
type FrameResult struct {
	Frame     int
	Image     *image.RGBA
	Stats     RenderStats
	ReSTIR    restir.FrameStats
	FrameTime time.Duration
	IsLast    bool
}

// ProgressiveRaytracer renders a scene frame by frame, resampling direct
// lighting with ReSTIR and accumulating the shaded result
type ProgressiveRaytracer struct {
	scene         Scene
	cameraConfig  CameraConfig
	camera        *Camera
	prevCamera    *Camera
	width, height int
	config        ProgressiveConfig
	restir        *restir.ReSTIR
	gbuf          *restir.GBuffer
	pixelStats    []PixelStats
	workerPool    *core.WorkerPool
	logger        core.Logger
	frame         int
}

// NewProgressiveRaytracer creates a renderer for the scene seen through cameraConfig
func NewProgressiveRaytracer(scene Scene, cameraConfig CameraConfig, config ProgressiveConfig, opts restir.Options, logger core.Logger) (*ProgressiveRaytracer, error) {
	if logger == nil {
		logger = log.Discard()
	}
	camera := NewCamera(cameraConfig)
	width, height := camera.Size()
	r, err := restir.New(width, height, scene, scene.Lights(), opts, logger)
	if err != nil {
		return nil, errors.Wrap(err, "creating resampling pipeline")
	}

	return &ProgressiveRaytracer{
		scene:        scene,
		cameraConfig: cameraConfig,
		camera:       camera,
		width:        width,
		height:       height,
		config:       config,
		restir:       r,
		gbuf:         restir.NewGBuffer(width, height),
		pixelStats:   make([]PixelStats, width*height),
		workerPool:   core.NewWorkerPool(config.NumWorkers),
		logger:       logger,
	}, nil
}

// ReSTIR returns the resampling pipeline
func (pr *ProgressiveRaytracer) ReSTIR() *restir.ReSTIR {
	return pr.restir
}

// GBuffer returns the G-buffer of the last frame
func (pr *ProgressiveRaytracer) GBuffer() *restir.GBuffer {
	return pr.gbuf
}

// Size returns the image size
func (pr *ProgressiveRaytracer) Size() (int, int) {
	return pr.width, pr.height
}

// RenderFrame renders one frame and returns the accumulated image
func (pr *ProgressiveRaytracer) RenderFrame() (FrameResult, error) {
	start := time.Now()
	moving := pr.config.OrbitDegrees != 0
	if pr.frame > 0 && moving {
		pr.prevCamera = pr.camera
		pr.cameraConfig = pr.cameraConfig.Orbit(pr.config.OrbitDegrees)
		pr.camera = NewCamera(pr.cameraConfig)
	}

	FillGBuffer(pr.workerPool, pr.scene, pr.camera, pr.prevCamera, pr.gbuf)
	if err := pr.restir.RenderFrame(pr.gbuf); err != nil {
		return FrameResult{}, errors.Wrapf(err, "frame %d", pr.frame)
	}

	reset := moving || !pr.config.Accumulate
	pr.workerPool.ParallelFor(pr.height, 1, func(begin, end int) {
		for y := begin; y < end; y++ {
			for x := 0; x < pr.width; x++ {
				ps := &pr.pixelStats[y*pr.width+x]
				if reset {
					ps.Reset()
				}
				ps.AddSample(ShadePixel(pr.restir, pr.gbuf, x, y))
			}
		}
	})

	img, stats := pr.assembleCurrentImage()
	result := FrameResult{
		Frame:     pr.frame,
		Image:     img,
		Stats:     stats,
		ReSTIR:    pr.restir.Stats(),
		FrameTime: time.Since(start),
	}
	pr.frame++
	return result, nil
}

// RenderProgressive renders up to config.Frames frames in a goroutine and
// streams each one. Both channels are closed when rendering stops.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context) (<-chan FrameResult, <-chan error) {
	frameChan := make(chan FrameResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(frameChan)
		defer close(errChan)

		pr.logger.Infof("starting progressive rendering of %d frames at %dx%d", pr.config.Frames, pr.width, pr.height)

		for frame := 1; frame <= pr.config.Frames; frame++ {
			// Check for cancellation before starting this frame
			select {
			case <-ctx.Done():
				pr.logger.Noticef("rendering cancelled before frame %d", frame)
				errChan <- ctx.Err()
				return
			default:
			}

			result, err := pr.RenderFrame()
			if err != nil {
				errChan <- err
				return
			}
			result.IsLast = frame == pr.config.Frames

			pr.logger.Debugf("frame %d completed in %v (mean M %.1f, %d empty reservoirs)",
				frame, result.FrameTime, result.ReSTIR.MeanM, result.ReSTIR.EmptyReservoirs)

			select {
			case frameChan <- result:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}
	}()

	return frameChan, errChan
}

// assembleCurrentImage creates an image from the accumulated pixel stats
// and calculates render statistics in a single pass
func (pr *ProgressiveRaytracer) assembleCurrentImage() (*image.RGBA, RenderStats) {
	img := image.NewRGBA(image.Rect(0, 0, pr.width, pr.height))
	stats := RenderStats{TotalPixels: pr.width * pr.height}

	lumSum := 0.0
	for y := 0; y < pr.height; y++ {
		for x := 0; x < pr.width; x++ {
			i := y*pr.width + x
			pixel := &pr.pixelStats[i]
			colorVec := pixel.GetColor()
			img.SetRGBA(x, y, vec3ToColor(colorVec))

			lumSum += colorVec.Luminance()
			stats.FramesAccumulated = max(stats.FramesAccumulated, pixel.SampleCount)
			stats.MaxRelativeError = max(stats.MaxRelativeError, pixel.RelativeError())
			if pr.gbuf.Surfaces[i].Valid {
				stats.ValidPixels++
			}
		}
	}
	stats.MeanLuminance = lumSum / float64(stats.TotalPixels)

	return img, stats
}
