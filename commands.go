package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/df07/go-restir/pkg/config"
	"github.com/df07/go-restir/pkg/core"
	"github.com/df07/go-restir/pkg/loaders"
	"github.com/df07/go-restir/pkg/log"
	"github.com/df07/go-restir/pkg/renderer"
	"github.com/df07/go-restir/pkg/restir"
	"github.com/df07/go-restir/pkg/scene"
	"github.com/go-json-experiment/json"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func renderFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{Name: "config, c", Usage: "YAML configuration file"},
		cli.StringFlag{Name: "scene, s", Usage: "built-in scene name"},
		cli.StringFlag{Name: "env", Usage: "equirectangular environment map (PNG, JPEG or TIFF)"},
		cli.Float64Flag{Name: "env-intensity", Usage: "environment map radiance scale"},
		cli.IntFlag{Name: "width", Usage: "image width; height follows the scene aspect ratio"},
		cli.IntFlag{Name: "frames, f", Usage: "number of frames to render"},
		cli.Float64Flag{Name: "orbit", Usage: "camera rotation per frame in degrees"},
		cli.StringFlag{Name: "mode, m", Usage: "resampling mode: none, spatial, temporal or spatiotemporal"},
		cli.IntFlag{Name: "passes", Usage: "independent reservoir sets per pixel"},
		cli.StringFlag{Name: "debug", Usage: "debug output: weight, m, targetpdf, lightkind or radiance"},
		cli.StringFlag{Name: "out, o", Usage: "output image (.png or .tiff)"},
		cli.StringFlag{Name: "stats-json", Usage: "write frame statistics as JSON to this file"},
		cli.StringFlag{Name: "log-level", Usage: "debug, info, notice, warning or error"},
		cli.IntFlag{Name: "workers", Usage: "worker count (0 = CPU count)"},
	}
}

// loadConfig reads the optional configuration file and applies flag overrides
func loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := ctx.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	if ctx.IsSet("scene") {
		cfg.Scene = ctx.String("scene")
	}
	if ctx.IsSet("env") {
		cfg.Environment = ctx.String("env")
	}
	if ctx.IsSet("env-intensity") {
		cfg.EnvironmentIntensity = ctx.Float64("env-intensity")
	}
	if ctx.IsSet("width") {
		cfg.Camera.Width = ctx.Int("width")
	}
	if ctx.IsSet("frames") {
		cfg.Render.Frames = ctx.Int("frames")
	}
	if ctx.IsSet("orbit") {
		cfg.Render.OrbitDegrees = ctx.Float64("orbit")
	}
	if ctx.IsSet("mode") {
		if err := cfg.ReSTIR.Mode.UnmarshalText([]byte(ctx.String("mode"))); err != nil {
			return cfg, err
		}
	}
	if ctx.IsSet("passes") {
		cfg.ReSTIR.NumPasses = ctx.Int("passes")
	}
	if ctx.IsSet("debug") {
		if err := cfg.ReSTIR.DebugOutput.UnmarshalText([]byte(ctx.String("debug"))); err != nil {
			return cfg, err
		}
	}
	if ctx.IsSet("out") {
		cfg.Output = ctx.String("out")
	}
	if ctx.IsSet("log-level") {
		cfg.LogLevel = ctx.String("log-level")
	}
	if ctx.IsSet("workers") {
		cfg.Render.NumWorkers = ctx.Int("workers")
		cfg.ReSTIR.NumWorkers = ctx.Int("workers")
	}
	return cfg, cfg.Validate()
}

// loadScene creates and preprocesses the configured scene
func loadScene(cfg config.Config) (*scene.Scene, error) {
	s, err := scene.New(cfg.Scene)
	if err != nil {
		return nil, err
	}
	if cfg.Environment != "" {
		env, err := loaders.LoadEnvironment(cfg.Environment, cfg.EnvironmentIntensity)
		if err != nil {
			return nil, err
		}
		s.Environment = env
	}
	if err := s.Preprocess(); err != nil {
		return nil, err
	}
	return s, nil
}

// renderReport is the JSON statistics document
type renderReport struct {
	Session string               `json:"session"`
	Scene   string               `json:"scene"`
	Width   int                  `json:"width"`
	Height  int                  `json:"height"`
	Frames  int                  `json:"frames"`
	Options restir.Options       `json:"options"`
	Render  renderer.RenderStats `json:"render"`
	ReSTIR  restir.FrameStats    `json:"restir"`
}

func renderAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	session := uuid.New().String()
	logger := log.New("render-" + session[:8])
	logger.Infof("session %s: scene %q, %d frames", session, cfg.Scene, cfg.Render.Frames)

	s, err := loadScene(cfg)
	if err != nil {
		return err
	}
	logger.Infof("scene %q: %d triangles, lights %s", s.Name, s.GetPrimitiveCount(), s.Lights())

	camera := renderer.MergeCameraConfig(s.CameraConfig, cfg.Camera)
	pr, err := renderer.NewProgressiveRaytracer(s, camera, cfg.Render, cfg.ReSTIR, logger)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var last renderer.FrameResult
	frameChan, errChan := pr.RenderProgressive(runCtx)
	for result := range frameChan {
		last = result
		logger.Infof("frame %d: %v, mean luminance %.4f", result.Frame, result.FrameTime, result.Stats.MeanLuminance)
	}
	if err := <-errChan; err != nil {
		if !errors.Is(err, context.Canceled) || last.Image == nil {
			return err
		}
		logger.Warningf("rendering interrupted after frame %d, saving partial result", last.Frame)
	}

	if err := renderer.SaveImage(cfg.Output, last.Image); err != nil {
		return err
	}
	logger.Noticef("render saved as %s", cfg.Output)

	if debug := pr.ReSTIR().DebugImage(); debug != nil {
		path := debugPath(cfg.Output, cfg.ReSTIR.DebugOutput)
		if err := renderer.SaveImage(path, debug); err != nil {
			return err
		}
		logger.Noticef("debug output saved as %s", path)
	}

	displayFrameStats(logger, last.ReSTIR)

	if path := ctx.String("stats-json"); path != "" {
		width, height := pr.Size()
		report := renderReport{
			Session: session,
			Scene:   s.Name,
			Width:   width,
			Height:  height,
			Frames:  last.Frame + 1,
			Options: pr.ReSTIR().Options(),
			Render:  last.Stats,
			ReSTIR:  last.ReSTIR,
		}
		if err := writeReport(path, report); err != nil {
			return err
		}
	}
	return nil
}

// debugPath derives the debug image path from the output path
func debugPath(output string, mode restir.DebugOutput) string {
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + "_" + mode.String() + ext
}

func writeReport(path string, report renderReport) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating stats file")
	}
	defer f.Close()
	if err := json.MarshalWrite(f, report, json.DefaultOptionsV2()); err != nil {
		return errors.Wrap(err, "encoding stats")
	}
	return f.Close()
}

func displayFrameStats(logger core.Logger, stats restir.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Stage", "Time", "% of frame"})
	for _, stage := range stats.Stages {
		percent := 0.0
		if stats.Total > 0 {
			percent = 100 * float64(stage.Duration) / float64(stats.Total)
		}
		table.Append([]string{stage.Name, stage.Duration.String(), fmt.Sprintf("%02.1f %%", percent)})
	}
	table.SetFooter([]string{"TOTAL", stats.Total.String(), fmt.Sprintf("mean M %.1f", stats.MeanM)})

	table.Render()
	logger.Noticef("frame %d statistics\n%s", stats.FrameIndex, buf.String())
}

func optionsAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	cfg.ReSTIR = cfg.ReSTIR.Validate(log.New("options"))
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = ctx.App.Writer.Write(data)
	return err
}

func scenesAction(ctx *cli.Context) error {
	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Scene", "Name", "Description"})
	for _, info := range scene.ListScenes() {
		table.Append([]string{info.ID, info.DisplayName, info.Description})
	}
	table.Render()
	return nil
}
