package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "go-restir"
	app.Usage = "render direct lighting with reservoir-based spatiotemporal importance resampling"
	app.Version = "0.1.0"
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render frames of a built-in scene and save the last one",
			Description: `
Render a sequence of frames. Every frame fills a G-buffer from the camera,
runs the resampling pipeline (initial, temporal, spatial and final stages)
and shades the result. Frames are averaged while the camera is static.

Flags override the values of the optional configuration file.`,
			Flags:  renderFlags(),
			Action: renderAction,
		},
		{
			Name:   "options",
			Usage:  "print the effective configuration as YAML",
			Flags:  renderFlags(),
			Action: optionsAction,
		},
		{
			Name:   "scenes",
			Usage:  "list built-in scenes",
			Action: scenesAction,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
