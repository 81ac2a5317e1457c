package main

import (
	"flag"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/voxscope/voxscope/app"
	"github.com/voxscope/voxscope/core"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	dataset := flag.String("dataset", "", "Path to a converted DICOM dataset directory")
	profiles := flag.String("profiles", "", "Optional YAML file with LQ/HQ render profiles")
	font := flag.String("font", "", "Optional TTF font for the HUD overlay")
	debug := flag.Bool("debug", false, "Enable debug logging and the FPS counter")
	flag.Parse()

	log := core.NewDefaultLogger("voxscope", *debug)
	if *dataset == "" {
		log.Errorf("missing required -dataset flag")
		flag.Usage()
		os.Exit(2)
	}

	if err := glfw.Init(); err != nil {
		log.Errorf("initializing glfw: %v", err)
		os.Exit(1)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(1280, 720, "VoxScope", nil, nil)
	if err != nil {
		log.Errorf("creating window: %v", err)
		os.Exit(1)
	}
	defer window.Destroy()

	application := app.NewApp(window, app.Config{
		DatasetDir:  *dataset,
		ProfilePath: *profiles,
		FontPath:    *font,
		Debug:       *debug,
	}, log)
	if err := application.Init(); err != nil {
		log.Errorf("startup failed: %v", err)
		os.Exit(1)
	}

	for !window.ShouldClose() {
		glfw.PollEvents()
		application.Update()
		application.Render()
	}
}
