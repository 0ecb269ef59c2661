package main

import (
	"flag"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gekko3d/spritebatch/app"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to an optional YAML config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger := app.NewDefaultLogger("spritebatch", *debug)

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		logger.Errorf("%v", err)
		return 1
	}
	if *debug {
		cfg.Debug = true
	}
	logger.SetDebug(cfg.Debug)

	if err := glfw.Init(); err != nil {
		logger.Errorf("failed to init glfw: %v", err)
		return 1
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	window, err := glfw.CreateWindow(cfg.WindowWidth, cfg.WindowHeight, cfg.WindowTitle, nil, nil)
	if err != nil {
		logger.Errorf("failed to create window: %v", err)
		return 1
	}
	defer window.Destroy()

	application := app.New(window, cfg, logger)
	defer application.Shutdown()

	if err := application.Init(); err != nil {
		logger.Errorf("initialization failed: %v", err)
		return 1
	}
	logger.Infof("application started")

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		application.Resize(width, height)
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})

	for {
		glfw.PollEvents()
		if window.ShouldClose() {
			application.RequestQuit()
		}

		switch application.Iterate() {
		case app.Continue:
		case app.Success:
			return 0
		case app.Failure:
			return 1
		}
	}
}
