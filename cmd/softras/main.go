// softras - Terminal software rasterizer demo
// Renders a spinning model over a floor grid with a CPU triangle rasterizer
// and shows it in the terminal, or writes a single frame to a PNG.
//
// Controls:
//
//	W/S         - Move forward/back
//	A/D         - Move left/right
//	Q/E         - Move down/up
//	Arrows      - Look around
//	Mouse drag  - Look around
//	Mouse wheel - Move forward/back
//	R/F         - Faster/slower movement
//	Space       - Spin the model
//	X           - Toggle wireframe overlay
//	C           - Reset view
//	Esc         - Quit
package main

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	flag "github.com/spf13/pflag"

	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/models"
	"github.com/taigrr/softras/pkg/render"
)

var (
	texturePath  = flag.String("texture", "", "Path to texture image (PNG/JPG/BMP/WebP)")
	textureWrap  = flag.String("texture-wrap", "repeat", "Texture wrap mode (repeat, clamp)")
	targetFPS    = flag.Int("fps", 60, "Target FPS")
	bgColor      = flag.String("bg", "30,30,40", "Background color (R,G,B)")
	fov          = flag.Float64("fov", 60, "Vertical field of view in degrees")
	workers      = flag.Int("workers", runtime.NumCPU(), "Rasterizer goroutines")
	snapshotPath = flag.String("snapshot", "", "Render one frame to this PNG and exit")
	snapshotSize = flag.String("size", "640x480", "Snapshot size (WxH)")
	logFile      = flag.String("log-file", "", "Write logs to this file")
	logLevel     = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	alpha        = flag.Float64("alpha", 1, "Model opacity in [0,1]")
	axes         = flag.Bool("axes", false, "Draw the world axes")
)

// axesOrigin sits just above the floor grid.
var axesOrigin = math3d.V3(0, -1.99, 0)

// maxTextureSize caps loaded textures; the terminal is far smaller.
const maxTextureSize = 512

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "softras - Terminal software rasterizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: softras [options] [model.obj|model.glb]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Move\n")
		fmt.Fprintf(os.Stderr, "  Q/E         - Move down/up\n")
		fmt.Fprintf(os.Stderr, "  Arrows      - Look around\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Look around\n")
		fmt.Fprintf(os.Stderr, "  Mouse wheel - Move forward/back\n")
		fmt.Fprintf(os.Stderr, "  R/F         - Faster/slower\n")
		fmt.Fprintf(os.Stderr, "  Space       - Spin the model\n")
		fmt.Fprintf(os.Stderr, "  X           - Toggle wireframe\n")
		fmt.Fprintf(os.Stderr, "  C           - Reset view\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(modelPath string) error {
	closeLog, err := setupLogging(*logFile, *logLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	bg, err := parseRGB(*bgColor)
	if err != nil {
		return err
	}

	wrap, err := render.ParseWrapMode(*textureWrap)
	if err != nil {
		return err
	}

	scene, err := loadScene(modelPath, wrap)
	if err != nil {
		return err
	}
	rasterizer := render.NewRasterizer(render.WithWorkers(*workers))

	if *snapshotPath != "" {
		return snapshot(scene, rasterizer, bg, *snapshotPath, *snapshotSize)
	}
	return interactive(scene, rasterizer, bg)
}

// setupLogging installs a text logger writing to path. Without a path every
// logger is discarded, the default one included, since the terminal belongs
// to the UI. The returned func restores the previous loggers.
func setupLogging(path, level string) (func(), error) {
	prev := slog.Default()
	restore := func() {
		slog.SetDefault(prev)
		render.SetLogger(nil)
	}
	if path == "" {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return restore, nil
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	render.SetLogger(logger)
	return func() {
		restore()
		f.Close()
	}, nil
}

// parseRGB parses an "R,G,B" color with 8-bit components.
func parseRGB(s string) (render.Color, error) {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%d,%d,%d", &r, &g, &b); err != nil {
		return render.Color{}, fmt.Errorf("background color %q: %w", s, err)
	}
	return render.RGB(r, g, b), nil
}

// loadScene loads the model and texture named on the command line and
// builds the scene around them.
func loadScene(modelPath string, wrap render.WrapMode) (*Scene, error) {
	var texture *render.Texture
	if *texturePath != "" {
		t, err := render.LoadTexture(*texturePath, maxTextureSize)
		if err != nil {
			slog.Warn("could not load texture", "path", *texturePath, "error", err)
		} else {
			texture = t
		}
	}

	var mesh *models.Mesh
	if modelPath != "" {
		var embedded image.Image
		var err error
		switch strings.ToLower(filepath.Ext(modelPath)) {
		case ".glb", ".gltf":
			mesh, embedded, err = models.LoadGLBWithTexture(modelPath)
		default:
			mesh, err = models.Load(modelPath)
		}
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		// Use the embedded texture if none was given explicitly.
		if texture == nil && embedded != nil {
			texture = render.TextureFromImage(embedded)
			slog.Info("using embedded texture", "width", texture.Width, "height", texture.Height)
		}
		mesh.Fit(2)
		slog.Info("loaded model", "path", modelPath, "vertices", mesh.VertexCount(), "triangles", mesh.TriangleCount())
	}

	scene := NewScene(mesh, *fov, SceneConfig{
		FPS:         *targetFPS,
		Alpha:       *alpha,
		Texture:     texture,
		LightDir:    math3d.V3(0.5, 1, -0.6),
		TextureWrap: wrap,
	})
	scene.Axes = *axes
	return scene, nil
}

// snapshot renders the initial frame headlessly and saves it.
func snapshot(scene *Scene, rasterizer *render.Rasterizer, bg render.Color, path, size string) error {
	w, h, err := render.ParseSize(size)
	if err != nil {
		return err
	}
	rt := render.NewRenderTarget(w, h)
	renderFrame(scene, rasterizer, rt, bg)
	if err := rt.SavePNG(path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%dx%d, %d triangles)\n", path, w, h, rasterizer.Stats.TrianglesOut)
	return nil
}

// renderFrame draws one frame of the scene into rt.
func renderFrame(scene *Scene, rasterizer *render.Rasterizer, rt *render.RenderTarget, bg render.Color) {
	rt.Clear(bg)
	rasterizer.Render(rt, scene.Models, scene.Camera)
	if scene.Axes {
		render.DrawAxes(rt, scene.Camera, axesOrigin, 3)
	}
}

func interactive(scene *Scene, rasterizer *render.Rasterizer, bg render.Color) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	termRenderer := render.NewTerminalRenderer(term, width, height)
	rt := render.NewRenderTarget(termRenderer.TargetSize())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	fps := max(*targetFPS, 1)
	targetDuration := time.Second / time.Duration(fps)
	lastFrame := time.Now()
	var mouse Mouse

	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		default:
		}

		now := time.Now()
		dt := min(now.Sub(lastFrame).Seconds(), 0.1)
		lastFrame = now

		in := PollInput(term.Events(), &mouse)
		if in.Quit {
			cleanup()
			return nil
		}
		if in.Resized {
			term.Erase()
			term.Resize(in.Cols, in.Rows)
			termRenderer = render.NewTerminalRenderer(term, in.Cols, in.Rows)
			rt.Resize(termRenderer.TargetSize())
			slog.Debug("terminal resized", "cols", in.Cols, "rows", in.Rows)
		}

		scene.Update(in, dt)
		renderFrame(scene, rasterizer, rt, bg)

		termRenderer.Render(rt)
		if err := termRenderer.Flush(); err != nil {
			cleanup()
			return fmt.Errorf("flush: %w", err)
		}

		// Frame timing
		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
