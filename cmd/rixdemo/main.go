// Command rixdemo renders a lit, textured and fogged scene through a rix
// device and saves the last frame as a PNG.
package main

import (
	"flag"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rix"
	"github.com/gogpu/rix/device"
	"github.com/gogpu/rix/fragment"
	"github.com/gogpu/rix/register"
	"github.com/gogpu/rix/render"
	_ "github.com/gogpu/rix/software"
	"github.com/gogpu/rix/texture"
	_ "github.com/gogpu/rix/threaded"
	"github.com/gogpu/rix/transform"
)

func main() {
	var (
		width   = flag.Int("width", 640, "image width")
		height  = flag.Int("height", 480, "image height")
		tiles   = flag.Int("tiles", 4, "number of screen tiles")
		frames  = flag.Int("frames", 3, "frames to render")
		devName = flag.String("device", "software", "device: software, bus or threaded")
		float   = flag.Bool("float", false, "use floating point edge functions")
		verbose = flag.Bool("v", false, "log debug output")
		output  = flag.String("output", "rixdemo.png", "output file")
	)
	flag.Parse()

	if *verbose {
		rix.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	edge := rix.EdgeFixed
	if *float {
		edge = rix.EdgeFloat
	}
	cfg, err := rix.NewConfig(
		rix.WithResolution(*width, *height),
		rix.WithTiles(*tiles),
		rix.WithEdgeMode(edge),
		// The threaded device runs the vertex pipeline itself.
		rix.WithTransformOffload(*devName == "threaded"),
	)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	dev, err := device.Open(*devName, cfg)
	if err != nil {
		log.Fatalf("Failed to open device (available: %v): %v", device.Available(), err)
	}
	r, err := render.New(dev, cfg)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}

	if err := setup(r); err != nil {
		log.Fatalf("Setup failed: %v", err)
	}
	for i := range *frames {
		if err := drawFrame(r, float32(i)*0.4); err != nil {
			log.Fatalf("Frame %d failed: %v", i, err)
		}
	}

	img, err := r.Snapshot()
	if err != nil {
		log.Fatalf("Failed to read back the frame: %v", err)
	}
	if err := r.Close(); err != nil {
		log.Fatalf("Failed to close renderer: %v", err)
	}
	if err := savePNG(*output, img); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	log.Printf("Demo saved to %s (%dx%d, %d frames on %s)\n", *output, *width, *height, *frames, *devName)
}

// setup loads the texture and sets the state shared by all frames.
func setup(r *render.Renderer) error {
	cfg := r.Config()

	obj, err := texture.FromImage(checkerboard(64, 8), cfg.ColorFormat, true)
	if err != nil {
		return err
	}
	tex := r.CreateTexture()
	if err := r.UpdateTexture(tex, obj); err != nil {
		return err
	}
	if err := r.SetTextureFilter(tex, gputypes.FilterModeLinear); err != nil {
		return err
	}
	if err := r.UseTexture(0, tex); err != nil {
		return err
	}

	fp := register.DefaultFragmentPipeline()
	fp.DepthFunc = gputypes.CompareFunctionLess
	if err := r.SetFragmentPipeline(fp); err != nil {
		return err
	}
	if err := r.SetFeatureEnable(register.FeatureEnable{
		DepthTest: true,
		Fog:       true,
		TMU:       [register.MaxTMUs]bool{true},
	}); err != nil {
		return err
	}
	if err := r.SetFogColor(color.RGBA{R: 160, G: 170, B: 190, A: 255}); err != nil {
		return err
	}
	if err := r.SetFogLUT(fragment.NewFogLUT(fragment.FogLinear, 4, 12, 0)); err != nil {
		return err
	}
	if err := r.SetClearColor(color.RGBA{R: 160, G: 170, B: 190, A: 255}); err != nil {
		return err
	}
	if err := r.SetClearDepth(0xFFFF); err != nil {
		return err
	}

	g := transform.DefaultGlobalContext(cfg.ResolutionX, cfg.ResolutionY)
	aspect := float32(cfg.ResolutionX) / float32(cfg.ResolutionY)
	g.Projection = transform.Perspective(math.Pi/3, aspect, 0.5, 50)
	g.Lighting = true
	g.Lights[0].Enable = true
	g.Lights[0].Position = transform.V4(0.4, 1, 0.8, 0)
	g.CullMode = gputypes.CullModeBack
	if err := r.SetElementGlobalContext(&g); err != nil {
		return err
	}

	v := transform.DefaultVertexContext()
	v.ColorMaterial = true
	return r.SetVertexContext(&v)
}

// drawFrame draws a floor and a row of cubes receding into the fog.
func drawFrame(r *render.Renderer, angle float32) error {
	if err := r.Clear(true, true, false); err != nil {
		return err
	}
	view := transform.LookAt(transform.V3(0, 2, 4), transform.V3(0, 0, -4), transform.V3(0, 1, 0))

	floor := transform.DefaultLocalContext()
	floor.ModelView = view.Mul(transform.Translate(0, -1, -6)).Mul(transform.Scale(8, 1, 12))
	if err := r.SetElementLocalContext(&floor); err != nil {
		return err
	}
	if err := face(r, transform.V3(0, 1, 0), transform.V4(0.6, 0.7, 0.6, 1), [4]transform.Vec3{
		transform.V3(-1, 0, 1), transform.V3(1, 0, 1), transform.V3(1, 0, -1), transform.V3(-1, 0, -1),
	}); err != nil {
		return err
	}

	for i := range 4 {
		cube := transform.DefaultLocalContext()
		cube.ModelView = view.
			Mul(transform.Translate(float32(i%2)*2-1, 0, -float32(i)*3)).
			Mul(transform.Rotate(angle+float32(i), transform.V3(0.3, 1, 0.2)))
		cube.Normalize = true
		if err := r.SetElementLocalContext(&cube); err != nil {
			return err
		}
		if err := drawCube(r, transform.V4(1, 0.6+0.1*float32(i), 0.4, 1)); err != nil {
			return err
		}
	}
	return r.SwapDisplayList()
}

func drawCube(r *render.Renderer, c transform.Vec4) error {
	type side struct {
		n       transform.Vec3
		corners [4]transform.Vec3
	}
	sides := []side{
		{transform.V3(0, 0, 1), [4]transform.Vec3{{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1}}},
		{transform.V3(0, 0, -1), [4]transform.Vec3{{X: 1, Y: -1, Z: -1}, {X: -1, Y: -1, Z: -1}, {X: -1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: -1}}},
		{transform.V3(1, 0, 0), [4]transform.Vec3{{X: 1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: 1}}},
		{transform.V3(-1, 0, 0), [4]transform.Vec3{{X: -1, Y: -1, Z: -1}, {X: -1, Y: -1, Z: 1}, {X: -1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: -1}}},
		{transform.V3(0, 1, 0), [4]transform.Vec3{{X: -1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1}}},
		{transform.V3(0, -1, 0), [4]transform.Vec3{{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: 1}, {X: -1, Y: -1, Z: 1}}},
	}
	for _, s := range sides {
		if err := face(r, s.n, c, s.corners); err != nil {
			return err
		}
	}
	return nil
}

// face draws a counterclockwise quad with texture coordinates spanning the
// whole texture.
func face(r *render.Renderer, n transform.Vec3, c transform.Vec4, corners [4]transform.Vec3) error {
	if err := r.DrawNewElement(transform.Quads); err != nil {
		return err
	}
	st := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	for i, p := range corners {
		v := transform.Vertex{
			Position: transform.V4(p.X, p.Y, p.Z, 1),
			Color:    c,
			Normal:   n,
		}
		v.Tex[0] = transform.V4(st[i][0], st[i][1], 0, 1)
		if err := r.PushVertex(&v); err != nil {
			return err
		}
	}
	return r.EndElement()
}

func checkerboard(size, cells int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	cell := size / cells
	for y := range size {
		for x := range size {
			c := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			if (x/cell+y/cell)%2 == 1 {
				c = color.NRGBA{R: 70, G: 70, B: 90, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
