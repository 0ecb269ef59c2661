package app

import (
	"fmt"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gekko3d/spritebatch/assets"
	"github.com/gekko3d/spritebatch/audio"
	"github.com/gekko3d/spritebatch/core"
)

const musicFadeDuration = time.Second

// App owns every GPU and audio object for the lifetime of the process.
// Fields are declared in acquisition order; Shutdown releases them in
// reverse. A single window and a single in-flight frame are assumed.
type App struct {
	cfg Config
	log Logger

	window *glfw.Window
	server *assets.Server

	instance      *wgpu.Instance
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig *wgpu.SurfaceConfiguration

	spritePipeline *wgpu.RenderPipeline
	atlasTexture   *wgpu.Texture
	atlasView      *wgpu.TextureView
	atlasSampler   *wgpu.Sampler

	// spriteBuffer is the instance buffer: overwritten in full every frame
	// via a queue write that is ordered before the frame's submit.
	spriteBuffer    *wgpu.Buffer
	cameraBuffer    *wgpu.Buffer
	spriteBindGroup *wgpu.BindGroup
	atlasBindGroup  *wgpu.BindGroup

	textPipeline     *wgpu.RenderPipeline
	glyphTexture     *wgpu.Texture
	glyphView        *wgpu.TextureView
	glyphSampler     *wgpu.Sampler
	textBindGroup    *wgpu.BindGroup
	textVertexBuffer *wgpu.Buffer
	textVertexCount  uint32

	batch *core.SpriteBatch
	music *audio.Player

	quitRequested bool
}

func New(window *glfw.Window, cfg Config, log Logger) *App {
	if log == nil {
		log = NewNopLogger()
	}
	return &App{
		cfg:    cfg,
		log:    log,
		window: window,
		server: assets.NewServer(cfg.AssetDir),
		batch:  core.NewSpriteBatch(cfg.Seed, cfg.WindowWidth, cfg.WindowHeight),
		music:  audio.NewPlayer(),
	}
}

// Init brings up the GPU device, swapchain, pipelines, assets and music in
// the order the backend requires. Any failure aborts initialization; the
// caller is expected to go through Shutdown regardless.
func (a *App) Init() error {
	if err := a.initDevice(); err != nil {
		return err
	}
	if err := a.initSpritePass(); err != nil {
		return err
	}
	if err := a.initTextPass(); err != nil {
		return err
	}
	if err := a.initMusic(); err != nil {
		return err
	}

	w, h := a.window.GetSize()
	fbw, fbh := a.window.GetFramebufferSize()
	a.log.Infof("window size: %dx%d", w, h)
	a.log.Infof("framebuffer size: %dx%d", fbw, fbh)
	if w != fbw {
		a.log.Infof("high-dpi environment detected")
	}

	return nil
}

func (a *App) initDevice() error {
	a.instance = wgpu.CreateInstance(nil)
	a.surface = a.instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(a.window))

	adapter, err := a.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("failed to request adapter: %w", err)
	}
	a.adapter = adapter

	a.device, err = adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		return fmt.Errorf("failed to request device: %w", err)
	}
	a.queue = a.device.GetQueue()

	fbw, fbh := a.window.GetFramebufferSize()
	caps := a.surface.GetCapabilities(adapter)
	presentMode := negotiatePresentMode(caps.PresentModes)
	a.log.Debugf("negotiated present mode: %v", presentMode)

	a.surfaceConfig = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(fbw),
		Height:      uint32(fbh),
		PresentMode: presentMode,
		AlphaMode:   caps.AlphaModes[0],
	}
	a.surface.Configure(adapter, a.device, a.surfaceConfig)
	return nil
}

func (a *App) initSpritePass() error {
	pipeline, err := createSpritePipeline(a.device, a.surfaceConfig.Format)
	if err != nil {
		return err
	}
	a.spritePipeline = pipeline

	_, atlas, err := a.server.LoadTexture(a.cfg.AtlasImage)
	if err != nil {
		return err
	}
	a.atlasTexture, a.atlasView, err = createAtlasTexture(a.device, a.queue, atlas)
	if err != nil {
		return err
	}

	a.atlasSampler, err = a.device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeNearest,
		MagFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to create atlas sampler: %w", err)
	}

	a.spriteBuffer, err = a.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Sprite Instances",
		Size:  core.SpriteCount * spriteInstanceSize(),
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("failed to create sprite instance buffer: %w", err)
	}

	camera := core.OrthographicCamera(a.cfg.WindowWidth, a.cfg.WindowHeight)
	a.cameraBuffer, err = a.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Camera Uniform",
		Size:  uint64(len(camera) * 4),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("failed to create camera buffer: %w", err)
	}
	if err := a.queue.WriteBuffer(a.cameraBuffer, 0, wgpu.ToBytes(camera[:])); err != nil {
		return fmt.Errorf("failed to write camera matrix: %w", err)
	}

	a.spriteBindGroup, err = a.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: a.spritePipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: a.spriteBuffer, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: a.cameraBuffer, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create sprite bind group: %w", err)
	}

	a.atlasBindGroup, err = a.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: a.spritePipeline.GetBindGroupLayout(1),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: a.atlasView, Size: wgpu.WholeSize},
			{Binding: 1, Sampler: a.atlasSampler, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create atlas bind group: %w", err)
	}
	return nil
}

// overlayMargin keeps the overlay clear of the window edge, in logical units.
const overlayMargin = 10

// overlayOrigin centers text of the given measured width along the top edge.
// Text wider than the window is pinned to the left margin.
func overlayOrigin(textWidth float32, screenW int) (float32, float32) {
	x := (float32(screenW) - textWidth) / 2
	if x < overlayMargin {
		x = overlayMargin
	}
	return x, overlayMargin
}

func (a *App) initTextPass() error {
	fontPath, err := a.server.Resolve(a.cfg.Font)
	if err != nil {
		return err
	}
	renderer, err := core.NewTextRenderer(fontPath, a.cfg.FontSize)
	if err != nil {
		return err
	}

	a.glyphTexture, a.glyphView, err = createGlyphTexture(a.device, a.queue, renderer.Atlas)
	if err != nil {
		return err
	}

	a.glyphSampler, err = a.device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to create glyph sampler: %w", err)
	}

	a.textPipeline, err = createTextPipeline(a.device, a.surfaceConfig.Format)
	if err != nil {
		return err
	}

	a.textBindGroup, err = a.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: a.textPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: a.glyphView, Size: wgpu.WholeSize},
			{Binding: 1, Sampler: a.glyphSampler, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create text bind group: %w", err)
	}

	// The overlay string never changes, so its vertices are built once.
	textW, _ := renderer.MeasureText(a.cfg.OverlayText)
	x, y := overlayOrigin(textW, a.cfg.WindowWidth)
	vertices := renderer.BuildVertices(a.cfg.OverlayText, x, y, [4]float32{1, 1, 1, 1}, a.cfg.WindowWidth, a.cfg.WindowHeight)
	if len(vertices) == 0 {
		return nil
	}
	a.textVertexBuffer, err = a.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Text Vertices",
		Size:  uint64(len(textVertexBytes(vertices))),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("failed to create text vertex buffer: %w", err)
	}
	if err := a.queue.WriteBuffer(a.textVertexBuffer, 0, textVertexBytes(vertices)); err != nil {
		return fmt.Errorf("failed to write text vertices: %w", err)
	}
	a.textVertexCount = uint32(len(vertices))
	return nil
}

func (a *App) initMusic() error {
	if !a.cfg.EnableMusic {
		a.log.Debugf("music disabled by config")
		return nil
	}

	musicPath, err := a.server.Resolve(a.cfg.Music)
	if err != nil {
		return err
	}
	if err := a.music.Open(musicPath); err != nil {
		return err
	}
	// Plays once, no loop.
	return a.music.Start()
}

// RequestQuit arms a clean shutdown; the next Iterate reports Success.
func (a *App) RequestQuit() {
	a.quitRequested = true
}

// Iterate renders one frame. The instance buffer is rebuilt and uploaded
// in full before the draw that reads it, all within one submitted command
// sequence, so the write-then-draw ordering needs no synchronization.
func (a *App) Iterate() Result {
	if a.quitRequested {
		return Success
	}

	nextTexture, err := a.surface.GetCurrentTexture()
	if err != nil {
		a.log.Errorf("failed to acquire drawable surface: %v", err)
		return Failure
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		a.log.Errorf("failed to create surface view: %v", err)
		return Failure
	}
	defer view.Release()

	encoder, err := a.device.CreateCommandEncoder(nil)
	if err != nil {
		a.log.Errorf("failed to create command encoder: %v", err)
		return Failure
	}

	instances := a.batch.Build()
	if err := a.queue.WriteBuffer(a.spriteBuffer, 0, spriteInstanceBytes(instances)); err != nil {
		a.log.Errorf("failed to upload sprite instances: %v", err)
		return Failure
	}

	rPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})

	rPass.SetPipeline(a.spritePipeline)
	rPass.SetBindGroup(0, a.spriteBindGroup, nil)
	rPass.SetBindGroup(1, a.atlasBindGroup, nil)
	rPass.Draw(core.SpriteCount*6, 1, 0, 0)

	if a.textVertexCount > 0 {
		rPass.SetPipeline(a.textPipeline)
		rPass.SetBindGroup(0, a.textBindGroup, nil)
		rPass.SetVertexBuffer(0, a.textVertexBuffer, 0, a.textVertexBuffer.GetSize())
		rPass.Draw(a.textVertexCount, 1, 0, 0)
	}

	if err := rPass.End(); err != nil {
		a.log.Errorf("failed to end render pass: %v", err)
		return Failure
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		a.log.Errorf("failed to finish command encoder: %v", err)
		return Failure
	}

	a.queue.Submit(cmd)
	a.surface.Present()

	return Continue
}

// Resize reconfigures the swapchain for a new framebuffer size.
func (a *App) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	a.surfaceConfig.Width = uint32(w)
	a.surfaceConfig.Height = uint32(h)
	a.surface.Configure(a.adapter, a.device, a.surfaceConfig)
}

// Shutdown releases everything in reverse of acquisition order. Safe to
// call after a partial Init.
func (a *App) Shutdown() {
	// Music first so the fade finishes while the window is still up.
	if a.music != nil {
		a.music.FadeOut(musicFadeDuration)
		a.music.Close()
	}

	if a.textVertexBuffer != nil {
		a.textVertexBuffer.Release()
	}
	if a.textBindGroup != nil {
		a.textBindGroup.Release()
	}
	if a.textPipeline != nil {
		a.textPipeline.Release()
	}
	if a.glyphSampler != nil {
		a.glyphSampler.Release()
	}
	if a.glyphView != nil {
		a.glyphView.Release()
	}
	if a.glyphTexture != nil {
		a.glyphTexture.Release()
	}

	if a.atlasBindGroup != nil {
		a.atlasBindGroup.Release()
	}
	if a.spriteBindGroup != nil {
		a.spriteBindGroup.Release()
	}
	if a.cameraBuffer != nil {
		a.cameraBuffer.Release()
	}
	if a.spriteBuffer != nil {
		a.spriteBuffer.Release()
	}
	if a.atlasSampler != nil {
		a.atlasSampler.Release()
	}
	if a.atlasView != nil {
		a.atlasView.Release()
	}
	if a.atlasTexture != nil {
		a.atlasTexture.Release()
	}
	if a.spritePipeline != nil {
		a.spritePipeline.Release()
	}

	if a.device != nil {
		a.device.Release()
	}
	if a.adapter != nil {
		a.adapter.Release()
	}
	if a.surface != nil {
		a.surface.Release()
	}
	if a.instance != nil {
		a.instance.Release()
	}

	a.log.Infof("application shut down")
}

func spriteInstanceSize() uint64 {
	return 16 * 4 // 16 float32 fields per record
}
