// Package app wires the window, the GPU passes and the session state into
// the interactive viewer.
package app

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxscope/voxscope/core"
	"github.com/voxscope/voxscope/gpu"
	"github.com/voxscope/voxscope/lasso"
	"github.com/voxscope/voxscope/shaders"
	"github.com/voxscope/voxscope/volume"
)

// Config is the startup configuration of the viewer.
type Config struct {
	DatasetDir  string
	ProfilePath string
	FontPath    string
	Debug       bool
}

type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	Buffers  *gpu.BufferManager
	Raycast  *gpu.RaycastPass
	Gradient *gpu.GradientPass
	MaskPass *gpu.MaskPass
	Picker   gpu.PickReader

	RenderPipeline *wgpu.RenderPipeline
	RenderBG       *wgpu.BindGroup

	StorageTexture *wgpu.Texture
	StorageView    *wgpu.TextureView
	Sampler        *wgpu.Sampler

	TextRenderer     *core.TextRenderer
	TextPipeline     *wgpu.RenderPipeline
	TextAtlasView    *wgpu.TextureView
	TextBindGroup    *wgpu.BindGroup
	TextVertexBuffer *wgpu.Buffer
	TextItems        []core.TextItem
	TextVertexCount  uint32

	Session  *core.Session
	Dataset  *volume.Dataset
	Contours *lasso.ContourSet

	// Lasso capture in progress, in NDC.
	lassoPoints  []mgl32.Vec2
	lassoDrawing bool

	dragging   bool
	wlDragging bool
	lastCursor [2]float64

	maskStatus string
	cfg        Config

	Log core.Logger

	FrameCount int
	FPS        float64
	FPSTime    float64
	LastTime   float64
}

func NewApp(window *glfw.Window, cfg Config, log core.Logger) *App {
	if log == nil {
		log = core.NewNopLogger()
	}
	return &App{
		Window:   window,
		Session:  core.NewSession(log),
		Contours: lasso.NewContourSet(log),
		Log:      log,
		cfg:      cfg,
	}
}

// Init brings up the device, loads the dataset and builds every pipeline.
// Any failure here aborts startup; there is no degraded mode without a
// volume or without the raycaster.
func (a *App) Init() error {
	a.Instance = wgpu.CreateInstance(nil)
	a.Surface = a.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(a.Window))

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("requesting adapter: %w", err)
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("requesting device: %w", err)
	}
	a.Queue = a.Device.GetQueue()

	width, height := a.Window.GetFramebufferSize()
	caps := a.Surface.GetCapabilities(adapter)
	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	a.Surface.Configure(adapter, a.Device, a.Config)

	// Dataset before pipelines: without a volume there is nothing to bind.
	a.Dataset, err = volume.LoadDataset(a.cfg.DatasetDir, a.Log)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}
	center, winWidth := a.Dataset.InitialWindow(a.Log)
	a.Session.SetWindow(center, winWidth)

	a.Session.Profiles, err = core.LoadProfiles(a.cfg.ProfilePath, a.Log)
	if err != nil {
		return fmt.Errorf("loading profiles: %w", err)
	}

	vol := a.Dataset.Volume
	a.Buffers = gpu.NewBufferManager(a.Device, a.Log)
	a.Buffers.UploadVolume(vol)
	a.Buffers.CreateGradientTexture(vol.Width, vol.Height, vol.Depth)
	a.Buffers.UploadChunkGrid(a.Dataset.Chunks)
	a.Buffers.EnsureMask(vol.Width, vol.Height, vol.Depth)
	a.Buffers.EnsurePick(width, height)

	a.Gradient, err = gpu.NewGradientPass(a.Device)
	if err != nil {
		return err
	}
	if err := a.Gradient.Run(a.Buffers, vol.Width, vol.Height, vol.Depth); err != nil {
		return fmt.Errorf("gradient pass: %w", err)
	}

	a.Raycast, err = gpu.NewRaycastPass(a.Device)
	if err != nil {
		return err
	}
	a.MaskPass, err = gpu.NewMaskPass(a.Device)
	if err != nil {
		return err
	}

	if err := a.setupBlitPipeline(); err != nil {
		return err
	}

	var samplerErr error
	a.Sampler, samplerErr = a.Device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if samplerErr != nil {
		return samplerErr
	}

	if a.cfg.FontPath != "" {
		a.TextRenderer, err = core.NewTextRenderer(a.cfg.FontPath, 20)
		if err != nil {
			a.Log.Warnf("text renderer unavailable: %v", err)
			a.TextRenderer = nil
		} else {
			a.setupTextResources()
		}
	}

	a.setupTextures(width, height)
	a.writeUniforms()
	if err := a.rebindRaycast(); err != nil {
		return err
	}

	a.installCallbacks()
	a.LastTime = glfw.GetTime()
	a.Log.Infof("viewer ready: %dx%d window, dataset %s", width, height, a.cfg.DatasetDir)
	return nil
}

func (a *App) setupBlitPipeline() error {
	fsModule, err := a.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Fullscreen VS/FS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.FullscreenWGSL},
	})
	if err != nil {
		return err
	}

	a.RenderPipeline, err = a.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Blit Pipeline",
		Vertex: wgpu.VertexState{
			Module:     fsModule,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     fsModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    a.Config.Format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	return err
}

func (a *App) setupTextures(w, h int) {
	if w == 0 || h == 0 {
		return
	}
	if a.StorageTexture != nil {
		a.StorageTexture.Release()
	}

	var err error
	a.StorageTexture, err = a.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Frame Tex",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageStorageBinding | wgpu.TextureUsageTextureBinding,
		SampleCount:   1,
	})
	if err != nil {
		panic(err)
	}
	a.StorageView, err = a.StorageTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	a.RenderBG, err = a.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: a.RenderPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: a.StorageView},
			{Binding: 1, Sampler: a.Sampler},
		},
	})
	if err != nil {
		panic(err)
	}
}

func (a *App) rebindRaycast() error {
	return a.Raycast.RebuildBindGroup(a.Buffers, a.StorageView)
}

func (a *App) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	a.Config.Width = uint32(w)
	a.Config.Height = uint32(h)
	a.Surface.Configure(a.Adapter, a.Device, a.Config)
	a.setupTextures(w, h)
	a.Buffers.EnsurePick(w, h)
	if err := a.rebindRaycast(); err != nil {
		a.Log.Errorf("rebinding after resize: %v", err)
	}
	a.Session.Scheduler.Invalidate()
}

// writeUniforms rebuilds the raycast uniform block from the session.
func (a *App) writeUniforms() {
	cam := a.Session.Camera
	aspect := float32(a.Config.Width) / float32(a.Config.Height)
	view := cam.ViewMatrix()
	proj := cam.ProjMatrix(aspect)

	vol := a.Dataset.Volume
	chunks := a.Dataset.Chunks
	a.Buffers.UpdateUniforms(gpu.FrameState{
		InvViewProj:  proj.Mul4(view).Inv(),
		Eye:          cam.Position(),
		Cut:          *a.Session.Cut,
		Transfer:     a.Session.Transfer,
		Params:       a.Session.ActiveParams(),
		VolumeDims:   [3]int{vol.Width, vol.Height, vol.Depth},
		ChunkSize:    chunks.ChunkSize,
		ChunkCounts:  [3]int{chunks.NX, chunks.NY, chunks.NZ},
		ScreenWidth:  int(a.Config.Width),
		ScreenHeight: int(a.Config.Height),
		SkipChunks:   true,
		MaskActive:   a.Contours.Len() > 0,
	})
}

// Update runs per frame before Render: mask recompute when the contour set
// changed, then fresh uniforms and HUD text.
func (a *App) Update() {
	if a.Contours.Dirty() {
		a.recomputeMask()
	}

	a.writeUniforms()

	a.ClearText()
	if a.Log.DebugEnabled() {
		a.DrawText(fmt.Sprintf("FPS %.1f  %s", a.FPS, a.qualityLabel()), 10, 10, 1, [4]float32{1, 1, 0, 1})
	}
	a.DrawText(fmt.Sprintf("W/L %.0f/%.0f  contours %d", a.Session.Transfer.Width, a.Session.Transfer.Center, a.Contours.Len()),
		10, 32, 1, [4]float32{1, 1, 1, 1})
	if a.maskStatus != "" {
		a.DrawText(a.maskStatus, 10, 54, 1, [4]float32{0.4, 1, 0.4, 1})
	}
	if a.Session.LassoActive {
		a.DrawText("LASSO", 10, 76, 1, [4]float32{1, 0.5, 0.3, 1})
	}
	a.flushText()
}

func (a *App) qualityLabel() string {
	if a.Session.Scheduler.UsingHQ() {
		return "HQ"
	}
	return "LQ"
}

// recomputeMask reruns the chunked mask pass for the current contour set.
// The model matrix is identity: the volume fills object space.
func (a *App) recomputeMask() {
	a.Contours.ClearDirty()
	vol := a.Dataset.Volume
	err := a.MaskPass.Run(a.Buffers, a.Contours.Contours(), mgl32.Ident4(),
		vol.Width, vol.Height, vol.Depth, func(done, total int) {
			a.maskStatus = fmt.Sprintf("mask %d/%d", done, total)
		})
	if err != nil {
		a.Log.Errorf("mask recompute: %v", err)
		return
	}
	a.maskStatus = ""
	a.Session.Scheduler.Invalidate()
}

func (a *App) Render() {
	sched := a.Session.Scheduler
	if !sched.ShouldRender() {
		return
	}

	nextTexture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		a.Log.Errorf("acquiring surface texture: %v", err)
		return
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		a.Log.Errorf("creating surface view: %v", err)
		return
	}
	defer view.Release()

	encoder, err := a.Device.CreateCommandEncoder(nil)
	if err != nil {
		a.Log.Errorf("creating encoder: %v", err)
		return
	}

	if err := a.Raycast.Dispatch(encoder, a.Config.Width, a.Config.Height); err != nil {
		a.Log.Errorf("raycast pass: %v", err)
		return
	}

	rPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	rPass.SetPipeline(a.RenderPipeline)
	rPass.SetBindGroup(0, a.RenderBG, nil)
	rPass.Draw(3, 1, 0, 0)

	if a.TextVertexCount > 0 && a.TextVertexBuffer != nil && a.TextPipeline != nil {
		rPass.SetPipeline(a.TextPipeline)
		rPass.SetBindGroup(0, a.TextBindGroup, nil)
		rPass.SetVertexBuffer(0, a.TextVertexBuffer, 0, a.TextVertexBuffer.GetSize())
		rPass.Draw(a.TextVertexCount, 1, 0, 0)
	}
	if err := rPass.End(); err != nil {
		a.Log.Errorf("render pass: %v", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		a.Log.Errorf("encoder finish: %v", err)
		return
	}
	a.Queue.Submit(cmd)
	a.Surface.Present()
	sched.FrameRendered()

	now := glfw.GetTime()
	a.FrameCount++
	a.FPSTime += now - a.LastTime
	a.LastTime = now
	if a.FPSTime >= 1.0 {
		a.FPS = float64(a.FrameCount) / a.FPSTime
		a.FrameCount = 0
		a.FPSTime = 0
	}
}

func (a *App) ClearText() {
	a.TextItems = a.TextItems[:0]
	a.TextVertexCount = 0
}

func (a *App) DrawText(text string, x, y, scale float32, color [4]float32) {
	a.TextItems = append(a.TextItems, core.TextItem{
		Text:     text,
		Position: [2]float32{x, y},
		Scale:    scale,
		Color:    color,
	})
}

func (a *App) flushText() {
	if a.TextRenderer == nil || len(a.TextItems) == 0 {
		return
	}
	vertices := a.TextRenderer.BuildVertices(a.TextItems, int(a.Config.Width), int(a.Config.Height))
	if len(vertices) == 0 {
		return
	}
	vSize := uint64(len(vertices) * int(unsafe.Sizeof(core.TextVertex{})))
	if a.TextVertexBuffer == nil || a.TextVertexBuffer.GetSize() < vSize {
		if a.TextVertexBuffer != nil {
			a.TextVertexBuffer.Release()
		}
		a.TextVertexBuffer, _ = a.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Text VB",
			Size:  vSize,
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
	}
	a.Queue.WriteBuffer(a.TextVertexBuffer, 0, unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), vSize))
	a.TextVertexCount = uint32(len(vertices))
}

func (a *App) setupTextResources() {
	tr := a.TextRenderer
	w, h := tr.AtlasImage.Bounds().Dx(), tr.AtlasImage.Bounds().Dy()
	tex, err := a.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Text Atlas",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		panic(err)
	}
	a.Queue.WriteTexture(tex.AsImageCopy(), tr.AtlasImage.Pix, &wgpu.TextureDataLayout{
		BytesPerRow:  uint32(w),
		RowsPerImage: uint32(h),
	}, &wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1})
	a.TextAtlasView, _ = tex.CreateView(nil)

	textMod, err := a.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Text Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.TextWGSL},
	})
	if err != nil {
		a.Log.Errorf("creating text shader: %v", err)
		return
	}

	a.TextPipeline, err = a.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Text Pipeline",
		Vertex: wgpu.VertexState{
			Module:     textMod,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(core.TextVertex{})),
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     textMod,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format: a.Config.Format,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOne,
						Operation: wgpu.BlendOperationAdd,
					},
				},
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		a.Log.Errorf("creating text pipeline: %v", err)
		return
	}

	a.TextBindGroup, err = a.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: a.TextPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: a.TextAtlasView},
			{Binding: 1, Sampler: a.Sampler},
		},
	})
	if err != nil {
		a.Log.Errorf("creating text bind group: %v", err)
	}
}
