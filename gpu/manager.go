// Package gpu owns the device-side resources: the volume and gradient
// textures, the chunk range and mask buffers, and the serialized uniform
// block the raycaster reads.
package gpu

import (
	"encoding/binary"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxscope/voxscope/core"
	"github.com/voxscope/voxscope/volume"
)

const raycastUniformSize = 256

// BufferManager creates and re-uploads the long-lived GPU resources. The
// volume texture and chunk buffer are written once at load; the mask buffer
// is rewritten by the mask pass; the uniform block is rewritten every frame.
type BufferManager struct {
	Device *wgpu.Device

	UniformBuf     *wgpu.Buffer
	ChunkRangesBuf *wgpu.Buffer
	MaskBuf        *wgpu.Buffer
	PickBuf        *wgpu.Buffer

	VolumeTex  *wgpu.Texture
	VolumeView *wgpu.TextureView
	VolumeSamp *wgpu.Sampler

	GradientTex  *wgpu.Texture
	GradientView *wgpu.TextureView

	Log core.Logger
}

func NewBufferManager(device *wgpu.Device, log core.Logger) *BufferManager {
	if log == nil {
		log = core.NewNopLogger()
	}
	return &BufferManager{Device: device, Log: log}
}

func (m *BufferManager) ensureBuffer(name string, buf **wgpu.Buffer, data []byte, usage wgpu.BufferUsage, headroom int) bool {
	neededSize := uint64(len(data) + headroom)
	if neededSize%4 != 0 {
		neededSize += 4 - (neededSize % 4)
	}

	current := *buf
	if current == nil || current.GetSize() < neededSize {
		if current != nil {
			current.Release()
		}

		newBuf, err := m.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: name,
			Size:  neededSize,
			Usage: usage | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			panic(err)
		}
		*buf = newBuf

		if len(data) > 0 {
			m.Device.GetQueue().WriteBuffer(*buf, 0, data)
		}
		return true
	}
	if len(data) > 0 {
		m.Device.GetQueue().WriteBuffer(*buf, 0, data)
	}
	return false
}

// UploadVolume creates the 3D density texture and fills it slice by slice.
func (m *BufferManager) UploadVolume(vol *volume.Volume) {
	if m.VolumeTex != nil {
		m.VolumeTex.Release()
	}

	var err error
	m.VolumeTex, err = m.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "VolumeTex",
		Size:          wgpu.Extent3D{Width: uint32(vol.Width), Height: uint32(vol.Height), DepthOrArrayLayers: uint32(vol.Depth)},
		MipLevelCount: 1,
		Dimension:     wgpu.TextureDimension3D,
		Format:        wgpu.TextureFormatR32Float,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		SampleCount:   1,
	})
	if err != nil {
		panic(err)
	}

	data := vol.Data()
	raw := make([]byte, len(data)*4)
	for i, v := range data {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	m.Device.GetQueue().WriteTexture(m.VolumeTex.AsImageCopy(), raw, &wgpu.TextureDataLayout{
		BytesPerRow:  uint32(vol.Width) * 4,
		RowsPerImage: uint32(vol.Height),
	}, &wgpu.Extent3D{Width: uint32(vol.Width), Height: uint32(vol.Height), DepthOrArrayLayers: uint32(vol.Depth)})

	m.VolumeView, err = m.VolumeTex.CreateView(nil)
	if err != nil {
		panic(err)
	}

	if m.VolumeSamp == nil {
		m.VolumeSamp, err = m.Device.CreateSampler(&wgpu.SamplerDescriptor{
			MinFilter:     wgpu.FilterModeLinear,
			MagFilter:     wgpu.FilterModeLinear,
			AddressModeU:  wgpu.AddressModeClampToEdge,
			AddressModeV:  wgpu.AddressModeClampToEdge,
			AddressModeW:  wgpu.AddressModeClampToEdge,
			MaxAnisotropy: 1,
		})
		if err != nil {
			panic(err)
		}
	}
}

// CreateGradientTexture allocates the rgba32float target the gradient pass
// writes into. Filled on the GPU, never uploaded.
func (m *BufferManager) CreateGradientTexture(width, height, depth int) {
	if m.GradientTex != nil {
		m.GradientTex.Release()
	}

	var err error
	m.GradientTex, err = m.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "GradientTex",
		Size:          wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: uint32(depth)},
		MipLevelCount: 1,
		Dimension:     wgpu.TextureDimension3D,
		Format:        wgpu.TextureFormatRGBA32Float,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageStorageBinding,
		SampleCount:   1,
	})
	if err != nil {
		panic(err)
	}
	m.GradientView, err = m.GradientTex.CreateView(nil)
	if err != nil {
		panic(err)
	}
}

// UploadChunkGrid writes the (min, max) ranges in the converter layout the
// shader indexes directly.
func (m *BufferManager) UploadChunkGrid(grid *volume.ChunkGrid) bool {
	return m.ensureBuffer("ChunkRangesBuf", &m.ChunkRangesBuf, grid.Bytes(), wgpu.BufferUsageStorage, 0)
}

// EnsureMask sizes the visibility mask buffer for the volume and fills it
// all-visible. The mask pass rewrites it in place afterwards.
func (m *BufferManager) EnsureMask(width, height, depth int) bool {
	n := width * height * depth
	data := make([]byte, n*4)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(data[i*4:], 1)
	}
	return m.ensureBuffer("MaskBuf", &m.MaskBuf, data, wgpu.BufferUsageStorage, 0)
}

// EnsurePick sizes the per-pixel object-id buffer for the framebuffer.
func (m *BufferManager) EnsurePick(width, height int) bool {
	return m.ensureBuffer("PickBuf", &m.PickBuf, make([]byte, width*height*4),
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc, 0)
}

// FrameState is everything the raycast uniform block is built from.
type FrameState struct {
	InvViewProj mgl32.Mat4
	Eye         mgl32.Vec3
	Cut         core.CuttingCube
	Transfer    core.TransferFunction
	Params      core.RenderParams
	LightDir    mgl32.Vec3

	VolumeDims  [3]int
	ChunkSize   int
	ChunkCounts [3]int

	ScreenWidth  int
	ScreenHeight int

	SkipChunks bool
	MaskActive bool
}

// UpdateUniforms serializes the frame state into the 256-byte uniform
// block. Field offsets must match the Uniforms struct in raycast.wgsl.
func (m *BufferManager) UpdateUniforms(s FrameState) {
	buf := make([]byte, raycastUniformSize)

	putMat4(buf[0:], s.InvViewProj)
	putVec4(buf[64:], s.Eye, 0)
	putVec4(buf[80:], s.Cut.Min, 0)
	putVec4(buf[96:], s.Cut.Max, 0)
	putVec4(buf[112:], mgl32.Vec3{
		float32(s.VolumeDims[0]), float32(s.VolumeDims[1]), float32(s.VolumeDims[2]),
	}, float32(s.ChunkSize))

	binary.LittleEndian.PutUint32(buf[128:], uint32(s.ChunkCounts[0]))
	binary.LittleEndian.PutUint32(buf[132:], uint32(s.ChunkCounts[1]))
	binary.LittleEndian.PutUint32(buf[136:], uint32(s.ChunkCounts[2]))
	binary.LittleEndian.PutUint32(buf[140:], boolU32(s.SkipChunks))

	p := s.Params
	putFloats(buf[144:], s.Transfer.Center, s.Transfer.Width, p.DensityScale, p.StepSize)
	putFloats(buf[160:], p.Ambient, p.Diffuse, p.Specular, p.Shininess)
	putFloats(buf[176:], p.SurfaceThreshold, p.SurfaceOffset, float32(p.MaxSteps), boolF32(p.Shading))
	putFloats(buf[192:], p.AccumulatedThreshold, p.TransmittanceThreshold,
		float32(p.ColorMode()), boolF32(s.MaskActive))
	putFloats(buf[208:], p.Background[0], p.Background[1], p.Background[2], 1)
	putFloats(buf[224:], float32(s.ScreenWidth), float32(s.ScreenHeight), 0, 0)
	putVec4(buf[240:], s.LightDir, 0)

	if m.UniformBuf == nil {
		var err error
		m.UniformBuf, err = m.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "RaycastUB",
			Size:  raycastUniformSize,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			panic(err)
		}
	}
	m.Device.GetQueue().WriteBuffer(m.UniformBuf, 0, buf)
}

func putMat4(buf []byte, mat mgl32.Mat4) {
	for i, v := range mat {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
}

func putVec4(buf []byte, v mgl32.Vec3, w float32) {
	putFloats(buf, v.X(), v.Y(), v.Z(), w)
}

func putFloats(buf []byte, vs ...float32) {
	for i, v := range vs {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
}

func boolU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func boolF32(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
