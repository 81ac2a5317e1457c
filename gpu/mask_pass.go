package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxscope/voxscope/lasso"
	"github.com/voxscope/voxscope/shaders"
)

const (
	maskUniformSize   = 96
	contourHeaderSize = 96
)

// MaskPass rebuilds the visibility mask on the GPU. The volume is walked
// in z-slabs, one submission each with a hard wait in between, so a full
// rebuild never hands the device a watchdog-sized dispatch. Mirrors
// lasso.MaskKernel.
type MaskPass struct {
	pipeline   *wgpu.ComputePipeline
	uniformUB  *wgpu.Buffer
	headersBuf *wgpu.Buffer
	pointsBuf  *wgpu.Buffer

	running bool
}

func NewMaskPass(device *wgpu.Device) (*MaskPass, error) {
	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Lasso Mask CS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.LassoMaskWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("creating mask shader: %w", err)
	}

	pipeline, err := device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: "Lasso Mask Pipeline",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating mask pipeline: %w", err)
	}
	return &MaskPass{pipeline: pipeline}, nil
}

// Run recomputes the whole mask buffer. Chunks are strictly sequential;
// progress fires after each one. A Run while another is in flight is
// rejected.
func (p *MaskPass) Run(m *BufferManager, contours []*lasso.Contour, model mgl32.Mat4, width, height, depth int, progress lasso.ProgressFunc) error {
	if p.running {
		return fmt.Errorf("mask pass already in flight")
	}
	p.running = true
	defer func() { p.running = false }()

	device := m.Device
	p.uploadContours(m, contours)

	if p.uniformUB == nil {
		var err error
		p.uniformUB, err = device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "MaskUB",
			Size:  maskUniformSize,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
	}

	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: p.pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: p.uniformUB, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: p.headersBuf, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: p.pointsBuf, Size: wgpu.WholeSize},
			{Binding: 3, Buffer: m.MaskBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("creating mask bind group: %w", err)
	}

	slab := lasso.DefaultSlicesPerChunk
	total := (depth + slab - 1) / slab

	for chunk := 0; chunk < total; chunk++ {
		z0 := chunk * slab
		slabDepth := slab
		if z0+slabDepth > depth {
			slabDepth = depth - z0
		}
		p.writeUniforms(device, model, width, height, depth, z0, slabDepth, len(contours))

		encoder, err := device.CreateCommandEncoder(nil)
		if err != nil {
			return err
		}
		pass := encoder.BeginComputePass(nil)
		pass.SetPipeline(p.pipeline)
		pass.SetBindGroup(0, bindGroup, nil)
		pass.DispatchWorkgroups(
			(uint32(width)+3)/4,
			(uint32(height)+3)/4,
			(uint32(slabDepth)+3)/4,
		)
		if err := pass.End(); err != nil {
			return err
		}
		cmd, err := encoder.Finish(nil)
		if err != nil {
			return err
		}
		device.GetQueue().Submit(cmd)

		// Wait out each chunk before the next so the device only ever holds
		// one slab of mask work.
		device.Poll(true, nil)

		if progress != nil {
			progress(chunk+1, total)
		}
	}
	return nil
}

func (p *MaskPass) writeUniforms(device *wgpu.Device, model mgl32.Mat4, width, height, depth, z0, slabDepth, contourCount int) {
	buf := make([]byte, maskUniformSize)
	putMat4(buf[0:], model)
	binary.LittleEndian.PutUint32(buf[64:], uint32(width))
	binary.LittleEndian.PutUint32(buf[68:], uint32(height))
	binary.LittleEndian.PutUint32(buf[72:], uint32(depth))
	binary.LittleEndian.PutUint32(buf[76:], uint32(z0))
	binary.LittleEndian.PutUint32(buf[80:], uint32(slabDepth))
	binary.LittleEndian.PutUint32(buf[84:], uint32(contourCount))
	device.GetQueue().WriteBuffer(p.uniformUB, 0, buf)
}

// uploadContours packs headers and the shared point pool. Header layout
// matches ContourHeader in lasso_mask.wgsl.
func (p *MaskPass) uploadContours(m *BufferManager, contours []*lasso.Contour) {
	headers := make([]byte, 0, len(contours)*contourHeaderSize)
	points := []byte{}

	for _, c := range contours {
		offset := uint32(len(points) / 8)

		h := make([]byte, contourHeaderSize)
		putMat4(h[0:], c.Proj.Mul4(c.View))
		binary.LittleEndian.PutUint32(h[64:], math.Float32bits(c.AABBMin.X()))
		binary.LittleEndian.PutUint32(h[68:], math.Float32bits(c.AABBMin.Y()))
		binary.LittleEndian.PutUint32(h[72:], math.Float32bits(c.AABBMax.X()))
		binary.LittleEndian.PutUint32(h[76:], math.Float32bits(c.AABBMax.Y()))
		binary.LittleEndian.PutUint32(h[80:], offset)
		binary.LittleEndian.PutUint32(h[84:], uint32(len(c.Points)))
		headers = append(headers, h...)

		for _, pt := range c.Points {
			pb := make([]byte, 8)
			binary.LittleEndian.PutUint32(pb[0:], math.Float32bits(pt.X()))
			binary.LittleEndian.PutUint32(pb[4:], math.Float32bits(pt.Y()))
			points = append(points, pb...)
		}
	}

	if len(headers) == 0 {
		headers = make([]byte, contourHeaderSize)
	}
	if len(points) == 0 {
		points = make([]byte, 8)
	}
	m.ensureBuffer("MaskHeadersBuf", &p.headersBuf, headers, wgpu.BufferUsageStorage, 0)
	m.ensureBuffer("MaskPointsBuf", &p.pointsBuf, points, wgpu.BufferUsageStorage, 0)
}
