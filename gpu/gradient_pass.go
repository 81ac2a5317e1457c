package gpu

import (
	"encoding/binary"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/voxscope/voxscope/shaders"
)

// GradientPass runs the central-difference shader once after the volume
// upload and leaves the result in the manager's gradient texture.
type GradientPass struct {
	pipeline  *wgpu.ComputePipeline
	uniformUB *wgpu.Buffer
}

func NewGradientPass(device *wgpu.Device) (*GradientPass, error) {
	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Gradient CS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.GradientWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("creating gradient shader: %w", err)
	}

	pipeline, err := device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: "Gradient Pipeline",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating gradient pipeline: %w", err)
	}
	return &GradientPass{pipeline: pipeline}, nil
}

// Run dispatches one thread per voxel and blocks until the gradients are
// written. The pass runs once per dataset, so the wait is fine.
func (p *GradientPass) Run(m *BufferManager, width, height, depth int) error {
	device := m.Device

	dims := make([]byte, 16)
	binary.LittleEndian.PutUint32(dims[0:], uint32(width))
	binary.LittleEndian.PutUint32(dims[4:], uint32(height))
	binary.LittleEndian.PutUint32(dims[8:], uint32(depth))
	if p.uniformUB == nil {
		var err error
		p.uniformUB, err = device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "GradientUB",
			Size:  16,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
	}
	device.GetQueue().WriteBuffer(p.uniformUB, 0, dims)

	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: p.pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: p.uniformUB, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: m.VolumeView},
			{Binding: 2, TextureView: m.GradientView},
		},
	})
	if err != nil {
		return fmt.Errorf("creating gradient bind group: %w", err)
	}

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
		(uint32(depth)+3)/4,
	)
	if err := pass.End(); err != nil {
		return err
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	device.GetQueue().Submit(cmd)
	device.Poll(true, nil)
	return nil
}
