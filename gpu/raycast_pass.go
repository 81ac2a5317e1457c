package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/voxscope/voxscope/shaders"
)

// RaycastPass is the per-frame compute pass. Its bind group references the
// output texture and the mask buffer, so it is rebuilt on resize and on
// mask buffer growth.
type RaycastPass struct {
	Pipeline  *wgpu.ComputePipeline
	bindGroup *wgpu.BindGroup
}

func NewRaycastPass(device *wgpu.Device) (*RaycastPass, error) {
	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Raycast CS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.RaycastWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("creating raycast shader: %w", err)
	}

	pipeline, err := device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: "Raycast Pipeline",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating raycast pipeline: %w", err)
	}
	return &RaycastPass{Pipeline: pipeline}, nil
}

// RebuildBindGroup wires the pass to the manager's current resources and
// the output storage texture.
func (p *RaycastPass) RebuildBindGroup(m *BufferManager, outView *wgpu.TextureView) error {
	bg, err := m.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: p.Pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: m.UniformBuf, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: m.VolumeView},
			{Binding: 2, Sampler: m.VolumeSamp},
			{Binding: 3, TextureView: m.GradientView},
			{Binding: 4, Buffer: m.ChunkRangesBuf, Size: wgpu.WholeSize},
			{Binding: 5, Buffer: m.MaskBuf, Size: wgpu.WholeSize},
			{Binding: 6, TextureView: outView},
			{Binding: 7, Buffer: m.PickBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("creating raycast bind group: %w", err)
	}
	p.bindGroup = bg
	return nil
}

// Dispatch records the compute pass for one frame.
func (p *RaycastPass) Dispatch(encoder *wgpu.CommandEncoder, width, height uint32) error {
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, p.bindGroup, nil)
	pass.DispatchWorkgroups((width+7)/8, (height+7)/8, 1)
	return pass.End()
}
