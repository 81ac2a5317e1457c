package gpu

import (
	"encoding/binary"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// PickReader reads one object id back from the pick buffer. Readback is a
// copy plus a blocking map; it only runs on click, never per frame.
type PickReader struct {
	readback *wgpu.Buffer
}

// ReadAt returns the object id rendered at pixel (x, y) of the last frame.
func (r *PickReader) ReadAt(m *BufferManager, x, y, width, height int) (uint32, error) {
	if x < 0 || x >= width || y < 0 || y >= height {
		return 0, fmt.Errorf("pick coordinates (%d, %d) outside %dx%d", x, y, width, height)
	}
	device := m.Device

	if r.readback == nil {
		var err error
		r.readback, err = device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "PickReadback",
			Size:  4,
			Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
		})
		if err != nil {
			return 0, err
		}
	}

	encoder, err := device.CreateCommandEncoder(nil)
	if err != nil {
		return 0, err
	}
	offset := uint64((y*width + x) * 4)
	encoder.CopyBufferToBuffer(m.PickBuf, offset, r.readback, 0, 4)
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return 0, err
	}
	device.GetQueue().Submit(cmd)

	done := false
	ok := false
	r.readback.MapAsync(wgpu.MapModeRead, 0, 4, func(status wgpu.BufferMapAsyncStatus) {
		done = true
		ok = status == wgpu.BufferMapAsyncStatusSuccess
	})
	for !done {
		device.Poll(true, nil)
	}
	if !ok {
		return 0, fmt.Errorf("mapping pick readback failed")
	}
	defer r.readback.Unmap()

	data := r.readback.GetMappedRange(0, 4)
	return binary.LittleEndian.Uint32(data), nil
}
