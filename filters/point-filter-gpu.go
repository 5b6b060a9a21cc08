package filters

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/soypat/pixlab"
)

//go:embed point-filter-gpu.wgsl
var baseShaderWGSL string

const gpuWorkgroupSide = 8

var errGPUNotInitialized = errorString("GPU filter not initialized")

// gpuUniforms mirrors the Uniforms struct of the base shader.
type gpuUniforms struct {
	Width, Height float32
	Param0        float32
	Param1        float32
}

func (u *gpuUniforms) bytes() []byte {
	return wgpu.ToBytes([]float32{u.Width, u.Height, u.Param0, u.Param1})
}

// gpuPipeline holds the objects compiled once per transform.
type gpuPipeline struct {
	device   *wgpu.Device
	queue    *wgpu.Queue
	module   *wgpu.ShaderModule
	pipeline *wgpu.ComputePipeline
	layout   *wgpu.BindGroupLayout
	uniforms *wgpu.Buffer
}

// gpuTarget holds the buffers sized for one image resolution.
type gpuTarget struct {
	width, height int
	input         *wgpu.Buffer
	output        *wgpu.Buffer
	staging       *wgpu.Buffer
}

func (t *gpuTarget) size() uint64 { return uint64(t.width) * uint64(t.height) * 4 }

func (t *gpuTarget) release() {
	for _, b := range []*wgpu.Buffer{t.input, t.output, t.staging} {
		if b != nil {
			b.Release()
		}
	}
	*t = gpuTarget{}
}

// PointFilterGPU runs a WGSL pixel transform over RGBA8888 buffers. The
// transform must define fn transform(c: vec4<f32>) -> vec4<f32> over
// normalised channels and may read the user parameters u.param0 and u.param1.
// A PointFilterGPU is safe for concurrent use.
type PointFilterGPU struct {
	mu     sync.Mutex
	pipe   gpuPipeline
	target gpuTarget
	params gpuUniforms
	inited bool
}

// Init compiles transformCode into a compute pipeline on device.
func (f *PointFilterGPU) Init(device *wgpu.Device, queue *wgpu.Queue, transformCode string) (err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inited {
		return errors.New("GPU filter already initialized")
	}
	p := gpuPipeline{device: device, queue: queue}
	defer func() {
		if err != nil {
			p.release()
		}
	}()
	code := strings.Replace(baseShaderWGSL, "// TRANSFORM_PLACEHOLDER", transformCode, 1)
	p.module, err = device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: code},
	})
	if err != nil {
		return fmt.Errorf("compiling pixel transform: %w", err)
	}
	p.pipeline, err = device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Compute: wgpu.ProgrammableStageDescriptor{Module: p.module, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("creating compute pipeline: %w", err)
	}
	p.layout = p.pipeline.GetBindGroupLayout(0)
	p.uniforms, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Size:  16,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("creating uniform buffer: %w", err)
	}
	f.pipe = p
	f.inited = true
	return nil
}

// Process runs the transform over src and returns the result in a new
// RGBA8888 buffer. src is not modified.
func (f *PointFilterGPU) Process(src *pixlab.Buffer) (*pixlab.Buffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case !f.inited:
		return nil, errGPUNotInitialized
	case src.Empty():
		return nil, pixlab.ErrEmptyImage
	case src.Shape() != pixlab.ShapeRGBA8888:
		return nil, fmt.Errorf("%w: GPU filters need %s, got %s", errShapeMismatch, pixlab.ShapeRGBA8888, src.Shape())
	}
	w, h := src.Width(), src.Height()
	if err := f.resize(w, h); err != nil {
		return nil, err
	}
	f.params.Width, f.params.Height = float32(w), float32(h)
	if err := f.pipe.queue.WriteBuffer(f.pipe.uniforms, 0, f.params.bytes()); err != nil {
		return nil, fmt.Errorf("writing uniforms: %w", err)
	}
	if err := f.pipe.queue.WriteBuffer(f.target.input, 0, src.Buffer()); err != nil {
		return nil, fmt.Errorf("uploading pixels: %w", err)
	}

	if err := f.submit(); err != nil {
		return nil, err
	}
	dst := pixlab.NewBuffer(w, h, pixlab.ShapeRGBA8888)
	if err := f.read(dst.Buffer()); err != nil {
		return nil, err
	}
	return dst, nil
}

// resize reallocates the image buffers when the resolution changes.
func (f *PointFilterGPU) resize(w, h int) error {
	if f.target.width == w && f.target.height == h {
		return nil
	}
	f.target.release()
	t := gpuTarget{width: w, height: h}
	bufs := []struct {
		dst   **wgpu.Buffer
		usage wgpu.BufferUsage
		name  string
	}{
		{&t.input, wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst, "input"},
		{&t.output, wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc, "output"},
		{&t.staging, wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst, "staging"},
	}
	for _, b := range bufs {
		buf, err := f.pipe.device.CreateBuffer(&wgpu.BufferDescriptor{Size: t.size(), Usage: b.usage})
		if err != nil {
			t.release()
			return fmt.Errorf("creating %s buffer: %w", b.name, err)
		}
		*b.dst = buf
	}
	f.target = t
	return nil
}

// submit records the compute pass and the copy into the staging buffer in a
// single command buffer.
func (f *PointFilterGPU) submit() error {
	group, err := f.pipe.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: f.pipe.layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: f.pipe.uniforms, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: f.target.input, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: f.target.output, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("creating bind group: %w", err)
	}
	defer group.Release()

	enc, err := f.pipe.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("creating command encoder: %w", err)
	}
	defer enc.Release()

	groupsX := (f.target.width + gpuWorkgroupSide - 1) / gpuWorkgroupSide
	groupsY := (f.target.height + gpuWorkgroupSide - 1) / gpuWorkgroupSide
	pass := enc.BeginComputePass(nil)
	pass.SetPipeline(f.pipe.pipeline)
	pass.SetBindGroup(0, group, nil)
	pass.DispatchWorkgroups(uint32(groupsX), uint32(groupsY), 1)
	err = pass.End()
	pass.Release()
	if err != nil {
		return fmt.Errorf("ending compute pass: %w", err)
	}
	err = enc.CopyBufferToBuffer(f.target.output, 0, f.target.staging, 0, f.target.size())
	if err != nil {
		return fmt.Errorf("copying to staging buffer: %w", err)
	}

	cmd, err := enc.Finish(nil)
	if err != nil {
		return fmt.Errorf("finishing commands: %w", err)
	}
	defer cmd.Release()
	f.pipe.queue.Submit(cmd)
	return nil
}

// read blocks until the staging buffer is mapped and copies it into dst.
func (f *PointFilterGPU) read(dst []byte) error {
	size := f.target.size()
	mapped := make(chan wgpu.BufferMapAsyncStatus, 1)
	err := f.target.staging.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		mapped <- status
	})
	if err != nil {
		return fmt.Errorf("mapping staging buffer: %w", err)
	}
	f.pipe.device.Poll(true, nil)
	if status := <-mapped; status != wgpu.BufferMapAsyncStatusSuccess {
		return fmt.Errorf("mapping staging buffer: %v", status)
	}
	copy(dst, f.target.staging.GetMappedRange(0, uint(size)))
	return f.target.staging.Unmap()
}

func (p *gpuPipeline) release() {
	if p.uniforms != nil {
		p.uniforms.Release()
	}
	if p.layout != nil {
		p.layout.Release()
	}
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	if p.module != nil {
		p.module.Release()
	}
	*p = gpuPipeline{}
}

// Release frees the device memory held by the filter. The device and queue
// passed to Init are owned by the caller and left untouched.
func (f *PointFilterGPU) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.target.release()
	f.pipe.release()
	f.inited = false
}
