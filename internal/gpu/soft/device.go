// Package soft implements gpu.Device on the CPU. It executes program
// kernels instead of GLSL and rasterizes with edge functions, which makes
// it usable headless and deterministic in tests.
package soft

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/voxelizer/internal/gpu"
	"github.com/Faultbox/voxelizer/pkg/math"
)

// Options configures a software device.
type Options struct {
	// ConservativeRaster exposes conservative rasterization.
	ConservativeRaster bool
	// Max3DTextureSize is the largest extent of a 3D texture (default 2048).
	Max3DTextureSize int
	// MemoryLimit caps the bytes held by live textures (0 = unlimited).
	MemoryLimit int
	// Width and Height size the default viewport (default 640x480).
	Width, Height int
}

// Stats counts work submitted to the device.
type Stats struct {
	DrawCalls      int
	InstancedDraws int
	Instances      int
	Primitives     int
	Fragments      int
	Clears         int
	LiveTextures   int
	LivePrograms   int
	LiveMeshes     int
}

type texture struct {
	desc gpu.Texture3DDesc
	data []byte
}

type program struct {
	src      gpu.ProgramSource
	uniforms *gpu.Uniforms
}

type imageBinding struct {
	id     gpu.TextureID
	access gpu.Access
}

// Device is a single-threaded software device.
type Device struct {
	opts Options
	log  *zap.Logger

	state gpu.RasterState

	nextID   uint32
	textures map[gpu.TextureID]*texture
	programs map[gpu.ProgramID]*program
	meshes   map[gpu.MeshID]gpu.MeshData

	current  gpu.ProgramID
	samplers map[int]gpu.TextureID
	images   map[int]imageBinding

	depth     []float32
	allocated int
	stats     Stats
}

// New creates a software device. The initial raster state mirrors a
// typical 3D renderer: depth test and back-face culling on, all color
// channels writable.
func New(opts Options, log *zap.Logger) *Device {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Max3DTextureSize <= 0 {
		opts.Max3DTextureSize = 2048
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 640, 480
	}

	d := &Device{
		opts:     opts,
		log:      log,
		textures: make(map[gpu.TextureID]*texture),
		programs: make(map[gpu.ProgramID]*program),
		meshes:   make(map[gpu.MeshID]gpu.MeshData),
		samplers: make(map[int]gpu.TextureID),
		images:   make(map[int]imageBinding),
		state: gpu.RasterState{
			CullFace:  true,
			DepthTest: true,
			ColorMask: [4]bool{true, true, true, true},
			Viewport:  [4]int32{0, 0, int32(opts.Width), int32(opts.Height)},
		},
	}

	log.Debug("software device created",
		zap.Bool("conservativeRaster", opts.ConservativeRaster),
		zap.Int("max3DTextureSize", opts.Max3DTextureSize))
	return d
}

// Capabilities implements gpu.Device.
func (d *Device) Capabilities() gpu.Capabilities {
	return gpu.Capabilities{
		ConservativeRaster: d.opts.ConservativeRaster,
		Max3DTextureSize:   d.opts.Max3DTextureSize,
		Renderer:           "software",
	}
}

// RasterState implements gpu.Device.
func (d *Device) RasterState() gpu.RasterState {
	return d.state
}

// ApplyRasterState implements gpu.Device.
func (d *Device) ApplyRasterState(s gpu.RasterState) error {
	if s.ConservativeRaster && !d.opts.ConservativeRaster {
		return fmt.Errorf("conservative rasterization: %w", gpu.ErrUnsupported)
	}
	if s.Viewport[2] <= 0 || s.Viewport[3] <= 0 {
		return fmt.Errorf("viewport %v: %w", s.Viewport, gpu.ErrInvalidValue)
	}
	d.state = s
	return nil
}

// Clear resets the depth buffer. The software device has no color target.
func (d *Device) Clear() {
	d.stats.Clears++
	d.ensureDepth()
	for i := range d.depth {
		d.depth[i] = 1
	}
}

func (d *Device) ensureDepth() {
	n := int(d.state.Viewport[2]) * int(d.state.Viewport[3])
	if len(d.depth) != n {
		d.depth = make([]float32, n)
		for i := range d.depth {
			d.depth[i] = 1
		}
	}
}

func (d *Device) allocID() uint32 {
	d.nextID++
	return d.nextID
}

// CreateTexture3D implements gpu.Device.
func (d *Device) CreateTexture3D(desc gpu.Texture3DDesc, data []byte) (gpu.TextureID, error) {
	limit := d.opts.Max3DTextureSize
	if desc.Width <= 0 || desc.Height <= 0 || desc.Depth <= 0 ||
		desc.Width > limit || desc.Height > limit || desc.Depth > limit {
		return 0, fmt.Errorf("texture %dx%dx%d: %w", desc.Width, desc.Height, desc.Depth, gpu.ErrInvalidValue)
	}
	if desc.Format.BytesPerTexel() == 0 {
		return 0, fmt.Errorf("texture format %v: %w", desc.Format, gpu.ErrInvalidValue)
	}

	size := desc.Size()
	if data != nil && len(data) != size {
		return 0, fmt.Errorf("texture data is %d bytes, want %d: %w", len(data), size, gpu.ErrInvalidValue)
	}
	if d.opts.MemoryLimit > 0 && d.allocated+size > d.opts.MemoryLimit {
		return 0, fmt.Errorf("texture %d bytes with %d in use: %w", size, d.allocated, gpu.ErrOutOfMemory)
	}

	buf := make([]byte, size)
	copy(buf, data)

	id := gpu.TextureID(d.allocID())
	d.textures[id] = &texture{desc: desc, data: buf}
	d.allocated += size
	return id, nil
}

// DeleteTexture3D implements gpu.Device. Bindings of the texture are reset.
func (d *Device) DeleteTexture3D(id gpu.TextureID) {
	tex, ok := d.textures[id]
	if !ok {
		return
	}
	d.allocated -= len(tex.data)
	delete(d.textures, id)

	for unit, bound := range d.samplers {
		if bound == id {
			delete(d.samplers, unit)
		}
	}
	for unit, b := range d.images {
		if b.id == id {
			delete(d.images, unit)
		}
	}
}

// ReadTexture3D implements gpu.Device.
func (d *Device) ReadTexture3D(id gpu.TextureID) ([]byte, error) {
	tex, ok := d.textures[id]
	if !ok {
		return nil, fmt.Errorf("texture %d: %w", id, gpu.ErrInvalidValue)
	}
	out := make([]byte, len(tex.data))
	copy(out, tex.data)
	return out, nil
}

// BindTexture3D implements gpu.Device.
func (d *Device) BindTexture3D(unit int, id gpu.TextureID) {
	if id == 0 {
		delete(d.samplers, unit)
		return
	}
	d.samplers[unit] = id
}

// BindImage3D implements gpu.Device.
func (d *Device) BindImage3D(unit int, id gpu.TextureID, access gpu.Access) {
	if id == 0 {
		delete(d.images, unit)
		return
	}
	d.images[unit] = imageBinding{id: id, access: access}
}

// BoundTexture returns the texture bound for sampling on unit.
func (d *Device) BoundTexture(unit int) gpu.TextureID {
	return d.samplers[unit]
}

// BoundImage returns the texture and access bound to image unit.
func (d *Device) BoundImage(unit int) (gpu.TextureID, gpu.Access) {
	b := d.images[unit]
	return b.id, b.access
}

// TextureDesc returns the description of a live texture.
func (d *Device) TextureDesc(id gpu.TextureID) (gpu.Texture3DDesc, bool) {
	tex, ok := d.textures[id]
	if !ok {
		return gpu.Texture3DDesc{}, false
	}
	return tex.desc, true
}

// CompileProgram implements gpu.Device. A program needs a kernel or at
// least fragment source to be accepted.
func (d *Device) CompileProgram(src gpu.ProgramSource) (gpu.ProgramID, error) {
	if src.Kernel == nil && src.Fragment == "" {
		return 0, fmt.Errorf("program %q has no fragment stage: %w", src.Name, gpu.ErrCompile)
	}
	id := gpu.ProgramID(d.allocID())
	d.programs[id] = &program{src: src, uniforms: gpu.NewUniforms()}
	d.log.Debug("program compiled", zap.String("name", src.Name), zap.Uint32("id", uint32(id)))
	return id, nil
}

// DeleteProgram implements gpu.Device.
func (d *Device) DeleteProgram(id gpu.ProgramID) {
	delete(d.programs, id)
	if d.current == id {
		d.current = 0
	}
}

// UseProgram implements gpu.Device.
func (d *Device) UseProgram(id gpu.ProgramID) {
	d.current = id
}

// SetUniformMat4 implements gpu.Device.
func (d *Device) SetUniformMat4(p gpu.ProgramID, name string, m math.Mat4) {
	if prog, ok := d.programs[p]; ok {
		prog.uniforms.Mat4[name] = m
	}
}

// SetUniformInt implements gpu.Device.
func (d *Device) SetUniformInt(p gpu.ProgramID, name string, v int32) {
	if prog, ok := d.programs[p]; ok {
		prog.uniforms.Int[name] = v
	}
}

// SetUniformVec4 implements gpu.Device.
func (d *Device) SetUniformVec4(p gpu.ProgramID, name string, v math.Vec4) {
	if prog, ok := d.programs[p]; ok {
		prog.uniforms.Vec4[name] = v
	}
}

// Uniforms returns the uniform state of a program, or nil.
func (d *Device) Uniforms(p gpu.ProgramID) *gpu.Uniforms {
	if prog, ok := d.programs[p]; ok {
		return prog.uniforms
	}
	return nil
}

// UploadMesh implements gpu.Device.
func (d *Device) UploadMesh(data gpu.MeshData) (gpu.MeshID, error) {
	for _, idx := range data.Indices {
		if int(idx) >= len(data.Positions) {
			return 0, fmt.Errorf("index %d out of range of %d positions: %w", idx, len(data.Positions), gpu.ErrInvalidValue)
		}
	}
	mesh := gpu.MeshData{
		Positions: append([]math.Vec3(nil), data.Positions...),
		Indices:   append([]uint32(nil), data.Indices...),
	}
	id := gpu.MeshID(d.allocID())
	d.meshes[id] = mesh
	return id, nil
}

// DeleteMesh implements gpu.Device.
func (d *Device) DeleteMesh(id gpu.MeshID) {
	delete(d.meshes, id)
}

// DrawMesh runs the current program's kernel over every triangle.
// Programs without a kernel only count the draw.
func (d *Device) DrawMesh(id gpu.MeshID) {
	d.stats.DrawCalls++

	mesh, ok := d.meshes[id]
	if !ok {
		return
	}
	prog, ok := d.programs[d.current]
	if !ok || prog.src.Kernel == nil {
		return
	}

	d.ensureDepth()
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		tri := [3]math.Vec3{
			mesh.Positions[mesh.Indices[i]],
			mesh.Positions[mesh.Indices[i+1]],
			mesh.Positions[mesh.Indices[i+2]],
		}
		prog.src.Kernel.Geometry(prog.uniforms, tri, func(p gpu.Primitive) {
			d.stats.Primitives++
			d.rasterize(prog, p)
		})
	}
}

// DrawMeshInstanced counts the instanced draw. The software device has no
// color target, so instances are not shaded.
func (d *Device) DrawMeshInstanced(id gpu.MeshID, instances int) {
	if _, ok := d.meshes[id]; !ok {
		return
	}
	d.stats.InstancedDraws++
	d.stats.Instances += instances
}

// Stats returns counters for submitted work and live resources.
func (d *Device) Stats() Stats {
	s := d.stats
	s.LiveTextures = len(d.textures)
	s.LivePrograms = len(d.programs)
	s.LiveMeshes = len(d.meshes)
	return s
}

// imageUnits adapts the device's image bindings to gpu.ImageStore.
type imageUnits struct {
	d *Device
}

func (u imageUnits) Store(unit, x, y, z int, texel [4]uint8) {
	b, ok := u.d.images[unit]
	if !ok || !b.access.Writes() {
		return
	}
	tex, ok := u.d.textures[b.id]
	if !ok {
		return
	}
	desc := tex.desc
	if x < 0 || y < 0 || z < 0 || x >= desc.Width || y >= desc.Height || z >= desc.Depth {
		return
	}
	off := ((z*desc.Height+y)*desc.Width + x) * 4
	copy(tex.data[off:off+4], texel[:])
}

var _ gpu.Device = (*Device)(nil)
