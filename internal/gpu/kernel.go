package gpu

import "github.com/Faultbox/voxelizer/pkg/math"

// Kernel is the Go rendition of a program's geometry and fragment stages,
// run by devices that cannot execute GLSL.
type Kernel interface {
	// Geometry receives one model-space triangle and emits zero or more
	// clip-space primitives.
	Geometry(u *Uniforms, tri [3]math.Vec3, emit func(Primitive))
	// Fragment runs once per rasterized fragment.
	Fragment(u *Uniforms, f Fragment, img ImageStore)
}

// Primitive is a clip-space triangle leaving the geometry stage.
type Primitive struct {
	Clip  [3]math.Vec4
	Layer int // flat varying
}

// Fragment is a rasterized sample.
type Fragment struct {
	NDC    math.Vec3
	Layer  int
	PixelX int
	PixelY int
}

// ImageStore is the image load/store view a fragment stage writes through.
// Out-of-bounds stores are discarded.
type ImageStore interface {
	Store(unit, x, y, z int, texel [4]uint8)
}

// Uniforms is the uniform state of a program.
type Uniforms struct {
	Mat4 map[string]math.Mat4
	Int  map[string]int32
	Vec4 map[string]math.Vec4
}

// NewUniforms returns empty uniform storage.
func NewUniforms() *Uniforms {
	return &Uniforms{
		Mat4: make(map[string]math.Mat4),
		Int:  make(map[string]int32),
		Vec4: make(map[string]math.Vec4),
	}
}
