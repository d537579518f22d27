package soft

import (
	gomath "math"

	"github.com/Faultbox/voxelizer/internal/gpu"
	"github.com/Faultbox/voxelizer/pkg/math"
)

// edge is the line equation a*x + b*y + c, oriented so the triangle
// interior is non-negative.
type edge struct {
	a, b, c float32
}

func newEdge(x0, y0, x1, y1, sign float32) edge {
	a := -(y1 - y0) * sign
	b := (x1 - x0) * sign
	return edge{a: a, b: b, c: -(a*x0 + b*y0)}
}

func (e edge) eval(x, y float32) float32 {
	return e.a*x + e.b*y + e.c
}

// slack is the largest amount the edge function grows inside a pixel
// square around the evaluated center.
func (e edge) slack() float32 {
	return 0.5 * (abs32(e.a) + abs32(e.b))
}

// rasterize scan-converts one clip-space primitive into the viewport and
// runs the program's fragment stage for every covered pixel. Standard
// mode samples pixel centers with an inclusive edge test. Conservative
// mode accepts every pixel whose square touches the triangle.
func (d *Device) rasterize(prog *program, p gpu.Primitive) {
	vp := d.state.Viewport
	vx, vy := float32(vp[0]), float32(vp[1])
	vw, vh := float32(vp[2]), float32(vp[3])

	var sx, sy, sz [3]float32
	for i, c := range p.Clip {
		if c[3] <= 0 {
			return
		}
		n := c.PerspectiveDivide()
		sx[i] = vx + (n.X+1)*0.5*vw
		sy[i] = vy + (n.Y+1)*0.5*vh
		sz[i] = n.Z
	}

	area := (sx[1]-sx[0])*(sy[2]-sy[0]) - (sy[1]-sy[0])*(sx[2]-sx[0])
	if area == 0 {
		return
	}
	if d.state.CullFace && area < 0 {
		return
	}

	sign := float32(1)
	if area < 0 {
		sign = -1
	}
	absArea := area * sign

	// e[i] is the edge opposite vertex i.
	e := [3]edge{
		newEdge(sx[1], sy[1], sx[2], sy[2], sign),
		newEdge(sx[2], sy[2], sx[0], sy[0], sign),
		newEdge(sx[0], sy[0], sx[1], sy[1], sign),
	}

	minX := min(sx[0], sx[1], sx[2])
	maxX := max(sx[0], sx[1], sx[2])
	minY := min(sy[0], sy[1], sy[2])
	maxY := max(sy[0], sy[1], sy[2])
	minZ := min(sz[0], sz[1], sz[2])
	maxZ := max(sz[0], sz[1], sz[2])

	x0 := max(int(vp[0]), int(gomath.Floor(float64(minX))))
	x1 := min(int(vp[0]+vp[2])-1, int(gomath.Ceil(float64(maxX))))
	y0 := max(int(vp[1]), int(gomath.Floor(float64(minY))))
	y1 := min(int(vp[1]+vp[3])-1, int(gomath.Ceil(float64(maxY))))

	conservative := d.state.ConservativeRaster
	store := imageUnits{d: d}

	for py := y0; py <= y1; py++ {
		cy := float32(py) + 0.5
		for px := x0; px <= x1; px++ {
			cx := float32(px) + 0.5

			w0, w1, w2 := e[0].eval(cx, cy), e[1].eval(cx, cy), e[2].eval(cx, cy)
			if conservative {
				// Pixel square must overlap the bounding box and every
				// edge's half-plane.
				if float32(px+1) <= minX || float32(px) >= maxX ||
					float32(py+1) <= minY || float32(py) >= maxY {
					continue
				}
				if w0+e[0].slack() < 0 || w1+e[1].slack() < 0 || w2+e[2].slack() < 0 {
					continue
				}
			} else if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			z := (w0*sz[0] + w1*sz[1] + w2*sz[2]) / absArea
			z = max(minZ, min(maxZ, z))
			if z < -1 || z > 1 {
				continue
			}

			if d.state.DepthTest {
				idx := (py-int(vp[1]))*int(vp[2]) + (px - int(vp[0]))
				depth := (z + 1) * 0.5
				if depth >= d.depth[idx] {
					continue
				}
				d.depth[idx] = depth
			}

			d.stats.Fragments++
			prog.src.Kernel.Fragment(prog.uniforms, gpu.Fragment{
				NDC: math.Vec3{
					X: (cx-vx)/vw*2 - 1,
					Y: (cy-vy)/vh*2 - 1,
					Z: z,
				},
				Layer:  p.Layer,
				PixelX: px,
				PixelY: py,
			}, store)
		}
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
