package voxel

import "github.com/Faultbox/voxelizer/internal/gpu"

// Grid is a CPU copy of a volume, x fastest, then y, then z.
type Grid struct {
	Dims   Dims
	Format gpu.Format
	Data   []byte
}

// NewGrid returns an empty RGBA8 grid.
func NewGrid(dims Dims) *Grid {
	return &Grid{
		Dims:   dims,
		Format: gpu.FormatRGBA8,
		Data:   make([]byte, dims.Count()*gpu.FormatRGBA8.BytesPerTexel()),
	}
}

// InBounds reports whether c lies inside the grid.
func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.Z >= 0 &&
		c.X < g.Dims.W && c.Y < g.Dims.H && c.Z < g.Dims.D
}

func (g *Grid) offset(x, y, z int) int {
	return ((z*g.Dims.H+y)*g.Dims.W + x) * 4
}

// At returns the texel of a cell.
func (g *Grid) At(x, y, z int) [4]uint8 {
	o := g.offset(x, y, z)
	return [4]uint8{g.Data[o], g.Data[o+1], g.Data[o+2], g.Data[o+3]}
}

// Set writes the texel of a cell.
func (g *Grid) Set(x, y, z int, v [4]uint8) {
	o := g.offset(x, y, z)
	copy(g.Data[o:o+4], v[:])
}

// Empty reports whether a cell holds the zero texel.
func (g *Grid) Empty(x, y, z int) bool {
	return g.At(x, y, z) == [4]uint8{}
}

// Filled returns every non-empty cell in storage order.
func (g *Grid) Filled() []Cell {
	var cells []Cell
	for z := 0; z < g.Dims.D; z++ {
		for y := 0; y < g.Dims.H; y++ {
			for x := 0; x < g.Dims.W; x++ {
				if !g.Empty(x, y, z) {
					cells = append(cells, Cell{X: x, Y: y, Z: z})
				}
			}
		}
	}
	return cells
}

// FilledCount returns the number of non-empty cells.
func (g *Grid) FilledCount() int {
	n := 0
	for o := 0; o+3 < len(g.Data); o += 4 {
		if g.Data[o]|g.Data[o+1]|g.Data[o+2]|g.Data[o+3] != 0 {
			n++
		}
	}
	return n
}

// Slice returns the texels of layer z, x fastest.
func (g *Grid) Slice(z int) []byte {
	size := g.Dims.W * g.Dims.H * 4
	return g.Data[z*size : (z+1)*size]
}
