package voxel

// patternBlock is the edge length of a checker block.
const patternBlock = 8

// TestPattern returns the bring-up pattern for dims: 8-cell checker
// blocks where filled blocks carry an RGB gradient of the cell position
// and opaque alpha.
func TestPattern(dims Dims) []byte {
	g := NewGrid(dims)
	for z := 0; z < dims.D; z++ {
		for y := 0; y < dims.H; y++ {
			for x := 0; x < dims.W; x++ {
				if (x/patternBlock+y/patternBlock+z/patternBlock)%2 != 0 {
					continue
				}
				g.Set(x, y, z, [4]uint8{
					gradient(x, dims.W),
					gradient(y, dims.H),
					gradient(z, dims.D),
					255,
				})
			}
		}
	}
	return g.Data
}

func gradient(i, n int) uint8 {
	if n <= 1 {
		return 255
	}
	return uint8(i * 255 / (n - 1))
}
