package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"

	"github.com/Faultbox/voxelizer/internal/voxel"
)

// SliceFormat is the image encoding of a slice atlas.
type SliceFormat string

const (
	SliceWebP SliceFormat = "webp"
	SlicePNG  SliceFormat = "png"
	SliceTGA  SliceFormat = "tga"
)

// ParseSliceFormat parses a format name. The empty string is not a format.
func ParseSliceFormat(s string) (SliceFormat, error) {
	switch f := SliceFormat(strings.ToLower(s)); f {
	case SliceWebP, SlicePNG, SliceTGA:
		return f, nil
	default:
		return "", fmt.Errorf("unknown slice format %q", s)
	}
}

// Ext returns the file extension including the dot.
func (f SliceFormat) Ext() string {
	return "." + string(f)
}

// AtlasLayout returns the column and row count of the slice atlas for a
// grid of depth d. Slices fill rows left to right.
func AtlasLayout(d int) (cols, rows int) {
	cols = 1
	for cols*cols < d {
		cols++
	}
	rows = (d + cols - 1) / cols
	return cols, rows
}

// SliceAtlas lays out every z slice of g side by side, each scaled by
// scale with nearest-neighbour sampling. Image row 0 is grid row y = 0.
func SliceAtlas(g *voxel.Grid, scale int) *image.NRGBA {
	if scale < 1 {
		scale = 1
	}
	w, h := g.Dims.W, g.Dims.H
	cols, rows := AtlasLayout(g.Dims.D)
	atlas := image.NewNRGBA(image.Rect(0, 0, cols*w*scale, rows*h*scale))

	for z := 0; z < g.Dims.D; z++ {
		slice := &image.NRGBA{
			Pix:    g.Slice(z),
			Stride: w * 4,
			Rect:   image.Rect(0, 0, w, h),
		}
		col, row := z%cols, z/cols
		dst := image.Rect(col*w*scale, row*h*scale, (col+1)*w*scale, (row+1)*h*scale)
		draw.NearestNeighbor.Scale(atlas, dst, slice, slice.Bounds(), draw.Src, nil)
	}
	return atlas
}

// EncodeImage writes img in format f.
func EncodeImage(w io.Writer, img image.Image, f SliceFormat) error {
	switch f {
	case SliceWebP:
		return nativewebp.Encode(w, img, nil)
	case SlicePNG:
		return png.Encode(w, img)
	case SliceTGA:
		return tga.Encode(w, img)
	default:
		return fmt.Errorf("unknown slice format %q", string(f))
	}
}

// WriteSlices encodes the slice atlas of g to w.
func WriteSlices(w io.Writer, g *voxel.Grid, f SliceFormat, scale int) error {
	return EncodeImage(w, SliceAtlas(g, scale), f)
}

// SaveSlices writes the slice atlas of g to path. The format follows the
// file extension.
func SaveSlices(path string, g *voxel.Grid, scale int) error {
	f, err := ParseSliceFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating slice atlas: %w", err)
	}
	if err := WriteSlices(out, g, f, scale); err != nil {
		out.Close()
		return fmt.Errorf("encoding %s slice atlas: %w", f, err)
	}
	return out.Close()
}
