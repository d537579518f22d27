package gpu

import "fmt"

// Override applies s on top of the device's current raster state and
// returns a function that restores the previous state. If s cannot be
// applied the previous state is reinstated before returning the error.
//
// Usage:
//
//	restore, err := gpu.Override(dev, s)
//	if err != nil {
//	    return err
//	}
//	defer restore()
func Override(dev Device, s RasterState) (func(), error) {
	prev := dev.RasterState()
	if err := dev.ApplyRasterState(s); err != nil {
		_ = dev.ApplyRasterState(prev)
		return func() {}, fmt.Errorf("apply raster state: %w", err)
	}
	return func() {
		_ = dev.ApplyRasterState(prev)
	}, nil
}

// Masked returns the state with color writes, culling and depth testing
// disabled, as needed by passes that only produce side effects.
func (s RasterState) Masked() RasterState {
	s.CullFace = false
	s.DepthTest = false
	s.ColorMask = [4]bool{}
	return s
}

// WithViewport returns the state with a new viewport.
func (s RasterState) WithViewport(x, y, width, height int32) RasterState {
	s.Viewport = [4]int32{x, y, width, height}
	return s
}
