// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// VoxelizeVertexShader passes model-space positions to the geometry stage.
//
//go:embed voxelize.vert
var VoxelizeVertexShader string

// VoxelizeGeometryShader replicates each triangle under the three axis
// views.
//
//go:embed voxelize.geom
var VoxelizeGeometryShader string

// VoxelizeFragmentShader maps fragments to grid cells and stores the
// diffuse color into the voxel image.
//
//go:embed voxelize.frag
var VoxelizeFragmentShader string

// DisplayVertexShader places one cube instance per non-empty voxel.
//
//go:embed display.vert
var DisplayVertexShader string

// DisplayFragmentShader shades voxel cubes.
//
//go:embed display.frag
var DisplayFragmentShader string
