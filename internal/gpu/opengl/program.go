package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.5-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/voxelizer/internal/gpu"
	"github.com/Faultbox/voxelizer/pkg/math"
)

type program struct {
	name     string
	id       uint32
	uniforms map[string]int32
}

// location returns the cached uniform location, -1 if the uniform is not
// active.
func (p *program) location(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	p.uniforms[name] = loc
	return loc
}

// CompileProgram compiles the vertex, optional geometry and fragment
// stages and links them. The error wraps gpu.ErrCompile and carries the
// driver's info log.
func (d *Device) CompileProgram(src gpu.ProgramSource) (gpu.ProgramID, error) {
	stages := []struct {
		source     string
		shaderType uint32
		name       string
	}{
		{src.Vertex, gl.VERTEX_SHADER, "vertex"},
		{src.Geometry, gl.GEOMETRY_SHADER, "geometry"},
		{src.Fragment, gl.FRAGMENT_SHADER, "fragment"},
	}

	var shaders []uint32
	defer func() {
		for _, s := range shaders {
			gl.DeleteShader(s)
		}
	}()

	for _, st := range stages {
		if st.source == "" {
			if st.shaderType == gl.GEOMETRY_SHADER {
				continue
			}
			return 0, fmt.Errorf("%s: missing %s shader: %w", src.Name, st.name, gpu.ErrCompile)
		}
		s, err := compileShader(st.source, st.shaderType, st.name)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", src.Name, err)
		}
		shaders = append(shaders, s)
	}

	id := gl.CreateProgram()
	for _, s := range shaders {
		gl.AttachShader(id, s)
	}
	gl.LinkProgram(id)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(id, logLen, nil, &log[0])
		gl.DeleteProgram(id)
		return 0, fmt.Errorf("%s: link: %s: %w", src.Name, gl.GoStr(&log[0]), gpu.ErrCompile)
	}

	pid := gpu.ProgramID(id)
	d.programs[pid] = &program{name: src.Name, id: id, uniforms: make(map[string]int32)}
	d.log.Debug("program linked", zap.String("name", src.Name), zap.Uint32("id", id))
	return pid, nil
}

// compileShader compiles a single shader of the given type.
func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s: %w", name, gl.GoStr(&log[0]), gpu.ErrCompile)
	}

	return shader, nil
}

// DeleteProgram implements gpu.Device.
func (d *Device) DeleteProgram(id gpu.ProgramID) {
	if _, ok := d.programs[id]; !ok {
		return
	}
	gl.DeleteProgram(uint32(id))
	delete(d.programs, id)
}

// UseProgram implements gpu.Device.
func (d *Device) UseProgram(id gpu.ProgramID) {
	gl.UseProgram(uint32(id))
}

// SetUniformMat4 implements gpu.Device. Inactive uniforms are ignored.
func (d *Device) SetUniformMat4(p gpu.ProgramID, name string, m math.Mat4) {
	prog, ok := d.programs[p]
	if !ok {
		return
	}
	if loc := prog.location(name); loc >= 0 {
		gl.ProgramUniformMatrix4fv(prog.id, loc, 1, false, m.Ptr())
	}
}

// SetUniformInt implements gpu.Device.
func (d *Device) SetUniformInt(p gpu.ProgramID, name string, v int32) {
	prog, ok := d.programs[p]
	if !ok {
		return
	}
	if loc := prog.location(name); loc >= 0 {
		gl.ProgramUniform1i(prog.id, loc, v)
	}
}

// SetUniformVec4 implements gpu.Device.
func (d *Device) SetUniformVec4(p gpu.ProgramID, name string, v math.Vec4) {
	prog, ok := d.programs[p]
	if !ok {
		return
	}
	if loc := prog.location(name); loc >= 0 {
		gl.ProgramUniform4f(prog.id, loc, v[0], v[1], v[2], v[3])
	}
}
