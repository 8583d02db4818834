// Package opengl draws renderer frames with an OpenGL 4.1 core context.
package opengl

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/chewxy/math32"
	gl "github.com/go-gl/gl/v4.1-core/gl"

	"spatial-engine/core"
	"spatial-engine/math"
	"spatial-engine/renderer"
	"spatial-engine/scene"
)

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
	HasIndices bool
}

// Renderer is the OpenGL rendering backend.
type Renderer struct {
	program uint32

	mvpLoc   int32
	modelLoc int32
	tintLoc  int32

	ambientColorLoc int32
	cameraPosLoc    int32

	lightDirLoc       int32
	lightColorLoc     int32
	lightIntensityLoc int32

	pointLightCountLoc     int32
	pointLightPosLoc       [maxPointLights]int32
	pointLightColorLoc     [maxPointLights]int32
	pointLightIntensityLoc [maxPointLights]int32
	pointLightRangeLoc     [maxPointLights]int32

	spotLightCountLoc     int32
	spotLightPosLoc       [maxSpotLights]int32
	spotLightDirLoc       [maxSpotLights]int32
	spotLightColorLoc     [maxSpotLights]int32
	spotLightIntensityLoc [maxSpotLights]int32
	spotLightRangeLoc     [maxSpotLights]int32
	spotLightInnerLoc     [maxSpotLights]int32
	spotLightOuterLoc     [maxSpotLights]int32

	lineProgram uint32
	lineMVPLoc  int32
	lineTintLoc int32

	gpuMeshes map[*scene.Mesh]*GPUMesh
	wireframe bool
}

// NewRenderer initialises OpenGL.
// Must be called after the GLFW window context is made current.
func NewRenderer() (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, errors.New("initializing opengl failed").Wrap(err)
	}

	logs.WithTag("version", gl.GoStr(gl.GetString(gl.VERSION))).
		WithTag("renderer", gl.GoStr(gl.GetString(gl.RENDERER))).
		Info("opengl initialized")

	prog, err := newProgram(meshVertSrc, meshFragSrc)
	if err != nil {
		return nil, errors.New("building mesh program failed").Wrap(err)
	}
	lineProg, err := newProgram(lineVertSrc, lineFragSrc)
	if err != nil {
		gl.DeleteProgram(prog)
		return nil, errors.New("building line program failed").Wrap(err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	r := &Renderer{
		program:     prog,
		lineProgram: lineProg,
		gpuMeshes:   make(map[*scene.Mesh]*GPUMesh),
	}

	loc := func(prog uint32, name string) int32 {
		return gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
	}

	r.mvpLoc = loc(prog, "mvp")
	r.modelLoc = loc(prog, "model")
	r.tintLoc = loc(prog, "tint")
	r.ambientColorLoc = loc(prog, "ambientColor")
	r.cameraPosLoc = loc(prog, "cameraPos")
	r.lightDirLoc = loc(prog, "lightDir")
	r.lightColorLoc = loc(prog, "lightColor")
	r.lightIntensityLoc = loc(prog, "lightIntensity")

	r.pointLightCountLoc = loc(prog, "pointLightCount")
	for i := 0; i < maxPointLights; i++ {
		r.pointLightPosLoc[i] = loc(prog, fmt.Sprintf("pointLightPos[%d]", i))
		r.pointLightColorLoc[i] = loc(prog, fmt.Sprintf("pointLightColor[%d]", i))
		r.pointLightIntensityLoc[i] = loc(prog, fmt.Sprintf("pointLightIntensity[%d]", i))
		r.pointLightRangeLoc[i] = loc(prog, fmt.Sprintf("pointLightRange[%d]", i))
	}

	r.spotLightCountLoc = loc(prog, "spotLightCount")
	for i := 0; i < maxSpotLights; i++ {
		r.spotLightPosLoc[i] = loc(prog, fmt.Sprintf("spotLightPos[%d]", i))
		r.spotLightDirLoc[i] = loc(prog, fmt.Sprintf("spotLightDir[%d]", i))
		r.spotLightColorLoc[i] = loc(prog, fmt.Sprintf("spotLightColor[%d]", i))
		r.spotLightIntensityLoc[i] = loc(prog, fmt.Sprintf("spotLightIntensity[%d]", i))
		r.spotLightRangeLoc[i] = loc(prog, fmt.Sprintf("spotLightRange[%d]", i))
		r.spotLightInnerLoc[i] = loc(prog, fmt.Sprintf("spotLightInner[%d]", i))
		r.spotLightOuterLoc[i] = loc(prog, fmt.Sprintf("spotLightOuter[%d]", i))
	}

	r.lineMVPLoc = loc(lineProg, "mvp")
	r.lineTintLoc = loc(lineProg, "tint")
	return r, nil
}

// SetViewport resizes the OpenGL viewport.
func (r *Renderer) SetViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// SetWireframe toggles wireframe rendering mode.
func (r *Renderer) SetWireframe(enabled bool) {
	r.wireframe = enabled
	if enabled {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

func (r *Renderer) IsWireframe() bool {
	return r.wireframe
}

// Draw renders a frame: opaque items, then transparent items blended without
// depth writes, then the debug lines on top.
func (r *Renderer) Draw(f *renderer.Frame) {
	r.beginFrame(f)

	for _, it := range f.Opaque {
		r.DrawMesh(it.Mesh, it.MVP, it.Model, it.Color)
	}

	if len(f.Transparent) > 0 {
		gl.Enable(gl.BLEND)
		gl.DepthMask(false)
		for _, it := range f.Transparent {
			r.DrawMesh(it.Mesh, it.MVP, it.Model, it.Color)
		}
		gl.DepthMask(true)
		gl.Disable(gl.BLEND)
	}

	if len(f.Lines) > 0 {
		gl.Disable(gl.DEPTH_TEST)
		for _, l := range f.Lines {
			r.DrawLines(l.Mesh, l.MVP, l.Color)
		}
		gl.Enable(gl.DEPTH_TEST)
	}
}

// beginFrame clears the framebuffer and sets the per-frame camera and
// lighting uniforms. The first directional light of the frame lights the
// scene; area lights are shaded as point lights at their centre.
func (r *Renderer) beginFrame(f *renderer.Frame) {
	gl.ClearColor(f.Sky.R, f.Sky.G, f.Sky.B, f.Sky.A)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(r.program)
	gl.Uniform3f(r.ambientColorLoc, f.Ambient.R, f.Ambient.G, f.Ambient.B)
	gl.Uniform3f(r.cameraPosLoc, f.Eye.X, f.Eye.Y, f.Eye.Z)

	dirLight := math.Vec3{X: 0.5, Y: -1, Z: -0.5}.Normalize()
	dirColor := core.ColorWhite
	dirIntensity := float32(0)
	hasDirectional := false

	pointIdx, spotIdx := 0, 0
	for _, l := range f.Lights {
		switch l.Type {
		case scene.LightDirectional:
			if hasDirectional {
				continue
			}
			hasDirectional = true
			dirLight = l.Direction.Normalize()
			dirColor = l.Color
			dirIntensity = l.Intensity

		case scene.LightSpot:
			if spotIdx >= maxSpotLights {
				continue
			}
			dir := l.Direction.Normalize()
			gl.Uniform3f(r.spotLightPosLoc[spotIdx], l.Position.X, l.Position.Y, l.Position.Z)
			gl.Uniform3f(r.spotLightDirLoc[spotIdx], dir.X, dir.Y, dir.Z)
			gl.Uniform3f(r.spotLightColorLoc[spotIdx], l.Color.R, l.Color.G, l.Color.B)
			gl.Uniform1f(r.spotLightIntensityLoc[spotIdx], l.Intensity)
			gl.Uniform1f(r.spotLightRangeLoc[spotIdx], l.Range)
			gl.Uniform1f(r.spotLightInnerLoc[spotIdx], cosAngleDeg(l.SpotAngle*0.8))
			gl.Uniform1f(r.spotLightOuterLoc[spotIdx], cosAngleDeg(l.SpotAngle))
			spotIdx++

		default:
			if pointIdx >= maxPointLights {
				continue
			}
			gl.Uniform3f(r.pointLightPosLoc[pointIdx], l.Position.X, l.Position.Y, l.Position.Z)
			gl.Uniform3f(r.pointLightColorLoc[pointIdx], l.Color.R, l.Color.G, l.Color.B)
			gl.Uniform1f(r.pointLightIntensityLoc[pointIdx], l.Intensity)
			gl.Uniform1f(r.pointLightRangeLoc[pointIdx], l.Range+l.Length/2)
			pointIdx++
		}
	}

	gl.Uniform3f(r.lightDirLoc, dirLight.X, dirLight.Y, dirLight.Z)
	gl.Uniform3f(r.lightColorLoc, dirColor.R, dirColor.G, dirColor.B)
	gl.Uniform1f(r.lightIntensityLoc, dirIntensity)
	gl.Uniform1i(r.pointLightCountLoc, int32(pointIdx))
	gl.Uniform1i(r.spotLightCountLoc, int32(spotIdx))
}

// DrawMesh draws a mesh with the given MVP and model matrices, tinting its
// vertex colours.
func (r *Renderer) DrawMesh(mesh *scene.Mesh, mvp, model math.Mat4, tint core.Color) {
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}

	gl.UseProgram(r.program)
	// Mat4 rows are GL columns: pass directly (transpose=false).
	gl.UniformMatrix4fv(r.mvpLoc, 1, false, &mvp[0][0])
	gl.UniformMatrix4fv(r.modelLoc, 1, false, &model[0][0])
	gl.Uniform4f(r.tintLoc, tint.R, tint.G, tint.B, tint.A)

	r.draw(mesh, gpu)
}

// DrawLines draws a line mesh unlit.
func (r *Renderer) DrawLines(mesh *scene.Mesh, mvp math.Mat4, tint core.Color) {
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}

	gl.UseProgram(r.lineProgram)
	gl.UniformMatrix4fv(r.lineMVPLoc, 1, false, &mvp[0][0])
	gl.Uniform4f(r.lineTintLoc, tint.R, tint.G, tint.B, tint.A)

	r.draw(mesh, gpu)
}

func (r *Renderer) draw(mesh *scene.Mesh, gpu *GPUMesh) {
	primitive := uint32(gl.TRIANGLES)
	switch mesh.DrawMode {
	case scene.DrawLines:
		primitive = gl.LINES
	case scene.DrawPoints:
		primitive = gl.POINTS
	}

	gl.BindVertexArray(gpu.VAO)
	if gpu.HasIndices {
		gl.DrawElements(primitive, gpu.IndexCount, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(primitive, 0, int32(len(mesh.Vertices)))
	}
	gl.BindVertexArray(0)
}

// ReleaseMesh frees GPU buffers for the given mesh.
func (r *Renderer) ReleaseMesh(mesh *scene.Mesh) {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		gl.DeleteVertexArrays(1, &gpu.VAO)
		gl.DeleteBuffers(1, &gpu.VBO)
		if gpu.HasIndices {
			gl.DeleteBuffers(1, &gpu.EBO)
		}
		delete(r.gpuMeshes, mesh)
		mesh.GPUData = nil
	}
}

// Destroy releases all GPU resources.
func (r *Renderer) Destroy() {
	for mesh := range r.gpuMeshes {
		r.ReleaseMesh(mesh)
	}
	gl.DeleteProgram(r.program)
	gl.DeleteProgram(r.lineProgram)
}

// ensureUploaded uploads vertex/index data if not already done.
func (r *Renderer) ensureUploaded(mesh *scene.Mesh) *GPUMesh {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		return gpu
	}
	if len(mesh.Vertices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))

	gpu := &GPUMesh{
		IndexCount: int32(len(mesh.Indices)),
		HasIndices: len(mesh.Indices) > 0,
	}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER,
		len(mesh.Vertices)*int(stride),
		gl.Ptr(mesh.Vertices),
		gl.STATIC_DRAW)

	var v core.Vertex
	posOff := int(unsafe.Offsetof(v.Position))
	normOff := int(unsafe.Offsetof(v.Normal))
	uvOff := int(unsafe.Offsetof(v.UV))
	colorOff := int(unsafe.Offsetof(v.Color))

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(posOff))

	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(normOff))

	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(uvOff))

	gl.EnableVertexAttribArray(3)
	gl.VertexAttribPointer(3, 4, gl.FLOAT, false, stride, gl.PtrOffset(colorOff))

	if gpu.HasIndices {
		gl.GenBuffers(1, &gpu.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER,
			len(mesh.Indices)*4,
			gl.Ptr(mesh.Indices),
			gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)

	r.gpuMeshes[mesh] = gpu
	mesh.GPUData = gpu
	return gpu
}

// ── Shader helpers ────────────────────────────────────────────────────────────

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, errors.New("compiling vertex shader failed").Wrap(err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, errors.New("compiling fragment shader failed").Wrap(err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		return 0, errors.New("linking program failed").WithTag("log", log)
	}

	gl.DeleteShader(vert)
	gl.DeleteShader(frag)
	return prog, nil
}

// cosAngleDeg converts an angle in degrees to its cosine (for spot light cutoffs).
func cosAngleDeg(deg float32) float32 {
	return math32.Cos(deg * math32.Pi / 180)
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		return 0, errors.New("compiling shader failed").WithTag("log", log)
	}
	return shader, nil
}
