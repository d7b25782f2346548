package main

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/softras/pkg/math3d"
	"github.com/taigrr/softras/pkg/models"
	"github.com/taigrr/softras/pkg/render"
)

// SpringAxis tracks position and velocity for one axis with spring decay.
type SpringAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // internal spring velocity (for animating Velocity toward 0)
}

// NewSpringAxis creates an axis whose velocity eases back to zero.
func NewSpringAxis(fps int) SpringAxis {
	return SpringAxis{
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and decays velocity toward 0.
func (a *SpringAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// RotationState holds a model's spin with spring physics.
type RotationState struct {
	Pitch, Yaw, Roll SpringAxis
	fps              int
}

func NewRotationState(fps int) *RotationState {
	return &RotationState{
		Pitch: NewSpringAxis(fps),
		Yaw:   NewSpringAxis(fps),
		Roll:  NewSpringAxis(fps),
		fps:   fps,
	}
}

func (r *RotationState) Update() {
	r.Pitch.Update()
	r.Yaw.Update()
	r.Roll.Update()
}

func (r *RotationState) ApplyImpulse(pitch, yaw, roll float64) {
	r.Pitch.Velocity += pitch
	r.Yaw.Velocity += yaw
	r.Roll.Velocity += roll
}

func (r *RotationState) Reset() {
	r.Pitch = NewSpringAxis(r.fps)
	r.Yaw = NewSpringAxis(r.fps)
	r.Roll = NewSpringAxis(r.fps)
}

// Camera movement limits.
const (
	minMoveSpeed     = 0.5
	maxMoveSpeed     = 40
	defaultMoveSpeed = 4
	speedStep        = 1.5 // R/F multiply or divide by this
	lookStep         = 0.05
	idleSpin         = 0.4 // radians per second around Y
)

// SceneConfig holds what the command line decides about the scene.
type SceneConfig struct {
	FPS      int
	Alpha    float64 // subject opacity; below 1 uses the transparent shader
	Texture  *render.Texture
	LightDir math3d.Vec3

	// TextureWrap applies to the subject's texture. Clamp stretches the
	// edge texels over UVs outside [0,1] instead of tiling.
	TextureWrap render.WrapMode
}

// Scene is the demo world: a spinning subject over a floor grid, seen by a
// free-flying camera.
type Scene struct {
	Camera *render.Camera
	Models []*render.Model
	Axes   bool // draw the world axes over the frame

	subject  *render.Model
	outlines []*render.Outline
	spin     *RotationState
	move     [3]SpringAxis // camera velocity in its local right, up, forward
	speed    float64
}

// NewScene builds the demo scene around mesh. A nil mesh shows a cube.
func NewScene(mesh *models.Mesh, fov float64, cfg SceneConfig) *Scene {
	if mesh == nil {
		mesh = models.NewCube(2)
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 60
	}
	tex := cfg.Texture
	if tex == nil {
		tex = render.NewCheckerTexture(64, 64, 8, render.RGB(200, 200, 200), render.RGB(100, 100, 100))
	}
	tex.SetWrap(cfg.TextureWrap)

	floorTex := render.NewCheckerTexture(16, 16, 8, render.RGB(70, 110, 70), render.RGB(50, 85, 50))
	floorShader := &render.TextureShader{Texture: floorTex}
	floorShader.EdgeColor = render.RGB(30, 50, 30)
	floor := render.NewModel("floor", models.NewGrid(100, 20, -2), floorShader)

	var subjectShader render.Shader
	var subjectOutline *render.Outline
	edge := render.RGB(0, 255, 128)
	if cfg.Alpha < 1 {
		s := &render.TransparentTextureShader{Texture: tex, Alpha: cfg.Alpha}
		s.EdgeColor = edge
		subjectShader, subjectOutline = s, &s.Outline
	} else {
		s := &render.LitTextureShader{Texture: tex, LightDir: cfg.LightDir}
		s.EdgeColor = edge
		subjectShader, subjectOutline = s, &s.Outline
	}
	subject := render.NewModel(mesh.Name, mesh, subjectShader)

	cam := render.NewCamera(fov)
	s := &Scene{
		Camera: cam,
		// The floor goes first so a translucent subject blends over it.
		Models:   []*render.Model{floor, subject},
		subject:  subject,
		outlines: []*render.Outline{&floorShader.Outline, subjectOutline},
		spin:     NewRotationState(cfg.FPS),
		speed:    defaultMoveSpeed,
	}
	s.ResetView()
	return s
}

// ResetView puts the camera back at its starting point and stops all motion.
func (s *Scene) ResetView() {
	s.Camera.Transform.SetPosition(math3d.V3(0, 1.5, -6))
	s.Camera.LookAt(math3d.Zero3())
	s.spin.Reset()
	for i := range s.move {
		s.move[i] = NewSpringAxis(s.spin.fps)
	}
	s.subject.Transform.SetRotation(0, 0, 0)
}

// Wireframe reports whether edge overlays are on.
func (s *Scene) Wireframe() bool {
	return s.outlines[0].Wireframe
}

// SetWireframe turns edge overlays on or off for every model.
func (s *Scene) SetWireframe(on bool) {
	for _, o := range s.outlines {
		o.Wireframe = on
	}
}

// Speed returns the camera movement speed in units per second.
func (s *Scene) Speed() float64 {
	return s.speed
}

// Update advances the scene by dt seconds given one frame of input.
func (s *Scene) Update(in Input, dt float64) {
	if in.Reset {
		s.ResetView()
	}
	if in.ToggleWireframe {
		s.SetWireframe(!s.Wireframe())
	}
	for range in.SpeedUp {
		s.speed = math.Min(maxMoveSpeed, s.speed*speedStep)
	}
	for range in.SpeedDown {
		s.speed = math.Max(minMoveSpeed, s.speed/speedStep)
	}
	if in.Spin {
		s.spin.ApplyImpulse(0.3, 0.6, 0.2)
	}

	// Key presses kick the velocity; the springs ease it back to rest.
	s.move[0].Velocity += in.Move.X * s.speed * dt
	s.move[1].Velocity += in.Move.Y * s.speed * dt
	s.move[2].Velocity += in.Move.Z * s.speed * dt
	for i := range s.move {
		s.move[i].Position = 0
		s.move[i].Update()
	}
	s.Camera.MoveRight(s.move[0].Position)
	s.Camera.MoveUp(s.move[1].Position)
	s.Camera.MoveForward(s.move[2].Position)

	if in.Look != (math3d.Vec2{}) {
		s.Camera.Rotate(in.Look.Y*lookStep, in.Look.X*lookStep)
	}

	s.spin.Yaw.Position += idleSpin * dt
	s.spin.Update()
	s.subject.Transform.SetRotation(s.spin.Pitch.Position, s.spin.Yaw.Position, s.spin.Roll.Position)
}
