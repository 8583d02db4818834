// Package config loads the engine settings file. The file is TOML; every
// section is optional and missing keys keep their defaults.
package config

import (
	"bytes"
	"os"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chewxy/math32"
	"github.com/pelletier/go-toml/v2"

	"spatial-engine/math"
	"spatial-engine/quadtree"
)

type Config struct {
	Window   Window   `toml:"window"`
	Camera   Camera   `toml:"camera"`
	Quadtree Quadtree `toml:"quadtree"`
	Culling  Culling  `toml:"culling"`
}

type Window struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	VSync  bool   `toml:"vsync"`
}

type Camera struct {
	// FOV is the vertical field of view in degrees.
	FOV       float32    `toml:"fov"`
	Near      float32    `toml:"near"`
	Far       float32    `toml:"far"`
	Position  [3]float32 `toml:"position"`
	Target    [3]float32 `toml:"target"`
	MoveSpeed float32    `toml:"move_speed"`
}

// Quadtree holds the spatial index settings and the initial root region.
type Quadtree struct {
	Capacity      int        `toml:"capacity"`
	MinSide       float32    `toml:"min_side"`
	Frozen        bool       `toml:"frozen"`
	DisableMerge  bool       `toml:"disable_merge"`
	MaxExpansions int        `toml:"max_expansions"`
	BoundsMin     [3]float32 `toml:"bounds_min"`
	BoundsMax     [3]float32 `toml:"bounds_max"`
}

type Culling struct {
	DrawQuadtree  bool `toml:"draw_quadtree"`
	DrawBounds    bool `toml:"draw_bounds"`
	ShowSelection bool `toml:"show_selection"`
}

func Default() Config {
	tree := quadtree.DefaultConfig()
	return Config{
		Window: Window{
			Title:  "Spatial Engine",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Camera: Camera{
			FOV:       60,
			Near:      0.1,
			Far:       500,
			Position:  [3]float32{0, 20, 40},
			MoveSpeed: 15,
		},
		Quadtree: Quadtree{
			Capacity:      tree.QuadrantCapacity,
			MinSide:       tree.MinQuadrantSideSize,
			MaxExpansions: tree.MaxExpansions,
			BoundsMin:     [3]float32{-64, -1, -64},
			BoundsMax:     [3]float32{64, 1, 64},
		},
		Culling: Culling{
			ShowSelection: true,
		},
	}
}

// Load reads the file at path over the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.New("reading config file failed").
			WithTag("path", path).
			Wrap(err)
	}

	c, err := Parse(data)
	if err != nil {
		return Config{}, errors.New("loading config failed").
			WithTag("path", path).
			Wrap(err)
	}
	return c, nil
}

// Parse decodes TOML data over the defaults. Unknown keys are an error.
func Parse(data []byte) (Config, error) {
	c := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, errors.New("decoding toml failed").Wrap(err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Marshal encodes the config as TOML.
func (c Config) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, errors.New("encoding toml failed").Wrap(err)
	}
	return data, nil
}

func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return errors.New("window size must be positive").
			WithTag("width", c.Window.Width).
			WithTag("height", c.Window.Height)

	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180:
		return errors.New("camera fov out of range").WithTag("fov", c.Camera.FOV)

	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return errors.New("camera clip planes invalid").
			WithTag("near", c.Camera.Near).
			WithTag("far", c.Camera.Far)

	case c.Quadtree.Capacity < 1:
		return errors.New("quadtree capacity must be at least 1").
			WithTag("capacity", c.Quadtree.Capacity)

	case c.Quadtree.MinSide <= 0:
		return errors.New("quadtree min side must be positive").
			WithTag("min_side", c.Quadtree.MinSide)

	case c.Bounds().IsEmpty():
		return errors.New("quadtree bounds are empty").
			WithTag("min", c.Quadtree.BoundsMin).
			WithTag("max", c.Quadtree.BoundsMax)
	}
	return nil
}

// TreeConfig returns the settings handed to quadtree.NewTree.
func (c Config) TreeConfig() quadtree.Config {
	return quadtree.Config{
		QuadrantCapacity:    c.Quadtree.Capacity,
		MinQuadrantSideSize: c.Quadtree.MinSide,
		Frozen:              c.Quadtree.Frozen,
		DisableMerge:        c.Quadtree.DisableMerge,
		MaxExpansions:       c.Quadtree.MaxExpansions,
	}
}

// Bounds returns the initial root region.
func (c Config) Bounds() math.AABB {
	return math.AABB{Min: vec3(c.Quadtree.BoundsMin), Max: vec3(c.Quadtree.BoundsMax)}
}

// FOVRadians returns the camera field of view in radians.
func (c Config) FOVRadians() float32 {
	return c.Camera.FOV * math32.Pi / 180
}

func (c Config) CameraPosition() math.Vec3 {
	return vec3(c.Camera.Position)
}

func (c Config) CameraTarget() math.Vec3 {
	return vec3(c.Camera.Target)
}

func vec3(v [3]float32) math.Vec3 {
	return math.NewVec3(v[0], v[1], v[2])
}
