// Package demo holds the GL-free parts of the demo: the procedural city,
// the day/night cycle, the stats overlay and the headless frame loop.
package demo

import (
	"fmt"
	"math/rand"

	"spatial-engine/core"
	"spatial-engine/math"
	"spatial-engine/scene"
)

const (
	blockPitch  = 16.0 // distance between street centre lines
	streetWidth = 4.0
	lotsPerSide = 2
)

var buildingColors = []core.Color{
	{R: 0.62, G: 0.60, B: 0.58, A: 1},
	{R: 0.48, G: 0.50, B: 0.55, A: 1},
	{R: 0.70, G: 0.64, B: 0.52, A: 1},
	{R: 0.40, G: 0.38, B: 0.36, A: 1},
}

var (
	glassColor  = core.Color{R: 0.45, G: 0.65, B: 0.80, A: 0.55}
	groundColor = core.Color{R: 0.22, G: 0.23, B: 0.22, A: 1}
	poleColor   = core.Color{R: 0.15, G: 0.15, B: 0.16, A: 1}
	lampColor   = core.Color{R: 1.00, G: 0.85, B: 0.60, A: 1}
	neonColor   = core.Color{R: 0.95, G: 0.20, B: 0.65, A: 1}
)

// City is the procedural demo scene: static buildings, street lamps and
// signs indexed by the quadtree, and cars driving through the dynamic list.
type City struct {
	Sun       *scene.Entity
	Buildings []*scene.Entity
	Lamps     []*scene.Entity
	Cars      []*Car

	// Extent is the half side of the street grid.
	Extent float32
}

// Car drives along one street axis and wraps around at the city edge.
type Car struct {
	Entity *scene.Entity
	Axis   math.Vec3
	Speed  float32
}

// BuildCity fills s with a blocks x blocks street grid centred on the
// origin.
func BuildCity(s *scene.Scene, rng *rand.Rand, blocks int) *City {
	if blocks < 1 {
		blocks = 1
	}

	c := &City{Extent: float32(blocks) * blockPitch / 2}
	cube := scene.CreateCube(1)

	c.Sun = scene.NewEntity("Sun")
	c.Sun.SetLight(scene.NewDirectionalLight(math.Vec3{X: 0.3, Y: -1, Z: 0.35}, core.ColorWhite, 1.2))
	s.AddEntity(c.Sun, nil)

	side := 2 * c.Extent
	ground := scene.NewMeshEntity("Ground", scene.CreatePlane(side, side, 1), groundColor)
	ground.Tag = "Ground"
	ground.Static = true
	s.AddEntity(ground, nil)

	for bx := 0; bx < blocks; bx++ {
		for bz := 0; bz < blocks; bz++ {
			c.buildBlock(s, rng, cube, bx, bz)
		}
	}

	pole := scene.CreateCylinder(0.12, 4, 6)
	for ix := 0; ix <= blocks; ix++ {
		for iz := 0; iz <= blocks; iz++ {
			c.addLamp(s, pole, c.street(ix), c.street(iz))
		}
	}

	for i := 0; i < blocks; i++ {
		sign := scene.NewEntity(fmt.Sprintf("Neon %d", i))
		sign.Static = true
		sign.Tag = "Sign"
		sign.SetLight(&scene.Light{
			Type:      scene.LightAreaTube,
			Color:     neonColor,
			Intensity: 1.5,
			Range:     3,
			Length:    6,
		})
		sign.SetPosition(math.Vec3{X: c.street(i) + blockPitch/2, Y: 6, Z: c.street(0) + streetWidth/2 + 0.2})
		s.AddEntity(sign, nil)
	}

	fountain := scene.NewEntity("Fountain")
	fountain.Static = true
	fountain.SetLight(&scene.Light{
		Type:      scene.LightAreaSphere,
		Color:     core.Color{R: 0.4, G: 0.7, B: 1, A: 1},
		Intensity: 2,
		Range:     5,
	})
	fountain.SetPosition(math.Vec3{Y: 1})
	s.AddEntity(fountain, nil)

	for i := 0; i < blocks*4; i++ {
		c.addCar(s, rng, cube, i, blocks)
	}
	return c
}

// street returns the coordinate of the i-th street centre line.
func (c *City) street(i int) float32 {
	return -c.Extent + float32(i)*blockPitch
}

func (c *City) buildBlock(s *scene.Scene, rng *rand.Rand, cube *scene.Mesh, bx, bz int) {
	lot := float32(blockPitch-streetWidth) / lotsPerSide
	originX := c.street(bx) + streetWidth/2
	originZ := c.street(bz) + streetWidth/2

	for lx := 0; lx < lotsPerSide; lx++ {
		for lz := 0; lz < lotsPerSide; lz++ {
			w := lot * (0.55 + 0.3*rng.Float32())
			d := lot * (0.55 + 0.3*rng.Float32())
			h := 3 + rng.Float32()*rng.Float32()*30

			color := buildingColors[rng.Intn(len(buildingColors))]
			glass := rng.Intn(6) == 0
			if glass {
				color = glassColor
			}

			b := scene.NewMeshEntity(fmt.Sprintf("Building %d-%d-%d", bx, bz, lx*lotsPerSide+lz), cube, color)
			b.Tag = "Building"
			b.Static = true
			b.SetScale(math.Vec3{X: w, Y: h, Z: d})
			b.SetPosition(math.Vec3{
				X: originX + (float32(lx)+0.5)*lot,
				Y: h / 2,
				Z: originZ + (float32(lz)+0.5)*lot,
			})
			s.AddEntity(b, nil)
			c.Buildings = append(c.Buildings, b)

			if h > 20 {
				beacon := scene.NewEntity(b.Name + " beacon")
				beacon.Static = true
				beacon.SetLight(&scene.Light{
					Type:      scene.LightSpot,
					Direction: math.Vec3Down,
					Color:     core.ColorWhite,
					Intensity: 2,
					Range:     h,
					SpotAngle: 25,
				})
				beacon.SetPosition(b.Transform.Position.Add(math.Vec3{Y: h/2 + 1}))
				s.AddEntity(beacon, nil)
			}
		}
	}
}

// addLamp places a pole with its point light as a child.
func (c *City) addLamp(s *scene.Scene, pole *scene.Mesh, x, z float32) {
	lamp := scene.NewMeshEntity(fmt.Sprintf("Lamp %.0f,%.0f", x, z), pole, poleColor)
	lamp.Tag = "Lamp"
	lamp.Static = true
	lamp.SetPosition(math.Vec3{X: x + streetWidth/2, Y: 2, Z: z + streetWidth/2})
	s.AddEntity(lamp, nil)

	bulb := scene.NewEntity(lamp.Name + " light")
	bulb.Static = true
	bulb.SetLight(scene.NewPointLight(lampColor, 1.5, 8))
	bulb.SetPosition(math.Vec3{Y: 2.2})
	s.AddEntity(bulb, lamp)

	c.Lamps = append(c.Lamps, lamp)
}

func (c *City) addCar(s *scene.Scene, rng *rand.Rand, cube *scene.Mesh, i, blocks int) {
	lane := c.street(rng.Intn(blocks + 1))
	along := (rng.Float32()*2 - 1) * c.Extent
	speed := 4 + rng.Float32()*8
	if rng.Intn(2) == 0 {
		speed = -speed
	}

	color := core.Color{R: rng.Float32(), G: rng.Float32(), B: rng.Float32(), A: 1}
	e := scene.NewMeshEntity(fmt.Sprintf("Car %d", i), cube, color)
	e.Tag = "Car"

	car := &Car{Entity: e, Speed: speed}
	if i%2 == 0 {
		car.Axis = math.Vec3Right
		e.SetScale(math.Vec3{X: 1.8, Y: 0.8, Z: 0.9})
		e.SetPosition(math.Vec3{X: along, Y: 0.4, Z: lane})
	} else {
		car.Axis = math.Vec3Front
		e.SetScale(math.Vec3{X: 0.9, Y: 0.8, Z: 1.8})
		e.SetPosition(math.Vec3{X: lane, Y: 0.4, Z: along})
	}
	s.AddEntity(e, nil)
	c.Cars = append(c.Cars, car)
}

// Update drives the cars. The scene re-indexes them in its next Update.
func (c *City) Update(dt float32) {
	for _, car := range c.Cars {
		if car.Entity.Scene() == nil {
			continue
		}

		p := car.Entity.Transform.Position.Add(car.Axis.Mul(car.Speed * dt))
		along := p.Dot(car.Axis)
		switch {
		case along > c.Extent:
			p = p.Sub(car.Axis.Mul(2 * c.Extent))
		case along < -c.Extent:
			p = p.Add(car.Axis.Mul(2 * c.Extent))
		}
		car.Entity.SetPosition(p)
	}
}
