package scene

import (
	"spatial-engine/core"
	"spatial-engine/math"
)

// LightType selects which render-list bucket a light lands in.
type LightType int

const (
	LightDirectional LightType = iota
	LightPoint
	LightSpot
	LightAreaSphere
	LightAreaTube
)

func (t LightType) String() string {
	switch t {
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	case LightSpot:
		return "spot"
	case LightAreaSphere:
		return "area_sphere"
	case LightAreaTube:
		return "area_tube"
	default:
		return "unknown"
	}
}

// ParseLightType is the inverse of LightType.String. Unknown names map to
// LightPoint.
func ParseLightType(s string) LightType {
	switch s {
	case "directional":
		return LightDirectional
	case "spot":
		return LightSpot
	case "area_sphere":
		return LightAreaSphere
	case "area_tube":
		return LightAreaTube
	default:
		return LightPoint
	}
}

// Light is a light component attached to an entity. Position and orientation
// come from the owning entity's world matrix.
type Light struct {
	Type      LightType
	Direction math.Vec3
	Color     core.Color
	Intensity float32
	Range     float32
	SpotAngle float32

	// Length is the tube length of LightAreaTube lights, along local X.
	Length float32
}

func NewPointLight(color core.Color, intensity, rng float32) *Light {
	return &Light{
		Type:      LightPoint,
		Color:     color,
		Intensity: intensity,
		Range:     rng,
	}
}

func NewDirectionalLight(direction math.Vec3, color core.Color, intensity float32) *Light {
	return &Light{
		Type:      LightDirectional,
		Direction: direction.Normalize(),
		Color:     color,
		Intensity: intensity,
	}
}

// HasVolume reports whether the light affects a bounded region. Directional
// lights affect everything and are never stored in the spatial index.
func (l *Light) HasVolume() bool {
	return l.Type != LightDirectional && l.Range > 0
}

// Volume is the world-space box lit by a light positioned at pos.
func (l *Light) Volume(pos math.Vec3) math.AABB {
	r := l.Range
	if l.Type == LightAreaTube {
		r += l.Length / 2
	}
	return math.AABBFromCenter(pos, math.Vec3{X: r, Y: r, Z: r})
}
