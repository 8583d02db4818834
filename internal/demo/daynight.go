package demo

import (
	"fmt"

	"github.com/chewxy/math32"

	"spatial-engine/core"
	"spatial-engine/math"
	"spatial-engine/scene"
)

// dayPalette holds the light values for one key time of day.
type dayPalette struct {
	t            float32 // normalised time 0..1
	sky          core.Color
	sunColor     core.Color
	sunIntensity float32
	ambient      core.Color
}

// palettes are ordered by t and wrap (0 == 1).
var palettes = []dayPalette{
	{ // noon
		t:            0.00,
		sky:          core.Color{R: 0.58, G: 0.75, B: 0.95, A: 1},
		sunColor:     core.Color{R: 1.00, G: 0.98, B: 0.92, A: 1},
		sunIntensity: 1.20,
		ambient:      core.Color{R: 0.16, G: 0.18, B: 0.26, A: 1},
	},
	{ // golden hour
		t:            0.22,
		sky:          core.Color{R: 0.90, G: 0.52, B: 0.18, A: 1},
		sunColor:     core.Color{R: 1.00, G: 0.65, B: 0.25, A: 1},
		sunIntensity: 0.90,
		ambient:      core.Color{R: 0.10, G: 0.12, B: 0.20, A: 1},
	},
	{ // dusk
		t:            0.30,
		sky:          core.Color{R: 0.50, G: 0.22, B: 0.28, A: 1},
		sunColor:     core.Color{R: 0.70, G: 0.40, B: 0.55, A: 1},
		sunIntensity: 0.25,
		ambient:      core.Color{R: 0.06, G: 0.07, B: 0.14, A: 1},
	},
	{ // midnight, moonlight
		t:            0.50,
		sky:          core.Color{R: 0.04, G: 0.04, B: 0.08, A: 1},
		sunColor:     core.Color{R: 0.40, G: 0.45, B: 0.65, A: 1},
		sunIntensity: 0.12,
		ambient:      core.Color{R: 0.03, G: 0.04, B: 0.09, A: 1},
	},
	{ // sunrise
		t:            0.78,
		sky:          core.Color{R: 0.88, G: 0.45, B: 0.22, A: 1},
		sunColor:     core.Color{R: 1.00, G: 0.60, B: 0.28, A: 1},
		sunIntensity: 0.70,
		ambient:      core.Color{R: 0.09, G: 0.10, B: 0.17, A: 1},
	},
}

// DayNight drives the sun light and the scene colors through a day.
type DayNight struct {
	Time   float32 // 0..1: 0=noon, 0.25=sunset, 0.5=midnight, 0.75=sunrise
	Speed  float32 // full-cycle duration in seconds
	Active bool    // auto-advance when true
}

func NewDayNight() *DayNight {
	return &DayNight{
		Speed:  120.0,
		Active: true,
	}
}

func (dn *DayNight) Update(dt float32) {
	if !dn.Active || dn.Speed <= 0 {
		return
	}
	dn.Time += dt / dn.Speed
	dn.Time -= math32.Floor(dn.Time)
}

func lerpColor(a, b core.Color, t float32) core.Color {
	return core.Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: 1,
	}
}

// samplePalette interpolates the two keyframes surrounding t.
func samplePalette(t float32) dayPalette {
	n := len(palettes)
	a, b := palettes[n-1], palettes[0]
	ta, tb := a.t, b.t+1
	if t < palettes[0].t {
		t++
	}
	for i := 0; i < n-1; i++ {
		if t >= palettes[i].t && t < palettes[i+1].t {
			a, b = palettes[i], palettes[i+1]
			ta, tb = a.t, b.t
			break
		}
	}

	local := (t - ta) / (tb - ta)
	return dayPalette{
		t:            t,
		sky:          lerpColor(a.sky, b.sky, local),
		sunColor:     lerpColor(a.sunColor, b.sunColor, local),
		sunIntensity: a.sunIntensity + (b.sunIntensity-a.sunIntensity)*local,
		ambient:      lerpColor(a.ambient, b.ambient, local),
	}
}

// SunDirection is the direction the sun shines in: straight down at noon,
// straight up at midnight.
func (dn *DayNight) SunDirection() math.Vec3 {
	angle := dn.Time * 2 * math32.Pi
	return math.Vec3{
		X: math32.Sin(angle),
		Y: -math32.Cos(angle),
		Z: 0.35,
	}.Normalize()
}

// Apply pushes the current light state to the scene. sun may be nil or
// carry no light, in which case only the scene colors change.
func (dn *DayNight) Apply(s *scene.Scene, sun *scene.Entity) {
	p := samplePalette(dn.Time)

	if sun != nil && sun.Light != nil {
		sun.Light.Direction = dn.SunDirection()
		sun.Light.Color = p.sunColor
		sun.Light.Intensity = p.sunIntensity
	}

	s.Ambient = p.ambient
	s.SkyColor = p.sky
}

// TimeOfDayStr returns a clock label for the current time.
func (dn *DayNight) TimeOfDayStr() string {
	hours := math32.Mod(dn.Time*24+12, 24)
	h := int(hours)
	m := int((hours - float32(h)) * 60)

	period := "AM"
	displayH := h
	switch {
	case h == 0:
		displayH = 12
	case h == 12:
		period = "PM"
	case h > 12:
		displayH = h - 12
		period = "PM"
	}
	return fmt.Sprintf("%02d:%02d %s", displayH, m, period)
}
