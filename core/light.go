package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// sunTilt pushes the solar arc slightly off the east-west plane so the sun
// never sits exactly on an axis.
const sunTilt = 0.25

// SunDirection maps an hour of the day onto a unit vector toward the sun.
// The sun rises on +X at 06:00, culminates at 12:00 and sets on -X at 18:00.
func SunDirection(hours float32) mgl32.Vec3 {
	angle := float64(WrapHours(hours)-6) / 12 * math.Pi
	v := mgl32.Vec3{float32(math.Cos(angle)), float32(math.Sin(angle)), -sunTilt}
	return v.Normalize()
}

// DayTimeFromDirection inverts SunDirection for any direction with a
// non-zero east-west/vertical component.
func DayTimeFromDirection(dir mgl32.Vec3) float32 {
	angle := math.Atan2(float64(dir[1]), float64(dir[0]))
	return WrapHours(float32(angle/math.Pi*12) + 6)
}

// WrapHours folds any hour value into [0,24).
func WrapHours(h float32) float32 {
	return wrap(h, 24)
}

func normalize(v mgl32.Vec3) (mgl32.Vec3, bool) {
	l := v.Len()
	if l == 0 || math.IsNaN(float64(l)) || math.IsInf(float64(l), 0) {
		return v, false
	}
	return v.Mul(1 / l), true
}

func wrap(v, period float32) float32 {
	w := float32(math.Mod(float64(v), float64(period)))
	if w < 0 {
		w += period
	}
	if w >= period {
		w = 0
	}
	return w
}
