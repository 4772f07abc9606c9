package geometry

import "math"

// epsilon absorbs float noise such as cos(90°) == 6e-17 so that ceil does not
// grow an exact box by a pixel.
const epsilon = 1e-9

type Size struct {
	Width  int
	Height int
}

func ToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// SinCos returns sin and cos of an angle in degrees, exact for multiples of 90.
func SinCos(degrees float64) (sin, cos float64) {
	d := math.Mod(degrees, 360)
	if d < 0 {
		d += 360
	}
	switch d {
	case 0:
		return 0, 1
	case 90:
		return 1, 0
	case 180:
		return 0, -1
	case 270:
		return -1, 0
	}
	return math.Sincos(ToRadians(d))
}

// RightAngle reports whether degrees is a multiple of 90.
func RightAngle(degrees float64) bool {
	return math.Mod(degrees, 90) == 0
}

// RotatedBoundingBox returns the axis-aligned box of a width x height rectangle
// rotated about its center, rounded up to whole pixels.
func RotatedBoundingBox(width, height int, rotationDegrees float64) Size {
	sin, cos := SinCos(rotationDegrees)
	sin, cos = math.Abs(sin), math.Abs(cos)

	w := cos*float64(width) + sin*float64(height)
	h := sin*float64(width) + cos*float64(height)

	return Size{
		Width:  ceil(w),
		Height: ceil(h),
	}
}

func ceil(v float64) int {
	return int(math.Ceil(v - epsilon))
}
