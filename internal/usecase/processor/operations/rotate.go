package operations

import (
	"image"
	"image/color"
	"image/draw"

	"wishboard/internal/geometry"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

type Rotator struct {
	background color.Color
}

func NewRotator(background color.Color) *Rotator {
	return &Rotator{background: background}
}

// Rotate draws src onto a canvas sized to its rotated bounding box. The source
// is placed by translating to the canvas center, rotating, flipping and
// translating back by half the source size, then drawn once unscaled.
func (r *Rotator) Rotate(src image.Image, degrees float64, flipH, flipV bool) *image.RGBA {
	b := src.Bounds()
	box := geometry.RotatedBoundingBox(b.Dx(), b.Dy(), degrees)

	canvas := image.NewRGBA(image.Rect(0, 0, box.Width, box.Height))
	if r.background != nil {
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(r.background), image.Point{}, draw.Src)
	}

	m := rotationMatrix(b, box, degrees, flipH, flipV)

	var interp xdraw.Interpolator = xdraw.BiLinear
	if geometry.RightAngle(degrees) {
		interp = xdraw.NearestNeighbor
	}
	interp.Transform(canvas, m, src, b, xdraw.Over, nil)

	return canvas
}

// rotationMatrix maps source pixel coordinates to canvas coordinates:
// T(canvas/2) * R(degrees) * F(flip) * T(-source center).
func rotationMatrix(src image.Rectangle, box geometry.Size, degrees float64, flipH, flipV bool) f64.Aff3 {
	sin, cos := geometry.SinCos(degrees)

	fx, fy := 1.0, 1.0
	if flipH {
		fx = -1
	}
	if flipV {
		fy = -1
	}

	cx := float64(src.Min.X) + float64(src.Dx())/2
	cy := float64(src.Min.Y) + float64(src.Dy())/2

	a, b := cos*fx, -sin*fy
	d, e := sin*fx, cos*fy

	return f64.Aff3{
		a, b, float64(box.Width)/2 - a*cx - b*cy,
		d, e, float64(box.Height)/2 - d*cx - e*cy,
	}
}
