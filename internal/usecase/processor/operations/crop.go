package operations

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
)

var ErrEmptyCrop = errors.New("crop rectangle does not overlap the image")

type Cropper struct {
	background color.Color
}

func NewCropper(background color.Color) *Cropper {
	return &Cropper{background: background}
}

// Crop returns an image of exactly rect's size anchored at the origin. Only
// the part of rect inside the canvas is copied; the rest is background.
func (c *Cropper) Crop(canvas *image.RGBA, rect image.Rectangle) (*image.RGBA, error) {
	rect = rect.Canon()
	visible := rect.Intersect(canvas.Bounds())
	if visible.Empty() {
		return nil, ErrEmptyCrop
	}

	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	if c.background != nil && visible != rect {
		draw.Draw(out, out.Bounds(), image.NewUniform(c.background), image.Point{}, draw.Src)
	}

	dst := visible.Sub(rect.Min)
	draw.Draw(out, dst, canvas, visible.Min, draw.Src)

	return out, nil
}
