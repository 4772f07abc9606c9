package operations

import (
	"fmt"
	"image"
	"image/color"

	"wishboard/internal/domain"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const watermarkMargin = 20

type Watermarker struct {
	font *truetype.Font
}

func NewWatermarker() (*Watermarker, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	return &Watermarker{font: f}, nil
}

// Apply draws opts.Text onto img in place.
func (w *Watermarker) Apply(img *image.RGBA, opts domain.WatermarkOptions) error {
	if opts.Text == "" {
		return nil
	}

	fontSize := opts.FontSize
	if fontSize <= 0 {
		fontSize = domain.DefaultWatermarkSize
	}
	opacity := opts.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = domain.DefaultWatermarkOpacity
	}

	face := truetype.NewFace(w.font, &truetype.Options{Size: fontSize, DPI: 72})
	defer face.Close()

	textWidth := font.MeasureString(face, opts.Text).Ceil()
	ascent := face.Metrics().Ascent.Ceil()

	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(w.font)
	c.SetFontSize(fontSize)
	c.SetClip(img.Bounds())
	c.SetDst(img)
	c.SetSrc(image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: uint8(255 * opacity)}))
	c.SetHinting(font.HintingFull)

	x, y := watermarkOrigin(img.Bounds(), opts.Position, textWidth, ascent)
	if _, err := c.DrawString(opts.Text, freetype.Pt(x, y)); err != nil {
		return fmt.Errorf("failed to draw watermark text: %w", err)
	}

	return nil
}

// watermarkOrigin returns the baseline start for the text.
func watermarkOrigin(b image.Rectangle, pos domain.WatermarkPosition, textWidth, ascent int) (int, int) {
	switch pos {
	case domain.WatermarkTopLeft:
		return b.Min.X + watermarkMargin, b.Min.Y + watermarkMargin + ascent
	case domain.WatermarkTopRight:
		return b.Max.X - textWidth - watermarkMargin, b.Min.Y + watermarkMargin + ascent
	case domain.WatermarkBottomLeft:
		return b.Min.X + watermarkMargin, b.Max.Y - watermarkMargin
	case domain.WatermarkCenter:
		return b.Min.X + (b.Dx()-textWidth)/2, b.Min.Y + (b.Dy()+ascent)/2
	default:
		return b.Max.X - textWidth - watermarkMargin, b.Max.Y - watermarkMargin
	}
}
