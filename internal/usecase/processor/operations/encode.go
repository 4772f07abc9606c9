package operations

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

type Encoder struct {
	quality int
}

func NewEncoder(quality int) *Encoder {
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	return &Encoder{quality: quality}
}

func (e *Encoder) Encode(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: e.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Encoder) Quality() int {
	return e.quality
}
