// Package preprocess turns decoded images into model input tensors.
package preprocess

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/Brownie44l1/catdog-api/internal/model"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	ErrUnsupportedImageFormat = errors.New("unsupported image format")
	ErrDecode                 = errors.New("cannot decode image")
)

// Image is a decoded image together with the channel count of its source
// encoding, which can differ from what the Go image type suggests.
type Image struct {
	image.Image
	Format   string
	Channels int
}

// Decode reads an image in any registered format.
func Decode(data []byte) (*Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	channels := Channels(img)
	if format == "png" {
		if c, ok := pngChannels(data); ok {
			channels = c
		}
	}
	return &Image{Image: img, Format: format, Channels: channels}, nil
}

// pngChannels reads the color type from the IHDR chunk. image/png widens
// gray+alpha to NRGBA, so the decoded type alone cannot tell it apart from
// RGBA.
func pngChannels(data []byte) (int, bool) {
	if len(data) < 26 || string(data[12:16]) != "IHDR" {
		return 0, false
	}
	switch data[25] {
	case 0:
		return 1, true
	case 2:
		return 3, true
	case 4:
		return 2, true
	case 6:
		return 4, true
	}
	// Palette images fall back to the decoded type.
	return 0, false
}

// Channels reports how many channels the decoded image carries: 1 for
// grayscale, 3 for color without alpha, 4 for color with alpha. Zero means
// the color model has no usable color data.
func Channels(img image.Image) int {
	switch v := img.(type) {
	case *Image:
		return v.Channels
	case *image.Gray, *image.Gray16:
		return 1
	case *image.YCbCr:
		return 3
	case *image.CMYK:
		// Converted to RGB rather than fed as raw C, M and Y planes.
		return 3
	case *image.Paletted:
		// Expanded through the palette to RGB, not replicated as gray indices.
		return 4
	case *image.RGBA, *image.RGBA64, *image.NRGBA, *image.NRGBA64, *image.NYCbCrA:
		return 4
	case *image.Alpha, *image.Alpha16, *image.Uniform:
		return 0
	}

	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return 1
	case color.YCbCrModel, color.CMYKModel:
		return 3
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model, color.NYCbCrAModel:
		return 4
	}
	return 0
}

// Prepare resizes img to size and returns a [1, H, W, 3] float32 tensor.
//
// Pixel values keep their 0-255 magnitude. Alpha is dropped and grayscale is
// replicated across the three channels. Aspect ratio is not preserved.
func Prepare(img image.Image, size model.ImageSize) (model.Tensor, error) {
	channels := Channels(img)
	switch channels {
	case 1, 3, 4:
	default:
		return model.Tensor{}, fmt.Errorf("%w: image has %d channels", ErrUnsupportedImageFormat, channels)
	}
	if size.Height <= 0 || size.Width <= 0 {
		return model.Tensor{}, fmt.Errorf("invalid target size %dx%d", size.Width, size.Height)
	}

	if d, ok := img.(*Image); ok {
		img = d.Image
	}
	resized := resize.Resize(uint(size.Width), uint(size.Height), img, resize.Bicubic)
	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	data := make([]float32, height*width*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px := resized.At(bounds.Min.X+x, bounds.Min.Y+y)
			i := (y*width + x) * 3

			if channels == 1 {
				g := float32(color.GrayModel.Convert(px).(color.Gray).Y)
				data[i], data[i+1], data[i+2] = g, g, g
				continue
			}
			c := color.NRGBAModel.Convert(px).(color.NRGBA)
			data[i] = float32(c.R)
			data[i+1] = float32(c.G)
			data[i+2] = float32(c.B)
		}
	}

	return model.Tensor{
		Shape: []int64{1, int64(height), int64(width), 3},
		Data:  data,
	}, nil
}
