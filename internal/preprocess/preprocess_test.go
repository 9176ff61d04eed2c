package preprocess

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/Brownie44l1/catdog-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func fill(img interface {
	image.Image
	Set(x, y int, c color.Color)
}, c color.Color) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}

func TestPrepareShapes(t *testing.T) {
	size := model.ImageSize{Height: 180, Width: 180}

	rgba := image.NewRGBA(image.Rect(0, 0, 300, 200))
	nrgba := image.NewNRGBA(image.Rect(0, 0, 50, 50))
	gray := image.NewGray(image.Rect(0, 0, 64, 128))
	gray16 := image.NewGray16(image.Rect(0, 0, 10, 10))
	ycbcr := image.NewYCbCr(image.Rect(0, 0, 400, 300), image.YCbCrSubsampleRatio420)
	paletted := image.NewPaletted(image.Rect(0, 0, 20, 30), color.Palette{color.Black, color.White})

	tests := []struct {
		name string
		img  image.Image
	}{
		{"rgba landscape", rgba},
		{"nrgba small", nrgba},
		{"gray portrait", gray},
		{"gray16", gray16},
		{"ycbcr", ycbcr},
		{"paletted", paletted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tensor, err := Prepare(tt.img, size)
			require.NoError(t, err)
			assert.Equal(t, []int64{1, 180, 180, 3}, tensor.Shape)
			assert.Len(t, tensor.Data, 180*180*3)
		})
	}
}

func TestPrepareRectangularTarget(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))

	tensor, err := Prepare(img, model.ImageSize{Height: 48, Width: 64})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 48, 64, 3}, tensor.Shape)
	assert.Len(t, tensor.Data, 48*64*3)
}

func TestPrepareKeepsRawPixelMagnitude(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	fill(img, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	tensor, err := Prepare(img, model.ImageSize{Height: 16, Width: 16})
	require.NoError(t, err)

	for i := 0; i < len(tensor.Data); i += 3 {
		assert.InDelta(t, 200, tensor.Data[i], 1)
		assert.InDelta(t, 100, tensor.Data[i+1], 1)
		assert.InDelta(t, 50, tensor.Data[i+2], 1)
	}
}

func TestPrepareDropsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	fill(img, color.NRGBA{R: 10, G: 20, B: 30, A: 128})

	tensor, err := Prepare(img, model.ImageSize{Height: 8, Width: 8})
	require.NoError(t, err)

	assert.InDelta(t, 10, tensor.Data[0], 2)
	assert.InDelta(t, 20, tensor.Data[1], 2)
	assert.InDelta(t, 30, tensor.Data[2], 2)
}

func TestPrepareReplicatesGray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 30, 30))
	fill(img, color.Gray{Y: 77})

	tensor, err := Prepare(img, model.ImageSize{Height: 10, Width: 10})
	require.NoError(t, err)

	for i := 0; i < len(tensor.Data); i += 3 {
		assert.Equal(t, tensor.Data[i], tensor.Data[i+1])
		assert.Equal(t, tensor.Data[i], tensor.Data[i+2])
		assert.InDelta(t, 77, tensor.Data[i], 1)
	}
}

func TestPrepareUnsupportedFormat(t *testing.T) {
	img := image.NewAlpha(image.Rect(0, 0, 10, 10))

	_, err := Prepare(img, model.ImageSize{Height: 10, Width: 10})
	assert.ErrorIs(t, err, ErrUnsupportedImageFormat)
}

func TestPrepareInvalidSize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))

	_, err := Prepare(img, model.ImageSize{})
	assert.Error(t, err)
}

func TestChannels(t *testing.T) {
	assert.Equal(t, 1, Channels(image.NewGray(image.Rect(0, 0, 1, 1))))
	assert.Equal(t, 3, Channels(image.NewYCbCr(image.Rect(0, 0, 2, 2), image.YCbCrSubsampleRatio444)))
	assert.Equal(t, 3, Channels(image.NewCMYK(image.Rect(0, 0, 1, 1))))
	assert.Equal(t, 4, Channels(image.NewRGBA(image.Rect(0, 0, 1, 1))))
	assert.Equal(t, 4, Channels(image.NewNRGBA64(image.Rect(0, 0, 1, 1))))
	assert.Equal(t, 0, Channels(image.NewAlpha16(image.Rect(0, 0, 1, 1))))
}

func TestDecode(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 12, 7))

	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))
	decoded, err := Decode(pngBuf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "png", decoded.Format)
	assert.Equal(t, 12, decoded.Bounds().Dx())
	assert.Equal(t, 7, decoded.Bounds().Dy())

	var bmpBuf bytes.Buffer
	require.NoError(t, bmp.Encode(&bmpBuf, img))
	decoded, err = Decode(bmpBuf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "bmp", decoded.Format)

	_, err = Decode([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrDecode)
}

// grayAlphaPNG encodes an 8-bit gray+alpha PNG, which image/png cannot write.
func grayAlphaPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	chunk := func(typ string, data []byte) {
		_ = binary.Write(&buf, binary.BigEndian, uint32(len(data)))
		crc := crc32.NewIEEE()
		crc.Write([]byte(typ))
		crc.Write(data)
		buf.WriteString(typ)
		buf.Write(data)
		_ = binary.Write(&buf, binary.BigEndian, crc.Sum32())
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(height))
	ihdr[8] = 8
	ihdr[9] = 4
	chunk("IHDR", ihdr)

	var raw bytes.Buffer
	for y := 0; y < height; y++ {
		raw.WriteByte(0)
		for x := 0; x < width; x++ {
			raw.Write([]byte{uint8(x * 16), 255})
		}
	}
	var idat bytes.Buffer
	zw := zlib.NewWriter(&idat)
	_, err := zw.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	chunk("IDAT", idat.Bytes())
	chunk("IEND", nil)

	return buf.Bytes()
}

func TestDecodeSourceChannels(t *testing.T) {
	encode := func(img image.Image) []byte {
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, img))
		return buf.Bytes()
	}

	opaque := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	fill(opaque, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	translucent := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	fill(translucent, color.NRGBA{R: 1, G: 2, B: 3, A: 100})

	tests := []struct {
		name     string
		data     []byte
		channels int
	}{
		{"gray", encode(image.NewGray(image.Rect(0, 0, 4, 4))), 1},
		{"rgb", encode(opaque), 3},
		{"rgba", encode(translucent), 4},
		{"gray alpha", grayAlphaPNG(t, 4, 4), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := Decode(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.channels, decoded.Channels)
			assert.Equal(t, tt.channels, Channels(decoded))
		})
	}
}

func TestPrepareRejectsGrayAlpha(t *testing.T) {
	decoded, err := Decode(grayAlphaPNG(t, 6, 6))
	require.NoError(t, err)
	_, isNRGBA := decoded.Image.(*image.NRGBA)
	assert.True(t, isNRGBA)

	_, err = Prepare(decoded, model.ImageSize{Height: 8, Width: 8})
	assert.ErrorIs(t, err, ErrUnsupportedImageFormat)
}

func TestPrepareDecoded(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 30, 30))
	fill(img, color.Gray{Y: 90})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	decoded, err := Decode(buf.Bytes())
	require.NoError(t, err)

	tensor, err := Prepare(decoded, model.ImageSize{Height: 10, Width: 10})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 10, 10, 3}, tensor.Shape)
	assert.InDelta(t, 90, tensor.Data[0], 1)
}
