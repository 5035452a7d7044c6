package imagecodec

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalize_ScalesDownKeepingAspect(t *testing.T) {
	out, err := Normalize(pngOf(t, 1600, 400))
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
}

func TestNormalize_SmallImageKeepsSize(t *testing.T) {
	out, err := Normalize(pngOf(t, 120, 90))
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.Width)
	assert.Equal(t, 90, cfg.Height)
}

func TestNormalize_Garbage(t *testing.T) {
	_, err := Normalize([]byte("not an image"))
	require.Error(t, err)

	_, err = Normalize(nil)
	assert.ErrorIs(t, err, ErrEmpty)
}

// pngHeader is a PNG that stops right after IHDR, which is all a decoder
// needs to learn the dimensions.
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	body := make([]byte, 0, 17)
	body = append(body, "IHDR"...)
	body = binary.BigEndian.AppendUint32(body, w)
	body = binary.BigEndian.AppendUint32(body, h)
	body = append(body, 8, 2, 0, 0, 0) // 8-bit RGB, no interlace

	_ = binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.Write(body)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(body))
	return buf.Bytes()
}

func TestNormalize_RejectsHugeDimensions(t *testing.T) {
	raw := pngHeader(50000, 50000)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, 50000, cfg.Width)

	_, err = Normalize(raw)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestBase64_RoundTripWithLineBreaks(t *testing.T) {
	data := []byte("some jpeg bytes that are long enough to wrap")
	enc := ToBase64(data)
	wrapped := enc[:10] + "\n" + enc[10:]

	dec, err := FromBase64(wrapped)
	require.NoError(t, err)
	assert.Equal(t, data, dec)

	_, err = FromBase64("")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestPlaceholder(t *testing.T) {
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(Placeholder()))
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
}
