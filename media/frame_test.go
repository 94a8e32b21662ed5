package media

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDecodeFrameBarePayload(t *testing.T) {
	img, err := DecodeFrame(encodePNG(t, 8, 6), 0)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())
}

func TestDecodeFrameDataURL(t *testing.T) {
	payload := "data:image/png;base64," + encodePNG(t, 4, 4)
	img, err := DecodeFrame(payload, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestDecodeFrameDownscalesLargeFrames(t *testing.T) {
	img, err := DecodeFrame(encodePNG(t, 200, 100), 50)
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 25, img.Bounds().Dy())
}

func TestDecodeFrameKeepsSmallFrames(t *testing.T) {
	img, err := DecodeFrame(encodePNG(t, 20, 10), 50)
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dx())
}

func TestDecodeFrameInvalidBase64(t *testing.T) {
	_, err := DecodeFrame("not base64!!!", 0)
	assert.Error(t, err)
}

func TestDecodeFrameInvalidImage(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("plain text"))
	_, err := DecodeFrame(payload, 0)
	assert.Error(t, err)
}
