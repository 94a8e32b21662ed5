package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// DecodeFrame decodes a captured frame payload into an image ready for face
// detection. The payload is either a bare base64 string or a browser data
// URL ("data:image/jpeg;base64,...."). EXIF orientation is applied (phone
// uploads arrive rotated) and frames larger than maxSize on the longest side
// are downscaled before the detector sees them.
func DecodeFrame(payload string, maxSize int) (image.Image, error) {
	if idx := strings.IndexByte(payload, ','); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image payload: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img = applyExifOrientation(img, raw)

	if maxSize > 0 {
		bounds := img.Bounds()
		if bounds.Dx() > maxSize || bounds.Dy() > maxSize {
			img = imaging.Fit(img, maxSize, maxSize, imaging.Lanczos)
		}
	}

	return img, nil
}

// applyExifOrientation rotates/flips the decoded image according to its EXIF
// orientation tag. Images without EXIF data are returned unchanged.
func applyExifOrientation(img image.Image, raw []byte) image.Image {
	exifData, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		return img
	}
	tag, err := exifData.Get(exif.Orientation)
	if err != nil {
		return img
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return img
	}

	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
