package media

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/attendsys/attendsysbackend/services"
)

// ErrExtractorUnavailable is returned when the detection or recognition
// network could not be loaded at startup.
var ErrExtractorUnavailable = errors.New("face extractor is not available")

// Extractor implements services.FaceExtractor on top of the OpenCV DNN
// detector and the embedding model. The underlying networks are not
// goroutine-safe; callers must serialize access (see workers.ExtractionPool).
type Extractor struct {
	detector   *DNNFaceDetector
	recognizer *FaceRecognitionModel
}

// Ensure Extractor implements services.FaceExtractor
var _ services.FaceExtractor = (*Extractor)(nil)

// NewExtractor creates an extractor from a loaded detector and recognizer
func NewExtractor(detector *DNNFaceDetector, recognizer *FaceRecognitionModel) *Extractor {
	return &Extractor{detector: detector, recognizer: recognizer}
}

// Enabled reports whether both underlying networks loaded successfully.
func (e *Extractor) Enabled() bool {
	return e.detector != nil && e.detector.Enabled && e.recognizer != nil && e.recognizer.Enabled
}

func (e *Extractor) Close() {
	e.detector.Close()
	e.recognizer.Close()
}

// Extract detects all faces in the frame and computes an embedding for each,
// in detection order.
func (e *Extractor) Extract(img image.Image) ([]services.DetectedFace, error) {
	if !e.Enabled() {
		return nil, ErrExtractorUnavailable
	}

	rgb, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame to matrix: %w", err)
	}
	defer rgb.Close()

	// The detection and recognition preprocessing both expect BGR input
	bgr := gocv.NewMat()
	gocv.CvtColor(rgb, &bgr, gocv.ColorRGBToBGR)
	defer bgr.Close()

	detections := e.detector.DetectFaces(bgr)
	if len(detections) == 0 {
		return nil, nil
	}

	faces := make([]services.DetectedFace, 0, len(detections))
	for _, det := range detections {
		rect := image.Rect(det.X, det.Y, det.X+det.W, det.Y+det.H)
		rect = rect.Intersect(image.Rect(0, 0, bgr.Cols(), bgr.Rows()))
		if rect.Empty() {
			continue
		}

		region := bgr.Region(rect)
		embedding := e.recognizer.ExtractEmbedding(region)
		region.Close()

		if len(embedding) == 0 {
			return nil, fmt.Errorf("failed to compute embedding for face at %v", rect)
		}

		faces = append(faces, services.DetectedFace{
			Region:    rect,
			Embedding: embedding,
		})
	}

	return faces, nil
}
