package services

import "image"

// DetectedFace is one face found in a frame: its bounding region and the
// embedding vector produced by the recognition model.
type DetectedFace struct {
	Region    image.Rectangle
	Embedding []float32
}

// FaceExtractor turns a decoded frame into zero or more detected faces with
// embeddings. The production implementation lives in the media package
// (OpenCV DNN); tests substitute stubs.
type FaceExtractor interface {
	Extract(img image.Image) ([]DetectedFace, error)
}
