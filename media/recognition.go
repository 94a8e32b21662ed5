package media

import (
	"image"
	"log"
	"math"

	"gocv.io/x/gocv"
)

// FaceRecognitionModel provides face embedding extraction for recognition
type FaceRecognitionModel struct {
	Net       gocv.Net
	Enabled   bool
	ModelName string

	InputSizeW int
	InputSizeH int
}

// NewFaceRecognitionModel loads a face recognition model (ArcFace, FaceNet, etc.)
func NewFaceRecognitionModel(modelPath string, modelName string) *FaceRecognitionModel {
	if modelPath == "" {
		log.Println("recognition: model path is empty, disabling face recognition")
		return &FaceRecognitionModel{Enabled: false}
	}

	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		log.Printf("recognition: ERROR - ReadNet returned an empty network for %s. Check file path and integrity.", modelName)
		return &FaceRecognitionModel{Enabled: false}
	}
	log.Printf("recognition: successfully loaded %s model", modelName)

	cudaBackendErr := net.SetPreferableBackend(gocv.NetBackendCUDA)
	cudaTargetErr := net.SetPreferableTarget(gocv.NetTargetCUDA)
	if cudaBackendErr == nil && cudaTargetErr == nil {
		log.Printf("recognition: Set backend/target to CUDA for %s", modelName)
	} else {
		net.SetPreferableBackend(gocv.NetBackendDefault)
		net.SetPreferableTarget(gocv.NetTargetCPU)
		log.Printf("recognition: Set backend/target to CPU (Default) for %s", modelName)
	}

	// Input geometry per model family
	inputSizeW, inputSizeH := 112, 112
	if modelName == "facenet" {
		inputSizeW, inputSizeH = 160, 160
	}

	return &FaceRecognitionModel{
		Net:        net,
		Enabled:    true,
		ModelName:  modelName,
		InputSizeW: inputSizeW,
		InputSizeH: inputSizeH,
	}
}

func (f *FaceRecognitionModel) Close() {
	if f != nil && f.Enabled {
		f.Net.Close()
		log.Printf("recognition: closed %s network", f.ModelName)
		f.Enabled = false
	}
}

// ExtractEmbedding extracts an L2-normalized face embedding from a face
// region. Returns nil when the model is disabled or the region is unusable.
func (f *FaceRecognitionModel) ExtractEmbedding(faceRegion gocv.Mat) []float32 {
	if f == nil || !f.Enabled || faceRegion.Empty() {
		return nil
	}

	processed := f.preprocessFace(faceRegion)
	if processed.Empty() {
		return nil
	}
	defer processed.Close()

	// ArcFace/FaceNet expect input normalized to [0,1]
	blob := gocv.BlobFromImage(processed, 1.0/255.0, image.Pt(f.InputSizeW, f.InputSizeH), gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	f.Net.SetInput(blob, "")
	output := f.Net.Forward("")
	defer output.Close()

	embedding := extractEmbeddingVector(output)
	if len(embedding) == 0 {
		return nil
	}
	return normalizeEmbedding(embedding)
}

// preprocessFace prepares a face region for embedding extraction: BGR to RGB,
// resize to model input geometry, float32 conversion.
func (f *FaceRecognitionModel) preprocessFace(faceRegion gocv.Mat) gocv.Mat {
	if faceRegion.Empty() {
		return gocv.Mat{}
	}

	var processed gocv.Mat
	if faceRegion.Channels() == 3 {
		processed = gocv.NewMat()
		gocv.CvtColor(faceRegion, &processed, gocv.ColorBGRToRGB)
	} else {
		processed = faceRegion.Clone()
	}

	aligned := gocv.NewMat()
	gocv.Resize(processed, &aligned, image.Pt(f.InputSizeW, f.InputSizeH), 0, 0, gocv.InterpolationLinear)
	processed.Close()

	normalized := gocv.NewMat()
	aligned.ConvertTo(&normalized, gocv.MatTypeCV32F)
	aligned.Close()

	return normalized
}

// extractEmbeddingVector flattens the model output into the embedding vector
func extractEmbeddingVector(output gocv.Mat) []float32 {
	if len(output.Size()) == 0 {
		return nil
	}

	flattened := output.Reshape(1, 1)
	defer flattened.Close()

	embeddingSize := flattened.Cols()
	embedding := make([]float32, embeddingSize)
	for i := 0; i < embeddingSize; i++ {
		embedding[i] = flattened.GetFloatAt(0, i)
	}
	return embedding
}

// normalizeEmbedding normalizes the embedding vector to unit length
func normalizeEmbedding(embedding []float32) []float32 {
	var norm float32
	for _, val := range embedding {
		norm += val * val
	}
	norm = float32(math.Sqrt(float64(norm)))
	if norm == 0 {
		return embedding
	}

	normalized := make([]float32, len(embedding))
	for i, val := range embedding {
		normalized[i] = val / norm
	}
	return normalized
}
