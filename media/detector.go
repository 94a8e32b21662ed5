package media

import (
	"image"
	"log"

	"gocv.io/x/gocv"
)

// DetectionResult is one detected face region in frame coordinates.
type DetectionResult struct {
	X          int
	Y          int
	W          int
	H          int
	Confidence float32
}

// DNNFaceDetector wraps an OpenCV DNN face detection network (SSD ResNet-10).
type DNNFaceDetector struct {
	Net     gocv.Net
	Enabled bool

	// configuration parameters used during detection
	InputSizeW    int
	InputSizeH    int
	ScaleFactor   float64
	MeanVal       gocv.Scalar
	ConfThreshold float32
}

// NewDNNFaceDetector loads the DNN model
func NewDNNFaceDetector(configPath, modelPath string) *DNNFaceDetector {
	if configPath == "" || modelPath == "" {
		log.Println("detection(dnn): config or model path is empty, disabling DNN detector")
		return &DNNFaceDetector{Enabled: false}
	}

	net := gocv.ReadNet(modelPath, configPath)
	if net.Empty() {
		log.Printf("detection(dnn): ERROR loading network model: config=%s, model=%s", configPath, modelPath)
		return &DNNFaceDetector{Enabled: false}
	}
	log.Printf("detection(dnn): successfully loaded face detection model")

	cudaBackendErr := net.SetPreferableBackend(gocv.NetBackendCUDA)
	cudaTargetErr := net.SetPreferableTarget(gocv.NetTargetCUDA)

	if cudaBackendErr == nil && cudaTargetErr == nil {
		log.Println("detection(dnn): Set backend/target to CUDA")
	} else {
		net.SetPreferableBackend(gocv.NetBackendDefault)
		net.SetPreferableTarget(gocv.NetTargetCPU)
		log.Println("detection(dnn): Set backend/target to CPU (Default)")
	}

	return &DNNFaceDetector{
		Net:           net,
		Enabled:       true,
		InputSizeW:    300,
		InputSizeH:    300,
		ScaleFactor:   1.0,
		MeanVal:       gocv.NewScalar(104.0, 177.0, 123.0, 0),
		ConfThreshold: 0.5,
	}
}

func (d *DNNFaceDetector) Close() {
	if d != nil && d.Enabled {
		d.Net.Close()
		log.Println("detection(dnn): closed network")
		d.Enabled = false
	}
}

// DetectFaces runs face detection on a BGR frame and returns the regions
// whose confidence clears the detector threshold.
func (d *DNNFaceDetector) DetectFaces(img gocv.Mat) []DetectionResult {
	if d == nil || !d.Enabled || img.Empty() {
		return nil
	}

	imgHeight := float32(img.Rows())
	imgWidth := float32(img.Cols())

	blob := gocv.BlobFromImage(img, d.ScaleFactor, image.Pt(d.InputSizeW, d.InputSizeH), d.MeanVal, false, false)
	defer blob.Close()

	d.Net.SetInput(blob, "")
	detectionsMat := d.Net.Forward("")
	defer detectionsMat.Close()

	results := []DetectionResult{}

	// Output shape is [1, 1, N, 7]: (batch, class, confidence, x1, y1, x2, y2)
	sizes := detectionsMat.Size()
	if len(sizes) < 3 {
		log.Printf("detection(dnn): unexpected output matrix dimensions: %v", sizes)
		return results
	}
	numDetections := sizes[2]
	if numDetections == 0 {
		return results
	}

	detections2D := detectionsMat.Reshape(1, numDetections*sizes[3])
	detectionsData := detections2D.Reshape(1, numDetections)
	defer detectionsData.Close()

	for i := 0; i < numDetections; i++ {
		confidence := detectionsData.GetFloatAt(i, 2)
		if confidence <= d.ConfThreshold {
			continue
		}

		xMin := detectionsData.GetFloatAt(i, 3) * imgWidth
		yMin := detectionsData.GetFloatAt(i, 4) * imgHeight
		xMax := detectionsData.GetFloatAt(i, 5) * imgWidth
		yMax := detectionsData.GetFloatAt(i, 6) * imgHeight

		xMin = max(0, xMin)
		yMin = max(0, yMin)
		xMax = min(imgWidth, xMax)
		yMax = min(imgHeight, yMax)

		if xMax > xMin && yMax > yMin {
			results = append(results, DetectionResult{
				X:          int(xMin),
				Y:          int(yMin),
				W:          int(xMax - xMin),
				H:          int(yMax - yMin),
				Confidence: confidence,
			})
		}
	}

	return results
}
