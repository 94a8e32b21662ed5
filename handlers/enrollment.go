package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"gorm.io/gorm"

	"github.com/attendsys/attendsysbackend/media"
	"github.com/attendsys/attendsysbackend/realtime"
	"github.com/attendsys/attendsysbackend/services"
	"github.com/attendsys/attendsysbackend/workers"
)

// EnrollmentHandler registers student faces from captured frames.
type EnrollmentHandler struct {
	EnrollmentSvc *services.EnrollmentService
	MaxFrameSize  int
	Hub           *realtime.Hub
}

type enrollPayload struct {
	Image string `json:"image"`
}

// RegisterFace accepts a base64-encoded frame (bare or data URL) and stores
// the single detected face as the student's enrollment embedding.
func (eh *EnrollmentHandler) RegisterFace(w http.ResponseWriter, r *http.Request) {
	studentID, ok := uintURLParam(r, "student_id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid student ID format"})
		return
	}

	var req enrollPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.Image == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required field: image"})
		return
	}

	frame, err := media.DecodeFrame(req.Image, eh.MaxFrameSize)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Could not decode image payload"})
		return
	}

	if err := eh.EnrollmentSvc.Enroll(studentID, frame); err != nil {
		switch {
		case errors.Is(err, services.ErrNoFaceDetected):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No face detected. Please try again."})
		case errors.Is(err, services.ErrMultipleFacesDetected):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Multiple faces detected. Please ensure only one person is in frame."})
		case errors.Is(err, gorm.ErrRecordNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Student not found"})
		case errors.Is(err, workers.ErrQueueFull):
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Recognition service is busy. Please try again."})
		default:
			log.Printf("Error enrolling face for student %d: %v", studentID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to register face"})
		}
		return
	}

	eh.Hub.Broadcast(realtime.Event{
		Type:      realtime.EventStudentEnrolled,
		StudentID: studentID,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "Face registered successfully"})
}
