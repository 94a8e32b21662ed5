package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/attendsys/attendsysbackend/media"
	"github.com/attendsys/attendsysbackend/models"
	"github.com/attendsys/attendsysbackend/realtime"
	"github.com/attendsys/attendsysbackend/repository"
	"github.com/attendsys/attendsysbackend/services"
	"github.com/attendsys/attendsysbackend/workers"
)

// AttendanceHandler exposes camera-based recognition and manual attendance
// marking for a course.
type AttendanceHandler struct {
	RecognitionSvc *services.RecognitionService
	CourseRepo     repository.CourseRepositoryInterface
	AttendanceRepo repository.AttendanceRepositoryInterface
	MaxFrameSize   int
	Hub            *realtime.Hub
}

type recognizePayload struct {
	CourseID uint   `json:"course_id"`
	Image    string `json:"image"`
}

// Recognize processes one camera frame: every face in it is matched against
// the enrolled students and matched students are marked present for today.
func (ah *AttendanceHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	var req recognizePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.CourseID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required field: course_id"})
		return
	}
	if req.Image == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required field: image"})
		return
	}

	if _, err := ah.CourseRepo.GetByID(req.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Course not found"})
		} else {
			log.Printf("Error verifying course %d: %v", req.CourseID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to verify course"})
		}
		return
	}

	frame, err := media.DecodeFrame(req.Image, ah.MaxFrameSize)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Could not decode image payload"})
		return
	}

	report, err := ah.RecognitionSvc.Recognize(req.CourseID, frame)
	if err != nil {
		if errors.Is(err, workers.ErrQueueFull) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Recognition service is busy. Please try again."})
			return
		}
		log.Printf("Error recognizing frame for course %d: %v", req.CourseID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to process frame"})
		return
	}

	for _, face := range report.Faces {
		if face.Status != services.OutcomeMarked {
			continue
		}
		ah.Hub.Broadcast(realtime.Event{
			Type:        realtime.EventAttendanceMarked,
			CourseID:    report.CourseID,
			StudentID:   face.StudentID,
			StudentName: face.StudentName,
			RollNumber:  face.RollNumber,
			Date:        report.Date,
			SessionID:   report.SessionID,
		})
	}

	writeJSON(w, http.StatusOK, report)
}

type manualEntry struct {
	StudentID uint `json:"student_id"`
	Status    bool `json:"status"`
}

type manualMarkPayload struct {
	Date    string        `json:"date"`
	Entries []manualEntry `json:"entries"`
}

// MarkAttendance replaces a course's attendance for one date with the given
// entries. Absent rows (status=false) are stored too, so the day's roll call
// is complete.
func (ah *AttendanceHandler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	courseID, ok := uintURLParam(r, "course_id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid course ID format"})
		return
	}

	var req manualMarkPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}

	date := req.Date
	if date == "" {
		date = models.Today()
	} else if _, err := time.Parse(models.DateLayout, date); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid date format, expected YYYY-MM-DD"})
		return
	}

	if _, err := ah.CourseRepo.GetByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Course not found"})
		} else {
			log.Printf("Error verifying course %d: %v", courseID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to verify course"})
		}
		return
	}

	records := make([]models.Attendance, 0, len(req.Entries))
	for _, entry := range req.Entries {
		if entry.StudentID == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Each entry requires a student_id"})
			return
		}
		records = append(records, models.Attendance{
			StudentID: entry.StudentID,
			CourseID:  courseID,
			Date:      date,
			Status:    entry.Status,
		})
	}

	if err := ah.AttendanceRepo.ReplaceForDate(courseID, date, records); err != nil {
		log.Printf("Error replacing attendance for course %d on %s: %v", courseID, date, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to save attendance"})
		return
	}

	ah.Hub.Broadcast(realtime.Event{
		Type:     realtime.EventAttendanceReplaced,
		CourseID: courseID,
		Date:     date,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Attendance saved successfully",
		"date":    date,
		"count":   len(records),
	})
}

// ListAttendance returns a course's attendance records for one date
// (today when no date query parameter is given).
func (ah *AttendanceHandler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	courseID, ok := uintURLParam(r, "course_id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid course ID format"})
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = models.Today()
	} else if _, err := time.Parse(models.DateLayout, date); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid date format, expected YYYY-MM-DD"})
		return
	}

	records, err := ah.AttendanceRepo.ListByCourseAndDate(courseID, date)
	if err != nil {
		log.Printf("Error listing attendance for course %d on %s: %v", courseID, date, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve attendance"})
		return
	}
	if records == nil {
		records = []models.Attendance{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"course_id": courseID,
		"date":      date,
		"records":   records,
	})
}
