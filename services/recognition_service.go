package services

import (
	"fmt"
	"image"
	"log"

	"github.com/google/uuid"

	"github.com/attendsys/attendsysbackend/models"
	"github.com/attendsys/attendsysbackend/repository"
)

// FaceOutcomeStatus describes what happened for one detected face.
type FaceOutcomeStatus string

const (
	OutcomeMarked        FaceOutcomeStatus = "marked"
	OutcomeAlreadyMarked FaceOutcomeStatus = "already_marked"
	OutcomeNoMatch       FaceOutcomeStatus = "no_match"
)

// ReportStatus is the overall status of one recognition session.
type ReportStatus string

const (
	ReportOK                ReportStatus = "ok"
	ReportNoFaceDetected    ReportStatus = "no_face_detected"
	ReportNoRegisteredFaces ReportStatus = "no_registered_faces"
)

// FaceOutcome is the per-face result inside a recognition report. Student
// fields are only set for matched faces.
type FaceOutcome struct {
	Status      FaceOutcomeStatus `json:"status"`
	StudentID   uint              `json:"student_id,omitempty"`
	StudentName string            `json:"student_name,omitempty"`
	RollNumber  string            `json:"roll_number,omitempty"`
	Distance    float64           `json:"distance,omitempty"`
}

// RecognitionReport aggregates the per-face outcomes of one session. Faces
// appear in the order the extractor returned them.
type RecognitionReport struct {
	SessionID   string        `json:"session_id"`
	CourseID    uint          `json:"course_id"`
	Date        string        `json:"date"`
	Status      ReportStatus  `json:"status"`
	Faces       []FaceOutcome `json:"faces"`
	NewlyMarked int           `json:"newly_marked"`
}

// RecognitionService orchestrates one camera-attendance request: extract
// faces from the frame, match each against the enrolled-student registry and
// record attendance once per student per course per day.
type RecognitionService struct {
	extractor      FaceExtractor
	studentRepo    repository.StudentRepositoryInterface
	attendanceRepo repository.AttendanceRepositoryInterface
	threshold      float64
}

// NewRecognitionService creates a new recognition service
func NewRecognitionService(
	extractor FaceExtractor,
	studentRepo repository.StudentRepositoryInterface,
	attendanceRepo repository.AttendanceRepositoryInterface,
	threshold float64,
) *RecognitionService {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	return &RecognitionService{
		extractor:      extractor,
		studentRepo:    studentRepo,
		attendanceRepo: attendanceRepo,
		threshold:      threshold,
	}
}

// Recognize processes one frame for a course. Extraction and storage errors
// abort the request; everything else (no faces, no registered students,
// unmatched faces, already-marked students) is a normal outcome carried in
// the report. Faces are processed sequentially, so two detections of the
// same student within one frame yield exactly one new attendance row.
func (s *RecognitionService) Recognize(courseID uint, frame image.Image) (*RecognitionReport, error) {
	report := &RecognitionReport{
		SessionID: uuid.NewString(),
		CourseID:  courseID,
		Date:      models.Today(),
		Status:    ReportOK,
		Faces:     []FaceOutcome{},
	}

	faces, err := s.extractor.Extract(frame)
	if err != nil {
		return nil, fmt.Errorf("face extraction failed: %w", err)
	}
	if len(faces) == 0 {
		report.Status = ReportNoFaceDetected
		return report, nil
	}

	// Registry snapshot: taken once per request. Students enrolled after
	// this point are picked up by the next frame.
	enrolled, err := s.studentRepo.ListEnrolled()
	if err != nil {
		return nil, fmt.Errorf("loading face registry: %w", err)
	}

	registry := make([]EnrolledStudent, 0, len(enrolled))
	byID := make(map[uint]EnrolledStudent, len(enrolled))
	for _, st := range enrolled {
		emb := st.GetEmbedding()
		if len(emb) == 0 {
			continue
		}
		entry := EnrolledStudent{
			StudentID:  st.ID,
			Name:       st.Name,
			RollNumber: st.RollNumber,
			Embedding:  emb,
		}
		registry = append(registry, entry)
		byID[st.ID] = entry
	}
	if len(registry) == 0 {
		report.Status = ReportNoRegisteredFaces
		return report, nil
	}

	for _, face := range faces {
		match := BestMatch(face.Embedding, registry, s.threshold)
		if !match.Matched {
			report.Faces = append(report.Faces, FaceOutcome{Status: OutcomeNoMatch})
			continue
		}

		student := byID[match.StudentID]
		inserted, err := s.attendanceRepo.InsertIfAbsent(student.StudentID, courseID, report.Date)
		if err != nil {
			return nil, fmt.Errorf("recording attendance for student %d: %w", student.StudentID, err)
		}

		outcome := FaceOutcome{
			StudentID:   student.StudentID,
			StudentName: student.Name,
			RollNumber:  student.RollNumber,
			Distance:    match.Distance,
		}
		if inserted {
			outcome.Status = OutcomeMarked
			report.NewlyMarked++
		} else {
			outcome.Status = OutcomeAlreadyMarked
		}
		report.Faces = append(report.Faces, outcome)
	}

	log.Printf("recognition: session %s course %d: %d face(s), %d newly marked",
		report.SessionID, courseID, len(faces), report.NewlyMarked)
	return report, nil
}
