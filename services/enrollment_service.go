package services

import (
	"errors"
	"fmt"
	"image"

	"github.com/attendsys/attendsysbackend/repository"
)

// Enrollment failure modes. Both leave stored state untouched.
var (
	ErrNoFaceDetected        = errors.New("no face detected")
	ErrMultipleFacesDetected = errors.New("multiple faces detected")
)

// EnrollmentService registers a student's face: it runs the extractor on a
// frame and, when exactly one face is present, stores that face's embedding
// on the student record. Re-enrolling simply replaces the old embedding.
type EnrollmentService struct {
	extractor   FaceExtractor
	studentRepo repository.StudentRepositoryInterface
	modelName   string
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(extractor FaceExtractor, studentRepo repository.StudentRepositoryInterface, modelName string) *EnrollmentService {
	return &EnrollmentService{
		extractor:   extractor,
		studentRepo: studentRepo,
		modelName:   modelName,
	}
}

// Enroll extracts the single face from the frame and stores its embedding
// for the student. Fails with ErrNoFaceDetected or ErrMultipleFacesDetected
// when the frame does not contain exactly one face; enrollment requires an
// unambiguous subject.
func (s *EnrollmentService) Enroll(studentID uint, frame image.Image) error {
	faces, err := s.extractor.Extract(frame)
	if err != nil {
		return fmt.Errorf("face extraction failed: %w", err)
	}
	if len(faces) == 0 {
		return ErrNoFaceDetected
	}
	if len(faces) > 1 {
		return ErrMultipleFacesDetected
	}

	if err := s.studentRepo.SetEmbedding(studentID, faces[0].Embedding, s.modelName); err != nil {
		return fmt.Errorf("storing embedding for student %d: %w", studentID, err)
	}
	return nil
}
