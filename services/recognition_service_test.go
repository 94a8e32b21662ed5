package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendsys/attendsysbackend/models"
)

var (
	embeddingA = []float32{1, 0, 0, 0}
	embeddingB = []float32{0, 1, 0, 0}
	// probeNearA is 0.1 from A and well over the threshold from B.
	probeNearA = []float32{0.9, 0, 0, 0}
	// probeFar matches nobody at the default threshold.
	probeFar = []float32{10, 10, 10, 10}
)

func newRecognitionFixture(extractor FaceExtractor, students ...*models.Student) (*RecognitionService, *fakeStudentRepo, *fakeAttendanceRepo) {
	studentRepo := newFakeStudentRepo(students...)
	attendanceRepo := newFakeAttendanceRepo()
	svc := NewRecognitionService(extractor, studentRepo, attendanceRepo, DefaultMatchThreshold)
	return svc, studentRepo, attendanceRepo
}

func TestRecognizeNoFaceDetected(t *testing.T) {
	svc, _, ledger := newRecognitionFixture(&stubExtractor{},
		enrolledStudent(1, "Ada", "CS-1", embeddingA))

	report, err := svc.Recognize(5, nil)
	require.NoError(t, err)
	assert.Equal(t, ReportNoFaceDetected, report.Status)
	assert.Empty(t, report.Faces)
	assert.Zero(t, ledger.inserts)
}

func TestRecognizeNoRegisteredFaces(t *testing.T) {
	// A student without an embedding does not count as registered.
	extractor := &stubExtractor{faces: []DetectedFace{{Embedding: probeNearA}}}
	svc, _, ledger := newRecognitionFixture(extractor,
		&models.Student{ID: 1, Name: "Ada", RollNumber: "CS-1"})

	report, err := svc.Recognize(5, nil)
	require.NoError(t, err)
	assert.Equal(t, ReportNoRegisteredFaces, report.Status)
	assert.Empty(t, report.Faces)
	assert.Zero(t, ledger.inserts)
}

func TestRecognizeEmptyFrameWinsOverEmptyRegistry(t *testing.T) {
	// A frame with no faces reports no_face_detected even when nobody is
	// enrolled; extraction outcome is checked first.
	svc, _, _ := newRecognitionFixture(&stubExtractor{})

	report, err := svc.Recognize(5, nil)
	require.NoError(t, err)
	assert.Equal(t, ReportNoFaceDetected, report.Status)
}

func TestRecognizeMarksMatchedStudent(t *testing.T) {
	extractor := &stubExtractor{faces: []DetectedFace{{Embedding: probeNearA}}}
	svc, _, ledger := newRecognitionFixture(extractor,
		enrolledStudent(1, "Ada", "CS-1", embeddingA),
		enrolledStudent(2, "Grace", "CS-2", embeddingB))

	report, err := svc.Recognize(5, nil)
	require.NoError(t, err)
	assert.Equal(t, ReportOK, report.Status)
	require.Len(t, report.Faces, 1)

	outcome := report.Faces[0]
	assert.Equal(t, OutcomeMarked, outcome.Status)
	assert.Equal(t, uint(1), outcome.StudentID)
	assert.Equal(t, "Ada", outcome.StudentName)
	assert.InDelta(t, 0.1, outcome.Distance, 1e-6)
	assert.Equal(t, 1, report.NewlyMarked)
	assert.Equal(t, 1, ledger.inserts)
	assert.NotEmpty(t, report.SessionID)
}

func TestRecognizeIdempotentAcrossSessions(t *testing.T) {
	extractor := &stubExtractor{faces: []DetectedFace{{Embedding: probeNearA}}}
	svc, _, ledger := newRecognitionFixture(extractor,
		enrolledStudent(1, "Ada", "CS-1", embeddingA))

	first, err := svc.Recognize(5, nil)
	require.NoError(t, err)
	require.Equal(t, OutcomeMarked, first.Faces[0].Status)

	// Every later frame the same day reports already_marked, never a
	// second insert.
	for i := 0; i < 3; i++ {
		report, err := svc.Recognize(5, nil)
		require.NoError(t, err)
		assert.Equal(t, OutcomeAlreadyMarked, report.Faces[0].Status)
		assert.Zero(t, report.NewlyMarked)
	}
	assert.Equal(t, 1, ledger.inserts)
}

func TestRecognizeDuplicateDetectionsSingleInsert(t *testing.T) {
	// Two probe faces in one frame both resolve to Ada.
	extractor := &stubExtractor{faces: []DetectedFace{
		{Embedding: probeNearA},
		{Embedding: embeddingA},
	}}
	svc, _, ledger := newRecognitionFixture(extractor,
		enrolledStudent(1, "Ada", "CS-1", embeddingA))

	report, err := svc.Recognize(5, nil)
	require.NoError(t, err)
	require.Len(t, report.Faces, 2)
	assert.Equal(t, OutcomeMarked, report.Faces[0].Status)
	assert.Equal(t, OutcomeAlreadyMarked, report.Faces[1].Status)
	assert.Equal(t, 1, report.NewlyMarked)
	assert.Equal(t, 1, ledger.inserts)
}

func TestRecognizeMixedOutcomes(t *testing.T) {
	extractor := &stubExtractor{faces: []DetectedFace{
		{Embedding: probeNearA},
		{Embedding: probeFar},
	}}
	svc, _, ledger := newRecognitionFixture(extractor,
		enrolledStudent(1, "Ada", "CS-1", embeddingA))

	report, err := svc.Recognize(5, nil)
	require.NoError(t, err)
	require.Len(t, report.Faces, 2)
	assert.Equal(t, OutcomeMarked, report.Faces[0].Status)
	assert.Equal(t, OutcomeNoMatch, report.Faces[1].Status)
	assert.Zero(t, report.Faces[1].StudentID)
	assert.Equal(t, 1, ledger.inserts)
}

func TestRecognizeSeparateCoursesAreIndependent(t *testing.T) {
	extractor := &stubExtractor{faces: []DetectedFace{{Embedding: probeNearA}}}
	svc, _, ledger := newRecognitionFixture(extractor,
		enrolledStudent(1, "Ada", "CS-1", embeddingA))

	first, err := svc.Recognize(5, nil)
	require.NoError(t, err)
	second, err := svc.Recognize(6, nil)
	require.NoError(t, err)

	assert.Equal(t, OutcomeMarked, first.Faces[0].Status)
	assert.Equal(t, OutcomeMarked, second.Faces[0].Status)
	assert.Equal(t, 2, ledger.inserts)
}

func TestRecognizeExtractionFailureAborts(t *testing.T) {
	boom := errors.New("bad frame")
	svc, _, ledger := newRecognitionFixture(&stubExtractor{err: boom},
		enrolledStudent(1, "Ada", "CS-1", embeddingA))

	report, err := svc.Recognize(5, nil)
	require.ErrorIs(t, err, boom)
	assert.Nil(t, report)
	assert.Zero(t, ledger.inserts)
}

func TestRecognizeStorageFailureAborts(t *testing.T) {
	extractor := &stubExtractor{faces: []DetectedFace{{Embedding: probeNearA}}}
	svc, _, ledger := newRecognitionFixture(extractor,
		enrolledStudent(1, "Ada", "CS-1", embeddingA))
	ledger.err = errors.New("disk full")

	report, err := svc.Recognize(5, nil)
	require.Error(t, err)
	assert.Nil(t, report)
}
