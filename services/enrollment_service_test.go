package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendsys/attendsysbackend/models"
)

func TestEnrollNoFaceDetected(t *testing.T) {
	repo := newFakeStudentRepo(&models.Student{ID: 1, Name: "Ada", RollNumber: "CS-1"})
	svc := NewEnrollmentService(&stubExtractor{}, repo, "arcface")

	err := svc.Enroll(1, nil)
	require.ErrorIs(t, err, ErrNoFaceDetected)
	assert.Zero(t, repo.setEmbeddingCalls, "failed enrollment must not mutate stored state")
	assert.False(t, repo.students[1].HasEmbedding())
}

func TestEnrollMultipleFacesDetected(t *testing.T) {
	repo := newFakeStudentRepo(&models.Student{ID: 1, Name: "Ada", RollNumber: "CS-1"})
	extractor := &stubExtractor{faces: []DetectedFace{
		{Embedding: []float32{1, 0}},
		{Embedding: []float32{0, 1}},
	}}
	svc := NewEnrollmentService(extractor, repo, "arcface")

	err := svc.Enroll(1, nil)
	require.ErrorIs(t, err, ErrMultipleFacesDetected)
	assert.Zero(t, repo.setEmbeddingCalls)
}

func TestEnrollStoresEmbedding(t *testing.T) {
	repo := newFakeStudentRepo(&models.Student{ID: 1, Name: "Ada", RollNumber: "CS-1"})
	embedding := []float32{0.5, -0.25, 0.125}
	svc := NewEnrollmentService(&stubExtractor{faces: []DetectedFace{{Embedding: embedding}}}, repo, "arcface")

	require.NoError(t, svc.Enroll(1, nil))
	assert.Equal(t, embedding, repo.students[1].GetEmbedding())
	assert.Equal(t, "arcface", repo.students[1].EmbeddingModel)
}

func TestEnrollReplacesPriorEmbedding(t *testing.T) {
	repo := newFakeStudentRepo(enrolledStudent(1, "Ada", "CS-1", []float32{1, 1, 1}))
	replacement := []float32{0, 0, 1}
	svc := NewEnrollmentService(&stubExtractor{faces: []DetectedFace{{Embedding: replacement}}}, repo, "arcface")

	require.NoError(t, svc.Enroll(1, nil))
	assert.Equal(t, replacement, repo.students[1].GetEmbedding())
}

func TestEnrollExtractionFailure(t *testing.T) {
	repo := newFakeStudentRepo(&models.Student{ID: 1})
	boom := errors.New("model exploded")
	svc := NewEnrollmentService(&stubExtractor{err: boom}, repo, "arcface")

	err := svc.Enroll(1, nil)
	require.ErrorIs(t, err, boom)
	assert.Zero(t, repo.setEmbeddingCalls)
}
