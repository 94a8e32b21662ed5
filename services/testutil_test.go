package services

import (
	"fmt"
	"image"
	"sync"

	"github.com/attendsys/attendsysbackend/models"
)

// stubExtractor returns a fixed set of faces (or an error) for any frame.
type stubExtractor struct {
	faces []DetectedFace
	err   error
}

func (s *stubExtractor) Extract(img image.Image) ([]DetectedFace, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.faces, nil
}

// fakeStudentRepo is an in-memory StudentRepositoryInterface.
type fakeStudentRepo struct {
	students map[uint]*models.Student

	setEmbeddingCalls int
}

func newFakeStudentRepo(students ...*models.Student) *fakeStudentRepo {
	repo := &fakeStudentRepo{students: make(map[uint]*models.Student)}
	for _, s := range students {
		repo.students[s.ID] = s
	}
	return repo
}

func (f *fakeStudentRepo) Create(student *models.Student) error {
	f.students[student.ID] = student
	return nil
}

func (f *fakeStudentRepo) GetByID(id uint) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, fmt.Errorf("student %d not found", id)
	}
	return s, nil
}

func (f *fakeStudentRepo) ListAll() ([]models.Student, error) {
	out := make([]models.Student, 0, len(f.students))
	for _, s := range f.students {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeStudentRepo) Update(student *models.Student) error { return nil }

func (f *fakeStudentRepo) Delete(id uint) error {
	delete(f.students, id)
	return nil
}

func (f *fakeStudentRepo) SetEmbedding(studentID uint, embedding []float32, model string) error {
	s, ok := f.students[studentID]
	if !ok {
		return fmt.Errorf("student %d not found", studentID)
	}
	s.SetEmbedding(embedding)
	s.EmbeddingModel = model
	f.setEmbeddingCalls++
	return nil
}

func (f *fakeStudentRepo) ListEnrolled() ([]models.Student, error) {
	// Deterministic order: ascending ID, since map iteration is random.
	var ids []uint
	for id := range f.students {
		ids = append(ids, id)
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[j] < ids[i] {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
	var out []models.Student
	for _, id := range ids {
		if f.students[id].HasEmbedding() {
			out = append(out, *f.students[id])
		}
	}
	return out, nil
}

// fakeAttendanceRepo is an in-memory attendance ledger.
type fakeAttendanceRepo struct {
	mu      sync.Mutex
	marked  map[string]bool
	inserts int
	err     error
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{marked: make(map[string]bool)}
}

func ledgerKey(studentID, courseID uint, date string) string {
	return fmt.Sprintf("%d/%d/%s", studentID, courseID, date)
}

func (f *fakeAttendanceRepo) InsertIfAbsent(studentID, courseID uint, date string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := ledgerKey(studentID, courseID, date)
	if f.marked[key] {
		return false, nil
	}
	f.marked[key] = true
	f.inserts++
	return true, nil
}

func (f *fakeAttendanceRepo) ExistsForDate(studentID, courseID uint, date string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.marked[ledgerKey(studentID, courseID, date)], nil
}

func (f *fakeAttendanceRepo) ReplaceForDate(courseID uint, date string, entries []models.Attendance) error {
	return nil
}

func (f *fakeAttendanceRepo) ListByCourseAndDate(courseID uint, date string) ([]models.Attendance, error) {
	return nil, nil
}

// enrolledStudent builds a student with a stored embedding for registry tests.
func enrolledStudent(id uint, name, roll string, embedding []float32) *models.Student {
	s := &models.Student{ID: id, Name: name, RollNumber: roll}
	s.SetEmbedding(embedding)
	return s
}
