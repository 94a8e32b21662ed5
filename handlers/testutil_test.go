package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/attendsys/attendsysbackend/models"
	"github.com/attendsys/attendsysbackend/repository"
	"github.com/attendsys/attendsysbackend/services"
)

type stubExtractor struct {
	faces []services.DetectedFace
	err   error
}

func (s *stubExtractor) Extract(_ image.Image) ([]services.DetectedFace, error) {
	return s.faces, s.err
}

type testEnv struct {
	router         *chi.Mux
	studentRepo    *repository.StudentRepository
	courseRepo     *repository.CourseRepository
	attendanceRepo *repository.AttendanceRepository
	userRepo       *repository.GormUserRepository
}

// newTestEnv wires the handlers against an in-memory database and the given
// extractor stub. Routes mirror main.go minus the auth middleware; auth has
// its own test.
func newTestEnv(t *testing.T, extractor services.FaceExtractor) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Student{}, &models.Course{}, &models.Attendance{}, &models.User{},
	))

	env := &testEnv{
		studentRepo:    repository.NewStudentRepository(db),
		courseRepo:     repository.NewCourseRepository(db),
		attendanceRepo: repository.NewAttendanceRepository(db),
		userRepo:       repository.NewUserRepository(db),
	}

	enrollmentSvc := services.NewEnrollmentService(extractor, env.studentRepo, "arcface")
	recognitionSvc := services.NewRecognitionService(extractor, env.studentRepo, env.attendanceRepo, services.DefaultMatchThreshold)

	studentHandler := &StudentHandler{StudentRepo: env.studentRepo}
	courseHandler := &CourseHandler{CourseRepo: env.courseRepo}
	enrollmentHandler := &EnrollmentHandler{EnrollmentSvc: enrollmentSvc, MaxFrameSize: 1280}
	attendanceHandler := &AttendanceHandler{
		RecognitionSvc: recognitionSvc,
		CourseRepo:     env.courseRepo,
		AttendanceRepo: env.attendanceRepo,
		MaxFrameSize:   1280,
	}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/students", func(r chi.Router) {
			r.Post("/", studentHandler.CreateStudent)
			r.Get("/", studentHandler.ListStudents)
			r.Route("/{student_id}", func(r chi.Router) {
				r.Get("/", studentHandler.GetStudent)
				r.Put("/", studentHandler.UpdateStudent)
				r.Delete("/", studentHandler.DeleteStudent)
				r.Post("/face", enrollmentHandler.RegisterFace)
			})
		})
		r.Route("/courses", func(r chi.Router) {
			r.Post("/", courseHandler.CreateCourse)
			r.Get("/", courseHandler.ListCourses)
			r.Route("/{course_id}", func(r chi.Router) {
				r.Get("/", courseHandler.GetCourse)
				r.Put("/", courseHandler.UpdateCourse)
				r.Delete("/", courseHandler.DeleteCourse)
				r.Get("/attendance", attendanceHandler.ListAttendance)
				r.Put("/attendance", attendanceHandler.MarkAttendance)
			})
		})
		r.Post("/attendance/recognize", attendanceHandler.Recognize)
	})
	env.router = r
	return env
}

func (env *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

// testFramePayload returns a tiny valid PNG as a base64 data URL. Handlers
// decode it before the stub extractor ever sees it.
func testFramePayload(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func mustCreateStudent(t *testing.T, env *testEnv, name, roll, email string) *models.Student {
	t.Helper()
	student := &models.Student{Name: name, RollNumber: roll, Email: email}
	require.NoError(t, env.studentRepo.Create(student))
	return student
}

func mustCreateCourse(t *testing.T, env *testEnv, name, code string) *models.Course {
	t.Helper()
	course := &models.Course{Name: name, Code: code}
	require.NoError(t, env.courseRepo.Create(course))
	return course
}
