package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/attendsys/attendsysbackend/models"
	"github.com/attendsys/attendsysbackend/repository"
)

type StudentHandler struct {
	StudentRepo repository.StudentRepositoryInterface
}

type studentPayload struct {
	Name       string `json:"name"`
	RollNumber string `json:"roll_number"`
	Email      string `json:"email"`
}

func (p studentPayload) validate() string {
	if strings.TrimSpace(p.Name) == "" {
		return "Missing required field: name"
	}
	if strings.TrimSpace(p.RollNumber) == "" {
		return "Missing required field: roll_number"
	}
	if strings.TrimSpace(p.Email) == "" {
		return "Missing required field: email"
	}
	return ""
}

// studentResponse augments the model with the enrollment flag the admin UI
// shows; the raw embedding bytes never leave the server.
type studentResponse struct {
	models.Student
	FaceEnrolled bool `json:"face_enrolled"`
}

func toStudentResponse(s models.Student) studentResponse {
	resp := studentResponse{Student: s, FaceEnrolled: s.HasEmbedding()}
	resp.Attendance = nil
	return resp
}

func (sh *StudentHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req studentPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	student := &models.Student{
		Name:       strings.TrimSpace(req.Name),
		RollNumber: strings.TrimSpace(req.RollNumber),
		Email:      strings.TrimSpace(req.Email),
	}
	if err := sh.StudentRepo.Create(student); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "A student with this roll number or email already exists"})
			return
		}
		log.Printf("Error creating student '%s': %v", req.Name, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create student"})
		return
	}

	writeJSON(w, http.StatusCreated, toStudentResponse(*student))
}

func (sh *StudentHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := sh.StudentRepo.ListAll()
	if err != nil {
		log.Printf("Error listing students: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve students"})
		return
	}

	resp := make([]studentResponse, 0, len(students))
	for _, s := range students {
		resp = append(resp, toStudentResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (sh *StudentHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	studentID, ok := uintURLParam(r, "student_id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid student ID format"})
		return
	}

	student, err := sh.StudentRepo.GetByID(studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Student not found"})
		} else {
			log.Printf("Error getting student %d: %v", studentID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve student"})
		}
		return
	}

	writeJSON(w, http.StatusOK, toStudentResponse(*student))
}

func (sh *StudentHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	studentID, ok := uintURLParam(r, "student_id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid student ID format"})
		return
	}

	var req studentPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	student, err := sh.StudentRepo.GetByID(studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Student not found"})
		} else {
			log.Printf("Error fetching student %d for update: %v", studentID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve student"})
		}
		return
	}

	student.Name = strings.TrimSpace(req.Name)
	student.RollNumber = strings.TrimSpace(req.RollNumber)
	student.Email = strings.TrimSpace(req.Email)

	if err := sh.StudentRepo.Update(student); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "A student with this roll number or email already exists"})
			return
		}
		log.Printf("Error updating student %d: %v", studentID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to update student"})
		return
	}

	writeJSON(w, http.StatusOK, toStudentResponse(*student))
}

func (sh *StudentHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	studentID, ok := uintURLParam(r, "student_id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid student ID format"})
		return
	}

	if err := sh.StudentRepo.Delete(studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Student not found"})
		} else {
			log.Printf("Error deleting student %d: %v", studentID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete student"})
		}
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
