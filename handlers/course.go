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

type CourseHandler struct {
	CourseRepo repository.CourseRepositoryInterface
}

type coursePayload struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func (p coursePayload) validate() string {
	if strings.TrimSpace(p.Name) == "" {
		return "Missing required field: name"
	}
	if strings.TrimSpace(p.Code) == "" {
		return "Missing required field: code"
	}
	return ""
}

func (ch *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req coursePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	course := &models.Course{
		Name: strings.TrimSpace(req.Name),
		Code: strings.TrimSpace(req.Code),
	}
	if err := ch.CourseRepo.Create(course); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "A course with this code already exists"})
			return
		}
		log.Printf("Error creating course '%s': %v", req.Code, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create course"})
		return
	}

	writeJSON(w, http.StatusCreated, course)
}

func (ch *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := ch.CourseRepo.ListAll()
	if err != nil {
		log.Printf("Error listing courses: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve courses"})
		return
	}
	if courses == nil {
		courses = []models.Course{}
	}
	writeJSON(w, http.StatusOK, courses)
}

func (ch *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	courseID, ok := uintURLParam(r, "course_id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid course ID format"})
		return
	}

	course, err := ch.CourseRepo.GetByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Course not found"})
		} else {
			log.Printf("Error getting course %d: %v", courseID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve course"})
		}
		return
	}

	writeJSON(w, http.StatusOK, course)
}

func (ch *CourseHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	courseID, ok := uintURLParam(r, "course_id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid course ID format"})
		return
	}

	var req coursePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	course, err := ch.CourseRepo.GetByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Course not found"})
		} else {
			log.Printf("Error fetching course %d for update: %v", courseID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve course"})
		}
		return
	}

	course.Name = strings.TrimSpace(req.Name)
	course.Code = strings.TrimSpace(req.Code)

	if err := ch.CourseRepo.Update(course); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "A course with this code already exists"})
			return
		}
		log.Printf("Error updating course %d: %v", courseID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to update course"})
		return
	}

	writeJSON(w, http.StatusOK, course)
}

func (ch *CourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	courseID, ok := uintURLParam(r, "course_id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid course ID format"})
		return
	}

	if err := ch.CourseRepo.Delete(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Course not found"})
		} else {
			log.Printf("Error deleting course %d: %v", courseID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete course"})
		}
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
