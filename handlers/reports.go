package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/attendsys/attendsysbackend/database"
	"github.com/attendsys/attendsysbackend/models"
)

// ReportHandler serves the aggregate attendance reports. These run raw SQL
// over the same database the ORM writes to.
type ReportHandler struct {
	DB database.Querier
}

// reportFilterFromQuery builds a ReportFilter from course_id, start_date and
// end_date query parameters. Invalid values produce an error message for the
// caller instead of being silently dropped.
func reportFilterFromQuery(r *http.Request) (database.ReportFilter, string) {
	var filter database.ReportFilter

	if courseStr := r.URL.Query().Get("course_id"); courseStr != "" {
		courseID, err := strconv.ParseInt(courseStr, 10, 64)
		if err != nil {
			return filter, "Invalid course_id format"
		}
		filter.CourseID = &courseID
	}
	if start := r.URL.Query().Get("start_date"); start != "" {
		if _, err := time.Parse(models.DateLayout, start); err != nil {
			return filter, "Invalid start_date format, expected YYYY-MM-DD"
		}
		filter.StartDate = start
	}
	if end := r.URL.Query().Get("end_date"); end != "" {
		if _, err := time.Parse(models.DateLayout, end); err != nil {
			return filter, "Invalid end_date format, expected YYYY-MM-DD"
		}
		filter.EndDate = end
	}
	return filter, ""
}

// StudentReport returns one student's attendance history and totals.
func (rh *ReportHandler) StudentReport(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "student_id")
	studentID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid student ID format"})
		return
	}

	filter, msg := reportFilterFromQuery(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	report, err := database.GetStudentReport(rh.DB, studentID, filter)
	if err != nil {
		log.Printf("Error building student report for %d: %v", studentID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to build student report"})
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// CourseReport returns date-wise attendance totals for one course.
func (rh *ReportHandler) CourseReport(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "course_id")
	courseID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid course ID format"})
		return
	}

	filter, msg := reportFilterFromQuery(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	stats, err := database.GetCourseReport(rh.DB, courseID, filter)
	if err != nil {
		log.Printf("Error building course report for %d: %v", courseID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to build course report"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"course_id": courseID,
		"daily":     stats,
	})
}

// OverallReport returns per-student aggregates across the whole roster.
func (rh *ReportHandler) OverallReport(w http.ResponseWriter, r *http.Request) {
	filter, msg := reportFilterFromQuery(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	stats, err := database.GetOverallReport(rh.DB, filter)
	if err != nil {
		log.Printf("Error building overall report: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to build overall report"})
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Dashboard returns the landing page counters.
func (rh *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := database.GetDashboardStats(rh.DB, models.Today())
	if err != nil {
		log.Printf("Error building dashboard stats: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to build dashboard stats"})
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
