package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Querier abstracts *sql.DB / *sql.Tx for the report queries.
type Querier interface {
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// ReportFilter narrows report queries to a course and/or date range.
// Nil / empty fields are ignored.
type ReportFilter struct {
	CourseID  *int64
	StartDate string // YYYY-MM-DD, inclusive
	EndDate   string // YYYY-MM-DD, inclusive
}

func (f ReportFilter) apply(b sq.SelectBuilder) sq.SelectBuilder {
	if f.CourseID != nil {
		b = b.Where(sq.Eq{"a.course_id": *f.CourseID})
	}
	if f.StartDate != "" {
		b = b.Where(sq.GtOrEq{"a.date": f.StartDate})
	}
	if f.EndDate != "" {
		b = b.Where(sq.LtOrEq{"a.date": f.EndDate})
	}
	return b
}

// AttendanceRow is one attendance record joined with its student and course.
type AttendanceRow struct {
	ID          int64  `json:"id"`
	StudentID   int64  `json:"student_id"`
	StudentName string `json:"student_name"`
	RollNumber  string `json:"roll_number"`
	CourseID    int64  `json:"course_id"`
	CourseCode  string `json:"course_code"`
	Date        string `json:"date"`
	Status      bool   `json:"status"`
}

// StudentReport summarizes one student's attendance.
type StudentReport struct {
	StudentID    int64           `json:"student_id"`
	TotalClasses int             `json:"total_classes"`
	Present      int             `json:"present"`
	Absent       int             `json:"absent"`
	Percentage   float64         `json:"percentage"`
	Records      []AttendanceRow `json:"records"`
}

// CourseDailyStat is one date's attendance totals within a course.
type CourseDailyStat struct {
	Date    string `json:"date"`
	Total   int    `json:"total"`
	Present int    `json:"present"`
}

// StudentStat is one student's aggregate line in the overall report.
type StudentStat struct {
	StudentID  int64   `json:"student_id"`
	Name       string  `json:"name"`
	RollNumber string  `json:"roll_number"`
	Total      int     `json:"total"`
	Present    int     `json:"present"`
	Absent     int     `json:"absent"`
	Percentage float64 `json:"percentage"`
}

// DashboardStats feeds the landing page counters.
type DashboardStats struct {
	TotalStudents        int64   `json:"total_students"`
	TotalCourses         int64   `json:"total_courses"`
	AttendancePercentage float64 `json:"attendance_percentage"`
}

func percentage(present, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(present) / float64(total) * 100
}

// GetStudentReport returns per-record history and totals for one student,
// optionally filtered by course and date range.
func GetStudentReport(db Querier, studentID int64, filter ReportFilter) (StudentReport, error) {
	queryBuilder := psql.Select(
		"a.id", "a.student_id", "s.name", "s.roll_number",
		"a.course_id", "c.code", "a.date", "a.status").
		From("attendance_records a").
		Join("students s ON a.student_id = s.id").
		Join("courses c ON a.course_id = c.id").
		Where(sq.Eq{"a.student_id": studentID}).
		OrderBy("a.date DESC")
	queryBuilder = filter.apply(queryBuilder)

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return StudentReport{}, fmt.Errorf("failed to build SQL for GetStudentReport: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return StudentReport{}, fmt.Errorf("failed to execute GetStudentReport query: %w", err)
	}
	defer rows.Close()

	report := StudentReport{StudentID: studentID, Records: []AttendanceRow{}}
	for rows.Next() {
		var rec AttendanceRow
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.StudentName, &rec.RollNumber,
			&rec.CourseID, &rec.CourseCode, &rec.Date, &rec.Status); err != nil {
			return StudentReport{}, fmt.Errorf("failed to scan attendance row: %w", err)
		}
		report.Records = append(report.Records, rec)
		report.TotalClasses++
		if rec.Status {
			report.Present++
		}
	}
	if err := rows.Err(); err != nil {
		return StudentReport{}, fmt.Errorf("error iterating attendance rows: %w", err)
	}

	report.Absent = report.TotalClasses - report.Present
	report.Percentage = percentage(report.Present, report.TotalClasses)
	return report, nil
}

// GetCourseReport returns date-wise attendance totals for one course.
func GetCourseReport(db Querier, courseID int64, filter ReportFilter) ([]CourseDailyStat, error) {
	filter.CourseID = &courseID
	queryBuilder := psql.Select(
		"a.date",
		"COUNT(*)",
		"SUM(CASE WHEN a.status THEN 1 ELSE 0 END)").
		From("attendance_records a").
		GroupBy("a.date").
		OrderBy("a.date ASC")
	queryBuilder = filter.apply(queryBuilder)

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for GetCourseReport: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute GetCourseReport query: %w", err)
	}
	defer rows.Close()

	stats := []CourseDailyStat{}
	for rows.Next() {
		var stat CourseDailyStat
		if err := rows.Scan(&stat.Date, &stat.Total, &stat.Present); err != nil {
			return nil, fmt.Errorf("failed to scan course daily stat: %w", err)
		}
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course stats: %w", err)
	}
	return stats, nil
}

// GetOverallReport returns per-student aggregate attendance across all
// students, optionally filtered by course and date range. Students with no
// attendance records in range appear with zero totals.
func GetOverallReport(db Querier, filter ReportFilter) ([]StudentStat, error) {
	joinCond := "attendance_records a ON a.student_id = s.id"
	joinArgs := []interface{}{}
	if filter.CourseID != nil {
		joinCond += " AND a.course_id = ?"
		joinArgs = append(joinArgs, *filter.CourseID)
	}
	if filter.StartDate != "" {
		joinCond += " AND a.date >= ?"
		joinArgs = append(joinArgs, filter.StartDate)
	}
	if filter.EndDate != "" {
		joinCond += " AND a.date <= ?"
		joinArgs = append(joinArgs, filter.EndDate)
	}

	queryBuilder := psql.Select(
		"s.id", "s.name", "s.roll_number",
		"COUNT(a.id)",
		"SUM(CASE WHEN a.status THEN 1 ELSE 0 END)").
		From("students s").
		LeftJoin(joinCond, joinArgs...).
		GroupBy("s.id", "s.name", "s.roll_number").
		OrderBy("s.name ASC")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for GetOverallReport: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute GetOverallReport query: %w", err)
	}
	defer rows.Close()

	stats := []StudentStat{}
	for rows.Next() {
		var stat StudentStat
		var present sql.NullInt64
		if err := rows.Scan(&stat.StudentID, &stat.Name, &stat.RollNumber, &stat.Total, &present); err != nil {
			return nil, fmt.Errorf("failed to scan student stat: %w", err)
		}
		if present.Valid {
			stat.Present = int(present.Int64)
		}
		stat.Absent = stat.Total - stat.Present
		stat.Percentage = percentage(stat.Present, stat.Total)
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student stats: %w", err)
	}
	return stats, nil
}

// GetDashboardStats returns the counters shown on the dashboard: student and
// course totals plus today's attendance percentage across all courses.
func GetDashboardStats(db Querier, today string) (DashboardStats, error) {
	var stats DashboardStats

	sqlStr, args, err := psql.Select("COUNT(*)").From("students").ToSql()
	if err != nil {
		return stats, fmt.Errorf("failed to build SQL for student count: %w", err)
	}
	if err := db.QueryRow(sqlStr, args...).Scan(&stats.TotalStudents); err != nil {
		return stats, fmt.Errorf("failed to count students: %w", err)
	}

	sqlStr, args, err = psql.Select("COUNT(*)").From("courses").ToSql()
	if err != nil {
		return stats, fmt.Errorf("failed to build SQL for course count: %w", err)
	}
	if err := db.QueryRow(sqlStr, args...).Scan(&stats.TotalCourses); err != nil {
		return stats, fmt.Errorf("failed to count courses: %w", err)
	}

	sqlStr, args, err = psql.Select(
		"COUNT(*)",
		"SUM(CASE WHEN status THEN 1 ELSE 0 END)").
		From("attendance_records").
		Where(sq.Eq{"date": today}).
		ToSql()
	if err != nil {
		return stats, fmt.Errorf("failed to build SQL for today's attendance: %w", err)
	}
	var total int
	var present sql.NullInt64
	if err := db.QueryRow(sqlStr, args...).Scan(&total, &present); err != nil {
		return stats, fmt.Errorf("failed to query today's attendance: %w", err)
	}
	if present.Valid {
		stats.AttendancePercentage = percentage(int(present.Int64), total)
	}

	return stats, nil
}
