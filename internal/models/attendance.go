package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusExcused AttendanceStatus = "excused"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// Attendance is a single per-student, per-course, per-date record.
type Attendance struct {
	ID             int64            `db:"id" json:"id"`
	StudentID      int64            `db:"student_id" json:"student_id"`
	CourseID       int64            `db:"course_id" json:"course_id"`
	AttendanceDate time.Time        `db:"attendance_date" json:"attendance_date"`
	Status         AttendanceStatus `db:"status" json:"status"`
	Remarks        *string          `db:"remarks" json:"remarks,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
}

// RosterEntry is one submitted attendance record inside a roster save.
type RosterEntry struct {
	StudentID int64            `json:"student_id"`
	Status    AttendanceStatus `json:"status"`
	Remarks   *string          `json:"remarks,omitempty"`
}

// RosterStudent is an enrolled student together with any attendance already
// recorded for the requested date.
type RosterStudent struct {
	ID               int64   `db:"id" json:"id"`
	Name             string  `db:"name" json:"name"`
	AttendanceStatus *string `db:"attendance_status" json:"attendance_status,omitempty"`
	Remarks          *string `db:"remarks" json:"remarks,omitempty"`
}

// AttendanceDetailRow is a stored record joined with the student name.
type AttendanceDetailRow struct {
	ID          int64            `db:"id" json:"id"`
	StudentID   int64            `db:"student_id" json:"student_id"`
	StudentName string           `db:"student_name" json:"student_name"`
	Status      AttendanceStatus `db:"status" json:"status"`
	Remarks     *string          `db:"remarks" json:"remarks,omitempty"`
}

// AttendanceSummaryRow aggregates one course's records for one date.
type AttendanceSummaryRow struct {
	Date         time.Time `db:"date" json:"date"`
	CourseID     int64     `db:"course_id" json:"course_id"`
	CourseName   string    `db:"course_name" json:"course_name"`
	PresentCount int       `db:"present_count" json:"present_count"`
	AbsentCount  int       `db:"absent_count" json:"absent_count"`
	LateCount    int       `db:"late_count" json:"late_count"`
	ExcusedCount int       `db:"excused_count" json:"excused_count"`
}

// AttendanceSummaryFilter scopes summary queries. Days == 0 means no date
// restriction ("all").
type AttendanceSummaryFilter struct {
	CourseID int64
	Days     int
}
