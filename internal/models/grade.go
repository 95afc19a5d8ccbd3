package models

import "time"

// Grade stores a numeric grade for a student in a course. Grades are kept
// independent of enrollment status: dropping a course does not remove them.
type Grade struct {
	ID        int64     `db:"id" json:"id"`
	StudentID int64     `db:"student_id" json:"student_id"`
	CourseID  int64     `db:"course_id" json:"course_id"`
	Grade     float64   `db:"grade" json:"grade"`
	Comments  string    `db:"comments" json:"comments"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// GradeDetail joins a grade with student and course names.
type GradeDetail struct {
	Grade
	StudentName string `db:"student_name" json:"student_name"`
	CourseName  string `db:"course_name" json:"course_name"`
}

// GradeFilter scopes grade listing queries.
type GradeFilter struct {
	StudentID int64
	CourseID  int64
	Page      int
	PageSize  int
}
