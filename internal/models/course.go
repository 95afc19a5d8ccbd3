package models

import "time"

// CourseStatus enumerates course lifecycle states.
type CourseStatus string

const (
	CourseStatusActive   CourseStatus = "active"
	CourseStatusInactive CourseStatus = "inactive"
	CourseStatusArchived CourseStatus = "archived"
)

// Course represents a taught course.
type Course struct {
	ID          int64        `db:"id" json:"id"`
	Name        string       `db:"name" json:"name"`
	Code        string       `db:"code" json:"code"`
	Credits     int          `db:"credits" json:"credits"`
	Instructor  string       `db:"instructor" json:"instructor"`
	Description string       `db:"description" json:"description"`
	Status      CourseStatus `db:"status" json:"status"`
	StartDate   *time.Time   `db:"start_date" json:"start_date,omitempty"`
	EndDate     *time.Time   `db:"end_date" json:"end_date,omitempty"`
	Capacity    int          `db:"capacity" json:"capacity"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// CourseFilter encapsulates search parameters for listing courses.
type CourseFilter struct {
	Search    string
	Status    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
