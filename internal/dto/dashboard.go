package dto

// ChartSeries is a label/value pairing consumed by frontend charts.
type ChartSeries struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// DashboardStats aggregates the headline counts and chart series shown on
// the dashboard.
type DashboardStats struct {
	TotalStudents     int         `json:"totalStudents"`
	TotalCourses      int         `json:"totalCourses"`
	ActiveEnrollments int         `json:"activeEnrollments"`
	EnrollmentData    ChartSeries `json:"enrollmentData"`
	CourseData        ChartSeries `json:"courseData"`
}
