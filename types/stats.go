package types

// Stats summarizes the user base for the admin dashboard.
type Stats struct {
	TotalUsers          int               `json:"totalUsers"`
	TotalStudents       int               `json:"totalStudents"`
	TotalAlumni         int               `json:"totalAlumni"`
	TotalAdmins         int               `json:"totalAdmins"`
	GraduationYearStats []YearCount       `json:"graduationYearStats"`
	DepartmentStats     []DepartmentCount `json:"departmentStats"`
}

// YearCount is the number of alumni in one graduating class.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// DepartmentCount is the number of users in one department.
type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}
