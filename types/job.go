package types

import "time"

// Job is a posting on the job board.
type Job struct {
	// ID is the unique identifier of the job.
	ID int64 `json:"id" db:"id"`

	// Title is the position being offered.
	Title string `json:"title" db:"title"`

	// Company is the hiring organization.
	Company string `json:"company" db:"company"`

	// Description is the body of the posting.
	Description string `json:"description" db:"description"`

	// Requirements lists optional qualifications.
	Requirements string `json:"requirements" db:"requirements"`

	// PostedBy is the ID of the user that created the job.
	// It is nil once the poster's account has been removed.
	PostedBy *int64 `json:"postedBy" db:"posted_by"`

	// Poster summarizes the posting user, when known.
	Poster *UserSummary `json:"poster,omitempty" db:"-"`

	// PostedAt is the timestamp when the job was posted.
	PostedAt time.Time `json:"postedAt" db:"posted_at"`

	// Applications are ordered by application time.
	Applications []Application `json:"applications" db:"-"`
}

// Application records a student applying to a job.
type Application struct {
	// StudentID is the applying user.
	StudentID int64 `json:"studentId" db:"student_id"`

	// Student summarizes the applicant.
	Student *UserSummary `json:"student,omitempty" db:"-"`

	// AppliedAt is when the application was recorded.
	AppliedAt time.Time `json:"appliedAt" db:"applied_at"`
}

// ApplicantIDs returns the applicant IDs in application order.
func (j Job) ApplicantIDs() []int64 {
	ids := make([]int64, 0, len(j.Applications))
	for _, app := range j.Applications {
		ids = append(ids, app.StudentID)
	}
	return ids
}

// JobInput is the editable part of a job.
type JobInput struct {
	Title        string `json:"title" validate:"required"`
	Company      string `json:"company" validate:"required"`
	Description  string `json:"description" validate:"required"`
	Requirements string `json:"requirements"`
}

// JobUpdate carries a partial edit of a job. Nil fields are left untouched,
// and blank title, company or description keep the current value.
type JobUpdate struct {
	Title        *string `json:"title"`
	Company      *string `json:"company"`
	Description  *string `json:"description"`
	Requirements *string `json:"requirements"`
}

// Apply copies the edit onto j.
func (u JobUpdate) Apply(j *Job) {
	setNonBlank(&j.Title, u.Title)
	setNonBlank(&j.Company, u.Company)
	setNonBlank(&j.Description, u.Description)
	setString(&j.Requirements, u.Requirements)
}
