package types

import (
	"strings"
	"time"
)

// Role is the authorization level of an account.
type Role string

const (
	RoleStudent Role = "student"
	RoleAlumni  Role = "alumni"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleAlumni, RoleAdmin:
		return true
	}
	return false
}

// InferRole derives a role from the domain of an email address.
// Addresses ending in @admin.com are admins, @college.edu are students,
// everything else is an alumnus.
func InferRole(email string) Role {
	email = NormalizeEmail(email)
	switch {
	case strings.HasSuffix(email, "@admin.com"):
		return RoleAdmin
	case strings.HasSuffix(email, "@college.edu"):
		return RoleStudent
	default:
		return RoleAlumni
	}
}

// NormalizeEmail trims and lowercases an email address so that lookups
// and uniqueness are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// User represents an account in the system.
// It contains identity, role, profile and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int64 `json:"id" db:"id"`

	// Email is the user's normalized email address. It is unique.
	Email string `json:"email" db:"email"`

	// Name is the user's display or full name.
	Name string `json:"name" db:"name"`

	// Role indicates the user's authorization level
	// (student, alumni or admin).
	Role Role `json:"role" db:"role"`

	// GraduationYear is required for alumni and empty otherwise.
	GraduationYear *int `json:"graduationYear,omitempty" db:"graduation_year"`

	// Department is the academic department the user belongs or belonged to.
	Department string `json:"department" db:"department"`

	// Location is a free-form city or region.
	Location string `json:"location" db:"location"`

	// Company is the user's current employer.
	Company string `json:"company" db:"company"`

	// Position is the user's current job title.
	Position string `json:"position" db:"position"`

	// Bio is a short self description.
	Bio string `json:"bio" db:"bio"`

	// LinkedIn is a profile URL.
	LinkedIn string `json:"linkedin" db:"linkedin"`

	// Phone is an optional contact number.
	Phone string `json:"phone" db:"phone"`

	// AvatarKey is the object storage key of the profile picture.
	// This field is never exposed in API responses.
	AvatarKey string `json:"-" db:"avatar_key"`

	// HasAvatar reports whether a profile picture has been uploaded.
	HasAvatar bool `json:"hasAvatar" db:"-"`

	// PasswordHash stores the bcrypt hash of an optional password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Summary returns the public identity of the user embedded in other resources.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// UserSummary is the subset of a user embedded in jobs, posts and comments.
type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role,omitempty"`
}

// UserFilter narrows a directory listing. Zero values are ignored.
type UserFilter struct {
	// Search is matched case-insensitively as a substring of the name,
	// company or department.
	Search string

	// Role restricts results to one role.
	Role Role

	// Department is matched case-insensitively and exactly.
	Department string

	// GraduationYear restricts results to one class year.
	GraduationYear int
}

// ProfileUpdate carries the profile fields a user may change on their own
// account. Nil fields are left untouched.
type ProfileUpdate struct {
	Name           *string `json:"name"`
	GraduationYear *int    `json:"graduationYear" validate:"omitempty,gte=1900,lte=2100"`
	Department     *string `json:"department"`
	Location       *string `json:"location"`
	Company        *string `json:"company"`
	Position       *string `json:"position"`
	Bio            *string `json:"bio"`
	LinkedIn       *string `json:"linkedin"`
	Phone          *string `json:"phone"`
}

// Apply copies every non-nil field onto u. GraduationYear only applies to alumni.
func (p ProfileUpdate) Apply(u *User) {
	setNonBlank(&u.Name, p.Name)
	if p.GraduationYear != nil && u.Role == RoleAlumni {
		year := *p.GraduationYear
		u.GraduationYear = &year
	}
	setString(&u.Department, p.Department)
	setString(&u.Location, p.Location)
	setString(&u.Company, p.Company)
	setString(&u.Position, p.Position)
	setString(&u.Bio, p.Bio)
	setString(&u.LinkedIn, p.LinkedIn)
	setString(&u.Phone, p.Phone)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func setNonBlank(dst *string, src *string) {
	if src != nil && strings.TrimSpace(*src) != "" {
		*dst = strings.TrimSpace(*src)
	}
}
