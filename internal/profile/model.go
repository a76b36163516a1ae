package profile

import "time"

// Category names one advanced-profile section.
type Category string

const (
	Skills         Category = "skills"
	Employments    Category = "employments"
	Educations     Category = "educations"
	Certifications Category = "certifications"
	ClientProjects Category = "client_projects"
)

// Categories lists every section that gates wallet eligibility.
var Categories = []Category{Skills, Employments, Educations, Certifications, ClientProjects}

// ParseCategory accepts the route form of a category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Entry is one record in a profile section.
type Entry struct {
	ID           string     `json:"id"`
	UserID       string     `json:"-"`
	Category     Category   `json:"category"`
	Title        string     `json:"title"`
	Organization string     `json:"organization,omitempty"`
	Description  string     `json:"description,omitempty"`
	StartedOn    *time.Time `json:"started_on,omitempty"`
	EndedOn      *time.Time `json:"ended_on,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// EntryInput captures data required to add an entry.
type EntryInput struct {
	Title        string     `json:"title" validate:"required,max=200"`
	Organization string     `json:"organization" validate:"omitempty,max=200"`
	Description  string     `json:"description" validate:"omitempty,max=2000"`
	StartedOn    *time.Time `json:"started_on"`
	EndedOn      *time.Time `json:"ended_on"`
}
