package project

import "time"

type Status string

const (
	StatusPublished Status = "published"
	StatusDraft     Status = "draft"
	StatusDeleted   Status = "deleted"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) Valid() bool {
	switch s {
	case StatusPublished, StatusDraft, StatusDeleted:
		return true
	}
	return false
}

const DefaultCategory = "fullstack"

type Project struct {
	ID               int64      `json:"id" db:"id"`
	Title            string     `json:"title" db:"title"`
	Slug             string     `json:"slug" db:"slug"`
	ShortDescription string     `json:"short_description" db:"short_description"`
	FullDescription  string     `json:"full_description" db:"full_description"`
	Category         string     `json:"category" db:"category"`
	Technologies     StringList `json:"technologies" db:"technologies"`
	Features         StringList `json:"features" db:"features"`
	ThumbnailURL     string     `json:"thumbnail_url" db:"thumbnail_url"`
	MainImageURL     string     `json:"main_image_url" db:"main_image_url"`
	GithubURL        string     `json:"github_url" db:"github_url"`
	DemoURL          string     `json:"demo_url" db:"demo_url"`
	ClientName       string     `json:"client_name" db:"client_name"`
	ProjectDate      time.Time  `json:"project_date" db:"project_date"`
	DisplayOrder     int        `json:"display_order" db:"display_order"`
	Featured         bool       `json:"featured" db:"featured"`
	Status           Status     `json:"status" db:"status"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// CreateInput carries the fields of a new project. Zero values for Category,
// Status and ProjectDate are replaced by their defaults on insert.
type CreateInput struct {
	Title            string
	ShortDescription string
	FullDescription  string
	Category         string
	Technologies     []string
	Features         []string
	ThumbnailURL     string
	MainImageURL     string
	GithubURL        string
	DemoURL          string
	ClientName       string
	ProjectDate      *time.Time
	DisplayOrder     int
	Featured         bool
	Status           Status
}

// Patch is a partial update. Every updatable column has a field here and a nil
// field is left untouched.
type Patch struct {
	Title            *string
	ShortDescription *string
	FullDescription  *string
	Category         *string
	Technologies     *[]string
	Features         *[]string
	ThumbnailURL     *string
	MainImageURL     *string
	GithubURL        *string
	DemoURL          *string
	ClientName       *string
	ProjectDate      *time.Time
	DisplayOrder     *int
	Featured         *bool
	Status           *Status
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil &&
		p.ShortDescription == nil &&
		p.FullDescription == nil &&
		p.Category == nil &&
		p.Technologies == nil &&
		p.Features == nil &&
		p.ThumbnailURL == nil &&
		p.MainImageURL == nil &&
		p.GithubURL == nil &&
		p.DemoURL == nil &&
		p.ClientName == nil &&
		p.ProjectDate == nil &&
		p.DisplayOrder == nil &&
		p.Featured == nil &&
		p.Status == nil
}
