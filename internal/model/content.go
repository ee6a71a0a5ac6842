package model

// Content records managed through the back office. These carry no business
// invariants beyond the store contract: each collection is persisted as a
// single JSON document and replaced wholesale on save, so the structs only
// need stable JSON shapes for the public site to consume.

// Project is a portfolio entry (a produced event).
type Project struct {
	ID              int      `json:"id"`
	Title           string   `json:"title"`
	Slug            string   `json:"slug"`
	Category        string   `json:"category"`
	Image           string   `json:"image"`
	Gallery         []string `json:"gallery"`
	Description     string   `json:"description"`
	FullDescription string   `json:"fullDescription"`
	Services        []string `json:"services"`
	Client          string   `json:"client"`
	Date            string   `json:"date"`
	Guests          string   `json:"guests"`
	Location        string   `json:"location"`
	CreatedAt       string   `json:"createdAt"`
	UpdatedAt       string   `json:"updatedAt"`
}

// Service is an offering shown on the services page.
type Service struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Color       string   `json:"color"`
	Image       string   `json:"image"`
}

// Artist is a roster entry.
type Artist struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	MusicalGenre string   `json:"musicalGenre"`
	Bio          string   `json:"bio"`
	Image        string   `json:"image"`
	Socials      []string `json:"socials"`
	Tracks       []string `json:"tracks"`
}

// Category is a project category. ProjectCount is derived from the
// projects collection on every read, never stored authoritatively.
type Category struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	Description  string `json:"description,omitempty"`
	Color        string `json:"color"`
	ProjectCount int    `json:"projectCount"`
}

// TeamMember is a company team entry. Order drives display position and is
// rewritten by the reorder operation.
type TeamMember struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
	Bio   string `json:"bio"`
	Image string `json:"image"`
	Order int    `json:"order"`
}
