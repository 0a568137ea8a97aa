package seed

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/2beens/portfolio/internal/profile"
	"github.com/2beens/portfolio/internal/projects"
	"github.com/2beens/portfolio/internal/settings"
	"github.com/2beens/portfolio/internal/skills"
	"github.com/2beens/portfolio/internal/testimonials"
)

// File is the content.json document the site used to be served from.
// Collections there use "visible" instead of "isActive", and skill categories carry their
// categoryId in "id".
type File struct {
	Profile         *profile.Profile          `json:"-"`
	RawProfile      json.RawMessage           `json:"profile"`
	SkillCategories []fileSkillCategory       `json:"skillCategories"`
	Projects        []fileProject             `json:"projects"`
	Testimonials    []fileTestimonial         `json:"testimonials"`
	Sections        []settings.Section        `json:"sections"`
	Navigation      []settings.NavigationItem `json:"navigation"`
}

type fileProject struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	ImageURL    string   `json:"imageUrl"`
	LiveURL     string   `json:"liveUrl"`
	GithubURL   string   `json:"githubUrl"`
	Featured    bool     `json:"featured"`
	Visible     *bool    `json:"visible"`
	IsActive    *bool    `json:"isActive"`
	Order       int      `json:"order"`
}

type fileSkillCategory struct {
	ID          string         `json:"id"`
	CategoryID  string         `json:"categoryId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
	Skills      []skills.Skill `json:"skills"`
	Visible     *bool          `json:"visible"`
	IsActive    *bool          `json:"isActive"`
	Order       int            `json:"order"`
}

type fileTestimonial struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Company  string `json:"company"`
	Content  string `json:"content"`
	Avatar   string `json:"avatar"`
	Visible  *bool  `json:"visible"`
	IsActive *bool  `json:"isActive"`
	Order    int    `json:"order"`
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	f := &File{}
	if err := json.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	// decoded onto the defaults, so a profile without isActive stays active
	if len(f.RawProfile) > 0 && string(f.RawProfile) != "null" {
		f.Profile = profile.New()
		if err := json.Unmarshal(f.RawProfile, f.Profile); err != nil {
			return nil, fmt.Errorf("parse seed profile: %w", err)
		}
	}

	return f, nil
}

// active prefers the legacy visible flag, then isActive, and defaults to shown.
func active(visible, isActive *bool) bool {
	if visible != nil {
		return *visible
	}
	if isActive != nil {
		return *isActive
	}
	return true
}

func (p fileProject) toProject() *projects.Project {
	project := projects.New()
	project.Title = p.Title
	project.Description = p.Description
	if p.Tags != nil {
		project.Tags = p.Tags
	}
	project.ImageURL = p.ImageURL
	project.LiveURL = p.LiveURL
	project.GithubURL = p.GithubURL
	project.Featured = p.Featured
	project.Active = active(p.Visible, p.IsActive)
	project.Order = p.Order
	return project
}

func (c fileSkillCategory) toSkillCategory() *skills.SkillCategory {
	category := skills.New()
	category.CategoryID = c.CategoryID
	if category.CategoryID == "" {
		category.CategoryID = c.ID
	}
	category.Title = c.Title
	category.Description = c.Description
	if c.Icon != "" {
		category.Icon = c.Icon
	}
	if c.Skills != nil {
		category.Skills = c.Skills
	}
	category.Active = active(c.Visible, c.IsActive)
	category.Order = c.Order
	return category
}

func (t fileTestimonial) toTestimonial() *testimonials.Testimonial {
	testimonial := testimonials.New()
	testimonial.Name = t.Name
	testimonial.Role = t.Role
	testimonial.Company = t.Company
	testimonial.Content = t.Content
	if t.Avatar != "" {
		testimonial.Avatar = t.Avatar
	}
	testimonial.Active = active(t.Visible, t.IsActive)
	testimonial.Order = t.Order
	return testimonial
}
