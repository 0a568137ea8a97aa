package site

import (
	"github.com/2beens/portfolio/internal/content"
	"github.com/2beens/portfolio/internal/profile"
	"github.com/2beens/portfolio/internal/projects"
	"github.com/2beens/portfolio/internal/settings"
	"github.com/2beens/portfolio/internal/skills"
	"github.com/2beens/portfolio/internal/testimonials"
)

// Content is the whole site in one document, keyed the way the frontend reads it.
type Content struct {
	Profile         *profile.Profile            `json:"profile"`
	SkillCategories []*skills.SkillCategory     `json:"skillCategories"`
	Projects        []*projects.Project         `json:"projects"`
	Testimonials    []*testimonials.Testimonial `json:"testimonials"`
	Navigation      []settings.NavigationItem   `json:"navigation"`
	Sections        []settings.Section          `json:"sections"`
}

// Public drops everything hidden and puts the rest in display order. The receiver is not modified.
func (c *Content) Public() *Content {
	public := &Content{
		SkillCategories: content.Project(c.SkillCategories),
		Projects:        content.Project(c.Projects),
		Testimonials:    content.Project(c.Testimonials),
		Navigation:      content.FilterVisible(c.Navigation),
		Sections:        content.Project(c.Sections),
	}
	if c.Profile != nil && c.Profile.Active {
		public.Profile = c.Profile
	}
	return public
}

// Admin returns the same document with every collection sorted by order, hidden records included.
func (c *Content) Admin() *Content {
	return &Content{
		Profile:         c.Profile,
		SkillCategories: content.SortByOrder(c.SkillCategories),
		Projects:        content.SortByOrder(c.Projects),
		Testimonials:    content.SortByOrder(c.Testimonials),
		Navigation:      c.Navigation,
		Sections:        content.SortByOrder(c.Sections),
	}
}

// Section picks a single top level key. Unknown names are reported as not found.
func (c *Content) Section(name string) (any, bool) {
	switch name {
	case "profile":
		return c.Profile, true
	case "skillCategories":
		return c.SkillCategories, true
	case "projects":
		return c.Projects, true
	case "testimonials":
		return c.Testimonials, true
	case "navigation":
		return c.Navigation, true
	case "sections":
		return c.Sections, true
	default:
		return nil, false
	}
}
