package settings

import (
	"errors"
	"fmt"
	"time"

	"github.com/2beens/portfolio/internal/content"
	"github.com/2beens/portfolio/pkg"
)

var ErrSettingsNotFound = errors.New("settings not found")

var (
	_ content.Orderable = Section{}
	_ content.Visible   = NavigationItem{}
)

type Section struct {
	ID      string `json:"id" validate:"notblank,max=64"`
	Title   string `json:"title" validate:"notblank,max=255"`
	Visible bool   `json:"visible"`
	Order   int    `json:"order"`
}

func (s Section) IsVisible() bool { return s.Visible }
func (s Section) GetOrder() int   { return s.Order }

type NavigationItem struct {
	Label   string `json:"label" validate:"notblank,max=64"`
	Href    string `json:"href" validate:"notblank"`
	Visible bool   `json:"visible"`
}

func (n NavigationItem) IsVisible() bool { return n.Visible }

type Settings struct {
	Sections   []Section        `json:"sections" validate:"dive"`
	Navigation []NavigationItem `json:"navigation" validate:"dive"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// PublicSettings is what visitors get: visible sections in order and visible navigation.
type PublicSettings struct {
	Sections   []Section        `json:"sections"`
	Navigation []NavigationItem `json:"navigation"`
}

func (s *Settings) Public() PublicSettings {
	return PublicSettings{
		Sections:   content.Project(s.Sections),
		Navigation: content.FilterVisible(s.Navigation),
	}
}

// Section returns the section config with the given id.
func (s *Settings) Section(id string) (Section, bool) {
	for _, section := range s.Sections {
		if section.ID == id {
			return section, true
		}
	}
	return Section{}, false
}

func Defaults() *Settings {
	return &Settings{
		Sections: []Section{
			{ID: "hero", Title: "Home", Visible: true, Order: 1},
			{ID: "about", Title: "About", Visible: true, Order: 2},
			{ID: "skills", Title: "Skills", Visible: true, Order: 3},
			{ID: "projects", Title: "Projects", Visible: true, Order: 4},
			{ID: "testimonials", Title: "Testimonials", Visible: true, Order: 5},
			{ID: "contact", Title: "Contact", Visible: true, Order: 6},
		},
		Navigation: []NavigationItem{
			{Label: "About", Href: "#about", Visible: true},
			{Label: "Skills", Href: "#skills", Visible: true},
			{Label: "Projects", Href: "#projects", Visible: true},
			{Label: "Testimonials", Href: "#testimonials", Visible: true},
			{Label: "Contact", Href: "#contact", Visible: true},
		},
	}
}

// Validate checks the field rules of every section and navigation item, and that section ids are unique.
func Validate(s *Settings) []pkg.FieldError {
	fieldErrors := content.Validate(s)
	return append(fieldErrors, duplicateSectionIDs(s.Sections)...)
}

func duplicateSectionIDs(sections []Section) []pkg.FieldError {
	var fieldErrors []pkg.FieldError
	seen := make(map[string]bool, len(sections))
	for i, section := range sections {
		if seen[section.ID] {
			fieldErrors = append(fieldErrors, pkg.FieldError{
				Field:   fmt.Sprintf("sections[%d].id", i),
				Message: fmt.Sprintf("duplicate section id %q", section.ID),
			})
		}
		seen[section.ID] = true
	}
	return fieldErrors
}
