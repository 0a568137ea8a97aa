package seed

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/portfolio/internal/content"
	"github.com/2beens/portfolio/internal/profile"
	"github.com/2beens/portfolio/internal/projects"
	"github.com/2beens/portfolio/internal/settings"
	"github.com/2beens/portfolio/internal/skills"
	"github.com/2beens/portfolio/internal/testimonials"
	"github.com/2beens/portfolio/pkg"
)

type collection[E any] interface {
	Add(ctx context.Context, entity E) error
	DeleteAll(ctx context.Context) error
}

type profileStore interface {
	Upsert(ctx context.Context, p *profile.Profile) error
}

type settingsStore interface {
	Save(ctx context.Context, s *settings.Settings) error
}

type Stores struct {
	Profile      profileStore
	Settings     settingsStore
	Projects     collection[*projects.Project]
	Skills       collection[*skills.SkillCategory]
	Testimonials collection[*testimonials.Testimonial]
}

type Summary struct {
	Profile         bool
	Settings        bool
	Projects        int
	SkillCategories int
	Testimonials    int
}

// Seeder imports a content file into the stores. Every record is validated before anything is written.
type Seeder struct {
	stores Stores
}

func NewSeeder(stores Stores) *Seeder {
	return &Seeder{
		stores: stores,
	}
}

// Import writes the file content. With replace set, the three collections are emptied first,
// otherwise the records are appended to the existing ones.
func (s *Seeder) Import(ctx context.Context, f *File, replace bool) (*Summary, error) {
	projectsToAdd, categoriesToAdd, testimonialsToAdd, err := convert(f)
	if err != nil {
		return nil, err
	}

	if replace {
		log.Infoln("clearing existing projects, skill categories and testimonials")
		if err := s.stores.Projects.DeleteAll(ctx); err != nil {
			return nil, fmt.Errorf("clear projects: %w", err)
		}
		if err := s.stores.Skills.DeleteAll(ctx); err != nil {
			return nil, fmt.Errorf("clear skill categories: %w", err)
		}
		if err := s.stores.Testimonials.DeleteAll(ctx); err != nil {
			return nil, fmt.Errorf("clear testimonials: %w", err)
		}
	}

	summary := &Summary{}

	if f.Profile != nil {
		if err := s.stores.Profile.Upsert(ctx, f.Profile); err != nil {
			return summary, fmt.Errorf("import profile: %w", err)
		}
		summary.Profile = true
		log.Infof("profile imported: %s", f.Profile.Name)
	}

	if f.Sections != nil || f.Navigation != nil {
		st := settings.Defaults()
		if f.Sections != nil {
			st.Sections = f.Sections
		}
		if f.Navigation != nil {
			st.Navigation = f.Navigation
		}
		if err := s.stores.Settings.Save(ctx, st); err != nil {
			return summary, fmt.Errorf("import settings: %w", err)
		}
		summary.Settings = true
	}

	for _, p := range projectsToAdd {
		if err := s.stores.Projects.Add(ctx, p); err != nil {
			return summary, fmt.Errorf("import project %q: %w", p.Title, err)
		}
		summary.Projects++
		log.Debugf("project imported: %s", p.Title)
	}

	for _, c := range categoriesToAdd {
		if err := s.stores.Skills.Add(ctx, c); err != nil {
			return summary, fmt.Errorf("import skill category %q: %w", c.CategoryID, err)
		}
		summary.SkillCategories++
		log.Debugf("skill category imported: %s", c.Title)
	}

	for _, t := range testimonialsToAdd {
		if err := s.stores.Testimonials.Add(ctx, t); err != nil {
			return summary, fmt.Errorf("import testimonial from %q: %w", t.Name, err)
		}
		summary.Testimonials++
		log.Debugf("testimonial imported: %s", t.Name)
	}

	log.Infof(
		"seed done: %d projects, %d skill categories, %d testimonials",
		summary.Projects, summary.SkillCategories, summary.Testimonials,
	)

	return summary, nil
}

func convert(f *File) ([]*projects.Project, []*skills.SkillCategory, []*testimonials.Testimonial, error) {
	if f.Profile != nil {
		if f.Profile.Bio == nil {
			f.Profile.Bio = []string{}
		}
		if fieldErrors := content.Validate(f.Profile); len(fieldErrors) > 0 {
			return nil, nil, nil, invalidRecordErr("profile", 0, fieldErrors)
		}
	}

	st := &settings.Settings{Sections: f.Sections, Navigation: f.Navigation}
	if fieldErrors := settings.Validate(st); len(fieldErrors) > 0 {
		return nil, nil, nil, invalidRecordErr("settings", 0, fieldErrors)
	}

	projectsToAdd := make([]*projects.Project, 0, len(f.Projects))
	for i, fp := range f.Projects {
		p := fp.toProject()
		if fieldErrors := content.Validate(p); len(fieldErrors) > 0 {
			return nil, nil, nil, invalidRecordErr("projects", i, fieldErrors)
		}
		projectsToAdd = append(projectsToAdd, p)
	}

	categoriesToAdd := make([]*skills.SkillCategory, 0, len(f.SkillCategories))
	for i, fc := range f.SkillCategories {
		c := fc.toSkillCategory()
		if fieldErrors := content.Validate(c); len(fieldErrors) > 0 {
			return nil, nil, nil, invalidRecordErr("skillCategories", i, fieldErrors)
		}
		categoriesToAdd = append(categoriesToAdd, c)
	}

	testimonialsToAdd := make([]*testimonials.Testimonial, 0, len(f.Testimonials))
	for i, ft := range f.Testimonials {
		t := ft.toTestimonial()
		if fieldErrors := content.Validate(t); len(fieldErrors) > 0 {
			return nil, nil, nil, invalidRecordErr("testimonials", i, fieldErrors)
		}
		testimonialsToAdd = append(testimonialsToAdd, t)
	}

	return projectsToAdd, categoriesToAdd, testimonialsToAdd, nil
}

func invalidRecordErr(collection string, index int, fieldErrors []pkg.FieldError) error {
	first := fieldErrors[0]
	return fmt.Errorf("%s[%d] invalid: %s: %s (%d errors)", collection, index, first.Field, first.Message, len(fieldErrors))
}
