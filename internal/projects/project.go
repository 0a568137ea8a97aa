package projects

import (
	"time"

	"github.com/2beens/portfolio/internal/content"
)

var _ content.Entity = (*Project)(nil)

type Project struct {
	ID          int       `json:"id"`
	Title       string    `json:"title" validate:"notblank,max=255"`
	Description string    `json:"description" validate:"notblank"`
	Tags        []string  `json:"tags" validate:"dive,notblank"`
	ImageURL    string    `json:"imageUrl"`
	LiveURL     string    `json:"liveUrl" validate:"omitempty,url"`
	GithubURL   string    `json:"githubUrl" validate:"omitempty,url"`
	Featured    bool      `json:"featured"`
	Active      bool      `json:"isActive"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// New returns a project with the defaults applied to a freshly created record.
func New() *Project {
	return &Project{
		Tags:   []string{},
		Active: true,
	}
}

func (p *Project) GetID() int              { return p.ID }
func (p *Project) SetID(id int)            { p.ID = id }
func (p *Project) IsVisible() bool         { return p.Active }
func (p *Project) SetVisible(visible bool) { p.Active = visible }
func (p *Project) GetOrder() int           { return p.Order }
func (p *Project) SetOrder(order int)      { p.Order = order }
