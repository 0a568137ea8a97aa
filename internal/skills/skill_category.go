package skills

import (
	"encoding/json"
	"time"

	"github.com/2beens/portfolio/internal/content"
)

const (
	DefaultIcon       = "Code"
	DefaultSkillLevel = 80

	categoryIDConstraint = "skill_category_category_id_key"
)

var _ content.Entity = (*SkillCategory)(nil)

type Skill struct {
	Name  string `json:"name" validate:"notblank"`
	Level int    `json:"level" validate:"gte=0,lte=100"`
}

// UnmarshalJSON applies the default level to skills sent without one.
func (s *Skill) UnmarshalJSON(data []byte) error {
	type plainSkill Skill
	decoded := plainSkill{Level: DefaultSkillLevel}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*s = Skill(decoded)
	return nil
}

type SkillCategory struct {
	ID          int       `json:"id"`
	CategoryID  string    `json:"categoryId" validate:"notblank,max=64"`
	Title       string    `json:"title" validate:"notblank,max=255"`
	Description string    `json:"description"`
	Icon        string    `json:"icon" validate:"max=64"`
	Skills      []Skill   `json:"skills" validate:"dive"`
	Active      bool      `json:"isActive"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func New() *SkillCategory {
	return &SkillCategory{
		Icon:   DefaultIcon,
		Skills: []Skill{},
		Active: true,
	}
}

func (c *SkillCategory) GetID() int              { return c.ID }
func (c *SkillCategory) SetID(id int)            { c.ID = id }
func (c *SkillCategory) IsVisible() bool         { return c.Active }
func (c *SkillCategory) SetVisible(visible bool) { c.Active = visible }
func (c *SkillCategory) GetOrder() int           { return c.Order }
func (c *SkillCategory) SetOrder(order int)      { c.Order = order }

func (c *SkillCategory) normalize() {
	if c.Icon == "" {
		c.Icon = DefaultIcon
	}
	if c.Skills == nil {
		c.Skills = []Skill{}
	}
}
