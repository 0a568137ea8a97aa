package testimonials

import (
	"time"

	"github.com/2beens/portfolio/internal/content"
)

const DefaultAvatar = "/placeholder.svg?height=100&width=100"

var _ content.Entity = (*Testimonial)(nil)

type Testimonial struct {
	ID        int       `json:"id"`
	Name      string    `json:"name" validate:"notblank,max=255"`
	Role      string    `json:"role" validate:"notblank,max=255"`
	Company   string    `json:"company" validate:"notblank,max=255"`
	Content   string    `json:"content" validate:"notblank"`
	Avatar    string    `json:"avatar"`
	Active    bool      `json:"isActive"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func New() *Testimonial {
	return &Testimonial{
		Avatar: DefaultAvatar,
		Active: true,
	}
}

func (t *Testimonial) GetID() int              { return t.ID }
func (t *Testimonial) SetID(id int)            { t.ID = id }
func (t *Testimonial) IsVisible() bool         { return t.Active }
func (t *Testimonial) SetVisible(visible bool) { t.Active = visible }
func (t *Testimonial) GetOrder() int           { return t.Order }
func (t *Testimonial) SetOrder(order int)      { t.Order = order }
