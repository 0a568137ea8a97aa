package profile

import (
	"errors"
	"time"
)

var ErrProfileNotFound = errors.New("profile not found")

type SocialLinks struct {
	LinkedIn string `json:"linkedin" validate:"omitempty,url"`
	GitHub   string `json:"github" validate:"omitempty,url"`
	Twitter  string `json:"twitter" validate:"omitempty,url"`
	Dribbble string `json:"dribbble" validate:"omitempty,url"`
}

// Profile is the single owner profile shown in the hero and about sections.
type Profile struct {
	Name         string      `json:"name" validate:"notblank,max=255"`
	Tagline      string      `json:"tagline" validate:"notblank"`
	Bio          []string    `json:"bio" validate:"dive,notblank"`
	Location     string      `json:"location" validate:"max=255"`
	Experience   string      `json:"experience" validate:"max=255"`
	Email        string      `json:"email" validate:"required,email"`
	Availability string      `json:"availability" validate:"max=255"`
	Image        string      `json:"image"`
	SocialLinks  SocialLinks `json:"socialLinks"`
	Active       bool        `json:"isActive"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func New() *Profile {
	return &Profile{
		Bio:    []string{},
		Active: true,
	}
}
