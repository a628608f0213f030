package domain

import (
	"strings"

	"github.com/Sandanitin/AJ-Mana-Style/pkg/slug"
)

// FAQ is a question/answer pair shown in the footer and help pages.
type FAQ struct {
	ID           ID     `json:"id,omitempty"`
	Question     string `json:"question" validate:"required"`
	Answer       string `json:"answer" validate:"required"`
	Category     string `json:"category"`
	DisplayOrder int    `json:"display_order"`
	IsActive     Flag   `json:"is_active"`
}

// Testimonial is a customer review shown on the homepage when featured.
type Testimonial struct {
	ID       ID     `json:"id,omitempty"`
	Name     string `json:"name" validate:"required"`
	Location string `json:"location"`
	Comment  string `json:"comment" validate:"required"`
	Rating   int    `json:"rating" validate:"gte=1,lte=5"`
	Featured Flag   `json:"featured"`
}

// Category is a product category.
type Category struct {
	ID       ID     `json:"id,omitempty"`
	Name     string `json:"name" validate:"required"`
	Slug     string `json:"slug" validate:"required"`
	ImageURL string `json:"image_url,omitempty"`
}

// Normalize fills the slug from the name when none was given.
func (c *Category) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	if c.Slug == "" {
		c.Slug = slug.Generate(c.Name)
	}
}

// Subscriber is a newsletter subscription.
type Subscriber struct {
	ID           ID     `json:"id,omitempty"`
	Email        string `json:"email" validate:"required,email"`
	Status       string `json:"status,omitempty"`
	SubscribedAt string `json:"subscribed_at,omitempty"`
}

// NewsletterCampaign is a mailing sent to all active subscribers.
type NewsletterCampaign struct {
	Subject string `json:"subject" validate:"required"`
	Content string `json:"content" validate:"required"`
	Type    string `json:"type" validate:"omitempty,oneof=promotional announcement newsletter"`
}
