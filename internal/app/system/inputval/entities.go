package inputval

import (
	"fmt"

	"github.com/dalemusser/folio/internal/domain/models"
)

type projectRules struct {
	Title     string `json:"title" validate:"required,max=200" label:"Title"`
	Desc      string `json:"desc" validate:"max=500" label:"Short description"`
	Category  string `json:"category" validate:"required,max=50" label:"Category"`
	Year      string `json:"year" validate:"max=20" label:"Year"`
	Image     string `json:"image" validate:"linkref" label:"Image"`
	VideoURL  string `json:"videoUrl" validate:"linkref" label:"Video URL"`
	URL       string `json:"url" validate:"linkref" label:"Live URL"`
	GitHubURL string `json:"githubUrl" validate:"linkref" label:"GitHub URL"`
}

// Project checks a project before it is written.
func Project(p models.Project) *Result {
	r := Validate(projectRules{
		Title:     p.Title,
		Desc:      p.Desc,
		Category:  p.Category,
		Year:      p.Year,
		Image:     p.Image,
		VideoURL:  p.VideoURL,
		URL:       p.URL,
		GitHubURL: p.GitHubURL,
	})
	if p.Order < 0 {
		r.Errors = append(r.Errors, FieldError{Field: "order", Label: "Order", Message: "Order must not be negative."})
	}
	return r
}

type skillRules struct {
	Name string `json:"name" validate:"required,max=60" label:"Name"`
	Icon string `json:"icon" validate:"linkref" label:"Icon"`
}

// Skill checks a skill before it is written.
func Skill(s models.Skill) *Result {
	return Validate(skillRules{Name: s.Name, Icon: s.Icon})
}

type experienceRules struct {
	Company string `json:"company" validate:"required,max=120" label:"Company"`
	Role    string `json:"role" validate:"required,max=120" label:"Role"`
	Period  string `json:"period" validate:"max=60" label:"Period"`
	Type    string `json:"type" validate:"required,exptype" label:"Type"`
}

// Experience checks an experience entry before it is written.
func Experience(e models.Experience) *Result {
	return Validate(experienceRules{Company: e.Company, Role: e.Role, Period: e.Period, Type: string(e.Type)})
}

type certificateRules struct {
	Title    string `json:"title" validate:"required,max=200" label:"Title"`
	Issuer   string `json:"issuer" validate:"required,max=120" label:"Issuer"`
	ImageURL string `json:"imageUrl" validate:"linkref" label:"Image"`
	Link     string `json:"link" validate:"linkref" label:"Verification link"`
}

// Certificate checks a certificate before it is written.
func Certificate(c models.Certificate) *Result {
	r := Validate(certificateRules{Title: c.Title, Issuer: c.Issuer, ImageURL: c.ImageURL, Link: c.Link})
	if c.Order < 0 {
		r.Errors = append(r.Errors, FieldError{Field: "order", Label: "Order", Message: "Order must not be negative."})
	}
	return r
}

type siteConfigRules struct {
	Name         string `json:"name" validate:"required,max=120" label:"Name"`
	Email        string `json:"email" validate:"optemail" label:"Email"`
	GitHub       string `json:"github" validate:"linkref" label:"GitHub"`
	LinkedIn     string `json:"linkedin" validate:"linkref" label:"LinkedIn"`
	Twitter      string `json:"twitter" validate:"linkref" label:"Twitter"`
	Instagram    string `json:"instagram" validate:"linkref" label:"Instagram"`
	ResumeURL    string `json:"resumeUrl" validate:"linkref" label:"Resume URL"`
	ProfileImage string `json:"profileImage" validate:"linkref" label:"Profile image"`
	AccentColor  string `json:"accentColor" validate:"hexcolor" label:"Accent colour"`
	Theme        string `json:"theme" validate:"theme" label:"Theme"`
}

// SiteConfig checks the merged site configuration before it is written.
func SiteConfig(c models.SiteConfig) *Result {
	r := Validate(siteConfigRules{
		Name:         c.Name,
		Email:        c.Email,
		GitHub:       c.GitHub,
		LinkedIn:     c.LinkedIn,
		Twitter:      c.Twitter,
		Instagram:    c.Instagram,
		ResumeURL:    c.ResumeURL,
		ProfileImage: c.ProfileImage,
		AccentColor:  c.AccentColor,
		Theme:        string(c.Theme),
	})
	for i, cat := range c.ProjectCategories {
		if cat == "" {
			r.Errors = append(r.Errors, FieldError{
				Field:   "projectCategories",
				Label:   "Project categories",
				Message: fmt.Sprintf("Project category %d is empty.", i+1),
			})
			break
		}
	}
	return r
}

// ContactInput is a visitor's message from the contact form.
type ContactInput struct {
	Name    string `json:"name" validate:"required,max=120" label:"Name"`
	Email   string `json:"email" validate:"required,email,max=254" label:"Email"`
	Subject string `json:"subject" validate:"max=200" label:"Subject"`
	Message string `json:"message" validate:"required,max=5000" label:"Message"`

	// Website is a honeypot; people leave it empty.
	Website string `json:"website"`
}

// Contact checks a contact form submission.
func Contact(in ContactInput) *Result {
	return Validate(in)
}
