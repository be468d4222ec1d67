// internal/domain/models/siteconfig.go
package models

// SiteConfig holds the site-wide profile and presentation settings.
// Exactly one instance exists, stored as the config/siteConfig document.
type SiteConfig struct {
	// Identity
	Name      string `bson:"name" json:"name"`
	Tagline   string `bson:"tagline" json:"tagline"`
	HeroTitle string `bson:"heroTitle" json:"heroTitle"`
	Bio       string `bson:"bio" json:"bio"`

	// About section
	AboutTitle string `bson:"aboutTitle,omitempty" json:"aboutTitle,omitempty"`
	AboutMe    string `bson:"aboutMe,omitempty" json:"aboutMe,omitempty"`

	// Contact
	Email            string `bson:"email" json:"email"`
	Phone            string `bson:"phone" json:"phone"`
	Location         string `bson:"location" json:"location"`
	AvailableForWork bool   `bson:"availableForWork" json:"availableForWork"`

	// Social links
	GitHub    string `bson:"github" json:"github"`
	LinkedIn  string `bson:"linkedin" json:"linkedin"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`

	ResumeURL    string `bson:"resumeUrl,omitempty" json:"resumeUrl,omitempty"`
	ProfileImage string `bson:"profileImage,omitempty" json:"profileImage,omitempty"`

	// Appearance
	AccentColor string `bson:"accentColor" json:"accentColor"`
	Theme       Theme  `bson:"theme" json:"theme"`

	// ProjectCategories extends the set of labels offered for Project.Category.
	// Nil means DefaultProjectCategories.
	ProjectCategories []string `bson:"projectCategories,omitempty" json:"projectCategories,omitempty"`
}

// Theme is the site colour scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// DefaultAccentColor is the accent used when none is configured.
const DefaultAccentColor = "#6366f1"

// EmptySiteConfig returns the value used before the remote document has been
// read. It is not the same as "not loaded"; callers check the loaded flag.
func EmptySiteConfig() SiteConfig {
	return SiteConfig{
		AccentColor: DefaultAccentColor,
		Theme:       ThemeDark,
	}
}

// Categories returns the project categories the admin may choose from.
func (c SiteConfig) Categories() []string {
	if len(c.ProjectCategories) == 0 {
		return append([]string(nil), DefaultProjectCategories...)
	}
	return append([]string(nil), c.ProjectCategories...)
}

// Clone returns a copy that shares no slices with c.
func (c SiteConfig) Clone() SiteConfig {
	out := c
	if c.ProjectCategories != nil {
		out.ProjectCategories = append([]string(nil), c.ProjectCategories...)
	}
	return out
}
