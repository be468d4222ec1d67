// internal/app/system/seeding/seeding.go
package seeding

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dalemusser/folio/internal/domain/models"
	"gopkg.in/yaml.v3"
)

// Content is a complete set of default site content. The content store
// writes it to an empty collection on first server-confirmed observation and
// on an explicit reset.
type Content struct {
	SiteConfig   models.SiteConfig    `json:"siteConfig"`
	Projects     []models.Project     `json:"projects"`
	Skills       []models.Skill       `json:"skills"`
	Experiences  []models.Experience  `json:"experiences"`
	Certificates []models.Certificate `json:"certificates"`
}

// Builtin returns the bundled default content. Every call returns a fresh
// value that shares nothing with earlier calls.
func Builtin() Content {
	return Content{
		SiteConfig:   builtinSiteConfig(),
		Projects:     builtinProjects(),
		Skills:       builtinSkills(),
		Experiences:  builtinExperiences(),
		Certificates: builtinCertificates(),
	}
}

// Clone returns a deep copy of c.
func (c Content) Clone() Content {
	out := Content{SiteConfig: c.SiteConfig.Clone()}
	if c.Projects != nil {
		out.Projects = make([]models.Project, len(c.Projects))
		for i, p := range c.Projects {
			out.Projects[i] = p.Clone()
		}
	}
	if c.Skills != nil {
		out.Skills = append([]models.Skill(nil), c.Skills...)
	}
	if c.Experiences != nil {
		out.Experiences = make([]models.Experience, len(c.Experiences))
		for i, e := range c.Experiences {
			out.Experiences[i] = e.Clone()
		}
	}
	if c.Certificates != nil {
		out.Certificates = append([]models.Certificate(nil), c.Certificates...)
	}
	return out
}

// LoadFile reads default content from a YAML file. Top-level sections that
// the file omits keep their built-in values, so an operator can override
// just the site config or just the project list.
//
// The file uses the same camelCase keys as the JSON API:
//
//	siteConfig:
//	  name: Jane Doe
//	  accentColor: "#10b981"
//	projects:
//	  - id: blog
//	    title: My Blog
//	    order: 1
func LoadFile(path string) (Content, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Content{}, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes YAML seed content. See LoadFile.
func Parse(raw []byte) (Content, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Content{}, fmt.Errorf("parse seed file: %w", err)
	}

	// Re-encode through JSON so the model's json tags define the file format;
	// the models carry no yaml tags.
	js, err := json.Marshal(doc)
	if err != nil {
		return Content{}, fmt.Errorf("convert seed file: %w", err)
	}

	var file struct {
		SiteConfig   *models.SiteConfig   `json:"siteConfig"`
		Projects     []models.Project     `json:"projects"`
		Skills       []models.Skill       `json:"skills"`
		Experiences  []models.Experience  `json:"experiences"`
		Certificates []models.Certificate `json:"certificates"`
	}
	if err := json.Unmarshal(js, &file); err != nil {
		return Content{}, fmt.Errorf("decode seed file: %w", err)
	}

	out := Builtin()
	if file.SiteConfig != nil {
		out.SiteConfig = *file.SiteConfig
	}
	if _, ok := doc["projects"]; ok {
		out.Projects = nonNil(file.Projects)
	}
	if _, ok := doc["skills"]; ok {
		out.Skills = nonNil(file.Skills)
	}
	if _, ok := doc["experiences"]; ok {
		out.Experiences = nonNil(file.Experiences)
	}
	if _, ok := doc["certificates"]; ok {
		out.Certificates = nonNil(file.Certificates)
	}
	return out, nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

// Marshal encodes c in the LoadFile format, so an export can be edited and
// fed back as a seed file.
func Marshal(c Content) ([]byte, error) {
	js, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode content: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(js, &doc); err != nil {
		return nil, fmt.Errorf("encode content: %w", err)
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode content: %w", err)
	}
	return out, nil
}
