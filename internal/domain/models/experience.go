// internal/domain/models/experience.go
package models

// ExperienceType classifies an Experience entry.
type ExperienceType string

const (
	ExperienceWork       ExperienceType = "work"
	ExperienceInternship ExperienceType = "internship"
	ExperienceFreelance  ExperienceType = "freelance"
)

// Valid reports whether t is one of the known experience types.
func (t ExperienceType) Valid() bool {
	switch t {
	case ExperienceWork, ExperienceInternship, ExperienceFreelance:
		return true
	}
	return false
}

// Experience is a work-history entry.
type Experience struct {
	ID           string         `bson:"_id" json:"id"`
	Company      string         `bson:"company" json:"company"`
	Role         string         `bson:"role" json:"role"`
	Period       string         `bson:"period" json:"period"` // e.g. "2023 – Present"
	Location     string         `bson:"location" json:"location"`
	Description  string         `bson:"description" json:"description"`
	Technologies []string       `bson:"technologies" json:"technologies"`
	Type         ExperienceType `bson:"type" json:"type"`
}

// EntityID implements Entity.
func (e Experience) EntityID() string { return e.ID }

// Clone returns a copy that shares no slices with e.
func (e Experience) Clone() Experience {
	out := e
	out.Technologies = cloneStrings(e.Technologies)
	return out
}
