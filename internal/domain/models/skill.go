// internal/domain/models/skill.go
package models

// Skill is a technology badge. Skills have no ordering field and are shown
// in the order the collection delivers them.
type Skill struct {
	ID   string `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
	Icon string `bson:"icon" json:"icon"` // icon image URL
}

// EntityID implements Entity.
func (s Skill) EntityID() string { return s.ID }

// Clone returns a copy of s.
func (s Skill) Clone() Skill { return s }
