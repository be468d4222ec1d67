// internal/domain/models/project.go
package models

import (
	"sort"
	"strconv"
	"time"
)

// Project is one portfolio entry in the projects collection.
// ID is assigned by the client before the first write and never changes.
type Project struct {
	ID              string   `bson:"_id" json:"id"`
	Title           string   `bson:"title" json:"title"`
	Desc            string   `bson:"desc" json:"desc"`
	LongDescription string   `bson:"longDescription,omitempty" json:"longDescription,omitempty"`
	Tech            string   `bson:"tech" json:"tech"` // free-form summary, e.g. "React, Firebase"
	Technologies    []string `bson:"technologies" json:"technologies"`
	Category        string   `bson:"category" json:"category"`
	Year            string   `bson:"year" json:"year"`
	Image           string   `bson:"image" json:"image"`
	VideoURL        string   `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	URL             string   `bson:"url" json:"url"`
	GitHubURL       string   `bson:"githubUrl" json:"githubUrl"`
	Features        []string `bson:"features" json:"features"`
	Featured        bool     `bson:"featured" json:"featured"`
	Order           int      `bson:"order" json:"order"`
	Status          string   `bson:"status,omitempty" json:"status,omitempty"`
	Role            string   `bson:"role,omitempty" json:"role,omitempty"`
}

// Built-in project categories.
const (
	CategoryWeb    = "web"
	CategoryMobile = "mobile"
	CategoryOther  = "other"
)

// DefaultProjectCategories is used when SiteConfig does not list its own.
var DefaultProjectCategories = []string{CategoryWeb, CategoryMobile}

// DefaultProjectOrder places new projects after the seeded ones.
const DefaultProjectOrder = 999

// EntityID implements Entity.
func (p Project) EntityID() string { return p.ID }

// SortOrder implements Ordered.
func (p Project) SortOrder() int { return p.Order }

// Clone returns a copy that shares no slices with p.
func (p Project) Clone() Project {
	out := p
	out.Technologies = cloneStrings(p.Technologies)
	out.Features = cloneStrings(p.Features)
	return out
}

// SortProjects returns projects ordered by Order, keeping arrival order for ties.
// Projects without an order sort last.
func SortProjects(in []Project) []Project {
	out := append([]Project(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		return orderKey(out[i].Order) < orderKey(out[j].Order)
	})
	return out
}

// NewID builds a client-side identifier such as "project-1718041234567".
func NewID(prefix string, now time.Time) string {
	return prefix + "-" + strconv.FormatInt(now.UnixMilli(), 10)
}

// orderKey maps an unset order to the end of the list.
func orderKey(order int) int {
	if order <= 0 {
		return int(^uint(0) >> 1)
	}
	return order
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
