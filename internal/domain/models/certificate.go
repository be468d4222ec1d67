// internal/domain/models/certificate.go
package models

import "sort"

// Certificate is a credential shown in the certificates section.
type Certificate struct {
	ID          string `bson:"_id" json:"id"`
	Title       string `bson:"title" json:"title"`
	Issuer      string `bson:"issuer" json:"issuer"`
	Date        string `bson:"date" json:"date"`
	ImageURL    string `bson:"imageUrl" json:"imageUrl"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Link        string `bson:"link,omitempty" json:"link,omitempty"` // verification URL
	Order       int    `bson:"order" json:"order"`
}

// EntityID implements Entity.
func (c Certificate) EntityID() string { return c.ID }

// SortOrder implements Ordered.
func (c Certificate) SortOrder() int { return c.Order }

// Clone returns a copy of c.
func (c Certificate) Clone() Certificate { return c }

// SortCertificates returns certificates ordered by Order, stable for ties.
func SortCertificates(in []Certificate) []Certificate {
	out := append([]Certificate(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		return orderKey(out[i].Order) < orderKey(out[j].Order)
	})
	return out
}
