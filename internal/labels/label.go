// Package labels implements the official reference label corpus for Sigillo.
// It provides types, data access, and business logic for registering and
// querying the DOP/IGP labels that candidate images are verified against.
package labels

import (
	"time"

	"github.com/google/uuid"

	"github.com/vmaretto/sigillo/internal/scoring"
)

// Designation values recognized for reference labels.
const (
	DesignationDOP      = "dop"
	DesignationIGP      = "igp"
	DesignationOrganic  = "biologico"
	DesignationOfficial = "ufficiale"
)

// Label represents one official reference label entry. Only entries with
// Active = true participate in verification matching.
type Label struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Producer     string     `json:"producer"`
	Designation  string     `json:"designation"`
	Region       string     `json:"region"`
	Municipality string     `json:"municipality"`
	LabelType    string     `json:"label_type"`
	ImageKey     string     `json:"image_key"`
	BackImageKey *string    `json:"back_image_key"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Descriptor returns the structured fields handed to the textual comparison
// service.
func (l *Label) Descriptor() scoring.ReferenceDescriptor {
	return scoring.ReferenceDescriptor{
		Name:         l.Name,
		Producer:     l.Producer,
		Designation:  l.Designation,
		Region:       l.Region,
		Municipality: l.Municipality,
		LabelType:    l.LabelType,
	}
}

// CreateCommand carries the data needed to register a new reference label.
// Image holds the raw front image bytes; BackImage is optional.
type CreateCommand struct {
	Name         string
	Producer     string
	Designation  string
	Region       string
	Municipality string
	LabelType    string
	Image        []byte
	ImageType    string
	BackImage    []byte
	BackType     string
}
