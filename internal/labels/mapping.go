package labels

import (
	"net/url"
	"strconv"

	"github.com/vmaretto/sigillo/pkg/query"
	"github.com/vmaretto/sigillo/pkg/repository"
)

var projection = query.NewProjectionMap("public", "reference_labels", "rl").
	Project("id", "ID").
	Project("name", "Name").
	Project("producer", "Producer").
	Project("designation", "Designation").
	Project("region", "Region").
	Project("municipality", "Municipality").
	Project("label_type", "LabelType").
	Project("image_key", "ImageKey").
	Project("back_image_key", "BackImageKey").
	Project("active", "Active").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "Name"}

func scanLabel(s repository.Scanner) (Label, error) {
	var l Label
	err := s.Scan(
		&l.ID,
		&l.Name,
		&l.Producer,
		&l.Designation,
		&l.Region,
		&l.Municipality,
		&l.LabelType,
		&l.ImageKey,
		&l.BackImageKey,
		&l.Active,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}

// Filters narrows label list queries.
type Filters struct {
	Designation *string `json:"designation,omitempty"`
	Region      *string `json:"region,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

// Apply adds the filter conditions to the query builder.
func (f Filters) Apply(qb *query.Builder) {
	qb.WhereEquals("Designation", f.Designation).
		WhereContains("Region", f.Region).
		WhereEquals("Active", f.Active)
}

// FiltersFromQuery parses filter criteria from URL query values.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	if v := values.Get("designation"); v != "" {
		f.Designation = &v
	}
	if v := values.Get("region"); v != "" {
		f.Region = &v
	}
	if v := values.Get("active"); v != "" {
		if active, err := strconv.ParseBool(v); err == nil {
			f.Active = &active
		}
	}
	return f
}
