package contents

import (
	"net/url"

	"github.com/vmaretto/sigillo/pkg/query"
	"github.com/vmaretto/sigillo/pkg/repository"
)

var projection = query.NewProjectionMap("public", "monitored_contents", "mc").
	Project("id", "ID").
	Project("source", "Source").
	Project("url", "URL").
	Project("image_url", "ImageURL").
	Project("description", "Description").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{Field: "CreatedAt", Descending: true}

func scanContent(s repository.Scanner) (MonitoredContent, error) {
	var c MonitoredContent
	err := s.Scan(
		&c.ID,
		&c.Source,
		&c.URL,
		&c.ImageURL,
		&c.Description,
		&c.CreatedAt,
	)
	return c, err
}

// Filters narrows monitored content list queries.
type Filters struct {
	Source *string `json:"source,omitempty"`
	Search *string `json:"search,omitempty"`
}

// Apply adds the filter conditions to the query builder.
func (f Filters) Apply(qb *query.Builder) {
	qb.WhereEquals("Source", f.Source).
		WhereSearch(f.Search, "URL", "Description")
}

// FiltersFromQuery parses filter criteria from URL query values.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	if v := values.Get("source"); v != "" {
		f.Source = &v
	}
	if v := values.Get("search"); v != "" {
		f.Search = &v
	}
	return f
}
