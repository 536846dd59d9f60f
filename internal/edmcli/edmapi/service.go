package edmapi

import (
	"bytes"
	"encoding/json"
	"maps"
)

// Service wraps the EDM endpoints around any Requester
type Service struct {
	r Requester
}

// NewService binds the endpoint wrappers to r
func NewService(r Requester) *Service {
	return &Service{r: r}
}

// ListParams are the paging and filter values of a list query
type ListParams struct {
	Page     int
	PageSize int
	Filters  map[string]string
}

// body flattens params into {page, pageSize, ...filters}. Blank filters are left out and
// filters can not override the paging keys.
func (p ListParams) body() map[string]any {
	out := make(map[string]any, len(p.Filters)+2)
	for k, v := range p.Filters {
		if v != "" {
			out[k] = v
		}
	}
	if p.Page > 0 {
		out["page"] = p.Page
	}
	if p.PageSize > 0 {
		out["pageSize"] = p.PageSize
	}
	return out
}

// Clone returns a deep copy so callers can keep params across requests
func (p ListParams) Clone() ListParams {
	p.Filters = maps.Clone(p.Filters)
	return p
}

// Page is one page of a list endpoint
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// UnmarshalJSON accepts {items|list|rows, total|totalRows} objects and bare arrays
func (p *Page[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		if err := json.Unmarshal(b, &p.Items); err != nil {
			return err
		}
		p.Total = len(p.Items)
		return nil
	}

	var wire struct {
		Items     []T  `json:"items"`
		List      []T  `json:"list"`
		Rows      []T  `json:"rows"`
		Total     *int `json:"total"`
		TotalRows *int `json:"totalRows"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	switch {
	case wire.Items != nil:
		p.Items = wire.Items
	case wire.List != nil:
		p.Items = wire.List
	default:
		p.Items = wire.Rows
	}
	switch {
	case wire.Total != nil:
		p.Total = *wire.Total
	case wire.TotalRows != nil:
		p.Total = *wire.TotalRows
	default:
		p.Total = len(p.Items)
	}
	return nil
}
