package search

import "github.com/sakif/mentor-directory/internal/model"

// Page is the wire shape of a search response. Count is the number of hits
// before paging.
type Page struct {
	Count   int            `json:"count"`
	Results []model.Mentor `json:"results"`
}

// Paginate slices hits into a Page. A non-positive limit returns everything
// from offset on.
func Paginate(hits []Hit, limit, offset int) Page {
	p := Page{Count: len(hits), Results: []model.Mentor{}}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(hits) {
		return p
	}
	end := len(hits)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	for _, h := range hits[offset:end] {
		p.Results = append(p.Results, h.Mentor)
	}
	return p
}
