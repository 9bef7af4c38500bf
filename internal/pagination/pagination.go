// Package pagination slices ordered collections into fixed-size pages.
package pagination

import "strconv"

// PageSize is the number of posts shown per page.
const PageSize = 10

// Window describes one page of an ordered collection: the query window
// (Offset/Limit) plus the metadata needed to render "page N of M" and
// prev/next links.
type Window struct {
	Number      int   `json:"number"`
	NumPages    int   `json:"num_pages"`
	PageSize    int   `json:"page_size"`
	Total       int64 `json:"total"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
	Offset      int   `json:"-"`
	Limit       int   `json:"-"`
}

// Paginate computes the window for the requested page given the total
// item count. The raw query value may be absent or garbage; anything
// that does not parse as a page number falls back to the first page,
// and numbers past the end clamp to the last page. The result is
// deterministic for unchanged inputs.
func Paginate(rawPage string, total int64) Window {
	numPages := int((total + PageSize - 1) / PageSize)
	if numPages < 1 {
		numPages = 1
	}

	number, err := strconv.Atoi(rawPage)
	if err != nil || number < 1 {
		number = 1
	}
	if number > numPages {
		number = numPages
	}

	return Window{
		Number:      number,
		NumPages:    numPages,
		PageSize:    PageSize,
		Total:       total,
		HasNext:     number < numPages,
		HasPrevious: number > 1,
		Offset:      (number - 1) * PageSize,
		Limit:       PageSize,
	}
}
