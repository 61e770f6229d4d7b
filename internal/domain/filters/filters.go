package filters

const (
	AdminPageSize = 10
	UserPageSize  = 8
)

// Filters selects one page of a collection. Page is 1-based.
type Filters struct {
	Page     int
	PageSize int
}

func (f Filters) Limit() int {
	return f.PageSize
}

func (f Filters) Offset() int {
	return (f.Page - 1) * f.PageSize
}

type Metadata struct {
	CurrentPage  int
	PageSize     int
	LastPage     int
	TotalRecords int
}

func calculateMetadata(totalRecords, page, pageSize int) Metadata {
	if totalRecords == 0 {
		return Metadata{CurrentPage: 1, PageSize: pageSize}
	}
	return Metadata{
		CurrentPage:  page,
		PageSize:     pageSize,
		LastPage:     (totalRecords + pageSize - 1) / pageSize,
		TotalRecords: totalRecords,
	}
}

// Pages lists every page number, for rendering the pager.
func (m Metadata) Pages() []int {
	pages := make([]int, m.LastPage)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

func (m Metadata) HasPrev() bool { return m.CurrentPage > 1 }

func (m Metadata) HasNext() bool { return m.CurrentPage < m.LastPage }

// Paginate returns one page of items in reverse order, so the most recently added
// record comes first. Pages outside [1, LastPage] are clamped. items is not modified.
//
// The API returns the whole collection; this is the place to switch to server-side
// paging once it supports limit/offset parameters.
func Paginate[T any](items []T, f Filters) ([]T, Metadata) {
	if f.PageSize < 1 {
		f.PageSize = len(items)
		if f.PageSize == 0 {
			f.PageSize = 1
		}
	}
	meta := calculateMetadata(len(items), f.Page, f.PageSize)
	if len(items) == 0 {
		return []T{}, meta
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > meta.LastPage {
		f.Page = meta.LastPage
	}
	meta.CurrentPage = f.Page

	start := f.Offset()
	end := min(start+f.Limit(), len(items))
	page := make([]T, 0, end-start)
	for i := start; i < end; i++ {
		page = append(page, items[len(items)-1-i])
	}
	return page, meta
}
