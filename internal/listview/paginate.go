package listview

// DefaultPerPage matches the page size of the management tables.
const DefaultPerPage = 10

// Meta describes the page of a paginated result.
type Meta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	From        int `json:"from"`
	To          int `json:"to"`
}

// Paginate slices items for page (1-based). Out of range pages are clamped.
func Paginate[T any](items []T, page, perPage int) ([]T, Meta) {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	total := len(items)
	last := (total + perPage - 1) / perPage
	if last < 1 {
		last = 1
	}
	if page < 1 {
		page = 1
	}
	if page > last {
		page = last
	}

	meta := Meta{CurrentPage: page, LastPage: last, PerPage: perPage, Total: total}
	if total == 0 {
		return []T{}, meta
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}
	meta.From = start + 1
	meta.To = end

	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, meta
}
