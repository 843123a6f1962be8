package report

// Page is one page of a collection.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// TotalPages returns ceil(count / pageSize), or 0 when pageSize is not positive.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 || count <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// Paginate returns records[(page-1)*pageSize : page*pageSize]. Pages outside the range
// and non-positive sizes yield an empty page rather than an error.
func Paginate[T any](records []T, page, pageSize int) Page[T] {
	p := Page[T]{
		Items:      []T{},
		Page:       page,
		PageSize:   pageSize,
		TotalItems: len(records),
		TotalPages: TotalPages(len(records), pageSize),
	}
	// Compare against the page count before multiplying so huge pages cannot overflow.
	if page < 1 || pageSize <= 0 || page > p.TotalPages {
		return p
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}

	p.Items = append(p.Items, records[start:end]...)
	return p
}
